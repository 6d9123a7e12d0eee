package calculation

import (
	"strings"

	"github.com/freshbudget/freshbudget/internal/domain"
)

// standardDivisor spreads a one-time amount over the standard 180-month
// amortization horizon.
const standardDivisor = 180.0

// TrancheRule describes staggered recognition of fresh recurring revenue:
// a share recognized immediately and the same share of an earlier cumulative
// recognized again after the lag.
type TrancheRule struct {
	Share     float64
	LagMonths int
}

// Policy is one Line-of-Business variant. A policy is selected once per
// calculation run and applied uniformly to every combination in that run.
type Policy interface {
	Name() string

	// ExistingOneTimeDivisor returns the amortization divisor for the
	// existing one-time component; 0 means the component is always zero.
	ExistingOneTimeDivisor(dims domain.Dimensions) float64

	// FreshOneTimeDivisor returns the amortization divisor for the fresh
	// one-time P&L component.
	FreshOneTimeDivisor(dims domain.Dimensions) float64

	// RecognizesOneTime reports whether the LOB has any one-time revenue.
	RecognizesOneTime() bool

	// RecognizesOneTimeCash reports whether fresh one-time generates cash
	// inflow. OHFC recognizes one-time P&L but never one-time cash.
	RecognizesOneTimeCash() bool

	// Tranche returns the staggered recognition rule, or nil.
	Tranche() *TrancheRule

	// VolumeMultiplier scales fresh revenue by a dimension-derived factor.
	VolumeMultiplier(dims domain.Dimensions) float64

	// AllowsPassthrough reports whether passthrough OPEX mirroring applies.
	AllowsPassthrough() bool
}

// PolicyFor resolves an LOB selector, case-insensitively. Unknown or empty
// selectors fall back to the default policy rather than failing; malformed
// selection is not an error.
func PolicyFor(lob string) Policy {
	switch strings.ToUpper(strings.TrimSpace(lob)) {
	case "SMALL CELL":
		return smallCellPolicy{name: "Small Cell", passthrough: true}
	case "ACTIVE":
		return smallCellPolicy{name: "Active"}
	case "SDU":
		return sduPolicy{}
	case "OHFC":
		return ohfcPolicy{}
	case "DARK FIBER":
		return darkFiberPolicy{}
	case "CO BUILD":
		return defaultPolicy{name: "Co Build"}
	case "", "FTTH", "DEFAULT":
		return defaultPolicy{name: "FTTH"}
	default:
		return defaultPolicy{name: "FTTH"}
	}
}

// defaultPolicy covers FTTH, Co Build and any unrecognized LOB: one-time
// revenue amortized over the standard horizon, no tranching, no multiplier.
type defaultPolicy struct{ name string }

func (p defaultPolicy) Name() string                                        { return p.name }
func (defaultPolicy) ExistingOneTimeDivisor(domain.Dimensions) float64      { return standardDivisor }
func (defaultPolicy) FreshOneTimeDivisor(domain.Dimensions) float64         { return standardDivisor }
func (defaultPolicy) RecognizesOneTime() bool                               { return true }
func (defaultPolicy) RecognizesOneTimeCash() bool                           { return true }
func (defaultPolicy) Tranche() *TrancheRule                                 { return nil }
func (defaultPolicy) VolumeMultiplier(domain.Dimensions) float64            { return 1 }
func (defaultPolicy) AllowsPassthrough() bool                               { return false }

// smallCellPolicy covers Small Cell and Active: recurring only, no one-time
// revenue of any kind. Small Cell additionally honours passthrough OPEX.
type smallCellPolicy struct {
	name        string
	passthrough bool
}

func (p smallCellPolicy) Name() string                                   { return p.name }
func (smallCellPolicy) ExistingOneTimeDivisor(domain.Dimensions) float64 { return 0 }
func (smallCellPolicy) FreshOneTimeDivisor(domain.Dimensions) float64    { return 0 }
func (smallCellPolicy) RecognizesOneTime() bool                          { return false }
func (smallCellPolicy) RecognizesOneTimeCash() bool                      { return false }
func (smallCellPolicy) Tranche() *TrancheRule                            { return nil }
func (smallCellPolicy) VolumeMultiplier(domain.Dimensions) float64       { return 1 }
func (p smallCellPolicy) AllowsPassthrough() bool                        { return p.passthrough }

// sduPolicy: one-time amortized over the contract lock-in, recurring
// recognized in two staggered 50% tranches with a 2-month lag.
type sduPolicy struct{}

func (sduPolicy) Name() string { return "SDU" }

func (sduPolicy) ExistingOneTimeDivisor(dims domain.Dimensions) float64 {
	return dims.LockInMonths() * 12
}

func (sduPolicy) FreshOneTimeDivisor(dims domain.Dimensions) float64 {
	return dims.LockInMonths() * 12
}

func (sduPolicy) RecognizesOneTime() bool                    { return true }
func (sduPolicy) RecognizesOneTimeCash() bool                { return true }
func (sduPolicy) Tranche() *TrancheRule                      { return &TrancheRule{Share: 0.5, LagMonths: 2} }
func (sduPolicy) VolumeMultiplier(domain.Dimensions) float64 { return 1 }
func (sduPolicy) AllowsPassthrough() bool                    { return false }

// ohfcPolicy: fresh one-time spread over 12 months, no existing one-time and
// no one-time cash inflow.
type ohfcPolicy struct{}

func (ohfcPolicy) Name() string                                   { return "OHFC" }
func (ohfcPolicy) ExistingOneTimeDivisor(domain.Dimensions) float64 { return 0 }
func (ohfcPolicy) FreshOneTimeDivisor(domain.Dimensions) float64    { return 12 }
func (ohfcPolicy) RecognizesOneTime() bool                          { return true }
func (ohfcPolicy) RecognizesOneTimeCash() bool                      { return false }
func (ohfcPolicy) Tranche() *TrancheRule                            { return nil }
func (ohfcPolicy) VolumeMultiplier(domain.Dimensions) float64       { return 1 }
func (ohfcPolicy) AllowsPassthrough() bool                          { return false }

// darkFiberPolicy: standard amortization, fresh revenue scaled by the
// fiber-pair count dimension.
type darkFiberPolicy struct{}

func (darkFiberPolicy) Name() string                                   { return "Dark Fiber" }
func (darkFiberPolicy) ExistingOneTimeDivisor(domain.Dimensions) float64 { return standardDivisor }
func (darkFiberPolicy) FreshOneTimeDivisor(domain.Dimensions) float64    { return standardDivisor }
func (darkFiberPolicy) RecognizesOneTime() bool                          { return true }
func (darkFiberPolicy) RecognizesOneTimeCash() bool                      { return true }
func (darkFiberPolicy) Tranche() *TrancheRule                            { return nil }

func (darkFiberPolicy) VolumeMultiplier(dims domain.Dimensions) float64 {
	return dims.PairMultiplier()
}

func (darkFiberPolicy) AllowsPassthrough() bool { return false }
