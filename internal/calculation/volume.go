package calculation

import (
	"github.com/freshbudget/freshbudget/internal/domain"
)

// Ledger holds one combination's signed monthly volumes for the planning
// year, the derived cumulative series, and the existing base exit volume.
// Decommissioning combinations carry every raw volume and the base exit
// volume negated, so downstream math treats them as reductions.
type Ledger struct {
	Raw   []float64
	Cum   []float64
	Decom bool

	baseExit float64
}

// NewLedger builds the volume ledger for a combination. Volumes are read
// from the planning fiscal year only; the base exit volume from the selected
// prior year. Missing months read as zero.
func NewLedger(combo *domain.VolumeCombination, months []string, fiscalYear, baseExitYear string) *Ledger {
	decom := combo.Dimensions.IsDecom()
	fyMonths := combo.Volumes[fiscalYear]

	l := &Ledger{
		Raw:   make([]float64, len(months)),
		Cum:   make([]float64, len(months)),
		Decom: decom,
	}
	running := 0.0
	for i, m := range months {
		v := fyMonths[m]
		if decom {
			v = -v
		}
		l.Raw[i] = v
		running += v
		l.Cum[i] = running
	}
	if baseExitYear != "" {
		l.baseExit = combo.ExitVolumes[baseExitYear]
		if decom {
			l.baseExit = -l.baseExit
		}
	}
	return l
}

// BaseExit returns the signed existing base volume E.
func (l *Ledger) BaseExit() float64 { return l.baseExit }

// CumAt returns the cumulative volume through month idx-offset, or 0 when
// that index falls before the fiscal year or beyond the series.
func (l *Ledger) CumAt(idx, offset int) float64 {
	src := idx - offset
	if src < 0 || src >= len(l.Cum) {
		return 0
	}
	return l.Cum[src]
}

// FreshAt returns the incremental volume arriving in month idx after the
// offset: the difference between this month's and last month's shifted
// cumulative. In the first recognized month the whole shifted cumulative
// arrives at once.
func (l *Ledger) FreshAt(idx, offset int) float64 {
	if idx < offset {
		return 0
	}
	cur := l.CumAt(idx, offset)
	if idx == offset {
		return cur
	}
	return cur - l.CumAt(idx-1, offset)
}

// CostBasis holds the volume series the cost adapters draw on: the raw
// cumulative fresh volume, never sign-inverted, and the signed existing base
// volume. Decommissioning flips only the base; fresh cost volumes stay
// positive because the spend happens either way.
type CostBasis struct {
	Cum      []float64
	baseExit float64
}

// NewCostBasis builds the cost-side volume view of a combination.
func NewCostBasis(combo *domain.VolumeCombination, months []string, fiscalYear, baseExitYear string) *CostBasis {
	fyMonths := combo.Volumes[fiscalYear]
	b := &CostBasis{Cum: make([]float64, len(months))}
	running := 0.0
	for i, m := range months {
		running += fyMonths[m]
		b.Cum[i] = running
	}
	if baseExitYear != "" {
		b.baseExit = combo.ExitVolumes[baseExitYear]
		if combo.Dimensions.IsDecom() {
			b.baseExit = -b.baseExit
		}
	}
	return b
}

// BaseExit returns the signed existing base volume E.
func (b *CostBasis) BaseExit() float64 { return b.baseExit }

// CumAt returns the cumulative volume through month idx-offset, or 0 when
// that index falls outside the series.
func (b *CostBasis) CumAt(idx, offset int) float64 {
	src := idx - offset
	if src < 0 || src >= len(b.Cum) {
		return 0
	}
	return b.Cum[src]
}

// CumLookAhead reads the cumulative series with a possibly negative offset
// (a forward look), clamping reads past the fiscal year end to the year-end
// cumulative.
func (b *CostBasis) CumLookAhead(idx, offset int) float64 {
	src := idx - offset
	if src < 0 || len(b.Cum) == 0 {
		return 0
	}
	if src >= len(b.Cum) {
		src = len(b.Cum) - 1
	}
	return b.Cum[src]
}
