package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Offset is a non-negative month offset that tolerates malformed input.
// Numeric strings such as "02" are accepted; negative, fractional-garbage or
// non-numeric values leave the offset unset so the caller falls back to the
// next default in the chain. Malformed offsets never fail a calculation.
type Offset struct {
	months int
	valid  bool
}

// OffsetOf returns a set offset of n months. Negative values are unset.
func OffsetOf(n int) Offset {
	if n < 0 {
		return Offset{}
	}
	return Offset{months: n, valid: true}
}

// IsSet reports whether the offset carries a usable value.
func (o Offset) IsSet() bool { return o.valid }

// Months returns the offset value, or 0 when unset.
func (o Offset) Months() int {
	if !o.valid {
		return 0
	}
	return o.months
}

// Or resolves the offset against a fallback chain: the first set offset wins,
// otherwise 0.
func (o Offset) Or(fallbacks ...Offset) int {
	if o.valid {
		return o.months
	}
	for _, f := range fallbacks {
		if f.valid {
			return f.months
		}
	}
	return 0
}

func (o *Offset) coerce(raw any) {
	*o = Offset{}
	switch v := raw.(type) {
	case nil:
	case int:
		*o = OffsetOf(v)
	case int64:
		*o = OffsetOf(int(v))
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			*o = OffsetOf(int(v))
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*o = OffsetOf(int(n))
		}
	case bool:
		// Tolerated and ignored, same as any other junk.
	}
}

// UnmarshalYAML implements yaml.Unmarshaler with silent coercion.
func (o *Offset) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		*o = Offset{}
		return nil
	}
	o.coerce(raw)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler with silent coercion.
func (o *Offset) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*o = Offset{}
		return nil
	}
	o.coerce(raw)
	return nil
}

// MarshalJSON renders the resolved month count.
func (o Offset) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Months())
}

// MarshalYAML renders the resolved month count.
func (o Offset) MarshalYAML() (any, error) {
	return o.Months(), nil
}

// ExistingOverride is a full 12-month replacement of the existing-portion
// P&L revenue for one combination, sourced from an upload. When present it
// replaces the existing calculation entirely; the fresh portion is still
// computed from volumes.
type ExistingOverride struct {
	Recurring map[string]float64 `yaml:"recurring" json:"recurring"`
	OneTime   map[string]float64 `yaml:"one_time" json:"one_time"`
}

// ExistingCashflowOverride is an already-timed 12-month cash series for the
// existing portion of one combination. It is added to cash totals verbatim,
// with no further timing shift.
type ExistingCashflowOverride struct {
	Recurring map[string]float64 `yaml:"recurring" json:"recurring"`
	OneTime   map[string]float64 `yaml:"one_time" json:"one_time"`
}

// VolumeCombination carries one dimension combination's monthly volumes for
// the planning year, prior-year exit volumes, overrides and timing offsets.
type VolumeCombination struct {
	Dimensions Dimensions `yaml:"dimensions" json:"dimensions"`
	// Volumes maps fiscal year -> month -> raw volume. Only the planning
	// year is read.
	Volumes map[string]map[string]float64 `yaml:"volumes" json:"volumes"`
	// ExitVolumes maps prior fiscal year -> cumulative exit volume, the
	// existing base volume E.
	ExitVolumes map[string]float64 `yaml:"exit_volumes" json:"exit_volumes"`
	Included    *bool              `yaml:"included" json:"included"`

	// ExistingRevenue maps base exit year -> uploaded existing P&L override.
	ExistingRevenue map[string]*ExistingOverride `yaml:"existing_revenue" json:"existing_revenue"`
	// ExistingCashflow is an already-timed existing cash override.
	ExistingCashflow *ExistingCashflowOverride `yaml:"existing_cashflow" json:"existing_cashflow"`

	// Legacy single fresh offset, the fallback for all four revenue offsets.
	FreshOffsetMonths Offset `yaml:"fresh_offset_months" json:"fresh_offset_months"`

	RecurringOffsetMonths         Offset `yaml:"recurring_offset_months" json:"recurring_offset_months"`
	OneTimeOffsetMonths           Offset `yaml:"one_time_offset_months" json:"one_time_offset_months"`
	CashflowRecurringOffsetMonths Offset `yaml:"cashflow_recurring_offset_months" json:"cashflow_recurring_offset_months"`
	CashflowOneTimeOffsetMonths   Offset `yaml:"cashflow_one_time_offset_months" json:"cashflow_one_time_offset_months"`

	CapexOffsetMonths         Offset `yaml:"capex_offset_months" json:"capex_offset_months"`
	CapexCashflowOffsetMonths Offset `yaml:"capex_cashflow_offset_months" json:"capex_cashflow_offset_months"`
}

// IsIncluded reports whether the combination participates in a calculation.
// Combinations are included unless explicitly excluded.
func (vc *VolumeCombination) IsIncluded() bool {
	return vc.Included == nil || *vc.Included
}

// RateEntry holds the four per-unit rates for one combination.
type RateEntry struct {
	Dimensions Dimensions `yaml:"dimensions" json:"dimensions"`
	// Fresh volume rates.
	RecurringRate float64 `yaml:"recurring_rate" json:"recurring_rate"`
	OneTimeRate   float64 `yaml:"one_time_rate" json:"one_time_rate"`
	// Existing (prior year exit) rates.
	ExistingRecurringRate float64 `yaml:"existing_recurring_rate" json:"existing_recurring_rate"`
	ExistingOneTimeRate   float64 `yaml:"existing_one_time_rate" json:"existing_one_time_rate"`
}

// OpexItem is a named operating-cost line.
type OpexItem struct {
	Name                    string `yaml:"name" json:"name"`
	Group                   string `yaml:"group" json:"group"`
	Type                    string `yaml:"type" json:"type"`
	RecognitionOffsetMonths Offset `yaml:"recognition_offset_months" json:"recognition_offset_months"`
	CashflowOffsetMonths    Offset `yaml:"cashflow_offset_months" json:"cashflow_offset_months"`

	// Passthrough items are billed through at zero margin: mirrored into a
	// passthrough revenue line and an equal expense line instead of the
	// normal OPEX bucket. Only honoured under the Small Cell policy.
	Passthrough bool `yaml:"passthrough" json:"passthrough"`
	// PassthroughSiteTypes restricts the mirroring to combinations whose
	// site-type dimension matches; empty means all combinations.
	PassthroughSiteTypes []string `yaml:"passthrough_site_types" json:"passthrough_site_types"`
	// InflowOffsetMonths times the mirrored passthrough revenue, independent
	// of the expense-side CashflowOffsetMonths.
	InflowOffsetMonths Offset `yaml:"inflow_offset_months" json:"inflow_offset_months"`
}

// CapexItem is a named capital-cost line. Inventory groups are
// advance-procurement: recognition looks ahead by the cash offset and the
// cash series copies recognition unshifted.
type CapexItem struct {
	Name                    string `yaml:"name" json:"name"`
	Group                   string `yaml:"group" json:"group"`
	Type                    string `yaml:"type" json:"type"`
	RecognitionOffsetMonths Offset `yaml:"recognition_offset_months" json:"recognition_offset_months"`
	CashflowOffsetMonths    Offset `yaml:"cashflow_offset_months" json:"cashflow_offset_months"`
	IsRefund                bool   `yaml:"is_refund" json:"is_refund"`
}

// AdvanceProcurement reports whether the item belongs to an inventory group,
// whose spend is committed before the cash moves.
func (ci *CapexItem) AdvanceProcurement() bool {
	return strings.Contains(ci.Group, "Inventory")
}

// ItemRate is a per-combination, per-item cost rate pair.
type ItemRate struct {
	Dimensions   Dimensions `yaml:"dimensions" json:"dimensions"`
	Item         string     `yaml:"item" json:"item"`
	ExistingRate float64    `yaml:"existing_rate" json:"existing_rate"`
	FreshRate    float64    `yaml:"fresh_rate" json:"fresh_rate"`
}

// ItemOverride replaces the existing portion of one cost item with uploaded
// monthly values.
type ItemOverride struct {
	Item       string             `yaml:"item" json:"item"`
	FiscalYear string             `yaml:"fiscal_year" json:"fiscal_year"`
	Months     map[string]float64 `yaml:"months" json:"months"`
}

// CalculationRequest is the full input of one projection run. It is consumed
// once and discarded; the engine holds no state across runs.
type CalculationRequest struct {
	FiscalYear string   `yaml:"fiscal_year" json:"fiscal_year"`
	Months     []string `yaml:"months" json:"months"`
	LOB        string   `yaml:"lob" json:"lob"`

	Volumes []VolumeCombination `yaml:"volumes" json:"volumes"`
	Rates   []RateEntry         `yaml:"rates" json:"rates"`

	// BaseExitYear selects which prior year's exit volume is the existing
	// base volume E. Empty means no existing base.
	BaseExitYear string `yaml:"base_exit_year" json:"base_exit_year"`

	// IncludeFreshVolumes gates all fresh revenue and fresh OPEX; defaults
	// to true.
	IncludeFreshVolumes *bool `yaml:"include_fresh_volumes" json:"include_fresh_volumes"`

	FormulaRecurring string `yaml:"formula_recurring" json:"formula_recurring"`
	FormulaOneTime   string `yaml:"formula_one_time" json:"formula_one_time"`

	// Payload-level offset defaults; combination-specific values win.
	FreshOffsetMonths             Offset `yaml:"fresh_offset_months" json:"fresh_offset_months"`
	RecurringOffsetMonths         Offset `yaml:"recurring_offset_months" json:"recurring_offset_months"`
	OneTimeOffsetMonths           Offset `yaml:"one_time_offset_months" json:"one_time_offset_months"`
	CashflowRecurringOffsetMonths Offset `yaml:"cashflow_recurring_offset_months" json:"cashflow_recurring_offset_months"`
	CashflowOneTimeOffsetMonths   Offset `yaml:"cashflow_one_time_offset_months" json:"cashflow_one_time_offset_months"`
	CapexOffsetMonths             Offset `yaml:"capex_offset_months" json:"capex_offset_months"`
	CapexCashflowOffsetMonths     Offset `yaml:"capex_cashflow_offset_months" json:"capex_cashflow_offset_months"`

	OpexItems             []OpexItem     `yaml:"opex_items" json:"opex_items"`
	OpexRates             []ItemRate     `yaml:"opex_rates" json:"opex_rates"`
	ExistingOpexOverrides []ItemOverride `yaml:"existing_opex_overrides" json:"existing_opex_overrides"`

	CapexItems             []CapexItem    `yaml:"capex_items" json:"capex_items"`
	CapexRates             []ItemRate     `yaml:"capex_rates" json:"capex_rates"`
	ExistingCapexOverrides []ItemOverride `yaml:"existing_capex_overrides" json:"existing_capex_overrides"`

	// UseDefaultCatalogs merges the reference OPEX/CAPEX catalogs into empty
	// item lists at load time.
	UseDefaultCatalogs bool `yaml:"use_default_catalogs" json:"use_default_catalogs"`
}

// MonthSequence returns the request's month order, defaulting to the fiscal
// calendar.
func (r *CalculationRequest) MonthSequence() []string {
	if len(r.Months) > 0 {
		return r.Months
	}
	return FiscalMonths
}

// FreshIncluded reports the include_fresh_volumes gate with its default.
func (r *CalculationRequest) FreshIncluded() bool {
	return r.IncludeFreshVolumes == nil || *r.IncludeFreshVolumes
}
