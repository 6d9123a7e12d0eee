package domain

// RevenueRow is the per-combination output of the recognition engine: the
// rounded monthly P&L series, the cash-equivalent series that feed the
// cashflow timing engine, and row-level subtotals.
type RevenueRow struct {
	Dimensions Dimensions `json:"dimensions"`

	MonthlyRevenue   map[string]float64 `json:"monthly_revenue"`
	MonthlyRecurring map[string]float64 `json:"monthly_recurring"`
	MonthlyOneTime   map[string]float64 `json:"monthly_one_time"`

	// One-time split so cashflow can exclude the existing component.
	MonthlyExistingOneTime map[string]float64 `json:"monthly_existing_one_time"`
	MonthlyFreshOneTime    map[string]float64 `json:"monthly_fresh_one_time"`

	// Cash-equivalent components, before the cash timing shift.
	MonthlyCashflowRecurring map[string]float64 `json:"monthly_cashflow_recurring"`
	MonthlyCashflowOneTime   map[string]float64 `json:"monthly_cashflow_one_time"`

	TotalRecurring float64 `json:"total_recurring"`
	TotalOneTime   float64 `json:"total_one_time"`
	TotalRevenue   float64 `json:"total_revenue"`

	ExistingRecurring float64 `json:"existing_recurring"`
	FreshRecurring    float64 `json:"fresh_recurring"`
	ExistingOneTime   float64 `json:"existing_one_time"`
	FreshOneTime      float64 `json:"fresh_one_time"`
}

// OpexItemResult is one OPEX item's recognized monthly amounts.
type OpexItemResult struct {
	Name                    string             `json:"name"`
	RecognitionOffsetMonths int                `json:"recognition_offset_months"`
	CashflowOffsetMonths    int                `json:"cashflow_offset_months"`
	OverrideApplied         bool               `json:"override_applied"`
	Passthrough             bool               `json:"passthrough"`
	Monthly                 map[string]float64 `json:"monthly"`
	Total                   float64            `json:"total"`
}

// CashItemFlow is one cost item's cash outflow after timing shifts.
type CashItemFlow struct {
	Name                 string             `json:"name"`
	CashflowOffsetMonths int                `json:"cashflow_offset_months"`
	Monthly              map[string]float64 `json:"monthly"`
	Total                float64            `json:"total"`
}

// CapexItemResult is one CAPEX item's recognized monthly amounts before the
// cash stage.
type CapexItemResult struct {
	Name                    string             `json:"name"`
	Group                   string             `json:"group"`
	Type                    string             `json:"type"`
	RecognitionOffsetMonths int                `json:"recognition_offset_months"`
	CashflowOffsetMonths    int                `json:"cashflow_offset_months"`
	IsRefund                bool               `json:"is_refund"`
	Monthly                 map[string]float64 `json:"monthly"`
	Total                   float64            `json:"total"`
}

// CalculationResult is the complete output of one projection run.
type CalculationResult struct {
	FiscalYear string       `json:"fiscal_year"`
	Months     []string     `json:"months"`
	Rows       []RevenueRow `json:"rows"`

	MonthlyTotals          map[string]float64 `json:"monthly_totals"`
	MonthlyRecurringTotals map[string]float64 `json:"monthly_recurring_totals"`
	MonthlyOneTimeTotals   map[string]float64 `json:"monthly_one_time_totals"`
	TotalRevenue           float64            `json:"total_revenue"`

	// Passthrough P&L mirror lines (zero-margin billthrough).
	MonthlyPassthroughRevenue map[string]float64 `json:"monthly_passthrough_revenue"`
	MonthlyPassthroughExpense map[string]float64 `json:"monthly_passthrough_expense"`
	TotalPassthrough          float64            `json:"total_passthrough"`

	OpexItems         []OpexItemResult   `json:"opex_items"`
	MonthlyOpexTotals map[string]float64 `json:"monthly_opex_totals"`
	TotalOpex         float64            `json:"total_opex"`

	// Cashflow block, after timing shifts.
	MonthlyCashRecurringInflow   map[string]float64 `json:"monthly_cash_recurring_inflow"`
	MonthlyCashOneTimeInflow     map[string]float64 `json:"monthly_cash_one_time_inflow"`
	MonthlyCashPassthroughInflow map[string]float64 `json:"monthly_cash_passthrough_inflow"`
	MonthlyCashGrossInflow       map[string]float64 `json:"monthly_cash_gross_inflow"`
	MonthlyCashOutflowItems      []CashItemFlow     `json:"monthly_cash_outflow_items"`
	MonthlyCashOutflowTotals     map[string]float64 `json:"monthly_cash_outflow_totals"`
	MonthlyCashNetOperating      map[string]float64 `json:"monthly_cash_net_operating"`
	TotalCashRecurringInflow     float64            `json:"total_cash_recurring_inflow"`
	TotalCashOneTimeInflow       float64            `json:"total_cash_one_time_inflow"`
	TotalCashGrossInflow         float64            `json:"total_cash_gross_inflow"`
	TotalCashOutflow             float64            `json:"total_cash_outflow"`
	TotalCashNetOperating        float64            `json:"total_cash_net_operating"`

	CapexItems         []CapexItemResult             `json:"capex_items"`
	MonthlyCapexTotals map[string]float64            `json:"monthly_capex_totals"`
	TotalCapex         float64                       `json:"total_capex"`
	CapexGroupCash     map[string]map[string]float64 `json:"capex_group_cash"`
	CapexGroupTotal    map[string]float64            `json:"capex_group_total"`

	// Millions-denominated display series.
	MonthlyNetCashflow    map[string]float64 `json:"monthly_net_cashflow"`
	MonthlyCumNetCashflow map[string]float64 `json:"monthly_cum_net_cashflow"`
	PeakFunding           float64            `json:"peak_funding"`
	TotalNetCashflow      float64            `json:"total_net_cashflow"`
}

// VolumeRequest is the input of a volume-only summary.
type VolumeRequest struct {
	FiscalYear   string              `yaml:"fiscal_year" json:"fiscal_year"`
	Months       []string            `yaml:"months" json:"months"`
	Combinations []VolumeCombination `yaml:"combinations" json:"combinations"`
}

// VolumeRow is one combination's monthly volumes with derived series.
type VolumeRow struct {
	Dimensions       Dimensions         `json:"dimensions"`
	Monthly          map[string]float64 `json:"monthly"`
	Cumulative       map[string]float64 `json:"cumulative"`
	Total            float64            `json:"total"`
	PriorExitVolumes map[string]float64 `json:"prior_exit_volumes"`
}

// DimensionValueTotal aggregates volumes across all combinations sharing one
// dimension value.
type DimensionValueTotal struct {
	Value   string             `json:"value"`
	Monthly map[string]float64 `json:"monthly"`
	Total   float64            `json:"total"`
}

// VolumeSummary is the output of a volume-only summary.
type VolumeSummary struct {
	FiscalYear      string                           `json:"fiscal_year"`
	Months          []string                         `json:"months"`
	Rows            []VolumeRow                      `json:"rows"`
	Totals          map[string]float64               `json:"totals"`
	GrandTotal      float64                          `json:"grand_total"`
	DimensionTotals map[string][]DimensionValueTotal `json:"dimension_totals"`
}
