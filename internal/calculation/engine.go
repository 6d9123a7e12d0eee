package calculation

import (
	"sort"

	"go.uber.org/zap"

	"github.com/freshbudget/freshbudget/internal/domain"
)

// Engine runs whole projection calculations. It is stateless across runs;
// every Calculate call works entirely on its own request copy, so one Engine
// can serve concurrent callers.
type Engine struct {
	logger *zap.Logger
}

// NewEngine returns an engine logging through the supplied logger. A nil
// logger disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Calculate runs the full projection for one request: revenue recognition
// per combination, OPEX and CAPEX adapters, and the cashflow timing stage.
// A malformed formula aborts the whole run with no partial result.
func (e *Engine) Calculate(req *domain.CalculationRequest) (*domain.CalculationResult, error) {
	months := req.MonthSequence()
	policy := PolicyFor(req.LOB)

	formulas, err := compileFormulas(req)
	if err != nil {
		e.logger.Warn("formula rejected",
			zap.String("fiscal_year", req.FiscalYear),
			zap.Error(err))
		return nil, err
	}

	e.logger.Info("calculation started",
		zap.String("fiscal_year", req.FiscalYear),
		zap.String("lob", policy.Name()),
		zap.Int("combinations", len(req.Volumes)),
		zap.Bool("include_fresh", req.FreshIncluded()))

	rateMap := make(map[string]domain.RateEntry, len(req.Rates))
	for _, r := range req.Rates {
		rateMap[r.Dimensions.Key()] = r
	}

	result := &domain.CalculationResult{
		FiscalYear:             req.FiscalYear,
		Months:                 months,
		MonthlyTotals:          zeroMonthMap(months),
		MonthlyRecurringTotals: zeroMonthMap(months),
		MonthlyOneTimeTotals:   zeroMonthMap(months),
	}

	recs := make([]*comboRecognition, 0, len(req.Volumes))
	seen := make(map[string]bool, len(req.Volumes))
	for i := range req.Volumes {
		combo := &req.Volumes[i]
		key := combo.Dimensions.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		rec, err := recognizeCombination(req, policy, formulas, combo, rateMap[key], months)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
		result.Rows = append(result.Rows, rec.Row)
		for _, m := range months {
			result.MonthlyTotals[m] += rec.Row.MonthlyRevenue[m]
			result.MonthlyRecurringTotals[m] += rec.Row.MonthlyRecurring[m]
			result.MonthlyOneTimeTotals[m] += rec.Row.MonthlyOneTime[m]
		}
		result.TotalRevenue += rec.Row.TotalRevenue
	}
	for _, m := range months {
		result.MonthlyTotals[m] = Round2(result.MonthlyTotals[m])
		result.MonthlyRecurringTotals[m] = Round2(result.MonthlyRecurringTotals[m])
		result.MonthlyOneTimeTotals[m] = Round2(result.MonthlyOneTimeTotals[m])
	}
	result.TotalRevenue = Round2(result.TotalRevenue)

	opex := calculateOpex(req, policy, months)
	result.OpexItems = opex.Items
	result.MonthlyOpexTotals = seriesToMap(months, opex.MonthlyTotals)
	result.TotalOpex = opex.Total
	result.MonthlyPassthroughRevenue = seriesToMap(months, opex.PassthroughRevenue)
	result.MonthlyPassthroughExpense = seriesToMap(months, opex.PassthroughExpense)
	for _, v := range opex.PassthroughRevenue {
		result.TotalPassthrough += v
	}
	result.TotalPassthrough = Round2(result.TotalPassthrough)

	cash := assembleCashflow(recs, opex, months)
	result.MonthlyCashRecurringInflow = seriesToMap(months, cash.Recurring)
	result.MonthlyCashOneTimeInflow = seriesToMap(months, cash.OneTime)
	result.MonthlyCashPassthroughInflow = seriesToMap(months, cash.Passthrough)
	result.MonthlyCashGrossInflow = seriesToMap(months, cash.Gross)
	result.MonthlyCashOutflowItems = cash.OutflowItems
	result.MonthlyCashOutflowTotals = seriesToMap(months, cash.Outflow)
	result.MonthlyCashNetOperating = seriesToMap(months, cash.NetOperating)
	result.TotalCashRecurringInflow = cash.TotalRecurring
	result.TotalCashOneTimeInflow = cash.TotalOneTime
	result.TotalCashGrossInflow = cash.TotalGross
	result.TotalCashOutflow = cash.TotalOutflow
	result.TotalCashNetOperating = cash.TotalNetOperating

	capex := calculateCapex(req, months)
	result.CapexItems = capex.Items
	result.MonthlyCapexTotals = seriesToMap(months, capex.MonthlyTotals)
	result.TotalCapex = capex.Total
	result.CapexGroupCash = capex.GroupCash
	result.CapexGroupTotal = capex.GroupTotal

	result.MonthlyNetCashflow, result.MonthlyCumNetCashflow, result.PeakFunding, result.TotalNetCashflow =
		netCashflowView(cash.NetOperating, capex.MonthlyTotals, months)

	e.logger.Info("calculation finished",
		zap.String("fiscal_year", req.FiscalYear),
		zap.Float64("total_revenue", result.TotalRevenue),
		zap.Float64("peak_funding", result.PeakFunding))

	return result, nil
}

// SummarizeVolumes aggregates raw monthly volumes across combinations with
// per-dimension-value subtotals. No rates or money are involved.
func (e *Engine) SummarizeVolumes(req *domain.VolumeRequest) *domain.VolumeSummary {
	months := req.Months
	if len(months) == 0 {
		months = domain.FiscalMonths
	}
	summary := &domain.VolumeSummary{
		FiscalYear:      req.FiscalYear,
		Months:          months,
		Totals:          zeroMonthMap(months),
		DimensionTotals: make(map[string][]domain.DimensionValueTotal),
	}

	dimAccum := make(map[string]map[string]map[string]float64)
	for i := range req.Combinations {
		combo := &req.Combinations[i]
		if !combo.IsIncluded() {
			continue
		}
		fyMonths := combo.Volumes[req.FiscalYear]
		monthly := make(map[string]float64, len(months))
		cumulative := make(map[string]float64, len(months))
		running, total := 0.0, 0.0
		for _, m := range months {
			v := fyMonths[m]
			monthly[m] = v
			running += v
			cumulative[m] = running
			total += v
			summary.Totals[m] += v
		}
		summary.GrandTotal += total
		summary.Rows = append(summary.Rows, domain.VolumeRow{
			Dimensions:       combo.Dimensions,
			Monthly:          monthly,
			Cumulative:       cumulative,
			Total:            total,
			PriorExitVolumes: combo.ExitVolumes,
		})

		for dim, value := range combo.Dimensions {
			byValue := dimAccum[dim]
			if byValue == nil {
				byValue = make(map[string]map[string]float64)
				dimAccum[dim] = byValue
			}
			acc := byValue[value]
			if acc == nil {
				acc = zeroMonthMap(months)
				byValue[value] = acc
			}
			for _, m := range months {
				acc[m] += monthly[m]
			}
		}
	}

	for dim, byValue := range dimAccum {
		values := make([]string, 0, len(byValue))
		for v := range byValue {
			values = append(values, v)
		}
		sort.Strings(values)
		for _, v := range values {
			total := 0.0
			for _, m := range months {
				total += byValue[v][m]
			}
			summary.DimensionTotals[dim] = append(summary.DimensionTotals[dim], domain.DimensionValueTotal{
				Value:   v,
				Monthly: byValue[v],
				Total:   total,
			})
		}
	}
	return summary
}

func zeroMonthMap(months []string) map[string]float64 {
	out := make(map[string]float64, len(months))
	for _, m := range months {
		out[m] = 0
	}
	return out
}
