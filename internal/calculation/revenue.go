package calculation

import (
	"github.com/freshbudget/freshbudget/internal/domain"
	"github.com/freshbudget/freshbudget/internal/formula"
)

// revenueOffsets are the resolved timing knobs for one combination. Each
// knob falls back through combination-specific value, payload-level default,
// then the legacy single fresh offset, then 0.
type revenueOffsets struct {
	Recurring     int
	OneTime       int
	CashRecurring int
	CashOneTime   int
}

func resolveRevenueOffsets(req *domain.CalculationRequest, combo *domain.VolumeCombination) revenueOffsets {
	return revenueOffsets{
		Recurring: combo.RecurringOffsetMonths.Or(
			req.RecurringOffsetMonths, combo.FreshOffsetMonths, req.FreshOffsetMonths),
		OneTime: combo.OneTimeOffsetMonths.Or(
			req.OneTimeOffsetMonths, combo.FreshOffsetMonths, req.FreshOffsetMonths),
		CashRecurring: combo.CashflowRecurringOffsetMonths.Or(
			req.CashflowRecurringOffsetMonths, combo.FreshOffsetMonths, req.FreshOffsetMonths),
		CashOneTime: combo.CashflowOneTimeOffsetMonths.Or(
			req.CashflowOneTimeOffsetMonths, combo.FreshOffsetMonths, req.FreshOffsetMonths),
	}
}

// comboRecognition carries one combination's recognized revenue row together
// with the pre-shift cash-equivalent series and the offsets the cash stage
// will apply to them.
type comboRecognition struct {
	Key     string
	Row     domain.RevenueRow
	Offsets revenueOffsets

	// Rounded pre-shift cash-equivalent series, month-indexed.
	CashRecurring []float64
	CashOneTime   []float64

	// Already-timed existing cash override, added with no further shift.
	CashOverride *domain.ExistingCashflowOverride
}

// compiledFormulas are the request's optional custom formulas, compiled once
// per run. A formula that fails to compile aborts the whole run before any
// combination is processed.
type compiledFormulas struct {
	Recurring *formula.Formula
	OneTime   *formula.Formula
}

func compileFormulas(req *domain.CalculationRequest) (compiledFormulas, error) {
	var out compiledFormulas
	if req.FormulaRecurring != "" {
		f, err := formula.Compile(req.FormulaRecurring)
		if err != nil {
			return out, err
		}
		out.Recurring = f
	}
	if req.FormulaOneTime != "" {
		f, err := formula.Compile(req.FormulaOneTime)
		if err != nil {
			return out, err
		}
		out.OneTime = f
	}
	return out, nil
}

func (cf compiledFormulas) recurringAmount(vol, rate float64) (float64, error) {
	if rate == 0 {
		return 0, nil
	}
	if cf.Recurring == nil {
		return vol * rate, nil
	}
	return cf.Recurring.Eval(map[string]float64{
		"volume":         vol,
		"v":              vol,
		"recurring_rate": rate,
		"r":              rate,
	})
}

func (cf compiledFormulas) oneTimeAmount(vol, rate float64) (float64, error) {
	if rate == 0 {
		return 0, nil
	}
	if cf.OneTime == nil {
		return vol * rate, nil
	}
	return cf.OneTime.Eval(map[string]float64{
		"volume":            vol,
		"v":                 vol,
		"total_volume_year": vol,
		"volume_year":       vol,
		"one_time_rate":     rate,
		"r":                 rate,
	})
}

// recognizeCombination runs the monthly recognition loop for one combination,
// producing the rounded P&L row and the cash-equivalent series the timing
// stage consumes.
func recognizeCombination(
	req *domain.CalculationRequest,
	policy Policy,
	formulas compiledFormulas,
	combo *domain.VolumeCombination,
	rate domain.RateEntry,
	months []string,
) (*comboRecognition, error) {
	ledger := NewLedger(combo, months, req.FiscalYear, req.BaseExitYear)
	offs := resolveRevenueOffsets(req, combo)

	fr := rate.RecurringRate
	fo := rate.OneTimeRate
	er := rate.ExistingRecurringRate
	eo := rate.ExistingOneTimeRate
	baseExit := ledger.BaseExit()

	includeFresh := req.FreshIncluded()
	mult := policy.VolumeMultiplier(combo.Dimensions)
	tranche := policy.Tranche()
	existingOTDiv := policy.ExistingOneTimeDivisor(combo.Dimensions)
	freshOTDiv := policy.FreshOneTimeDivisor(combo.Dimensions)

	var overrideRec, overrideOT map[string]float64
	if req.BaseExitYear != "" && combo.ExistingRevenue != nil {
		if ov := combo.ExistingRevenue[req.BaseExitYear]; ov != nil {
			overrideRec = ov.Recurring
			overrideOT = ov.OneTime
		}
	}

	// Existing recurring cash starts one month before its P&L counterpart,
	// floored at the first fiscal month.
	existingCashStart := offs.Recurring - 1
	if existingCashStart < 0 {
		existingCashStart = 0
	}

	n := len(months)
	rec := &comboRecognition{
		Key:     combo.Dimensions.Key(),
		Offsets: offs,
		CashRecurring: make([]float64, n),
		CashOneTime:   make([]float64, n),
		CashOverride:  combo.ExistingCashflow,
		Row: domain.RevenueRow{
			Dimensions:               combo.Dimensions,
			MonthlyRevenue:           make(map[string]float64, n),
			MonthlyRecurring:         make(map[string]float64, n),
			MonthlyOneTime:           make(map[string]float64, n),
			MonthlyExistingOneTime:   make(map[string]float64, n),
			MonthlyFreshOneTime:      make(map[string]float64, n),
			MonthlyCashflowRecurring: make(map[string]float64, n),
			MonthlyCashflowOneTime:   make(map[string]float64, n),
		},
	}

	var existingRecTotal, freshRecTotal, existingOTTotal, freshOTTotal float64
	var totalRecurring, totalOneTime float64

	for idx, m := range months {
		var existingRec, existingOT float64
		if overrideRec != nil {
			existingRec = overrideRec[m]
			existingOT = overrideOT[m]
		} else {
			existingRec = baseExit * er
			if existingOTDiv > 0 && eo != 0 {
				existingOT = baseExit * eo / existingOTDiv
			}
		}

		var freshRec float64
		if includeFresh && idx >= offs.Recurring {
			effCum := ledger.CumAt(idx, offs.Recurring)
			if effCum > 0 {
				if tranche != nil {
					first := effCum * tranche.Share * fr
					second := 0.0
					if idx >= offs.Recurring+tranche.LagMonths {
						second = ledger.CumAt(idx-tranche.LagMonths, offs.Recurring) * tranche.Share * fr
					}
					freshRec = (first + second) * mult
				} else {
					amt, err := formulas.recurringAmount(effCum, fr)
					if err != nil {
						return nil, err
					}
					freshRec = amt * mult
				}
			}
		}

		var freshOT float64
		if policy.RecognizesOneTime() && includeFresh && idx >= offs.OneTime && freshOTDiv > 0 {
			cumOT := ledger.CumAt(idx, offs.OneTime)
			if cumOT > 0 {
				yearly, err := formulas.oneTimeAmount(cumOT, fo)
				if err != nil {
					return nil, err
				}
				freshOT = yearly / freshOTDiv * mult
			}
		}

		// Cash equivalents, before the timing shift.
		var cashExistingRec float64
		if idx >= existingCashStart && combo.ExistingCashflow == nil {
			cashExistingRec = baseExit * er
		}
		var cashFreshRec float64
		if includeFresh {
			if cum := ledger.CumAt(idx, 0); cum > 0 {
				amt, err := formulas.recurringAmount(cum, fr)
				if err != nil {
					return nil, err
				}
				cashFreshRec = amt * mult
			}
		}
		var cashFreshOT float64
		if policy.RecognizesOneTimeCash() && includeFresh && idx >= offs.OneTime {
			if fv := ledger.FreshAt(idx, offs.OneTime); fv > 0 {
				amt, err := formulas.oneTimeAmount(fv, fo)
				if err != nil {
					return nil, err
				}
				cashFreshOT = amt * mult
			}
		}

		recM := Round2(existingRec + freshRec)
		otM := Round2(existingOT + freshOT)
		cashRecM := Round2(cashExistingRec + cashFreshRec)
		cashOTM := Round2(cashFreshOT)

		rec.Row.MonthlyRecurring[m] = recM
		rec.Row.MonthlyOneTime[m] = otM
		rec.Row.MonthlyRevenue[m] = Round2(recM + otM)
		rec.Row.MonthlyExistingOneTime[m] = Round2(existingOT)
		rec.Row.MonthlyFreshOneTime[m] = Round2(freshOT)
		rec.Row.MonthlyCashflowRecurring[m] = cashRecM
		rec.Row.MonthlyCashflowOneTime[m] = cashOTM
		rec.CashRecurring[idx] = cashRecM
		rec.CashOneTime[idx] = cashOTM

		existingRecTotal += existingRec
		freshRecTotal += freshRec
		existingOTTotal += existingOT
		freshOTTotal += freshOT
		totalRecurring += recM
		totalOneTime += otM
	}

	rec.Row.ExistingRecurring = Round2(existingRecTotal)
	rec.Row.FreshRecurring = Round2(freshRecTotal)
	rec.Row.ExistingOneTime = Round2(existingOTTotal)
	rec.Row.FreshOneTime = Round2(freshOTTotal)
	rec.Row.TotalRecurring = Round2(totalRecurring)
	rec.Row.TotalOneTime = Round2(totalOneTime)
	rec.Row.TotalRevenue = Round2(rec.Row.TotalRecurring + rec.Row.TotalOneTime)

	return rec, nil
}
