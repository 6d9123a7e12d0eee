package calculation

import (
	"github.com/freshbudget/freshbudget/internal/domain"
)

// shiftInto adds src into dst displaced forward by offset months. Amounts
// that would land past the end of the fiscal year are dropped, never wrapped
// or carried.
func shiftInto(dst, src []float64, offset int) {
	for i, v := range src {
		target := i + offset
		if target >= len(dst) {
			continue
		}
		dst[target] += v
	}
}

// cashflowOutcome is the fully timed operating cash view: shifted inflows,
// per-item shifted outflows and the operating net series, all rounded and in
// absolute currency units.
type cashflowOutcome struct {
	Recurring    []float64
	OneTime      []float64
	Passthrough  []float64
	Gross        []float64
	OutflowItems []domain.CashItemFlow
	Outflow      []float64
	NetOperating []float64

	TotalRecurring    float64
	TotalOneTime      float64
	TotalGross        float64
	TotalOutflow      float64
	TotalNetOperating float64
}

// assembleCashflow applies the second-stage temporal shift to the
// cash-equivalent series from recognition and the cost adapters.
func assembleCashflow(recs []*comboRecognition, opex *opexOutcome, months []string) *cashflowOutcome {
	n := len(months)
	out := &cashflowOutcome{
		Recurring:    make([]float64, n),
		OneTime:      make([]float64, n),
		Passthrough:  make([]float64, n),
		Gross:        make([]float64, n),
		Outflow:      make([]float64, n),
		NetOperating: make([]float64, n),
	}

	// Combination-level cash offsets, reused by the cost outflows below.
	comboCashOff := make(map[string]int, len(recs))
	for _, rec := range recs {
		comboCashOff[rec.Key] = rec.Offsets.CashRecurring
		shiftInto(out.Recurring, rec.CashRecurring, rec.Offsets.CashRecurring)
		shiftInto(out.OneTime, rec.CashOneTime, rec.Offsets.CashOneTime)
		if rec.CashOverride != nil {
			// Externally timed series: added verbatim, no shift.
			for i, m := range months {
				out.Recurring[i] += Round2(rec.CashOverride.Recurring[m])
				out.OneTime[i] += Round2(rec.CashOverride.OneTime[m])
			}
		}
	}

	for _, flow := range opex.ItemFlows {
		itemCash := make([]float64, n)
		for key, series := range flow.PerCombo {
			off := comboCashOff[key] + flow.CashOffset
			for i, v := range series {
				target := i + off
				if target >= n {
					continue
				}
				itemCash[target] += Round2(v)
			}
		}
		total := 0.0
		for i := range itemCash {
			itemCash[i] = Round2(itemCash[i])
			total += itemCash[i]
			out.Outflow[i] += itemCash[i]
		}
		out.OutflowItems = append(out.OutflowItems, domain.CashItemFlow{
			Name:                 flow.Name,
			CashflowOffsetMonths: flow.CashOffset,
			Monthly:              seriesToMap(months, itemCash),
			Total:                Round2(total),
		})
	}

	for _, flow := range opex.PassthroughFlows {
		itemCash := make([]float64, n)
		for key, series := range flow.PerCombo {
			inOff := comboCashOff[key] + flow.InflowOffset
			outOff := comboCashOff[key] + flow.OutflowOffset
			for i, v := range series {
				rounded := Round2(v)
				if target := i + inOff; target < n {
					out.Passthrough[target] += rounded
				}
				if target := i + outOff; target < n {
					itemCash[target] += rounded
				}
			}
		}
		total := 0.0
		for i := range itemCash {
			itemCash[i] = Round2(itemCash[i])
			total += itemCash[i]
			out.Outflow[i] += itemCash[i]
		}
		out.OutflowItems = append(out.OutflowItems, domain.CashItemFlow{
			Name:                 flow.Name,
			CashflowOffsetMonths: flow.OutflowOffset,
			Monthly:              seriesToMap(months, itemCash),
			Total:                Round2(total),
		})
	}

	for i := range months {
		out.Recurring[i] = Round2(out.Recurring[i])
		out.OneTime[i] = Round2(out.OneTime[i])
		out.Passthrough[i] = Round2(out.Passthrough[i])
		out.Gross[i] = Round2(out.Recurring[i] + out.OneTime[i] + out.Passthrough[i])
		out.Outflow[i] = Round2(out.Outflow[i])
		out.NetOperating[i] = Round2(out.Gross[i] - out.Outflow[i])

		out.TotalRecurring += out.Recurring[i]
		out.TotalOneTime += out.OneTime[i]
		out.TotalGross += out.Gross[i]
		out.TotalOutflow += out.Outflow[i]
		out.TotalNetOperating += out.NetOperating[i]
	}
	out.TotalRecurring = Round2(out.TotalRecurring)
	out.TotalOneTime = Round2(out.TotalOneTime)
	out.TotalGross = Round2(out.TotalGross)
	out.TotalOutflow = Round2(out.TotalOutflow)
	out.TotalNetOperating = Round2(out.TotalNetOperating)
	return out
}

// netCashflowView rescales the post-CAPEX net series to millions and derives
// the cumulative series and peak funding, the most negative cumulative value
// reached (0 when the cumulative never dips below zero).
func netCashflowView(netOperating, capexMonthly []float64, months []string) (net, cum map[string]float64, peak, total float64) {
	net = make(map[string]float64, len(months))
	cum = make(map[string]float64, len(months))
	running := 0.0
	for i, m := range months {
		v := RoundMillions(netOperating[i] - capexMonthly[i])
		net[m] = v
		running += v
		cum[m] = Round2(running)
		if running < peak {
			peak = running
		}
		total += v
	}
	peak = Round2(peak)
	total = Round2(total)
	return net, cum, peak, total
}
