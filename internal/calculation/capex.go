package calculation

import (
	"github.com/freshbudget/freshbudget/internal/domain"
)

// capexOutcome is the recognized CAPEX block plus per-item cash series after
// timing: monthly group cash, overall monthly totals and grand total.
type capexOutcome struct {
	Items         []domain.CapexItemResult
	MonthlyTotals []float64
	Total         float64
	GroupCash     map[string]map[string]float64
	GroupTotal    map[string]float64
}

// capexFreshType reports whether the item type carries a volume-driven fresh
// component. Deposit-style items recognize nothing from volumes; they only
// ever appear through overrides and refunds.
func capexFreshType(t string) bool {
	switch t {
	case "first_time", "replacement", "people":
		return true
	default:
		return false
	}
}

// calculateCapex recognizes every CAPEX item and derives its cash series.
//
// Advance-procurement (inventory) groups commit spend before cash moves: the
// recognition index already looks ahead by the full cash offset and the cash
// series then copies recognition unshifted. Service groups recognize with no
// look-ahead and shift cash forward by the offset. CAPEX ignores the fresh
// gate; committed capital spend is reported regardless.
func calculateCapex(req *domain.CalculationRequest, months []string) *capexOutcome {
	n := len(months)
	out := &capexOutcome{
		MonthlyTotals: make([]float64, n),
		GroupCash:     make(map[string]map[string]float64, len(domain.CapexGroupHeaders)),
		GroupTotal:    make(map[string]float64, len(domain.CapexGroupHeaders)),
	}
	for _, g := range domain.CapexGroupHeaders {
		out.GroupCash[g] = seriesToMap(months, make([]float64, n))
		out.GroupTotal[g] = 0
	}
	rates := itemRateLookup(req.CapexRates)
	overrides := itemOverrideLookup(req.ExistingCapexOverrides, months)

	for i := range req.CapexItems {
		item := &req.CapexItems[i]
		if item.Name == "" {
			continue
		}
		itemType := item.Type
		if itemType == "" {
			itemType = "first_time"
		}
		isRefund := item.IsRefund || itemType == "deposit_refund"
		itemRecogOff := item.RecognitionOffsetMonths.Months()
		itemCashOff := item.CashflowOffsetMonths.Months()
		overrideMonths, hasOverride := overrides[item.Name]
		advance := item.AdvanceProcurement()

		recognized := make([]float64, n)
		cash := make([]float64, n)

		for ci := range req.Volumes {
			combo := &req.Volumes[ci]
			if !combo.IsIncluded() {
				continue
			}
			key := combo.Dimensions.Key()
			rate := rates[item.Name][key]
			comboRecogOff := combo.CapexOffsetMonths.Or(req.CapexOffsetMonths)
			comboCashOff := combo.CapexCashflowOffsetMonths.Or(req.CapexCashflowOffsetMonths)
			effRecogOff := comboRecogOff + itemRecogOff
			effCashOff := comboCashOff + itemCashOff

			basis := NewCostBasis(combo, months, req.FiscalYear, req.BaseExitYear)
			comboSeries := make([]float64, n)
			for midx := range months {
				existingPart := 0.0
				if itemType == "replacement" {
					if hasOverride {
						existingPart = overrideMonths[midx]
					} else {
						existingPart = basis.BaseExit() * rate.ExistingRate
					}
				}
				freshPart := 0.0
				if capexFreshType(itemType) {
					if advance {
						// Look-ahead: inventory is recognized when committed,
						// the cash offset earlier than the service timing.
						freshPart = basis.CumLookAhead(midx, effRecogOff-effCashOff) * rate.FreshRate
					} else {
						freshPart = basis.CumAt(midx, effRecogOff) * rate.FreshRate
					}
				}
				amount := existingPart + freshPart
				if isRefund {
					amount = -amount
				}
				comboSeries[midx] = amount
				recognized[midx] += amount
			}

			if advance {
				for midx := range months {
					cash[midx] += Round2(comboSeries[midx])
				}
			} else {
				for midx := range months {
					target := midx + effCashOff
					if target >= n {
						continue
					}
					cash[target] += Round2(comboSeries[midx])
				}
			}
		}

		total := roundSeries(recognized)
		out.Items = append(out.Items, domain.CapexItemResult{
			Name:                    item.Name,
			Group:                   item.Group,
			Type:                    itemType,
			RecognitionOffsetMonths: itemRecogOff,
			CashflowOffsetMonths:    itemCashOff,
			IsRefund:                isRefund,
			Monthly:                 seriesToMap(months, recognized),
			Total:                   total,
		})

		if gc, ok := out.GroupCash[item.Group]; ok {
			for midx, m := range months {
				gc[m] = Round2(gc[m] + cash[midx])
				out.GroupTotal[item.Group] = Round2(out.GroupTotal[item.Group] + cash[midx])
			}
		}
		for midx := range months {
			out.MonthlyTotals[midx] += cash[midx]
		}
	}

	for midx := range months {
		out.MonthlyTotals[midx] = Round2(out.MonthlyTotals[midx])
		out.Total += out.MonthlyTotals[midx]
	}
	out.Total = Round2(out.Total)
	return out
}
