package calculation

import (
	"strings"

	"github.com/freshbudget/freshbudget/internal/domain"
)

// opexOutcome is the recognized OPEX block plus the pre-shift per-item,
// per-combination series the cash stage turns into outflows.
type opexOutcome struct {
	Items         []domain.OpexItemResult
	MonthlyTotals []float64
	Total         float64

	// itemFlows preserves per-combination granularity so the cash stage can
	// combine each combination's cash offset with the item's own.
	ItemFlows []opexItemFlow

	// Zero-margin billthrough mirror lines.
	PassthroughRevenue []float64
	PassthroughExpense []float64
	PassthroughFlows   []passthroughFlow
}

// opexItemFlow is one item's pre-shift monthly P&L per combination key.
type opexItemFlow struct {
	Name       string
	CashOffset int
	// PerCombo maps combination key -> unrounded monthly series.
	PerCombo map[string][]float64
}

// passthroughFlow is one mirrored item's pre-shift series with its
// independent inflow and outflow offsets.
type passthroughFlow struct {
	Name          string
	InflowOffset  int
	OutflowOffset int
	PerCombo      map[string][]float64
}

func itemRateLookup(entries []domain.ItemRate) map[string]map[string]domain.ItemRate {
	out := make(map[string]map[string]domain.ItemRate)
	for _, e := range entries {
		if e.Item == "" {
			continue
		}
		byCombo := out[e.Item]
		if byCombo == nil {
			byCombo = make(map[string]domain.ItemRate)
			out[e.Item] = byCombo
		}
		byCombo[e.Dimensions.Key()] = e
	}
	return out
}

func itemOverrideLookup(overrides []domain.ItemOverride, months []string) map[string][]float64 {
	out := make(map[string][]float64)
	for _, ov := range overrides {
		if ov.Item == "" || len(ov.Months) == 0 {
			continue
		}
		out[ov.Item] = mapToSeries(months, ov.Months)
	}
	return out
}

// passthroughApplies reports whether a mirrored item covers the combination:
// an empty site-type list covers everything, otherwise the combination's
// site-type dimension must match one entry, case-insensitively.
func passthroughApplies(item *domain.OpexItem, dims domain.Dimensions) bool {
	if len(item.PassthroughSiteTypes) == 0 {
		return true
	}
	site := dims.SiteType()
	for _, st := range item.PassthroughSiteTypes {
		if strings.EqualFold(strings.TrimSpace(st), strings.TrimSpace(site)) {
			return true
		}
	}
	return false
}

// calculateOpex recognizes every OPEX item across all included combinations.
// Items flagged passthrough under a policy that honours it are diverted into
// the mirror lines instead of the normal bucket.
func calculateOpex(req *domain.CalculationRequest, policy Policy, months []string) *opexOutcome {
	n := len(months)
	out := &opexOutcome{
		MonthlyTotals:      make([]float64, n),
		PassthroughRevenue: make([]float64, n),
		PassthroughExpense: make([]float64, n),
	}
	rates := itemRateLookup(req.OpexRates)
	overrides := itemOverrideLookup(req.ExistingOpexOverrides, months)
	includeFresh := req.FreshIncluded()

	for i := range req.OpexItems {
		item := &req.OpexItems[i]
		if item.Name == "" {
			continue
		}
		mirror := item.Passthrough && policy.AllowsPassthrough()
		recogOff := item.RecognitionOffsetMonths.Months()
		cashOff := item.CashflowOffsetMonths.Months()

		_, hasOverride := overrides[item.Name]
		itemMonthly := make([]float64, n)
		if hasOverride && !mirror {
			copy(itemMonthly, overrides[item.Name])
		}
		perCombo := make(map[string][]float64)

		for ci := range req.Volumes {
			combo := &req.Volumes[ci]
			if !combo.IsIncluded() {
				continue
			}
			if mirror && !passthroughApplies(item, combo.Dimensions) {
				continue
			}
			key := combo.Dimensions.Key()
			rate := rates[item.Name][key]
			basis := NewCostBasis(combo, months, req.FiscalYear, req.BaseExitYear)

			series := make([]float64, n)
			for idx := range months {
				existingPart := 0.0
				if !hasOverride || mirror {
					existingPart = basis.BaseExit() * rate.ExistingRate
				}
				freshPart := 0.0
				if includeFresh {
					freshPart = basis.CumAt(idx, recogOff) * rate.FreshRate
				}
				v := existingPart + freshPart
				series[idx] = v
				itemMonthly[idx] += v
			}
			perCombo[key] = series
		}

		if mirror {
			for idx := range months {
				v := Round2(itemMonthly[idx])
				out.PassthroughRevenue[idx] = Round2(out.PassthroughRevenue[idx] + v)
				out.PassthroughExpense[idx] = Round2(out.PassthroughExpense[idx] + v)
			}
			out.PassthroughFlows = append(out.PassthroughFlows, passthroughFlow{
				Name:          item.Name,
				InflowOffset:  item.InflowOffsetMonths.Months(),
				OutflowOffset: cashOff,
				PerCombo:      perCombo,
			})
			continue
		}

		total := roundSeries(itemMonthly)
		for idx := range months {
			out.MonthlyTotals[idx] += itemMonthly[idx]
		}
		out.Total += total
		out.Items = append(out.Items, domain.OpexItemResult{
			Name:                    item.Name,
			RecognitionOffsetMonths: recogOff,
			CashflowOffsetMonths:    cashOff,
			OverrideApplied:         hasOverride,
			Passthrough:             false,
			Monthly:                 seriesToMap(months, itemMonthly),
			Total:                   total,
		})
		out.ItemFlows = append(out.ItemFlows, opexItemFlow{
			Name:       item.Name,
			CashOffset: cashOff,
			PerCombo:   perCombo,
		})
	}

	for idx := range months {
		out.MonthlyTotals[idx] = Round2(out.MonthlyTotals[idx])
	}
	out.Total = Round2(out.Total)
	return out
}
