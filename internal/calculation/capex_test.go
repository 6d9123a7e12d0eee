package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshbudget/freshbudget/internal/domain"
)

func capexRequest(items []domain.CapexItem, rates []domain.ItemRate) *domain.CalculationRequest {
	dims := domain.Dimensions{"customer": "Acme", "circle": "North", "type": "New"}
	for i := range rates {
		rates[i].Dimensions = dims
	}
	return &domain.CalculationRequest{
		FiscalYear: "FY26",
		Volumes: []domain.VolumeCombination{
			{
				Dimensions: dims,
				Volumes:    map[string]map[string]float64{"FY26": {"Jun": 100}},
			},
		},
		CapexItems: items,
		CapexRates: rates,
	}
}

func TestCapexAdvanceProcurementCashMatchesRecognition(t *testing.T) {
	engine := NewEngine(nil)
	req := capexRequest(
		[]domain.CapexItem{{
			Name:                 "ONT",
			Group:                "First Time Inventory",
			Type:                 "first_time",
			CashflowOffsetMonths: domain.OffsetOf(1),
		}},
		[]domain.ItemRate{{Item: "ONT", FreshRate: 5}},
	)

	result, err := engine.Calculate(req)
	require.NoError(t, err)
	require.Len(t, result.CapexItems, 1)

	item := result.CapexItems[0]
	assert.Equal(t, 500.0, item.Monthly["May"],
		"Inventory recognition looks ahead by the cash offset: June volume committed in May")
	assert.Equal(t, 500.0, item.Monthly["Jun"])
	assert.Equal(t, 500.0, result.CapexGroupCash["First Time Inventory"]["May"],
		"Cash copies recognition in the same month")
	assert.Equal(t, result.CapexGroupCash["First Time Inventory"]["May"], item.Monthly["May"])
}

func TestCapexServiceGroupCashDelayed(t *testing.T) {
	engine := NewEngine(nil)
	req := capexRequest(
		[]domain.CapexItem{{
			Name:                 "Civil Work",
			Group:                "First Time Capex",
			Type:                 "first_time",
			CashflowOffsetMonths: domain.OffsetOf(1),
		}},
		[]domain.ItemRate{{Item: "Civil Work", FreshRate: 5}},
	)

	result, err := engine.Calculate(req)
	require.NoError(t, err)

	item := result.CapexItems[0]
	assert.Equal(t, 500.0, item.Monthly["Jun"], "Service recognition has no look-ahead")
	assert.Equal(t, 0.0, result.CapexGroupCash["First Time Capex"]["Jun"])
	assert.Equal(t, 500.0, result.CapexGroupCash["First Time Capex"]["Jul"],
		"Cash one month after recognition")
	assert.Equal(t, 4500.0, result.CapexGroupTotal["First Time Capex"],
		"March recognition spills past the year and is dropped")
}

func TestCapexReplacementUsesExistingBase(t *testing.T) {
	engine := NewEngine(nil)
	req := capexRequest(
		[]domain.CapexItem{{
			Name:  "Battery Replacement",
			Group: "Replacement Capex",
			Type:  "replacement",
		}},
		[]domain.ItemRate{{Item: "Battery Replacement", ExistingRate: 2, FreshRate: 1}},
	)
	req.BaseExitYear = "FY25"
	req.Volumes[0].ExitVolumes = map[string]float64{"FY25": 50}

	result, err := engine.Calculate(req)
	require.NoError(t, err)

	item := result.CapexItems[0]
	assert.Equal(t, 100.0, item.Monthly["Apr"], "Existing base 50 at rate 2, before any fresh volume")
	assert.Equal(t, 200.0, item.Monthly["Jun"], "Existing 100 plus fresh 100 * 1")
}

func TestCapexReplacementOverrideAndDecomBase(t *testing.T) {
	engine := NewEngine(nil)
	req := capexRequest(
		[]domain.CapexItem{{
			Name:  "Battery Replacement",
			Group: "Replacement Capex",
			Type:  "replacement",
		}},
		[]domain.ItemRate{{Item: "Battery Replacement", ExistingRate: 2}},
	)
	req.BaseExitYear = "FY25"
	req.Volumes[0].ExitVolumes = map[string]float64{"FY25": 50}
	req.Volumes[0].Dimensions["type"] = "Decom"
	req.CapexRates[0].Dimensions = req.Volumes[0].Dimensions

	result, err := engine.Calculate(req)
	require.NoError(t, err)
	assert.Equal(t, -100.0, result.CapexItems[0].Monthly["Apr"],
		"Decommissioning negates the replacement base")

	req.ExistingCapexOverrides = []domain.ItemOverride{
		{Item: "Battery Replacement", FiscalYear: "FY26", Months: map[string]float64{"Apr": 33}},
	}
	result, err = engine.Calculate(req)
	require.NoError(t, err)
	assert.Equal(t, 33.0, result.CapexItems[0].Monthly["Apr"], "Override replaces the computed base part")
}

func TestCapexRefundNegatesAmount(t *testing.T) {
	engine := NewEngine(nil)
	req := capexRequest(
		[]domain.CapexItem{{
			Name:     "Deposit Refund",
			Group:    "Deposit Refund",
			Type:     "first_time",
			IsRefund: true,
		}},
		[]domain.ItemRate{{Item: "Deposit Refund", FreshRate: 5}},
	)

	result, err := engine.Calculate(req)
	require.NoError(t, err)
	assert.Equal(t, -500.0, result.CapexItems[0].Monthly["Jun"], "Refund flips the sign")
}

func TestCapexDepositTypeRecognizesNothingFromVolume(t *testing.T) {
	engine := NewEngine(nil)
	req := capexRequest(
		[]domain.CapexItem{{
			Name:  "ROW Deposit",
			Group: "ROW Deposit",
			Type:  "deposit",
		}},
		[]domain.ItemRate{{Item: "ROW Deposit", FreshRate: 5, ExistingRate: 5}},
	)

	result, err := engine.Calculate(req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.CapexItems[0].Total, "Deposit items carry no volume-driven component")
}

func TestCapexIgnoresFreshGate(t *testing.T) {
	engine := NewEngine(nil)
	off := false
	req := capexRequest(
		[]domain.CapexItem{{
			Name:  "ONT",
			Group: "First Time Inventory",
			Type:  "first_time",
		}},
		[]domain.ItemRate{{Item: "ONT", FreshRate: 5}},
	)
	req.IncludeFreshVolumes = &off

	result, err := engine.Calculate(req)
	require.NoError(t, err)
	assert.Equal(t, 500.0, result.CapexItems[0].Monthly["Jun"],
		"Committed capital spend is reported regardless of the revenue gate")
}

func TestCapexNetCashflowAndPeakFunding(t *testing.T) {
	engine := NewEngine(nil)
	req := capexRequest(
		[]domain.CapexItem{{
			Name:  "Civil Work",
			Group: "First Time Capex",
			Type:  "first_time",
		}},
		[]domain.ItemRate{{Item: "Civil Work", FreshRate: 50000}},
	)
	req.Volumes[0].Volumes["FY26"] = map[string]float64{"Apr": 100}
	req.Rates = []domain.RateEntry{
		{Dimensions: req.Volumes[0].Dimensions, RecurringRate: 20000},
	}

	result, err := engine.Calculate(req)
	require.NoError(t, err)

	// Inflow 2M/month; CAPEX outflow 5M/month. Net -3 every month, cumulative
	// marches down to -36 which is also the funding peak.
	assert.Equal(t, -3.0, result.MonthlyNetCashflow["Apr"])
	assert.Equal(t, -36.0, result.MonthlyCumNetCashflow["Mar"])
	assert.Equal(t, -36.0, result.PeakFunding)
	assert.Equal(t, -36.0, result.TotalNetCashflow)
}
