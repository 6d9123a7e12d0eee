package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDimensionsKeyCanonical(t *testing.T) {
	a := Dimensions{"circle": "North", "customer": "Acme"}
	b := Dimensions{"customer": "Acme", "circle": "North"}

	assert.Equal(t, a.Key(), b.Key(), "Key order must not depend on map iteration")
	assert.Equal(t, "circle=North|customer=Acme", a.Key())
	assert.Equal(t, "", Dimensions{}.Key())
}

func TestParseKeyRoundTrips(t *testing.T) {
	dims := Dimensions{"circle": "North", "customer": "Acme", "type": "New"}
	assert.Equal(t, dims, ParseKey(dims.Key()))
}

func TestIsDecom(t *testing.T) {
	assert.True(t, Dimensions{"type": "Decom"}.IsDecom())
	assert.True(t, Dimensions{"type": " DECOM "}.IsDecom())
	assert.False(t, Dimensions{"type": "New"}.IsDecom())
	assert.False(t, Dimensions{}.IsDecom())
	assert.False(t, Dimensions{"Type": "Decom"}.IsDecom(), "Only the lowercase type dimension counts")
}

func TestLockInMonths(t *testing.T) {
	assert.Equal(t, 3.0, Dimensions{"lock-in": "3"}.LockInMonths())
	assert.Equal(t, 2.0, Dimensions{"Lock_In": "2"}.LockInMonths(), "Separators and case normalize")
	assert.Equal(t, 1.0, Dimensions{"lock in": "0"}.LockInMonths(), "Non-positive defaults to 1")
	assert.Equal(t, 1.0, Dimensions{"lock in": "abc"}.LockInMonths())
	assert.Equal(t, 1.0, Dimensions{}.LockInMonths())
}

func TestPairMultiplier(t *testing.T) {
	assert.Equal(t, 2.0, Dimensions{"pair count": "2"}.PairMultiplier())
	assert.Equal(t, 4.0, Dimensions{"Pairs": "4"}.PairMultiplier())
	assert.Equal(t, 1.0, Dimensions{"pair count": "-1"}.PairMultiplier())
	assert.Equal(t, 1.0, Dimensions{"customer": "Acme"}.PairMultiplier())
}

func TestSiteType(t *testing.T) {
	assert.Equal(t, "RTP", Dimensions{"site type": "RTP"}.SiteType())
	assert.Equal(t, "IBS", Dimensions{"Site_Type": "IBS"}.SiteType())
	assert.Equal(t, "", Dimensions{}.SiteType())
}

func TestOffsetCoercionJSON(t *testing.T) {
	var payload struct {
		Off Offset `json:"off"`
	}

	cases := []struct {
		raw    string
		set    bool
		months int
	}{
		{`{"off": 3}`, true, 3},
		{`{"off": "02"}`, true, 2},
		{`{"off": " 4 "}`, true, 4},
		{`{"off": 2.9}`, true, 2},
		{`{"off": -1}`, false, 0},
		{`{"off": "junk"}`, false, 0},
		{`{"off": null}`, false, 0},
		{`{"off": true}`, false, 0},
		{`{}`, false, 0},
	}
	for _, tc := range cases {
		payload.Off = Offset{}
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &payload), tc.raw)
		assert.Equal(t, tc.set, payload.Off.IsSet(), tc.raw)
		assert.Equal(t, tc.months, payload.Off.Months(), tc.raw)
	}
}

func TestOffsetCoercionYAML(t *testing.T) {
	var payload struct {
		Off Offset `yaml:"off"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("off: '05'"), &payload))
	assert.Equal(t, 5, payload.Off.Months())

	payload.Off = Offset{}
	require.NoError(t, yaml.Unmarshal([]byte("off: [1, 2]"), &payload), "Junk shapes never fail decoding")
	assert.False(t, payload.Off.IsSet())
}

func TestOffsetOrChain(t *testing.T) {
	assert.Equal(t, 0, Offset{}.Or())
	assert.Equal(t, 7, Offset{}.Or(Offset{}, OffsetOf(7), OffsetOf(9)))
	assert.Equal(t, 3, OffsetOf(3).Or(OffsetOf(9)))
	assert.Equal(t, 0, OffsetOf(0).Or(OffsetOf(9)), "Explicit zero is a set value, not a gap")
}

func TestMonthIndex(t *testing.T) {
	assert.Equal(t, 0, MonthIndex("Apr"))
	assert.Equal(t, 11, MonthIndex("Mar"))
	assert.Equal(t, -1, MonthIndex("Smarch"))
	assert.Len(t, FiscalMonths, MonthsPerYear)
}

func TestCalculationRequestDefaults(t *testing.T) {
	req := &CalculationRequest{}
	assert.Equal(t, FiscalMonths, req.MonthSequence())
	assert.True(t, req.FreshIncluded())

	off := false
	req.IncludeFreshVolumes = &off
	assert.False(t, req.FreshIncluded())

	req.Months = []string{"Apr", "May"}
	assert.Equal(t, []string{"Apr", "May"}, req.MonthSequence())
}

func TestVolumeCombinationIsIncluded(t *testing.T) {
	combo := &VolumeCombination{}
	assert.True(t, combo.IsIncluded(), "Included unless explicitly excluded")

	excluded := false
	combo.Included = &excluded
	assert.False(t, combo.IsIncluded())
}

func TestCapexItemAdvanceProcurement(t *testing.T) {
	assert.True(t, (&CapexItem{Group: "First Time Inventory"}).AdvanceProcurement())
	assert.True(t, (&CapexItem{Group: "Replacement Inventory"}).AdvanceProcurement())
	assert.False(t, (&CapexItem{Group: "First Time Capex"}).AdvanceProcurement())
}

func TestDefaultCatalogsAreCopies(t *testing.T) {
	opex := DefaultOpexItems()
	require.NotEmpty(t, opex)
	opex[0].Name = "mutated"
	assert.NotEqual(t, "mutated", DefaultOpexItems()[0].Name, "Callers must not share backing arrays")

	capex := DefaultCapexItems()
	require.NotEmpty(t, capex)
	groups := map[string]bool{}
	for _, g := range CapexGroupHeaders {
		groups[g] = true
	}
	for _, item := range capex {
		assert.True(t, groups[item.Group], "Every catalog item belongs to a known group: %s", item.Group)
	}
}
