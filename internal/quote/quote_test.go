package quote

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolmo-labs/buildledger/internal/deck"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

func testStructure(t *testing.T, in deck.SiteInput) *deck.Structure {
	t.Helper()
	s := deck.GenerateStructure(in)
	require.True(t, s.Compliant, "structure errors: %v", s.Errors)
	return s
}

func categories(items []core.QuoteLineItem) []string {
	out := make([]string, len(items))
	for i, li := range items {
		out[i] = li.Category
	}
	return out
}

func TestDefaultPriceBook(t *testing.T) {
	pb := DefaultPriceBook()

	assert.Equal(t, 1.10, pb.WasteFactor)
	assert.Equal(t, 0.25, pb.Margin)
	assert.Equal(t, 1.85, pb.MaterialPrices["2x10_pt_lf"])
	assert.Equal(t, 175.00, pb.LaborRates["footing_each"])
	assert.Equal(t, 197.00, pb.PermitFees["sdci_base"])
}

func TestLoadPriceBook_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricebook.yaml")
	override := `
materialPrices:
  trex_transcend_lf: 5.25
laborRates:
  framing_sqft: 16.00
margin: 0.30
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	pb, err := LoadPriceBook(path)
	require.NoError(t, err)

	assert.Equal(t, 5.25, pb.MaterialPrices["trex_transcend_lf"])
	assert.Equal(t, 16.00, pb.LaborRates["framing_sqft"])
	assert.Equal(t, 0.30, pb.Margin)

	// Untouched rates keep their defaults.
	assert.Equal(t, 1.25, pb.MaterialPrices["2x6_pt_lf"])
	assert.Equal(t, 1.10, pb.WasteFactor)
}

func TestLoadPriceBook_RejectsMarginAtOrAboveOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("margin: 1.0\n"), 0o644))

	_, err := LoadPriceBook(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "margin")
}

func TestLoadPriceBook_MissingFile(t *testing.T) {
	_, err := LoadPriceBook(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCalculate_BaseDeck(t *testing.T) {
	s := testStructure(t, deck.SiteInput{WidthFt: 12, DepthFt: 10, HeightFt: 3})
	pb := DefaultPriceBook()

	q := Calculate(s, pb)

	assert.Equal(t, 120.0, q.DeckSqft)
	assert.Equal(t,
		[]string{"Footings", "Posts", "Beams", "Joists", "Ledger & Rim", "Framing Labor", "Decking", "Cleanup", "Permits"},
		categories(q.LineItems))

	// Line items reconcile with the subtotals.
	var materials, labor float64
	for _, li := range q.LineItems {
		materials += li.MaterialCost
		labor += li.LaborCost
	}
	assert.InDelta(t, materials, q.MaterialsSubtotal, 0.01)
	assert.InDelta(t, labor, q.LaborSubtotal, 0.01)
	assert.InDelta(t, q.MaterialsSubtotal+q.LaborSubtotal, q.Subtotal, 0.01)

	// 25% gross margin means the markup is a third of cost.
	assert.InDelta(t, q.Subtotal/3, q.MarginAmount, 0.01)
	assert.InDelta(t, q.Subtotal+q.MarginAmount, q.Total, 0.01)
	assert.InDelta(t, q.Total/120.0, q.PricePerSqft, 0.0001)

	assert.Greater(t, q.PermitFees, 447.0, "base + filing alone exceed this")
}

func TestCalculate_RailingAndStairs(t *testing.T) {
	s := testStructure(t, deck.SiteInput{
		WidthFt: 12, DepthFt: 10, HeightFt: 3,
		RailingType: deck.RailingCable, RailingLf: 30,
		StairCount: 4,
	})
	q := Calculate(s, DefaultPriceBook())

	cats := categories(q.LineItems)
	assert.Contains(t, cats, "Railing")
	assert.Contains(t, cats, "Stairs")

	for _, li := range q.LineItems {
		switch li.Category {
		case "Railing":
			assert.Equal(t, 30.0, li.Quantity)
			assert.InDelta(t, 30*45.00*1.10, li.MaterialCost, 0.01)
			assert.InDelta(t, 30*35.00, li.LaborCost, 0.01)
		case "Stairs":
			assert.InDelta(t, 4*225.00, li.LaborCost, 0.01)
		}
	}
}

func TestCalculate_CompositeVsWoodLabor(t *testing.T) {
	in := deck.SiteInput{WidthFt: 12, DepthFt: 10, HeightFt: 3}

	in.DeckingType = deck.DeckingTrex
	composite := Calculate(testStructure(t, in), DefaultPriceBook())

	in.DeckingType = deck.DeckingCedar
	wood := Calculate(testStructure(t, in), DefaultPriceBook())

	var compositeLabor, woodLabor float64
	for _, li := range composite.LineItems {
		if li.Category == "Decking" {
			compositeLabor = li.LaborCost
		}
	}
	for _, li := range wood.LineItems {
		if li.Category == "Decking" {
			woodLabor = li.LaborCost
		}
	}
	assert.InDelta(t, 120*9.00, compositeLabor, 0.01)
	assert.InDelta(t, 120*7.00, woodLabor, 0.01)
}

func TestBook_Swap(t *testing.T) {
	b := NewBook(nil)
	assert.Equal(t, 0.25, b.Current().Margin)

	pb := DefaultPriceBook()
	pb.Margin = 0.30
	b.Swap(pb)
	assert.Equal(t, 0.30, b.Current().Margin)
}
