package quote

import (
	"fmt"

	"github.com/kolmo-labs/buildledger/internal/deck"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

// lumberPrice returns the per-LF price for a nominal size, with a generic
// fallback for sizes not in the book.
func (pb *PriceBook) lumberPrice(nominal string) float64 {
	if p, ok := pb.MaterialPrices[nominal+"_pt_lf"]; ok {
		return p
	}
	return 2.00
}

func (pb *PriceBook) deckingPrice(d deck.DeckingType) float64 {
	switch d {
	case deck.DeckingTrex:
		return pb.MaterialPrices["trex_transcend_lf"]
	case deck.DeckingTimberTech:
		return pb.MaterialPrices["timbertech_azek_lf"]
	case deck.DeckingCedar:
		return pb.MaterialPrices["cedar_decking_lf"]
	case deck.DeckingPressureTreated:
		return pb.MaterialPrices["pt_decking_lf"]
	default:
		return pb.MaterialPrices["trex_transcend_lf"]
	}
}

func (pb *PriceBook) railingPrice(r deck.RailingType) float64 {
	switch r {
	case deck.RailingCable:
		return pb.MaterialPrices["cable_rail_lf"]
	case deck.RailingGlass:
		return pb.MaterialPrices["glass_rail_lf"]
	case deck.RailingAluminum:
		return pb.MaterialPrices["aluminum_rail_lf"]
	case deck.RailingWood:
		return pb.MaterialPrices["wood_rail_cedar_lf"]
	default:
		return 0
	}
}

// Calculate prices a structural model into a line-item quote.
func Calculate(structure *deck.Structure, pb *PriceBook) *core.Quote {
	q := &core.Quote{}
	site := structure.Input

	width := site.WidthFt
	depth := site.DepthFt
	sqft := width * depth
	q.DeckSqft = sqft

	waste := pb.WasteFactor

	// Footings. Roughly four 60lb bags per pier at typical depths.
	footingCount := len(structure.Footings)
	const bagsPerFooting = 4
	footingMaterials := float64(footingCount*bagsPerFooting)*pb.MaterialPrices["concrete_60lb_bag"] +
		float64(footingCount)*pb.MaterialPrices["post_base_pb44"]
	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category: "Footings",
		Description: fmt.Sprintf("%d concrete pier footings, %d\" dia x %d\" deep",
			footingCount, structure.FootingDiameterIn, site.FrostDepthIn),
		Quantity:     float64(footingCount),
		Unit:         "each",
		MaterialCost: footingMaterials * waste,
		LaborCost:    float64(footingCount) * pb.LaborRates["footing_each"],
	})

	// Posts. Labor is folded into the framing line.
	var postLf float64
	for _, p := range structure.Posts {
		postLf += p.HeightFt
	}
	postMaterials := postLf*pb.lumberPrice(structure.PostSize) +
		float64(len(structure.Posts))*pb.MaterialPrices["post_cap_bc4"]
	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category:     "Posts",
		Description:  fmt.Sprintf("%d %s posts, %.0f LF total", len(structure.Posts), structure.PostSize, postLf),
		Quantity:     float64(len(structure.Posts)),
		Unit:         "each",
		MaterialCost: postMaterials * waste,
	})

	// Beams.
	var beamLf float64
	for _, b := range structure.Beams {
		beamLf += (b.XEndFt - b.XStartFt) * float64(b.Ply)
	}
	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category:     "Beams",
		Description:  fmt.Sprintf("%d-%s beam, %.0f LF", structure.BeamPly, structure.BeamSize, beamLf),
		Quantity:     beamLf,
		Unit:         "LF",
		MaterialCost: beamLf * pb.lumberPrice(structure.BeamSize) * waste,
	})

	// Joists, with a hanger on each end.
	var joistLf float64
	for _, j := range structure.Joists {
		joistLf += j.YEndFt - j.YStartFt
	}
	joistPrice := pb.lumberPrice(structure.JoistSize)
	joistMaterials := joistLf*joistPrice +
		float64(len(structure.Joists)*2)*pb.MaterialPrices["joist_hanger"]
	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category: "Joists",
		Description: fmt.Sprintf("%d %s joists at %d\" O.C., %.0f LF",
			len(structure.Joists), structure.JoistSize, structure.JoistSpacingIn, joistLf),
		Quantity:     joistLf,
		Unit:         "LF",
		MaterialCost: joistMaterials * waste,
	})

	// Ledger and rim joists. Ledger bolts go in staggered at 16" O.C.
	var ledgerLf float64
	if structure.Ledger != nil {
		ledgerLf = width
	}
	rimLf := depth*2 + width
	framingMiscLf := ledgerLf + rimLf
	miscMaterials := framingMiscLf*joistPrice +
		(ledgerLf/16)*12*pb.MaterialPrices["ledger_bolt_half_inch"]
	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category:     "Ledger & Rim",
		Description:  fmt.Sprintf("Ledger board and rim joists, %.0f LF", framingMiscLf),
		Quantity:     framingMiscLf,
		Unit:         "LF",
		MaterialCost: miscMaterials * waste,
	})

	// Framing labor covers posts, beams, joists, ledger, and rim.
	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category:    "Framing Labor",
		Description: fmt.Sprintf("Complete framing installation, %.0f SF", sqft),
		Quantity:    sqft,
		Unit:        "SF",
		LaborCost:   sqft * pb.LaborRates["framing_sqft"],
	})

	// Decking on 5.5" wide boards, about a pound of screws per 4 SF.
	deckingLf := sqft / (5.5 / 12)
	deckingMaterials := deckingLf*pb.deckingPrice(site.DeckingType) +
		(sqft/4)*pb.MaterialPrices["deck_screws_lb"]
	deckingRate := pb.LaborRates["decking_wood_sqft"]
	if site.DeckingType.IsComposite() {
		deckingRate = pb.LaborRates["decking_composite_sqft"]
	}
	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category:     "Decking",
		Description:  fmt.Sprintf("%s decking, %.0f SF", site.DeckingType, sqft),
		Quantity:     sqft,
		Unit:         "SF",
		MaterialCost: deckingMaterials * waste,
		LaborCost:    sqft * deckingRate,
	})

	if site.RailingType != deck.RailingNone && site.RailingLf > 0 {
		q.LineItems = append(q.LineItems, core.QuoteLineItem{
			Category:     "Railing",
			Description:  fmt.Sprintf("%s railing, %.0f LF", site.RailingType, site.RailingLf),
			Quantity:     site.RailingLf,
			Unit:         "LF",
			MaterialCost: site.RailingLf * pb.railingPrice(site.RailingType) * waste,
			LaborCost:    site.RailingLf * pb.LaborRates["railing_lf"],
		})
	}

	if site.StairCount > 0 {
		// Three stringers, length-adjusted, plus composite treads.
		stringerMaterials := 3 * pb.MaterialPrices["stair_stringer_each"] * 1.5
		treadMaterials := float64(site.StairCount) * pb.MaterialPrices["stair_tread_composite_each"]
		q.LineItems = append(q.LineItems, core.QuoteLineItem{
			Category:     "Stairs",
			Description:  fmt.Sprintf("%d-tread staircase with 3 stringers", site.StairCount),
			Quantity:     float64(site.StairCount),
			Unit:         "treads",
			MaterialCost: (stringerMaterials + treadMaterials) * waste,
			LaborCost:    float64(site.StairCount) * pb.LaborRates["stairs_tread_each"],
		})
	}

	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category:    "Cleanup",
		Description: "Site cleanup and debris removal",
		Quantity:    sqft,
		Unit:        "SF",
		LaborCost:   sqft * pb.LaborRates["cleanup_sqft"],
	})

	// SDCI permit fees scale with project valuation before margin.
	var materialsSubtotal, laborSubtotal float64
	for _, li := range q.LineItems {
		materialsSubtotal += li.MaterialCost
		laborSubtotal += li.LaborCost
	}
	projectValue := materialsSubtotal + laborSubtotal

	permitFee := pb.PermitFees["sdci_base"] + (projectValue/1000)*pb.PermitFees["sdci_per_1000_valuation"]
	planReview := permitFee * pb.PermitFees["plan_review_multiplier"]
	q.PermitFees = permitFee + planReview + pb.LaborRates["permit_filing"]

	q.LineItems = append(q.LineItems, core.QuoteLineItem{
		Category:     "Permits",
		Description:  "SDCI permit fees + permit preparation",
		Quantity:     1,
		Unit:         "LS",
		MaterialCost: permitFee + planReview,
		LaborCost:    pb.LaborRates["permit_filing"],
	})

	q.MaterialsSubtotal = materialsSubtotal + permitFee + planReview
	q.LaborSubtotal = laborSubtotal + pb.LaborRates["permit_filing"]
	q.Subtotal = q.MaterialsSubtotal + q.LaborSubtotal

	// Margin as a share of price: margin = subtotal * M / (1 - M).
	q.MarginAmount = q.Subtotal * pb.Margin / (1 - pb.Margin)
	q.Total = q.Subtotal + q.MarginAmount
	if sqft > 0 {
		q.PricePerSqft = q.Total / sqft
	}

	return q
}
