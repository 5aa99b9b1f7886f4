// Package quote prices deck structures into line-item quotes using a
// reloadable price book.
package quote

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// PriceBook holds every rate the calculator uses. Zero-value maps fall
// back to the built-in Seattle defaults via DefaultPriceBook.
type PriceBook struct {
	// MaterialPrices is keyed by SKU, priced per linear foot unless the
	// key says otherwise (bags, each, lb, box).
	MaterialPrices map[string]float64 `yaml:"materialPrices"`

	// LaborRates is keyed by operation.
	LaborRates map[string]float64 `yaml:"laborRates"`

	// PermitFees holds the SDCI fee schedule components.
	PermitFees map[string]float64 `yaml:"permitFees"`

	// WasteFactor is the multiplier applied to all material costs.
	WasteFactor float64 `yaml:"wasteFactor"`

	// Margin is gross margin as a fraction of the final price.
	Margin float64 `yaml:"margin"`
}

// DefaultPriceBook returns the built-in rates, current as of the last
// supplier review.
func DefaultPriceBook() *PriceBook {
	return &PriceBook{
		MaterialPrices: map[string]float64{
			// Pressure treated framing lumber, per LF
			"2x6_pt_lf":  1.25,
			"2x8_pt_lf":  1.55,
			"2x10_pt_lf": 1.85,
			"2x12_pt_lf": 2.40,
			"4x4_pt_lf":  2.10,
			"4x6_pt_lf":  3.20,
			"6x6_pt_lf":  4.80,

			// Decking, per LF
			"trex_transcend_lf":  4.50,
			"trex_select_lf":     3.80,
			"timbertech_azek_lf": 5.20,
			"timbertech_pro_lf":  4.00,
			"cedar_decking_lf":   3.40,
			"pt_decking_lf":      1.80,

			// Hardware, each
			"concrete_60lb_bag":       6.50,
			"joist_hanger":            3.50,
			"joist_hanger_lus210":     4.25,
			"post_base_pb44":          18.00,
			"post_base_pb66":          28.00,
			"post_cap_bc4":            12.00,
			"post_cap_bc6":            18.00,
			"ledger_bolt_half_inch":   1.20,
			"lag_screw_half_inch":     0.85,
			"carriage_bolt_half_inch": 1.40,
			"deck_screws_lb":          8.50,
			"structural_screws_box":   45.00,

			// Railing, per LF
			"cable_rail_lf":      45.00,
			"glass_rail_lf":      120.00,
			"aluminum_rail_lf":   55.00,
			"wood_rail_cedar_lf": 25.00,
			"wood_rail_pt_lf":    18.00,

			// Stairs
			"stair_stringer_each":        35.00,
			"stair_tread_composite_each": 28.00,
			"stair_tread_cedar_each":     18.00,
		},
		LaborRates: map[string]float64{
			"footing_each":           175.00,
			"framing_sqft":           14.00,
			"decking_composite_sqft": 9.00,
			"decking_wood_sqft":      7.00,
			"railing_lf":             35.00,
			"stairs_tread_each":      225.00,
			"permit_filing":          250.00,
			"cleanup_sqft":           0.50,
		},
		PermitFees: map[string]float64{
			"sdci_base":               197.00,
			"sdci_per_1000_valuation": 14.50,
			"plan_review_multiplier":  0.65,
		},
		WasteFactor: 1.10,
		Margin:      0.25,
	}
}

// LoadPriceBook reads a YAML file and merges it over the defaults, so an
// override file only needs the rates that changed.
func LoadPriceBook(path string) (*PriceBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price book: %w", err)
	}

	var override PriceBook
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse price book %s: %w", path, err)
	}

	pb := DefaultPriceBook()
	for k, v := range override.MaterialPrices {
		pb.MaterialPrices[k] = v
	}
	for k, v := range override.LaborRates {
		pb.LaborRates[k] = v
	}
	for k, v := range override.PermitFees {
		pb.PermitFees[k] = v
	}
	if override.WasteFactor > 0 {
		pb.WasteFactor = override.WasteFactor
	}
	if override.Margin > 0 {
		if override.Margin >= 1 {
			return nil, fmt.Errorf("margin must be below 1.0, got %.2f", override.Margin)
		}
		pb.Margin = override.Margin
	}
	return pb, nil
}

// Book is a concurrency-safe holder for the active price book. The HTTP
// server swaps in a fresh book when the override file changes on disk.
type Book struct {
	mu sync.RWMutex
	pb *PriceBook
}

// NewBook returns a holder seeded with pb, or the defaults when pb is nil.
func NewBook(pb *PriceBook) *Book {
	if pb == nil {
		pb = DefaultPriceBook()
	}
	return &Book{pb: pb}
}

// Current returns the active price book.
func (b *Book) Current() *PriceBook {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pb
}

// Swap replaces the active price book.
func (b *Book) Swap(pb *PriceBook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pb = pb
}
