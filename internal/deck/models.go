// Package deck converts site measurements into a code-compliant deck
// structure following the Seattle Tip 312 prescriptive path. The output
// structural model is the input to quote pricing.
package deck

// DeckingType identifies the decking surface material.
type DeckingType string

// Decking material constants.
const (
	DeckingTrex            DeckingType = "trex"
	DeckingTimberTech      DeckingType = "timbertech"
	DeckingCedar           DeckingType = "cedar"
	DeckingPressureTreated DeckingType = "pt_wood"
)

// IsComposite reports whether the decking is a composite product, which
// carries a higher install labor rate than wood.
func (d DeckingType) IsComposite() bool {
	return d == DeckingTrex || d == DeckingTimberTech
}

// RailingType identifies the railing system, if any.
type RailingType string

// Railing constants.
const (
	RailingNone     RailingType = "none"
	RailingWood     RailingType = "wood"
	RailingCable    RailingType = "cable"
	RailingGlass    RailingType = "glass"
	RailingAluminum RailingType = "aluminum"
)

// LedgerAttachment describes how the deck connects to the house.
type LedgerAttachment string

// Ledger attachment constants.
const (
	// AttachmentDirect bolts the ledger to the rim joist.
	AttachmentDirect LedgerAttachment = "direct"
	// AttachmentStandoff uses spacers for drainage.
	AttachmentStandoff LedgerAttachment = "standoff"
	// AttachmentFreestanding has no ledger; beams on both ends.
	AttachmentFreestanding LedgerAttachment = "freestanding"
)

// LumberSpec is a lumber size with its actual (not nominal) dimensions.
type LumberSpec struct {
	Nominal  string  `json:"nominal"`
	WidthIn  float64 `json:"widthIn"`
	HeightIn float64 `json:"heightIn"`
}

// HeightFt returns the actual height in feet.
func (l LumberSpec) HeightFt() float64 {
	return l.HeightIn / 12
}

// WidthFt returns the actual width in feet.
func (l LumberSpec) WidthFt() float64 {
	return l.WidthIn / 12
}

// lumberSpecs maps nominal sizes to actual dimensions.
var lumberSpecs = map[string]LumberSpec{
	"2x6":  {"2x6", 1.5, 5.5},
	"2x8":  {"2x8", 1.5, 7.25},
	"2x10": {"2x10", 1.5, 9.25},
	"2x12": {"2x12", 1.5, 11.25},
	"4x4":  {"4x4", 3.5, 3.5},
	"4x6":  {"4x6", 3.5, 5.5},
	"4x8":  {"4x8", 3.5, 7.25},
	"4x10": {"4x10", 3.5, 9.25},
	"4x12": {"4x12", 3.5, 11.25},
	"6x6":  {"6x6", 5.5, 5.5},
}

// SiteInput holds the real measurements and selections from a site visit.
type SiteInput struct {
	// Dimensions
	WidthFt  float64 `json:"widthFt"`  // parallel to house
	DepthFt  float64 `json:"depthFt"`  // perpendicular to house
	HeightFt float64 `json:"heightFt"` // grade to top of decking

	// Site conditions
	LedgerAttachment LedgerAttachment `json:"ledgerAttachment"`
	SoilBearingPsf   int              `json:"soilBearingPsf"`
	FrostDepthIn     int              `json:"frostDepthIn"`
	SlopePercent     float64          `json:"slopePercent"`

	// Customer selections
	DeckingType DeckingType `json:"deckingType"`
	RailingType RailingType `json:"railingType"`
	RailingLf   float64     `json:"railingLf"`
	StairCount  int         `json:"stairCount"`

	// Project info
	CustomerName string `json:"customerName"`
	SiteAddress  string `json:"siteAddress"`
}

// ApplyDefaults fills unset fields with the conservative Seattle defaults.
func (in *SiteInput) ApplyDefaults() {
	if in.LedgerAttachment == "" {
		in.LedgerAttachment = AttachmentDirect
	}
	if in.SoilBearingPsf == 0 {
		in.SoilBearingPsf = 1500
	}
	if in.FrostDepthIn == 0 {
		in.FrostDepthIn = 18
	}
	if in.DeckingType == "" {
		in.DeckingType = DeckingTrex
	}
	if in.RailingType == "" {
		in.RailingType = RailingNone
	}
}

// Footing is a concrete pier footing.
type Footing struct {
	XFt        float64 `json:"xFt"`
	YFt        float64 `json:"yFt"`
	DiameterIn int     `json:"diameterIn"`
	DepthIn    int     `json:"depthIn"`
}

// Post is a vertical support post.
type Post struct {
	XFt      float64    `json:"xFt"`
	YFt      float64    `json:"yFt"`
	HeightFt float64    `json:"heightFt"`
	Lumber   LumberSpec `json:"lumber"`
}

// Beam is a horizontal beam supporting joists.
type Beam struct {
	XStartFt float64    `json:"xStartFt"`
	XEndFt   float64    `json:"xEndFt"`
	YFt      float64    `json:"yFt"`
	ZFt      float64    `json:"zFt"` // bottom of beam elevation
	Lumber   LumberSpec `json:"lumber"`
	Ply      int        `json:"ply"` // 1 solid, 2 doubled
}

// Joist is a floor joist.
type Joist struct {
	XFt      float64    `json:"xFt"`
	YStartFt float64    `json:"yStartFt"`
	YEndFt   float64    `json:"yEndFt"`
	ZFt      float64    `json:"zFt"` // bottom of joist elevation
	Lumber   LumberSpec `json:"lumber"`
}

// LedgerBoard is the board attached to the house wall.
type LedgerBoard struct {
	XStartFt   float64          `json:"xStartFt"`
	XEndFt     float64          `json:"xEndFt"`
	YFt        float64          `json:"yFt"`
	ZFt        float64          `json:"zFt"`
	Lumber     LumberSpec       `json:"lumber"`
	Attachment LedgerAttachment `json:"attachment"`
}

// RimJoist closes the joist field on its left, right, or outer edge.
type RimJoist struct {
	Location string     `json:"location"`
	XFt      float64    `json:"xFt,omitempty"`
	XStartFt float64    `json:"xStartFt,omitempty"`
	XEndFt   float64    `json:"xEndFt,omitempty"`
	YStartFt float64    `json:"yStartFt,omitempty"`
	YEndFt   float64    `json:"yEndFt,omitempty"`
	YFt      float64    `json:"yFt,omitempty"`
	Lumber   LumberSpec `json:"lumber"`
}

// Structure is the complete structural model produced by the engine.
type Structure struct {
	Input SiteInput `json:"input"`

	Footings  []Footing    `json:"footings"`
	Posts     []Post       `json:"posts"`
	Beams     []Beam       `json:"beams"`
	Joists    []Joist      `json:"joists"`
	Ledger    *LedgerBoard `json:"ledger,omitempty"`
	RimJoists []RimJoist   `json:"rimJoists"`

	// Selected sizes for quick reference
	JoistSize         string `json:"joistSize"`
	JoistSpacingIn    int    `json:"joistSpacingIn"`
	BeamSize          string `json:"beamSize"`
	BeamPly           int    `json:"beamPly"`
	PostSize          string `json:"postSize"`
	FootingDiameterIn int    `json:"footingDiameterIn"`

	// Compliance status
	Compliant bool     `json:"compliant"`
	Notes     []string `json:"notes"`
	Errors    []string `json:"errors"`
}
