package deck

import (
	"fmt"
	"math"
)

// Span tables from Seattle Tip 312 prescriptive deck requirements.
// https://www.seattle.gov/sdci/codes/common-code-questions/decks

type joistKey struct {
	size      string
	spacingIn int
}

// joistSpans maps (nominal size, spacing) to the maximum joist span in feet.
var joistSpans = map[joistKey]float64{
	{"2x6", 12}: 10.5, {"2x6", 16}: 9.5, {"2x6", 24}: 8.0,
	{"2x8", 12}: 13.83, {"2x8", 16}: 12.5, {"2x8", 24}: 10.5,
	{"2x10", 12}: 17.67, {"2x10", 16}: 16.0, {"2x10", 24}: 13.5,
	{"2x12", 12}: 21.5, {"2x12", 16}: 19.5, {"2x12", 24}: 16.5,
}

type beamKey struct {
	config   string // e.g. "2-2x10"
	joistCat string // joist span rounded up to "6", "8", "10", "12"
}

// beamSpans maps (beam configuration, joist span category) to the maximum
// beam span between posts in feet.
var beamSpans = map[beamKey]float64{
	{"2-2x6", "6"}: 5.5, {"2-2x6", "8"}: 4.5, {"2-2x6", "10"}: 4.0, {"2-2x6", "12"}: 3.5,
	{"2-2x8", "6"}: 7.0, {"2-2x8", "8"}: 6.0, {"2-2x8", "10"}: 5.5, {"2-2x8", "12"}: 5.0,
	{"2-2x10", "6"}: 9.0, {"2-2x10", "8"}: 8.0, {"2-2x10", "10"}: 7.0, {"2-2x10", "12"}: 6.5,
	{"2-2x12", "6"}: 11.0, {"2-2x12", "8"}: 9.5, {"2-2x12", "10"}: 8.5, {"2-2x12", "12"}: 7.5,
	{"4x6", "6"}: 5.5, {"4x6", "8"}: 4.5, {"4x6", "10"}: 4.0, {"4x6", "12"}: 3.5,
	{"4x8", "6"}: 7.0, {"4x8", "8"}: 6.0, {"4x8", "10"}: 5.5, {"4x8", "12"}: 5.0,
	{"4x10", "6"}: 9.0, {"4x10", "8"}: 8.0, {"4x10", "10"}: 7.0, {"4x10", "12"}: 6.5,
	{"4x12", "6"}: 11.0, {"4x12", "8"}: 9.5, {"4x12", "10"}: 8.5, {"4x12", "12"}: 7.5,
}

// postHeightLimits maps post size to its maximum unbraced height in feet.
// 6x6 at 20' is a practical limit, not a table value.
var postHeightLimits = map[string]float64{
	"4x4": 8.0,
	"4x6": 14.0,
	"6x6": 20.0,
}

// Design loads in psf for a residential deck.
const (
	deadLoadPsf  = 15.0
	liveLoadPsf  = 40.0
	totalLoadPsf = deadLoadPsf + liveLoadPsf
)

// maxCantileverRatio limits the cantilever to a quarter of the joist depth.
const maxCantileverRatio = 0.25

// joistSpanCategory rounds a joist span up to the beam table category.
func joistSpanCategory(spanFt float64) string {
	switch {
	case spanFt <= 6:
		return "6"
	case spanFt <= 8:
		return "8"
	case spanFt <= 10:
		return "10"
	default:
		return "12"
	}
}

// selectJoistSize returns the smallest joist size that carries the span at
// the given spacing.
func selectJoistSize(spanFt float64, spacingIn int) (string, error) {
	for _, size := range []string{"2x6", "2x8", "2x10", "2x12"} {
		if joistSpans[joistKey{size, spacingIn}] >= spanFt {
			return size, nil
		}
	}
	return "", fmt.Errorf("joist span %.1f' exceeds maximum for any size at %d\" O.C. (max is %.1f')",
		spanFt, spacingIn, joistSpans[joistKey{"2x12", spacingIn}])
}

// selectBeamSize returns the smallest doubled beam that carries the beam
// span for the given joist span, along with its ply count.
func selectBeamSize(beamSpanFt, joistSpanFt float64) (string, int, error) {
	cat := joistSpanCategory(joistSpanFt)
	for _, size := range []string{"2x6", "2x8", "2x10", "2x12"} {
		if beamSpans[beamKey{"2-" + size, cat}] >= beamSpanFt {
			return size, 2, nil
		}
	}
	return "", 0, fmt.Errorf("beam span %.1f' exceeds maximum for joist span category %s'; consider adding intermediate posts",
		beamSpanFt, cat)
}

// selectPostSize returns the smallest post size rated for the height.
func selectPostSize(heightFt float64) string {
	for _, size := range []string{"4x4", "4x6", "6x6"} {
		if postHeightLimits[size] >= heightFt {
			return size
		}
	}
	return "6x6"
}

// footingDiameter returns the required footing diameter in inches, rounded
// up to the next standard sonotube size.
func footingDiameter(tributaryAreaSqft float64, soilBearingPsf int) int {
	requiredSqft := tributaryAreaSqft * totalLoadPsf / float64(soilBearingPsf)
	requiredSqin := requiredSqft * 144
	requiredDiameter := 2 * math.Sqrt(requiredSqin/math.Pi)

	for _, size := range []int{12, 14, 16, 18, 20, 24} {
		if float64(size) >= requiredDiameter {
			return size
		}
	}
	return 24
}

// GenerateStructure converts site measurements into a positioned, sized
// structural model.
//
// Coordinate system: origin at the center of the ledger, +X along the house
// (width), +Y away from the house (depth), +Z up from grade.
func GenerateStructure(input SiteInput) *Structure {
	input.ApplyDefaults()

	s := &Structure{Input: input, Compliant: true}

	width := input.WidthFt
	depth := input.DepthFt
	height := input.HeightFt

	const joistSpacingIn = 16
	s.JoistSpacingIn = joistSpacingIn

	// Freestanding decks carry joists between two beams; attached decks
	// cantilever past a single outer beam.
	var cantileverFt, joistSpanFt float64
	if input.LedgerAttachment == AttachmentFreestanding {
		cantileverFt = 0
		joistSpanFt = depth / 2
	} else {
		cantileverFt = math.Min(2.0, depth*maxCantileverRatio)
		joistSpanFt = depth - cantileverFt
	}

	if cantileverFt > depth*maxCantileverRatio {
		s.Errors = append(s.Errors, fmt.Sprintf("cantilever %.1f' exceeds maximum %.1f' (25%% of %.1f' depth)",
			cantileverFt, depth*maxCantileverRatio, depth))
		s.Compliant = false
		return s
	}

	joistSize, err := selectJoistSize(joistSpanFt, joistSpacingIn)
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
		s.Compliant = false
		return s
	}
	s.JoistSize = joistSize
	s.Notes = append(s.Notes, fmt.Sprintf("Joists: %s at %d\" O.C. (span %.1f')", joistSize, joistSpacingIn, joistSpanFt))

	joistLumber := lumberSpecs[joistSize]

	// Elevations, working down from the decking surface.
	const deckingThicknessFt = 1.0 / 12
	joistTopZ := height - deckingThicknessFt
	joistBottomZ := joistTopZ - joistLumber.HeightFt()
	beamTopZ := joistBottomZ

	// Post spacing targets 8' and the beam is sized to the actual span.
	const targetBeamSpan = 8.0
	numPosts := int(math.Ceil(width/targetBeamSpan)) + 1
	if numPosts < 2 {
		numPosts = 2
	}
	actualBeamSpan := width / float64(numPosts-1)

	beamLumberSize, beamPly, err := selectBeamSize(actualBeamSpan, joistSpanFt)
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
		s.Compliant = false
		return s
	}
	s.BeamSize = beamLumberSize
	s.BeamPly = beamPly
	s.Notes = append(s.Notes, fmt.Sprintf("Beam: %d-%s (span %.1f', %d posts)", beamPly, beamLumberSize, actualBeamSpan, numPosts))

	beamLumber := lumberSpecs[beamLumberSize]
	beamBottomZ := beamTopZ - beamLumber.HeightFt()

	postHeightFt := beamBottomZ
	postSize := selectPostSize(postHeightFt)
	s.PostSize = postSize
	postLumber := lumberSpecs[postSize]

	if postHeightFt > postHeightLimits[postSize] {
		s.Notes = append(s.Notes, fmt.Sprintf("Posts: %s at %.1f' height (verify with engineer)", postSize, postHeightFt))
	} else {
		s.Notes = append(s.Notes, fmt.Sprintf("Posts: %s at %.1f' height", postSize, postHeightFt))
	}

	tributaryArea := actualBeamSpan * joistSpanFt
	diameter := footingDiameter(tributaryArea, input.SoilBearingPsf)
	s.FootingDiameterIn = diameter
	s.Notes = append(s.Notes, fmt.Sprintf("Footings: %d\" diameter x %d\" deep (tributary area %.0f SF)",
		diameter, input.FrostDepthIn, tributaryArea))

	var beamYPositions []float64
	if input.LedgerAttachment == AttachmentFreestanding {
		beamYPositions = []float64{depth / 3, 2 * depth / 3}
	} else {
		beamYPositions = []float64{depth - cantileverFt}
	}

	for _, beamY := range beamYPositions {
		for i := 0; i < numPosts; i++ {
			x := -(width / 2) + float64(i)*actualBeamSpan
			s.Footings = append(s.Footings, Footing{
				XFt: x, YFt: beamY, DiameterIn: diameter, DepthIn: input.FrostDepthIn,
			})
			s.Posts = append(s.Posts, Post{
				XFt: x, YFt: beamY, HeightFt: postHeightFt, Lumber: postLumber,
			})
		}
	}

	for _, beamY := range beamYPositions {
		s.Beams = append(s.Beams, Beam{
			XStartFt: -width / 2, XEndFt: width / 2,
			YFt: beamY, ZFt: beamBottomZ,
			Lumber: beamLumber, Ply: beamPly,
		})
	}

	joistSpacingFt := float64(joistSpacingIn) / 12
	numJoists := int(math.Floor(width/joistSpacingFt)) + 1
	totalJoistWidth := float64(numJoists-1) * joistSpacingFt
	joistStartX := -totalJoistWidth / 2

	for i := 0; i < numJoists; i++ {
		s.Joists = append(s.Joists, Joist{
			XFt:      joistStartX + float64(i)*joistSpacingFt,
			YStartFt: 0,
			YEndFt:   depth,
			ZFt:      joistBottomZ,
			Lumber:   joistLumber,
		})
	}
	s.Notes = append(s.Notes, fmt.Sprintf("Joists: %d total", numJoists))

	if input.LedgerAttachment != AttachmentFreestanding {
		s.Ledger = &LedgerBoard{
			XStartFt: -width / 2, XEndFt: width / 2,
			YFt: 0, ZFt: joistBottomZ,
			Lumber:     joistLumber,
			Attachment: input.LedgerAttachment,
		}
	}

	s.RimJoists = []RimJoist{
		{Location: "left", XFt: -width / 2, YStartFt: 0, YEndFt: depth, Lumber: joistLumber},
		{Location: "right", XFt: width / 2, YStartFt: 0, YEndFt: depth, Lumber: joistLumber},
		{Location: "outer", XStartFt: -width / 2, XEndFt: width / 2, YFt: depth, Lumber: joistLumber},
	}

	return s
}
