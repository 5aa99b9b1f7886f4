package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectJoistSize(t *testing.T) {
	tests := []struct {
		spanFt    float64
		spacingIn int
		want      string
	}{
		{8.0, 16, "2x6"},
		{9.5, 16, "2x6"},
		{10.0, 16, "2x8"},
		{14.0, 16, "2x10"},
		{18.0, 16, "2x12"},
		{16.0, 24, "2x12"},
	}
	for _, tt := range tests {
		got, err := selectJoistSize(tt.spanFt, tt.spacingIn)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "span %.1f at %d\"", tt.spanFt, tt.spacingIn)
	}
}

func TestSelectJoistSize_SpanTooLong(t *testing.T) {
	_, err := selectJoistSize(22.0, 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestSelectBeamSize(t *testing.T) {
	size, ply, err := selectBeamSize(6.0, 8.0)
	require.NoError(t, err)
	assert.Equal(t, "2x8", size)
	assert.Equal(t, 2, ply)

	size, ply, err = selectBeamSize(8.0, 8.0)
	require.NoError(t, err)
	assert.Equal(t, "2x10", size)
	assert.Equal(t, 2, ply)
}

func TestSelectBeamSize_SpanTooLong(t *testing.T) {
	_, _, err := selectBeamSize(12.0, 12.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intermediate posts")
}

func TestSelectPostSize(t *testing.T) {
	assert.Equal(t, "4x4", selectPostSize(6.0))
	assert.Equal(t, "4x6", selectPostSize(10.0))
	assert.Equal(t, "6x6", selectPostSize(16.0))
	assert.Equal(t, "6x6", selectPostSize(25.0))
}

func TestFootingDiameter(t *testing.T) {
	// 48 SF tributary at 1500 psf soil needs ~18" of bearing.
	assert.Equal(t, 18, footingDiameter(48, 1500))
	// Small loads still get the minimum 12" tube.
	assert.Equal(t, 12, footingDiameter(10, 2000))
	// Very large loads cap at 24".
	assert.Equal(t, 24, footingDiameter(200, 1000))
}

func TestGenerateStructure_AttachedDeck(t *testing.T) {
	s := GenerateStructure(SiteInput{
		WidthFt: 12, DepthFt: 10, HeightFt: 3,
	})

	require.True(t, s.Compliant, "errors: %v", s.Errors)
	assert.Empty(t, s.Errors)

	// Cantilever is 2', so joists span 8' and 2x6 suffices at 16" O.C.
	assert.Equal(t, "2x6", s.JoistSize)
	assert.Equal(t, 16, s.JoistSpacingIn)
	assert.Equal(t, "2x8", s.BeamSize)
	assert.Equal(t, 2, s.BeamPly)
	assert.Equal(t, "4x4", s.PostSize)
	assert.Equal(t, 18, s.FootingDiameterIn)

	require.Len(t, s.Beams, 1)
	assert.InDelta(t, 8.0, s.Beams[0].YFt, 1e-9)

	// 12' wide at 8' target spacing gives 3 posts, one footing each.
	assert.Len(t, s.Posts, 3)
	assert.Len(t, s.Footings, 3)
	assert.Equal(t, 18, s.Footings[0].DiameterIn)
	assert.Equal(t, 18, s.Footings[0].DepthIn)

	// 16" spacing across 12' gives 10 joists.
	assert.Len(t, s.Joists, 10)

	require.NotNil(t, s.Ledger)
	assert.Equal(t, AttachmentDirect, s.Ledger.Attachment)
	assert.Len(t, s.RimJoists, 3)
}

func TestGenerateStructure_Freestanding(t *testing.T) {
	s := GenerateStructure(SiteInput{
		WidthFt: 20, DepthFt: 16, HeightFt: 4,
		LedgerAttachment: AttachmentFreestanding,
	})

	require.True(t, s.Compliant, "errors: %v", s.Errors)

	// Two beams at third points, joists span half the depth.
	require.Len(t, s.Beams, 2)
	assert.InDelta(t, 16.0/3, s.Beams[0].YFt, 1e-9)
	assert.InDelta(t, 32.0/3, s.Beams[1].YFt, 1e-9)
	assert.Equal(t, "2x10", s.BeamSize)

	// 4 posts per beam.
	assert.Len(t, s.Posts, 8)
	assert.Len(t, s.Footings, 8)
	assert.Nil(t, s.Ledger)
}

func TestGenerateStructure_SpanTooDeep(t *testing.T) {
	s := GenerateStructure(SiteInput{
		WidthFt: 10, DepthFt: 30, HeightFt: 3,
	})

	assert.False(t, s.Compliant)
	require.NotEmpty(t, s.Errors)
	assert.Contains(t, s.Errors[0], "exceeds maximum")
	// Engine stops before laying out members it cannot size.
	assert.Empty(t, s.Joists)
}

func TestGenerateStructure_TallDeckUsesBiggerPosts(t *testing.T) {
	s := GenerateStructure(SiteInput{
		WidthFt: 12, DepthFt: 10, HeightFt: 12,
	})

	require.True(t, s.Compliant, "errors: %v", s.Errors)
	assert.Equal(t, "4x6", s.PostSize)
}

func TestApplyDefaults(t *testing.T) {
	in := SiteInput{WidthFt: 10, DepthFt: 10, HeightFt: 3}
	in.ApplyDefaults()

	assert.Equal(t, AttachmentDirect, in.LedgerAttachment)
	assert.Equal(t, 1500, in.SoilBearingPsf)
	assert.Equal(t, 18, in.FrostDepthIn)
	assert.Equal(t, DeckingTrex, in.DeckingType)
	assert.Equal(t, RailingNone, in.RailingType)
}
