package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero diameter", func(s *Settings) { s.CylinderDiameter = 0 }},
		{"negative height", func(s *Settings) { s.CylinderHeight = -1 }},
		{"wall exceeds radius", func(s *Settings) { s.WallThickness = 50 }},
		{"min equals max thickness", func(s *Settings) { s.MinThickness = s.MaxThickness }},
		{"min above max thickness", func(s *Settings) { s.MinThickness = 3.0 }},
		{"max beyond printable ceiling", func(s *Settings) { s.MaxThickness = 5.5 }},
		{"zero resolution", func(s *Settings) { s.Resolution = 0 }},
		{"resolution above 1mm", func(s *Settings) { s.Resolution = 1.5 }},
		{"zero coverage", func(s *Settings) { s.CoverageAngle = 0 }},
		{"coverage beyond full circle", func(s *Settings) { s.CoverageAngle = 400 }},
		{"margins consume height", func(s *Settings) { s.TopMargin, s.BottomMargin = 60, 60 }},
		{"negative blend width", func(s *Settings) { s.EdgeBlendWidth = -1 }},
		{"layer height too tall for nozzle", func(s *Settings) { s.LayerHeight = 0.6 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "want ErrInvalidConfig, got %v", err)
		})
	}
}

func TestInnerRadius(t *testing.T) {
	s := Default()
	assert.InDelta(t, s.CylinderDiameter/2-s.WallThickness, s.InnerRadius(), 1e-12)
}

func TestBlendPixels(t *testing.T) {
	s := Default()
	s.EdgeBlendWidth = 3.0
	s.Resolution = 0.1
	assert.Equal(t, 30, s.BlendPixels())

	// Tiny blend widths still get a two pixel ramp.
	s.EdgeBlendWidth = 0.05
	assert.Equal(t, 2, s.BlendPixels())
}

func TestMeshResolutionClamps(t *testing.T) {
	s := Default()

	angular, height := s.MeshResolution()
	assert.GreaterOrEqual(t, angular, AngularSegmentsMin)
	assert.LessOrEqual(t, angular, AngularSegmentsMax)
	assert.GreaterOrEqual(t, height, HeightSegmentsMin)
	assert.LessOrEqual(t, height, HeightSegmentsMax)

	// A tiny cylinder clamps to the lower bounds.
	s.CylinderDiameter = 10
	s.CylinderHeight = 20
	s.Resolution = 1.0
	angular, height = s.MeshResolution()
	assert.Equal(t, AngularSegmentsMin, angular)
	assert.Equal(t, HeightSegmentsMin, height)

	// A huge high-quality cylinder clamps to the upper bounds.
	s.CylinderDiameter = 300
	s.CylinderHeight = 400
	s.Resolution = 0.05
	s.MeshQuality = 4
	angular, height = s.MeshResolution()
	assert.Equal(t, AngularSegmentsMax, angular)
	assert.Equal(t, HeightSegmentsMax, height)
}

func TestLithophaneDimensions(t *testing.T) {
	s := Default()
	dims := s.LithophaneDimensions()

	// 270° of an 80mm cylinder is 3/4 of the circumference.
	wantArc := 40 * 270 * (3.141592653589793 / 180)
	assert.InDelta(t, wantArc, dims.ArcLengthMM, 1e-9)
	assert.InDelta(t, s.CylinderHeight-s.TopMargin-s.BottomMargin, dims.ImageHeight, 1e-12)
	assert.Equal(t, int(wantArc/s.Resolution), dims.WidthPx)
	assert.Equal(t, int(dims.ImageHeight/s.Resolution), dims.HeightPx)
}

func TestGammaFor(t *testing.T) {
	assert.Equal(t, 1.0, GammaFor("balanced"))
	assert.Equal(t, 0.9, GammaFor("low_contrast"))
	assert.Equal(t, 1.1, GammaFor("overexposed"))
	assert.Equal(t, 1.0, GammaFor("unheard_of_class"))
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "uniform", StrategyUniform.String())
	assert.Equal(t, "face-priority", StrategyFacePriority.String())
}
