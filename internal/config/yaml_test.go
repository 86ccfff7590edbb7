package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.yaml")

	want := Default()
	want.CylinderDiameter = 100
	want.CoverageAngle = 180
	want.MaxThickness = 3.0
	want.Strategy = StrategyFacePriority

	require.NoError(t, Save(want, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	partial := []byte("cylinder:\n  diameter: 60\nquality:\n  coverage_angle: 120\n")
	require.NoError(t, os.WriteFile(path, partial, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60.0, s.CylinderDiameter)
	assert.Equal(t, 120.0, s.CoverageAngle)
	assert.Equal(t, Default().WallThickness, s.WallThickness)
	assert.Equal(t, Default().MinThickness, s.MinThickness)
}

func TestLoadPreservesExplicitZeros(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	zeros := []byte("margins:\n  top_margin: 0\n  bottom_margin: 0\n  edge_blend_width: 0\n")
	require.NoError(t, os.WriteFile(path, zeros, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.TopMargin)
	assert.Equal(t, 0.0, s.BottomMargin)
	assert.Equal(t, 0.0, s.EdgeBlendWidth)

	// Keys not in the file still come from the defaults.
	assert.Equal(t, Default().CylinderDiameter, s.CylinderDiameter)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cylinder: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	bad := []byte("printing:\n  min_thickness: 3.0\n  max_thickness: 2.0\n")
	require.NoError(t, os.WriteFile(path, bad, 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
