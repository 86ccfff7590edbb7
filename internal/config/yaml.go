package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileSettings is the on-disk YAML layout. Settings are grouped into
// sections so hand-edited files stay readable.
type fileSettings struct {
	Cylinder struct {
		Diameter      float64 `yaml:"diameter"`
		Height        float64 `yaml:"height"`
		WallThickness float64 `yaml:"wall_thickness"`
	} `yaml:"cylinder"`
	Printing struct {
		NozzleDiameter float64 `yaml:"nozzle_diameter"`
		LayerHeight    float64 `yaml:"layer_height"`
		MinThickness   float64 `yaml:"min_thickness"`
		MaxThickness   float64 `yaml:"max_thickness"`
	} `yaml:"printing"`
	Quality struct {
		Resolution    float64 `yaml:"resolution"`
		MeshQuality   float64 `yaml:"mesh_quality"`
		CoverageAngle float64 `yaml:"coverage_angle"`
		Strategy      string  `yaml:"strategy"`
	} `yaml:"quality"`
	Margins struct {
		TopMargin      float64 `yaml:"top_margin"`
		BottomMargin   float64 `yaml:"bottom_margin"`
		EdgeBlendWidth float64 `yaml:"edge_blend_width"`
	} `yaml:"margins"`
}

// Load reads settings from a YAML file. A missing file yields the
// defaults; a malformed or invalid file is an error. Keys absent from the
// file keep their default values, while explicitly configured values are
// taken as written, zero margins included.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	// Unmarshal on top of the defaults so absent keys fall through and
	// explicit zeros survive.
	fs := fromSettings(Default())
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}

	s := fs.toSettings()
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings as YAML, creating parent directories as needed.
func Save(s Settings, path string) error {
	fs := fromSettings(s)

	data, err := yaml.Marshal(&fs)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

// fromSettings converts Settings to the on-disk layout.
func fromSettings(s Settings) fileSettings {
	var fs fileSettings
	fs.Cylinder.Diameter = s.CylinderDiameter
	fs.Cylinder.Height = s.CylinderHeight
	fs.Cylinder.WallThickness = s.WallThickness
	fs.Printing.NozzleDiameter = s.NozzleDiameter
	fs.Printing.LayerHeight = s.LayerHeight
	fs.Printing.MinThickness = s.MinThickness
	fs.Printing.MaxThickness = s.MaxThickness
	fs.Quality.Resolution = s.Resolution
	fs.Quality.MeshQuality = s.MeshQuality
	fs.Quality.CoverageAngle = s.CoverageAngle
	fs.Quality.Strategy = s.Strategy.String()
	fs.Margins.TopMargin = s.TopMargin
	fs.Margins.BottomMargin = s.BottomMargin
	fs.Margins.EdgeBlendWidth = s.EdgeBlendWidth
	return fs
}

// toSettings converts the file layout back to Settings.
func (fs fileSettings) toSettings() Settings {
	s := Settings{
		CylinderDiameter: fs.Cylinder.Diameter,
		CylinderHeight:   fs.Cylinder.Height,
		WallThickness:    fs.Cylinder.WallThickness,
		NozzleDiameter:   fs.Printing.NozzleDiameter,
		LayerHeight:      fs.Printing.LayerHeight,
		MinThickness:     fs.Printing.MinThickness,
		MaxThickness:     fs.Printing.MaxThickness,
		Resolution:       fs.Quality.Resolution,
		MeshQuality:      fs.Quality.MeshQuality,
		CoverageAngle:    fs.Quality.CoverageAngle,
		TopMargin:        fs.Margins.TopMargin,
		BottomMargin:     fs.Margins.BottomMargin,
		EdgeBlendWidth:   fs.Margins.EdgeBlendWidth,
		Strategy:         StrategyUniform,
	}
	if fs.Quality.Strategy == StrategyFacePriority.String() {
		s.Strategy = StrategyFacePriority
	}
	return s
}
