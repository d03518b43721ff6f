package metasprite

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Alignment is the default sprite pivot.
type Alignment string

const (
	AlignCenter       Alignment = "center"
	AlignTopLeft      Alignment = "topLeft"
	AlignTopCenter    Alignment = "topCenter"
	AlignTopRight     Alignment = "topRight"
	AlignLeftCenter   Alignment = "leftCenter"
	AlignRightCenter  Alignment = "rightCenter"
	AlignBottomLeft   Alignment = "bottomLeft"
	AlignBottomCenter Alignment = "bottomCenter"
	AlignBottomRight  Alignment = "bottomRight"
	AlignCustom       Alignment = "custom"
)

// Unit pivot of each alignment, origin at the bottom-left.
var alignmentPivots = map[Alignment]Vec2{
	AlignCenter:       {0.5, 0.5},
	AlignTopLeft:      {0, 1},
	AlignTopCenter:    {0.5, 1},
	AlignTopRight:     {1, 1},
	AlignLeftCenter:   {0, 0.5},
	AlignRightCenter:  {1, 0.5},
	AlignBottomLeft:   {0, 0},
	AlignBottomCenter: {0.5, 0},
	AlignBottomRight:  {1, 0},
}

// ControllerPolicy decides whether an animation controller is written.
type ControllerPolicy string

const (
	ControllerSkip             ControllerPolicy = "skip"
	ControllerCreateOrOverride ControllerPolicy = "createOrOverride"
)

// ImportSettings configures how a parsed file is turned into assets.
type ImportSettings struct {
	PPU         int       `yaml:"ppu"` // pixels per world unit
	Alignment   Alignment `yaml:"alignment"`
	CustomPivot Vec2      `yaml:"customPivot"` // used with AlignCustom
	DensePacked bool      `yaml:"densePacked"`
	Border      int       `yaml:"border"`

	AtlasOutputDirectory string `yaml:"atlasOutputDirectory"`
	ClipOutputDirectory  string `yaml:"clipOutputDirectory"`
	PrefabsDirectory     string `yaml:"prefabsDirectory"`

	ControllerPolicy         ControllerPolicy `yaml:"controllerPolicy"`
	AnimControllerOutputPath string           `yaml:"animControllerOutputPath"`

	GeneratePrefab       bool `yaml:"generatePrefab"`
	OrderInLayerInterval int  `yaml:"orderInLayerInterval"`

	// SortIndex selects the sorting layer in the host's layer list and
	// SpritesSortInLayer is the id of that layer, given to generated sprites.
	SortIndex          int `yaml:"sortIndex"`
	SpritesSortInLayer int `yaml:"spritesSortInLayer"`
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() *ImportSettings {
	return &ImportSettings{
		PPU:                  48,
		Alignment:            AlignCenter,
		DensePacked:          true,
		Border:               3,
		ControllerPolicy:     ControllerSkip,
		OrderInLayerInterval: 5,
	}
}

// LoadSettings reads YAML settings from path. Missing keys keep their
// defaults.
func LoadSettings(path string) (*ImportSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings over the defaults and validates them.
func ParseSettings(data []byte) (*ImportSettings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the settings to path as YAML.
func (s *ImportSettings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports every invalid field.
func (s *ImportSettings) Validate() error {
	var errs []error
	if s.PPU <= 0 {
		errs = append(errs, fmt.Errorf("ppu must be positive, got %d", s.PPU))
	}
	if _, ok := alignmentPivots[s.Alignment]; !ok && s.Alignment != AlignCustom {
		errs = append(errs, fmt.Errorf("unknown alignment %q", s.Alignment))
	}
	switch s.ControllerPolicy {
	case ControllerSkip, ControllerCreateOrOverride:
	default:
		errs = append(errs, fmt.Errorf("unknown controller policy %q", s.ControllerPolicy))
	}
	if s.Border < 0 {
		errs = append(errs, fmt.Errorf("border must not be negative, got %d", s.Border))
	}
	if s.SortIndex < 0 {
		errs = append(errs, fmt.Errorf("sortIndex must not be negative, got %d", s.SortIndex))
	}
	if s.OrderInLayerInterval < 0 {
		errs = append(errs, fmt.Errorf("orderInLayerInterval must not be negative, got %d", s.OrderInLayerInterval))
	}
	return errors.Join(errs...)
}

// PivotRelativePos returns the unit pivot of the alignment.
func (s *ImportSettings) PivotRelativePos() Vec2 {
	if s.Alignment == AlignCustom {
		return s.CustomPivot
	}
	if v, ok := alignmentPivots[s.Alignment]; ok {
		return v
	}
	return alignmentPivots[AlignCenter]
}
