// Package config holds the instrument profile: the detector geometry
// and the etalon parameters the analysis needs to map pixels onto
// physical units. Profiles are YAML files; every field has a default
// matching the reference bench.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fringe-analysis/internal/profile"
)

// Instrument describes the detector and the interferometer. Lengths are
// in millimeters, intensities in the detector's native scale.
type Instrument struct {
	// PixelPitch is the detector pixel spacing. The default corresponds
	// to a 36 mm sensor read out at 6720 pixels.
	PixelPitch float64 `yaml:"pixel_pitch_mm"`

	// Saturation is the intensity at which a pixel clips, summed over
	// the three channels.
	Saturation float64 `yaml:"saturation"`

	Etalon EtalonConfig `yaml:"etalon"`
}

// EtalonConfig mirrors profile.Etalon in YAML form.
type EtalonConfig struct {
	SpacingMM        float64 `yaml:"spacing_mm"`
	SpacingErrMM     float64 `yaml:"spacing_err_mm"`
	FocalLengthMM    float64 `yaml:"focal_length_mm"`
	FocalLengthErrMM float64 `yaml:"focal_length_err_mm"`
	Order            int     `yaml:"order"`
}

// Default returns the reference bench profile.
func Default() Instrument {
	return Instrument{
		PixelPitch: 36.0 / 6720.0,
		Saturation: 65536 * 3,
		Etalon: EtalonConfig{
			SpacingMM:        4,
			SpacingErrMM:     0.01,
			FocalLengthMM:    200,
			FocalLengthErrMM: 0.5,
			Order:            14646,
		},
	}
}

// Load reads a YAML profile, starting from the defaults so partial
// files only override what they mention.
func Load(path string) (Instrument, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read instrument profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse instrument profile: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the physical plausibility of the profile.
func (c Instrument) Validate() error {
	if c.PixelPitch <= 0 {
		return fmt.Errorf("invalid instrument profile: pixel pitch must be positive")
	}
	if c.Saturation <= 0 {
		return fmt.Errorf("invalid instrument profile: saturation must be positive")
	}
	if err := c.Etalon.toProfile().Validate(); err != nil {
		return fmt.Errorf("invalid instrument profile: %w", err)
	}
	return nil
}

// EtalonProfile converts the YAML form into the analysis type.
func (c Instrument) EtalonProfile() profile.Etalon {
	return c.Etalon.toProfile()
}

func (e EtalonConfig) toProfile() profile.Etalon {
	return profile.Etalon{
		Spacing:        e.SpacingMM,
		SpacingErr:     e.SpacingErrMM,
		FocalLength:    e.FocalLengthMM,
		FocalLengthErr: e.FocalLengthErrMM,
		Order:          e.Order,
	}
}
