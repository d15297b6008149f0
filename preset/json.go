package preset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cwbudde/algo-beatgrid/beatgrid"
	"github.com/cwbudde/algo-beatgrid/click"
	"github.com/cwbudde/algo-beatgrid/grid"
)

// File is the JSON schema for analysis presets. Absent fields keep their
// defaults.
type File struct {
	SnapScale     *float64      `json:"snap_scale"`
	CacheCapacity *int          `json:"cache_capacity"`
	Strategy      string        `json:"strategy"`
	Click         *ClickSetting `json:"click"`
}

// ClickSetting is a partial override of the click-track parameters.
type ClickSetting struct {
	Gain        *float32 `json:"gain"`
	FreqHz      *float32 `json:"freq_hz"`
	DecayMs     *float32 `json:"decay_ms"`
	LengthMs    *float32 `json:"length_ms"`
	AccentEvery *int     `json:"accent_every"`
	AccentGain  *float32 `json:"accent_gain"`
}

// Settings is everything a preset can configure.
type Settings struct {
	Analyzer beatgrid.Options
	Click    click.Params
}

// NewDefaultSettings returns the settings used when no preset is given.
func NewDefaultSettings() *Settings {
	return &Settings{
		Analyzer: beatgrid.DefaultOptions(),
		Click:    click.NewDefaultParams(),
	}
}

// LoadJSON loads a preset JSON file and applies it on top of default settings.
func LoadJSON(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	s := NewDefaultSettings()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyFile applies a parsed preset file onto existing settings.
func ApplyFile(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if f.SnapScale != nil {
		if !(*f.SnapScale > 0) || math.IsInf(*f.SnapScale, 0) {
			return fmt.Errorf("snap_scale must be > 0")
		}
		dst.Analyzer.SnapScale = *f.SnapScale
	}
	if f.CacheCapacity != nil {
		if *f.CacheCapacity < 1 {
			return fmt.Errorf("cache_capacity must be >= 1")
		}
		dst.Analyzer.CacheCapacity = *f.CacheCapacity
	}
	if s := strings.ToLower(strings.TrimSpace(f.Strategy)); s != "" {
		if _, err := grid.WalkerByName(s); err != nil {
			return fmt.Errorf("strategy: %w", err)
		}
		dst.Analyzer.Strategy = s
	}

	if f.Click == nil {
		return nil
	}
	c := f.Click
	if c.Gain != nil {
		dst.Click.Gain = *c.Gain
	}
	if c.FreqHz != nil {
		dst.Click.FreqHz = *c.FreqHz
	}
	if c.DecayMs != nil {
		dst.Click.DecayMs = *c.DecayMs
	}
	if c.LengthMs != nil {
		dst.Click.LengthMs = *c.LengthMs
	}
	if c.AccentEvery != nil {
		dst.Click.AccentEvery = *c.AccentEvery
	}
	if c.AccentGain != nil {
		dst.Click.AccentGain = *c.AccentGain
	}
	return dst.Click.Validate()
}
