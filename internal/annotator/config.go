package annotator

import (
	"fmt"
	"image/color"

	"github.com/go-viper/mapstructure/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// DefaultThickness is the outline thickness in pixels.
const DefaultThickness = 3

// ErrInvalidConfig is returned when a DetectionConfig fails validation.
var ErrInvalidConfig = errors.New("invalid detection config")

// DetectionConfig holds the color targets and drawing style of an Annotator.
// Targets are drawn in slice order, so later targets win where outlines overlap.
type DetectionConfig struct {
	Targets   []Target
	Thickness int
}

// DefaultConfig returns green then red targets drawn 3 pixels thick.
func DefaultConfig() DetectionConfig {
	return DetectionConfig{
		Targets: []Target{
			{Range: Green, Outline: OutlineGreen},
			{Range: Red, Outline: OutlineRed},
		},
		Thickness: DefaultThickness,
	}
}

// Validate checks the config and reports every violation at once.
func (c DetectionConfig) Validate() error {
	var errs error

	if len(c.Targets) == 0 {
		errs = multierr.Append(errs, errors.New("at least one target is required"))
	}
	if c.Thickness < 1 {
		errs = multierr.Append(errs, fmt.Errorf("thickness must be >= 1, got %d", c.Thickness))
	}

	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		if t.Name() == "" {
			errs = multierr.Append(errs, fmt.Errorf("target %d: name is required", i))
		} else if seen[t.Name()] {
			errs = multierr.Append(errs, fmt.Errorf("target %d: duplicate name %q", i, t.Name()))
		}
		seen[t.Name()] = true

		if len(t.Range.Ranges) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("target %q: at least one HSV range is required", t.Name()))
		}
		for j, r := range t.Range.Ranges {
			if err := r.validate(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("target %q range %d: %w", t.Name(), j, err))
			}
		}
	}

	if errs != nil {
		return errors.Wrap(ErrInvalidConfig, errs.Error())
	}
	return nil
}

// rawConfig is the loosely typed shape accepted by DecodeConfig.
type rawConfig struct {
	Thickness int         `mapstructure:"thickness"`
	Targets   []rawTarget `mapstructure:"targets"`
}

type rawTarget struct {
	Name    string     `mapstructure:"name"`
	Outline string     `mapstructure:"outline"`
	Ranges  []rawRange `mapstructure:"ranges"`
}

type rawRange struct {
	Lower []int `mapstructure:"lower"`
	Upper []int `mapstructure:"upper"`
}

// DecodeConfig builds a DetectionConfig from an attribute map such as parsed
// JSON. Missing keys keep their DefaultConfig values; when "targets" is
// present it replaces the default targets entirely. Outline colors are hex
// strings ("#00ff00").
//
//	{"thickness": 2, "targets": [{"name": "green", "outline": "#00ff00",
//	  "ranges": [{"lower": [35, 100, 100], "upper": [85, 255, 255]}]}]}
func DecodeConfig(attrs map[string]any) (DetectionConfig, error) {
	cfg := DefaultConfig()
	if len(attrs) == 0 {
		return cfg, nil
	}

	var raw rawConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return DetectionConfig{}, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return DetectionConfig{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	if _, ok := attrs["thickness"]; ok {
		cfg.Thickness = raw.Thickness
	}

	if _, ok := attrs["targets"]; ok {
		var errs error
		targets := make([]Target, 0, len(raw.Targets))
		for i, rt := range raw.Targets {
			t, err := rt.target()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("target %d: %w", i, err))
				continue
			}
			targets = append(targets, t)
		}
		if errs != nil {
			return DetectionConfig{}, errors.Wrap(ErrInvalidConfig, errs.Error())
		}
		cfg.Targets = targets
	}

	if err := cfg.Validate(); err != nil {
		return DetectionConfig{}, err
	}
	return cfg, nil
}

func (rt rawTarget) target() (Target, error) {
	outline, err := parseOutline(rt.Outline)
	if err != nil {
		return Target{}, err
	}

	ranges := make([]HSVRange, 0, len(rt.Ranges))
	for j, rr := range rt.Ranges {
		lower, err := toHSV(rr.Lower)
		if err != nil {
			return Target{}, fmt.Errorf("range %d lower: %w", j, err)
		}
		upper, err := toHSV(rr.Upper)
		if err != nil {
			return Target{}, fmt.Errorf("range %d upper: %w", j, err)
		}
		ranges = append(ranges, HSVRange{Lower: lower, Upper: upper})
	}

	return Target{
		Range:   ColorRange{Name: rt.Name, Ranges: ranges},
		Outline: outline,
	}, nil
}

func parseOutline(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, errors.New("outline color is required")
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "outline %q", hex)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func toHSV(v []int) (HSV, error) {
	if len(v) != 3 {
		return HSV{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	if v[0] < 0 || v[0] > MaxHue {
		return HSV{}, fmt.Errorf("hue %d out of [0,%d]", v[0], MaxHue)
	}
	for _, x := range v[1:] {
		if x < 0 || x > 255 {
			return HSV{}, fmt.Errorf("component %d out of [0,255]", x)
		}
	}
	return HSV{H: uint8(v[0]), S: uint8(v[1]), V: uint8(v[2])}, nil
}
