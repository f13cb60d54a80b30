// Package config loads the TOML configuration that tunes layerscape.
//
// Every designer-facing constant of the layout engine lives here, together
// with the named model endpoints and the settings of the optional HTTP API,
// cache and store. A missing default config file means "use defaults"; an
// explicit path that does not exist is an error.
//
//	[layout]
//	neuron_cap = 50
//	max_depth = 27
//	origin = [0, 1, -2]
//
//	[scale]
//	steepness = 2
//
//	[models]
//	VGG = "http://localhost:4999/VGG/layer_info"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/interact"
	"github.com/matzehuels/layerscape/pkg/layout"
	"github.com/matzehuels/layerscape/pkg/scale"
	"github.com/matzehuels/layerscape/pkg/scene"
)

// Config is the full configuration file.
type Config struct {
	Layout      Layout            `toml:"layout"`
	Scale       scale.Sigmoid     `toml:"scale"`
	Interaction Interaction       `toml:"interaction"`
	Models      map[string]string `toml:"models"`
	Server      Server            `toml:"server"`
	Cache       Cache             `toml:"cache"`
	Store       Store             `toml:"store"`
}

// Layout mirrors layout.Config with file-friendly types.
type Layout struct {
	PixelToUnit       float64   `toml:"pixel_to_unit" validate:"gt=0"`
	SpacingRatio      float64   `toml:"spacing_ratio" validate:"gte=0"`
	CellDepth         float64   `toml:"cell_depth" validate:"gt=0"`
	MaxChannels       int       `toml:"max_channels" validate:"gte=0"`
	NeuronCap         int       `toml:"neuron_cap" validate:"gte=0"`
	UnitSpacing       float64   `toml:"unit_spacing" validate:"gt=0"`
	UnitScale         float64   `toml:"unit_scale" validate:"gt=0"`
	TerminalUnitScale float64   `toml:"terminal_unit_scale" validate:"gt=0,ltfield=UnitScale"`
	LineOffsetY       float64   `toml:"line_offset_y"`
	ClusterOffsetY    float64   `toml:"cluster_offset_y"`
	Gap               float64   `toml:"gap" validate:"gte=0"`
	MaxDepth          float64   `toml:"max_depth" validate:"gte=0"`
	Origin            []float64 `toml:"origin" validate:"len=3"`
}

// Interaction holds the hover highlight styles.
type Interaction struct {
	SolidHighlight  string `toml:"solid_highlight" validate:"required"`
	NeuronHighlight string `toml:"neuron_highlight" validate:"required"`
}

// Server configures `layerscape serve`.
type Server struct {
	Addr       string        `toml:"addr" validate:"required"`
	RateLimit  float64       `toml:"rate_limit" validate:"gte=0"`
	RateBurst  int           `toml:"rate_burst" validate:"gte=1"`
	SessionTTL time.Duration `toml:"session_ttl" validate:"min=1s"`
}

// Cache selects the scene cache backend.
type Cache struct {
	Backend   string        `toml:"backend" validate:"oneof=file redis none"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	TTL       time.Duration `toml:"ttl" validate:"min=1s"`
}

// Store selects where saved scenes are persisted.
type Store struct {
	Backend  string `toml:"backend" validate:"oneof=memory mongo"`
	MongoURI string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database string `toml:"database" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	lc := layout.DefaultConfig()
	styles := interact.DefaultStyles()
	return Config{
		Layout: Layout{
			PixelToUnit:       lc.PixelToUnit,
			SpacingRatio:      lc.SpacingRatio,
			CellDepth:         lc.CellDepth,
			MaxChannels:       lc.MaxChannels,
			NeuronCap:         lc.NeuronCap,
			UnitSpacing:       lc.UnitSpacing,
			UnitScale:         lc.UnitScale,
			TerminalUnitScale: lc.TerminalUnitScale,
			LineOffsetY:       lc.LineOffsetY,
			ClusterOffsetY:    lc.ClusterOffsetY,
			Gap:               lc.Gap,
			MaxDepth:          lc.MaxDepth,
			Origin:            []float64{lc.Origin.X, lc.Origin.Y, lc.Origin.Z},
		},
		Scale: scale.DefaultSigmoid(),
		Interaction: Interaction{
			SolidHighlight:  string(styles.Solid),
			NeuronHighlight: string(styles.Neuron),
		},
		Models: map[string]string{
			"Sequential":  "http://localhost:4999/Sequential/layer_info",
			"Autoencoder": "http://localhost:4999/Autoencoder/layer_info",
			"VGG":         "http://localhost:4999/VGG/layer_info",
		},
		Server: Server{
			Addr:       ":8080",
			RateLimit:  50,
			RateBurst:  100,
			SessionTTL: 30 * time.Minute,
		},
		Cache: Cache{
			Backend: "file",
			TTL:     24 * time.Hour,
		},
		Store: Store{
			Backend:  "memory",
			Database: "layerscape",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/layerscape/config.toml (or the
// platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "layerscape", "config.toml")
}

// Load reads path over the defaults and validates the result. An empty
// path means DefaultPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config file %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errs.New(errs.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints and the model table.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	for _, name := range c.ModelNames() {
		if err := errs.ValidateModelName(name); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "models.%s", name)
		}
		if err := errs.ValidateEndpoint(c.Models[name]); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "models.%s", name)
		}
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode configuration")
	}
	return buf.Bytes(), nil
}

// ModelNames returns the configured model names in sorted order.
func (c Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LayoutConfig converts the [layout] section.
func (c Config) LayoutConfig() layout.Config {
	l := c.Layout
	origin := layout.DefaultConfig().Origin
	if len(l.Origin) == 3 {
		origin = scene.V(l.Origin[0], l.Origin[1], l.Origin[2])
	}
	return layout.Config{
		PixelToUnit:       l.PixelToUnit,
		SpacingRatio:      l.SpacingRatio,
		CellDepth:         l.CellDepth,
		MaxChannels:       l.MaxChannels,
		NeuronCap:         l.NeuronCap,
		UnitSpacing:       l.UnitSpacing,
		UnitScale:         l.UnitScale,
		TerminalUnitScale: l.TerminalUnitScale,
		LineOffsetY:       l.LineOffsetY,
		ClusterOffsetY:    l.ClusterOffsetY,
		Gap:               l.Gap,
		MaxDepth:          l.MaxDepth,
		Origin:            origin,
	}
}

// LayoutOptions returns the layout options this configuration implies.
func (c Config) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithConfig(c.LayoutConfig()),
		layout.WithSigmoid(c.Scale),
	}
}

// Styles returns the hover highlight styles.
func (c Config) Styles() interact.Styles {
	return interact.Styles{
		Solid:  scene.StyleHandle(c.Interaction.SolidHighlight),
		Neuron: scene.StyleHandle(c.Interaction.NeuronHighlight),
	}
}
