package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/layout"
	"github.com/matzehuels/layerscape/pkg/scene"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.LayoutConfig() != layout.DefaultConfig() {
		t.Errorf("default layout section drifted from layout.DefaultConfig: %+v", cfg.LayoutConfig())
	}
	if got := cfg.ModelNames(); len(got) != 3 || got[0] != "Autoencoder" {
		t.Errorf("ModelNames = %v", got)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.NeuronCap != 50 {
		t.Errorf("expected defaults, got neuron_cap %d", cfg.Layout.NeuronCap)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[layout]
neuron_cap = 20
max_depth = 40
origin = [1, 2, 3]

[scale]
steepness = 3

[interaction]
solid_highlight = "glow"

[models]
Tiny = "https://models.example.com/tiny/layer_info"

[server]
session_ttl = "5m"

[cache]
backend = "none"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lc := cfg.LayoutConfig()
	if lc.NeuronCap != 20 || lc.MaxDepth != 40 || lc.Origin != scene.V(1, 2, 3) {
		t.Errorf("layout = %+v", lc)
	}
	if lc.PixelToUnit != 0.04 {
		t.Error("unset keys should keep their defaults")
	}
	if cfg.Scale.Steepness != 3 || cfg.Scale.Floor != 0.1 {
		t.Errorf("scale = %+v", cfg.Scale)
	}
	if s := cfg.Styles(); s.Solid != "glow" || s.Neuron != "highlight-neuron" {
		t.Errorf("styles = %+v", s)
	}
	if cfg.Models["Tiny"] == "" || cfg.Models["VGG"] == "" {
		t.Errorf("models = %v", cfg.Models)
	}
	if cfg.Server.SessionTTL != 5*time.Minute {
		t.Errorf("session_ttl = %v", cfg.Server.SessionTTL)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("cache backend = %q", cfg.Cache.Backend)
	}
	if len(cfg.LayoutOptions()) != 2 {
		t.Error("LayoutOptions should carry config and sigmoid")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[layout\n"},
		{"unknown key", "[layout]\nwobble = 1\n"},
		{"negative cap", "[layout]\nneuron_cap = -1\n"},
		{"terminal markers larger", "[layout]\nterminal_unit_scale = 0.5\n"},
		{"short origin", "[layout]\norigin = [0, 1]\n"},
		{"zero steepness", "[scale]\nsteepness = 0\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n"},
		{"bad model name", "[models]\n\"my model\" = \"http://x/y\"\n"},
		{"bad model url", "[models]\nVGG = \"ftp://x/y\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.Layout.Gap = 2.5
	want.Models["Extra"] = "http://localhost:5000/extra"

	data, err := want.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Load(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("Load encoded config: %v\n%s", err, data)
	}
	if got.Layout.Gap != 2.5 || got.Models["Extra"] == "" || got.Server.SessionTTL != want.Server.SessionTTL {
		t.Errorf("round trip lost data: %+v", got)
	}
}
