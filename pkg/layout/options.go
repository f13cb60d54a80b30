package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerscape/pkg/scale"
	"github.com/matzehuels/layerscape/pkg/scene"
)

// Config holds the designer-tunable geometry constants.
type Config struct {
	// PixelToUnit converts a layer's spatial size into cell width.
	PixelToUnit float64
	// SpacingRatio converts spatial size into the gap between cells.
	SpacingRatio float64
	// CellDepth is the Z extent of one feature-map cell.
	CellDepth float64
	// MaxChannels truncates very wide volumetric layers (0 disables).
	MaxChannels int

	// NeuronCap bounds the markers shown for a linear layer.
	NeuronCap int
	// UnitSpacing is the distance between marker centers.
	UnitSpacing float64
	// UnitScale is the marker size on interior layers.
	UnitScale float64
	// TerminalUnitScale is the marker size on the last layer.
	TerminalUnitScale float64
	// LineOffsetY centers the vertical marker line of interior layers.
	LineOffsetY float64
	// ClusterOffsetY centers the horizontal marker row of the last layer.
	ClusterOffsetY float64

	// Gap separates consecutive layers along Z.
	Gap float64
	// MaxDepth is the Z budget for the whole stack (0 disables compression).
	MaxDepth float64
	// Origin is where the first layer's front face sits.
	Origin scene.Vec3
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		PixelToUnit:       0.04,
		SpacingRatio:      0.01,
		CellDepth:         0.3,
		MaxChannels:       4096,
		NeuronCap:         50,
		UnitSpacing:       0.15,
		UnitScale:         0.1,
		TerminalUnitScale: 0.07,
		LineOffsetY:       3,
		ClusterOffsetY:    0,
		Gap:               1,
		MaxDepth:          27,
		Origin:            scene.V(0, 1, -2),
	}
}

// Option configures a Build call.
type Option func(*builder)

type builder struct {
	cfg      Config
	sigmoid  scale.Sigmoid
	registry *Registry
	logger   *log.Logger
}

// WithConfig replaces the geometry constants.
func WithConfig(c Config) Option { return func(b *builder) { b.cfg = c } }

// WithSigmoid replaces the per-layer scale curve.
func WithSigmoid(s scale.Sigmoid) Option { return func(b *builder) { b.sigmoid = s } }

// WithRegistry replaces the kind-to-template registry.
func WithRegistry(r *Registry) Option { return func(b *builder) { b.registry = r } }

// WithLogger routes diagnostics to l instead of discarding them.
func WithLogger(l *log.Logger) Option { return func(b *builder) { b.logger = l } }

// WithMaxDepth overrides the Z budget.
func WithMaxDepth(d float64) Option { return func(b *builder) { b.cfg.MaxDepth = d } }

// WithNeuronCap overrides the marker cap for linear layers.
func WithNeuronCap(n int) Option { return func(b *builder) { b.cfg.NeuronCap = n } }

// WithOrigin overrides where the stack starts.
func WithOrigin(o scene.Vec3) Option { return func(b *builder) { b.cfg.Origin = o } }

func newBuilder(opts ...Option) *builder {
	b := &builder{
		cfg:      DefaultConfig(),
		sigmoid:  scale.DefaultSigmoid(),
		registry: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	if b.registry == nil {
		b.registry = NewRegistry()
	}
	return b
}
