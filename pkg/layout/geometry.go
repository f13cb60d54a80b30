package layout

import (
	"math"

	"github.com/matzehuels/layerscape/pkg/scene"
)

// gridDim returns the column count for c channels: ceil(sqrt(c)), or 0 for
// an empty grid.
func gridDim(c int) int {
	if c <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(c))))
}

// featureGrid lays out one cell per channel in a row-major grid centered on
// the origin. Row 0 is the top row.
func featureGrid(channels, spatial int, cfg Config, style scene.StyleHandle) []scene.Primitive {
	dim := gridDim(channels)
	if dim == 0 {
		return nil
	}
	rows := (channels + dim - 1) / dim

	cell := float64(spatial) * cfg.PixelToUnit
	pitch := cell + float64(spatial)*cfg.SpacingRatio
	midCol := float64(dim-1) / 2
	midRow := float64(rows-1) / 2

	prims := make([]scene.Primitive, channels)
	for k := range prims {
		col, row := k%dim, k/dim
		prims[k] = scene.Primitive{
			Position: scene.V((float64(col)-midCol)*pitch, (midRow-float64(row))*pitch, 0),
			Scale:    scene.V(cell, cell, cfg.CellDepth),
			Style:    style,
		}
	}
	return prims
}

// unitCloud describes the markers of a linear layer. Interior layers get a
// vertical line, the last layer a smaller horizontal row.
func unitCloud(units int, terminal bool, cfg Config) scene.InstanceCloud {
	shown := max(units, 0)
	if cfg.NeuronCap > 0 {
		shown = min(shown, cfg.NeuronCap)
	}
	if terminal {
		return scene.InstanceCloud{
			Count:        shown,
			Distribution: scene.DistributionCluster,
			Spacing:      cfg.UnitSpacing,
			UnitScale:    cfg.TerminalUnitScale,
			Offset:       scene.V(0, cfg.ClusterOffsetY, 0),
		}
	}
	return scene.InstanceCloud{
		Count:        shown,
		Distribution: scene.DistributionLine,
		Spacing:      cfg.UnitSpacing,
		UnitScale:    cfg.UnitScale,
		Offset:       scene.V(0, cfg.LineOffsetY, 0),
	}
}
