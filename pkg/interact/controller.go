// Package interact implements hover highlighting and layer inspection.
//
// A [Controller] is the only thing that changes a node after layout. On
// hover entry it records every primitive style and swaps in a highlight; on
// exit it restores the recorded styles by position. Activation sends the
// layer's [Payload] to an [Inspector].
//
// The controller is single-threaded: callers serialize events per viewer.
package interact

import (
	"io"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/observability"
	"github.com/matzehuels/layerscape/pkg/scene"
)

// Styles are the highlight styles applied on hover.
type Styles struct {
	// Solid highlights feature-map blocks.
	Solid scene.StyleHandle
	// Neuron highlights unit-marker clouds.
	Neuron scene.StyleHandle
}

// DefaultStyles returns the stock highlight styles.
func DefaultStyles() Styles {
	return Styles{Solid: "highlight-solid", Neuron: "highlight-neuron"}
}

// Controller drives the hover/activate state machine.
type Controller struct {
	styles    Styles
	inspector Inspector
	logger    *log.Logger

	stored *Payload
	active *scene.VisualNode
	open   bool
}

// NewController returns a controller. A nil inspector discards payloads and
// a nil logger discards log output.
func NewController(styles Styles, inspector Inspector, logger *log.Logger) *Controller {
	if inspector == nil {
		inspector = nopInspector{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{styles: styles, inspector: inspector, logger: logger}
}

// highlight returns the hover style for node's surface.
func (c *Controller) highlight(node *scene.VisualNode) (scene.StyleHandle, bool) {
	switch node.Surface {
	case scene.SurfaceSolid:
		return c.styles.Solid, true
	case scene.SurfaceNeuron:
		return c.styles.Neuron, true
	}
	return "", false
}

// HoverEnter highlights node. Entering an already hovered node does
// nothing, so the original styles are never overwritten by highlights.
func (c *Controller) HoverEnter(node *scene.VisualNode) {
	if node == nil || node.Interaction.Hovered {
		return
	}
	node.Interaction.Snapshot = node.Styles()
	node.Interaction.Hovered = true

	if style, ok := c.highlight(node); ok {
		for i := range node.Primitives {
			node.Primitives[i].Style = style
		}
	}
	observability.Interaction().OnHover(node.Layer.Kind, node.Layer.Index, true)
}

// HoverExit restores the styles recorded by HoverEnter. If the primitive
// count changed in between, restoration is skipped and a STYLE_MISMATCH
// error is logged and returned; the node is left un-hovered either way.
func (c *Controller) HoverExit(node *scene.VisualNode) error {
	if node == nil || !node.Interaction.Hovered {
		return nil
	}
	snapshot := node.Interaction.Snapshot
	node.Interaction.Hovered = false
	node.Interaction.Snapshot = nil
	observability.Interaction().OnHover(node.Layer.Kind, node.Layer.Index, false)

	if len(snapshot) != len(node.Primitives) {
		observability.Interaction().OnStyleMismatch(node.Layer.Index, len(snapshot), len(node.Primitives))
		err := errs.New(errs.ErrCodeStyleMismatch, "layer %d: recorded %d styles, node has %d primitives",
			node.Layer.Index, len(snapshot), len(node.Primitives))
		c.logger.Warn("hover restore skipped", "index", node.Layer.Index, "recorded", len(snapshot), "current", len(node.Primitives))
		return err
	}
	for i, style := range snapshot {
		node.Primitives[i].Style = style
	}
	return nil
}

// Activate stores node's payload and shows it. Any previously activated
// node is deactivated.
func (c *Controller) Activate(node *scene.VisualNode) {
	if node == nil {
		return
	}
	if c.active != nil && c.active != node {
		c.active.Interaction.Activated = false
	}
	p := PayloadFor(node.Layer)
	c.stored = &p
	c.active = node
	c.open = true
	node.Interaction.Activated = true

	c.logger.Debug("layer activated", "index", node.Layer.Index, "kind", node.Layer.Kind)
	observability.Interaction().OnActivate(node.Layer.Kind, node.Layer.Index)
	c.inspector.Show(p)
}

// Close hides the inspector. The stored payload is kept for Reopen.
func (c *Controller) Close() {
	if c.active != nil {
		c.active.Interaction.Activated = false
	}
	c.open = false
	c.inspector.Hide()
}

// Reopen shows the stored payload again. It reports false when nothing was
// ever activated.
func (c *Controller) Reopen() bool {
	if c.stored == nil {
		return false
	}
	if c.active != nil {
		c.active.Interaction.Activated = true
	}
	c.open = true
	c.inspector.Show(*c.stored)
	return true
}

// Stored returns the last activated payload.
func (c *Controller) Stored() (Payload, bool) {
	if c.stored == nil {
		return Payload{}, false
	}
	return *c.stored, true
}

// Open reports whether the inspector is currently showing a payload.
func (c *Controller) Open() bool { return c.open }

// Forget drops the stored payload and active node and clears the
// inspector. Used when the scene they belong to is torn down.
func (c *Controller) Forget() {
	c.inspector.Clear()
	c.stored = nil
	c.active = nil
	c.open = false
}
