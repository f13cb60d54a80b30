package interact

import (
	"strconv"
	"strings"

	"github.com/matzehuels/layerscape/pkg/arch"
)

// Payload is what the inspector shows for an activated layer.
type Payload struct {
	Kind       string  `json:"kind"`
	Index      int     `json:"index"`
	Shape      string  `json:"shape"`
	Activation *string `json:"activation,omitempty"`
}

// PayloadFor builds the inspector payload for a layer. An absent activation
// stays absent.
func PayloadFor(l arch.LayerDescriptor) Payload {
	p := Payload{
		Kind:  l.Kind,
		Index: l.Index,
		Shape: l.Shape.String(),
	}
	if l.HasActivation() {
		p.Activation = arch.Activation(l.ActivationName())
	}
	return p
}

// Lines renders the payload as display lines. The activation line is
// omitted when there is no activation.
func (p Payload) Lines() []string {
	lines := []string{
		"Type: " + p.Kind,
		"Index: " + strconv.Itoa(p.Index),
		"Output shape: " + p.Shape,
	}
	if p.Activation != nil {
		lines = append(lines, "Activation: "+*p.Activation)
	}
	return lines
}

func (p Payload) String() string { return strings.Join(p.Lines(), "\n") }

// Inspector displays payloads. Implementations decide what "showing"
// means: a terminal panel, an HTTP response, a test recorder.
type Inspector interface {
	Show(Payload)
	Hide()
	// Clear hides the inspector and drops whatever payload it holds.
	Clear()
}

// Panel is an Inspector that keeps the current display state in memory.
type Panel struct {
	Visible bool
	Current *Payload
	Shown   int
}

// Show implements Inspector.
func (p *Panel) Show(payload Payload) {
	p.Visible = true
	p.Current = &payload
	p.Shown++
}

// Hide implements Inspector.
func (p *Panel) Hide() { p.Visible = false }

// Clear implements Inspector.
func (p *Panel) Clear() {
	p.Visible = false
	p.Current = nil
}

type nopInspector struct{}

func (nopInspector) Show(Payload) {}
func (nopInspector) Hide()        {}
func (nopInspector) Clear()       {}
