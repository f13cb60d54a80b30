// Package viewer owns the current scene and routes interaction events to it.
//
// A [Viewer] is the single owner of one scene at a time. Loading a new
// architecture tears the old scene down before the new one is built, so no
// node of a superseded scene stays reachable. A payload that fails to parse
// leaves the current scene in place.
//
// Viewers are not safe for concurrent use; callers serialize events.
package viewer

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerscape/pkg/arch"
	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/interact"
	"github.com/matzehuels/layerscape/pkg/layout"
	"github.com/matzehuels/layerscape/pkg/scene"
)

// EventType names an interaction event.
type EventType string

const (
	EventHoverEnter EventType = "hover_enter"
	EventHoverExit  EventType = "hover_exit"
	EventActivate   EventType = "activate"
	EventClose      EventType = "close"
	EventReopen     EventType = "reopen"
)

// Event is one interaction. Index is the target layer's descriptor index;
// it is ignored for EventClose and EventReopen.
type Event struct {
	Type  EventType `json:"type"`
	Index int       `json:"index"`
}

// Viewer holds the current architecture, its scene, and the controller
// that mutates it.
type Viewer struct {
	controller *interact.Controller
	logger     *log.Logger
	layoutOpts []layout.Option

	arch  *arch.Architecture
	scene *scene.Scene
}

// New returns a viewer with no scene. layoutOpts are applied to every build.
func New(controller *interact.Controller, logger *log.Logger, layoutOpts ...layout.Option) *Viewer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if controller == nil {
		controller = interact.NewController(interact.DefaultStyles(), nil, logger)
	}
	return &Viewer{controller: controller, logger: logger, layoutOpts: layoutOpts}
}

// Load decodes a payload and replaces the current scene with its layout.
// On a decode failure the current scene is kept and the PARSE_ERROR is
// returned.
func (v *Viewer) Load(data []byte, format arch.Format) (*scene.Scene, error) {
	a, err := arch.Decode(data, format)
	if err != nil {
		v.logger.Warn("architecture rejected, keeping current scene", "err", err)
		return v.scene, err
	}
	return v.LoadArchitecture(a), nil
}

// LoadArchitecture replaces the current scene with the layout of a.
func (v *Viewer) LoadArchitecture(a *arch.Architecture) *scene.Scene {
	v.teardown()
	v.arch = a
	v.scene = layout.Build(a, v.layoutOpts...)
	v.logger.Info("scene loaded", "name", v.scene.Name, "layers", v.scene.Len(), "diagnostics", len(v.scene.Diagnostics))
	return v.scene
}

// Reset rebuilds the current architecture from scratch, discarding every
// hover and activation. It is a no-op without a loaded architecture.
func (v *Viewer) Reset() *scene.Scene {
	if v.arch == nil {
		return nil
	}
	return v.LoadArchitecture(v.arch)
}

// Clear tears down the current scene and forgets the architecture.
func (v *Viewer) Clear() {
	v.teardown()
	v.arch = nil
}

// Scene returns the current scene, or nil.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Architecture returns the architecture behind the current scene, or nil.
func (v *Viewer) Architecture() *arch.Architecture { return v.arch }

// Controller returns the interaction controller.
func (v *Viewer) Controller() *interact.Controller { return v.controller }

// Dispatch routes an event to the controller. Events naming a layer that is
// not in the current scene fail with NOT_FOUND.
func (v *Viewer) Dispatch(ev Event) error {
	switch ev.Type {
	case EventClose:
		v.controller.Close()
		return nil
	case EventReopen:
		if !v.controller.Reopen() {
			return errs.New(errs.ErrCodeNotFound, "no layer has been inspected yet")
		}
		return nil
	case EventHoverEnter, EventHoverExit, EventActivate:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown event type %q", ev.Type)
	}

	if v.scene == nil {
		return errs.New(errs.ErrCodeNotFound, "no scene loaded")
	}
	node := v.scene.NodeByIndex(ev.Index)
	if node == nil {
		return errs.New(errs.ErrCodeNotFound, "no layer with index %d", ev.Index)
	}

	switch ev.Type {
	case EventHoverEnter:
		v.controller.HoverEnter(node)
	case EventHoverExit:
		return v.controller.HoverExit(node)
	case EventActivate:
		v.controller.Activate(node)
	}
	return nil
}

func (v *Viewer) teardown() {
	v.controller.Forget()
	if v.scene != nil {
		v.scene.Teardown()
		v.scene = nil
	}
}
