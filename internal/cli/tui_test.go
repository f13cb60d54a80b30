package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/layerscape/pkg/arch"
	"github.com/matzehuels/layerscape/pkg/interact"
	"github.com/matzehuels/layerscape/pkg/viewer"
)

const tinyNet = `{"name": "Tiny", "layers": [
  {"class_name": "Conv2D", "index": 0, "output_shape": [null, 28, 28, 32], "activation": "relu"},
  {"class_name": "Flatten", "index": 1, "output_shape": [null, 25088]},
  {"class_name": "Dense", "index": 2, "output_shape": [null, 10], "activation": "softmax"}
]}`

func newTestInspector(t *testing.T) InspectorModel {
	t.Helper()
	panel := &interact.Panel{}
	v := viewer.New(interact.NewController(interact.DefaultStyles(), panel, nil), nil)
	if _, err := v.Load([]byte(tinyNet), arch.FormatJSON); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewInspectorModel(v, panel)
}

func press(m InspectorModel, key string) (InspectorModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(InspectorModel), cmd
}

func TestInspectorHoverFollowsCursor(t *testing.T) {
	m := newTestInspector(t)
	s := m.Viewer.Scene()
	if !s.Node(0).Interaction.Hovered {
		t.Fatal("first layer should be hovered on open")
	}

	m, _ = press(m, "j")
	if m.Cursor != 1 || s.Node(0).Interaction.Hovered || !s.Node(1).Interaction.Hovered {
		t.Errorf("after j: cursor=%d hovered=[%v %v]", m.Cursor, s.Node(0).Interaction.Hovered, s.Node(1).Interaction.Hovered)
	}

	m, _ = press(m, "down")
	m, _ = press(m, "down")
	if m.Cursor != 2 {
		t.Errorf("cursor should stop at the last layer, got %d", m.Cursor)
	}

	m, _ = press(m, "k")
	m, _ = press(m, "up")
	m, _ = press(m, "up")
	if m.Cursor != 0 || !s.Node(0).Interaction.Hovered || s.Node(2).Interaction.Hovered {
		t.Errorf("cursor should stop at the first layer, got %d", m.Cursor)
	}
}

func TestInspectorActivateCloseReopen(t *testing.T) {
	m := newTestInspector(t)
	m, _ = press(m, "r")
	if m.Status == "" {
		t.Error("reopen before any activation should report a status")
	}

	m, _ = press(m, "j")
	m, _ = press(m, "j")
	m, _ = press(m, "enter")
	if !m.Panel.Visible || m.Panel.Current == nil || m.Panel.Current.Index != 2 {
		t.Fatalf("panel = %+v", m.Panel)
	}
	if view := m.View(); !strings.Contains(view, "softmax") {
		t.Errorf("view should show the payload:\n%s", view)
	}

	m, _ = press(m, "c")
	if m.Panel.Visible {
		t.Error("c should close the inspector")
	}
	m, _ = press(m, "r")
	if !m.Panel.Visible || m.Panel.Current.Index != 2 {
		t.Error("r should reopen the last payload")
	}
}

func TestInspectorRebuild(t *testing.T) {
	m := newTestInspector(t)
	m, _ = press(m, "j")
	m, _ = press(m, "enter")
	before := m.Viewer.Scene()

	m, _ = press(m, "x")
	after := m.Viewer.Scene()
	if after == before {
		t.Fatal("x should rebuild the scene")
	}
	if m.Panel.Visible {
		t.Error("rebuild should drop the open inspector")
	}
	if !after.Node(1).Interaction.Hovered || after.Node(1).Interaction.Activated {
		t.Error("rebuilt scene should only hover the cursor layer")
	}
}

func TestInspectorQuit(t *testing.T) {
	for _, key := range []string{"q", "esc"} {
		m := newTestInspector(t)
		m, cmd := press(m, key)
		if cmd == nil {
			t.Errorf("%s should quit", key)
		}
		if m.Viewer.Scene().Node(0).Interaction.Hovered {
			t.Errorf("%s should leave the hovered layer", key)
		}
	}
}

func TestInspectorView(t *testing.T) {
	m := newTestInspector(t)
	view := m.View()
	for _, want := range []string{"Tiny", "Conv2D", "Flatten", "Dense", "hover", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 16})
	if got := next.(InspectorModel).Height; got != 5 {
		t.Errorf("height = %d, want 5", got)
	}
}
