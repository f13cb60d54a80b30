package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/interact"
	"github.com/matzehuels/layerscape/pkg/scene"
	"github.com/matzehuels/layerscape/pkg/viewer"
)

var (
	listDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	phaseHoverStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	phaseActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	diagnosticStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// InspectorModel - interactive layer browser
// =============================================================================

// InspectorModel is the bubbletea model behind `layerscape inspect`. Moving
// the cursor hovers layers; enter activates one and shows its payload.
type InspectorModel struct {
	Viewer *viewer.Viewer
	Panel  *interact.Panel
	Cursor int
	Offset int
	Height int
	Status string
}

// NewInspectorModel creates a model over a viewer with a loaded scene and
// hovers the first layer.
func NewInspectorModel(v *viewer.Viewer, panel *interact.Panel) InspectorModel {
	m := InspectorModel{Viewer: v, Panel: panel, Height: 15}
	m.hover(0)
	return m
}

func (m InspectorModel) Init() tea.Cmd {
	return nil
}

func (m InspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.unhover()
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.move(m.Cursor - 1)
			}
		case "down", "j":
			if m.Cursor < m.count()-1 {
				m.move(m.Cursor + 1)
			}
		case "enter", " ":
			m.dispatch(viewer.EventActivate, m.Cursor)
		case "c":
			m.dispatch(viewer.EventClose, m.Cursor)
		case "r":
			m.dispatch(viewer.EventReopen, m.Cursor)
		case "x":
			m.Viewer.Reset()
			m.hover(m.Cursor)
			m.Status = "scene rebuilt"
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

func (m *InspectorModel) count() int {
	if s := m.Viewer.Scene(); s != nil {
		return s.Len()
	}
	return 0
}

func (m *InspectorModel) node(i int) *scene.VisualNode {
	if s := m.Viewer.Scene(); s != nil {
		return s.Node(i)
	}
	return nil
}

func (m *InspectorModel) move(to int) {
	m.unhover()
	m.hover(to)
}

func (m *InspectorModel) hover(i int) {
	if m.node(i) == nil {
		return
	}
	m.Cursor = i
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	m.dispatch(viewer.EventHoverEnter, i)
}

func (m *InspectorModel) unhover() {
	m.dispatch(viewer.EventHoverExit, m.Cursor)
}

// dispatch sends an event for the node at position i.
func (m *InspectorModel) dispatch(typ viewer.EventType, i int) {
	ev := viewer.Event{Type: typ}
	if n := m.node(i); n != nil {
		ev.Index = n.Layer.Index
	}
	if err := m.Viewer.Dispatch(ev); err != nil {
		m.Status = errs.UserMessage(err)
	}
}

func (m InspectorModel) View() string {
	var b strings.Builder

	s := m.Viewer.Scene()
	if s == nil {
		return StyleDim.Render("no scene loaded") + "\n"
	}

	title := "Layers"
	if s.Name != "" {
		title = s.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ hover  ⏎ inspect  c close  r reopen  x rebuild  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, s.Len())
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		n := s.Node(i)
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(n.Layer.Index),
			n.Layer.Kind,
			n.Layer.Shape.String(),
			string(n.Category),
			fmt.Sprintf("%.2f", n.Position.Z),
			phaseLabel(n.Interaction.Phase()),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Kind", "Shape", "Category", "Z", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return tableHeaderStyle
			}
			n := s.Node(m.Offset + row)
			if n == nil {
				return lipgloss.NewStyle()
			}
			switch {
			case n.Interaction.Activated:
				return phaseActiveStyle
			case n.Interaction.Hovered:
				return phaseHoverStyle
			case n.Category == scene.CategoryUnrecognized:
				return diagnosticStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  depth %.2f", m.Cursor+1, s.Len(), s.PlacedDepth)))
	b.WriteString("\n")

	if m.Panel != nil && m.Panel.Visible && m.Panel.Current != nil {
		b.WriteString("\n")
		b.WriteString(renderPayload(*m.Panel.Current))
		b.WriteString("\n")
	}
	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Status))
		b.WriteString("\n")
	}
	return b.String()
}

func phaseLabel(p scene.Phase) string {
	switch p {
	case scene.PhaseHovered:
		return "hover"
	case scene.PhaseActivated:
		return "active"
	}
	return ""
}
