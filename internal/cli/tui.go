package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/rsolver/pkg/network"
	"github.com/matzehuels/rsolver/pkg/network/reduce"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	removedStyle      = lipgloss.NewStyle().Foreground(colorRed)
	addedStyle        = lipgloss.NewStyle().Foreground(colorGreen)
)

// defaultTraceHeight is the number of visible steps before the first
// window size message arrives.
const defaultTraceHeight = 12

// =============================================================================
// traceModel - Interactive step viewer
// =============================================================================

type traceModel struct {
	Title  string
	Steps  reduce.Trace
	Cursor int
	Offset int
	Height int
}

func newTraceModel(title string, steps reduce.Trace) traceModel {
	return traceModel{Title: title, Steps: steps, Height: defaultTraceHeight}
}

func (m traceModel) Init() tea.Cmd {
	return nil
}

func (m traceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Steps))
		case "end", "G":
			m.move(len(m.Steps))
		}
	case tea.WindowSizeMsg:
		// Title, help, detail block and footer take about ten lines.
		m.Height = max(msg.Height-10, 3)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the steps, and scrolls the
// window so the cursor stays visible.
func (m *traceModel) move(delta int) {
	if len(m.Steps) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Steps)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m traceModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ step  pgup/pgdn page  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Steps) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to reduce"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Steps))
	width := len(fmt.Sprint(len(m.Steps)))
	for i := m.Offset; i < end; i++ {
		s := m.Steps[i]
		line := fmt.Sprintf("%*d  %-9s %d → %d", width, i+1, s.Rule, len(s.Removed), len(s.Added))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	cur := m.Steps[m.Cursor]
	b.WriteString("\n")
	b.WriteString(resistorLines("-", cur.Removed, removedStyle))
	b.WriteString(resistorLines("+", cur.Added, addedStyle))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Steps))))

	return b.String()
}

func resistorLines(sign string, rs []network.Resistor, style lipgloss.Style) string {
	if len(rs) == 0 {
		return listDimStyle.Render("  "+sign+" ∅") + "\n"
	}
	var b strings.Builder
	for _, r := range rs {
		b.WriteString(style.Render("  " + sign + " " + r.String()))
		b.WriteString("\n")
	}
	return b.String()
}
