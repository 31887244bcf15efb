package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-houses/internal/astro"
	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/state"
)

// Styles for the cusp table
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	angleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("60"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// CuspsModel is the cusp table view.
type CuspsModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
}

// NewCuspsModel creates a new cusp table model.
func NewCuspsModel() CuspsModel {
	return CuspsModel{}
}

// SetSize updates the viewport size.
func (m CuspsModel) SetSize(width, height int) CuspsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m CuspsModel) UpdateData(snapshot state.Snapshot) CuspsModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m CuspsModel) Update(msg tea.Msg) (CuspsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "j":
			if m.cursor < 11 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			m.cursor = 11
		}
	}
	return m, nil
}

// SelectedHouse returns the highlighted house number (1..12).
func (m CuspsModel) SelectedHouse() int {
	return m.cursor + 1
}

// View renders the cusp table and the angle panel side by side.
func (m CuspsModel) View() string {
	h := m.snapshot.Houses
	if h == nil {
		var b strings.Builder
		if m.snapshot.LastError != nil {
			b.WriteString(errorStyle.Render("Error: " + m.snapshot.LastError.Error()))
			b.WriteString("\n")
		}
		b.WriteString("No cusps at this latitude. Press f to enable the Porphyry fallback.\n")
		return b.String()
	}

	table := m.renderCuspTable(h)
	angles := renderAngles(h.Angles)
	return lipgloss.JoinHorizontal(lipgloss.Top, table, "    ", angles)
}

func (m CuspsModel) renderCuspTable(h *houses.Houses) string {
	var b strings.Builder

	title := h.System.String() + " houses"
	if h.FellBack() {
		title += " (" + h.Requested.String() + " undefined)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	header := fmt.Sprintf("%-5s %-10s %-14s %-7s %s", "House", "Cusp", "Zodiac", "Span", "")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i := 1; i <= 12; i++ {
		next := i%12 + 1
		span := astro.Normalize(h.Cusps[next] - h.Cusps[i])

		row := fmt.Sprintf("%5d %10.4f %-14s %6.2f° %s",
			i,
			h.Cusps[i],
			chart.FormatZodiac(h.Cusps[i]),
			span,
			m.renderSpanBar(span, 10),
		)
		if i-1 == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderSpanBar draws a house width against a 60° scale, so an equal
// house fills half the bar.
func (m CuspsModel) renderSpanBar(span float64, width int) string {
	filled := int(span / 60 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + angleStyle.Render(bar) + "]"
}

func renderAngles(a houses.Angles) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Angles"))
	b.WriteString("\n")

	rows := []struct {
		name string
		deg  float64
	}{
		{"Ascendant", a.Ascendant},
		{"MC", a.MC},
		{"ARMC", a.ARMC},
		{"Vertex", a.Vertex},
		{"Eq. Asc", a.EquatorialAscendant},
		{"Co-Asc (Koch)", a.CoAscendantKoch},
		{"Co-Asc (Munk.)", a.CoAscendantMunkasey},
		{"Polar Asc", a.PolarAscendant},
	}
	for _, r := range rows {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-15s", r.name)))
		b.WriteString(angleStyle.Render(fmt.Sprintf("%9.4f", r.deg)))
		b.WriteString("  ")
		b.WriteString(rowStyle.Render(chart.FormatZodiac(r.deg)))
		b.WriteString("\n")
	}
	return b.String()
}
