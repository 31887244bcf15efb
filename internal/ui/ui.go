// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-houses/internal/astro"
	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/state"
	"github.com/litescript/ls-houses/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewCusps ViewMode = iota
	ViewWheel
	ViewEvents
)

const (
	markerStep = 5.0
	eventLines = 6
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time
)

// Options configures the root model.
type Options struct {
	// Live recomputes the ARMC from the clock on every tick.
	Live bool
	// Longitude is the east longitude used for live sidereal time.
	Longitude float64
	// Now overrides the clock.
	Now func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state *state.Manager
	now   func() time.Time

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	live      bool
	longitude float64

	// Marker point on the ecliptic
	marker   float64
	markerPl houses.Placement
	markerOK bool

	// Sub-models
	cusps CuspsModel
	wheel WheelModel

	snapshot state.Snapshot
}

// New creates a new root UI model and computes the first chart.
func New(stateMgr *state.Manager, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := Model{
		state:     stateMgr,
		now:       now,
		viewMode:  ViewCusps,
		live:      opts.Live,
		longitude: opts.Longitude,
		cusps:     NewCuspsModel(),
		wheel:     NewWheelModel(),
	}
	if m.live {
		m.syncClock()
	}
	m.refresh()
	if m.snapshot.Houses != nil {
		m.marker = m.snapshot.Houses.Angles.Ascendant
		m.placeMarker()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewCusps
		case "2", "w":
			m.viewMode = ViewWheel
		case "3", "e":
			m.viewMode = ViewEvents
		case "tab":
			m.viewMode = (m.viewMode + 1) % 3

		case "left":
			cmds = append(cmds, m.nudge(-1, 0))
		case "right":
			cmds = append(cmds, m.nudge(1, 0))
		case "shift+left":
			cmds = append(cmds, m.nudge(-10, 0))
		case "shift+right":
			cmds = append(cmds, m.nudge(10, 0))
		case "up":
			cmds = append(cmds, m.nudge(0, 1))
		case "down":
			cmds = append(cmds, m.nudge(0, -1))

		case "s":
			sys := m.state.CycleSystem(1)
			m.statusMsg = "System: " + sys.String()
			cmds = append(cmds, m.refresh())
		case "S":
			sys := m.state.CycleSystem(-1)
			m.statusMsg = "System: " + sys.String()
			cmds = append(cmds, m.refresh())
		case "f":
			p := m.state.ToggleFallback()
			m.statusMsg = "Fallback: " + p.String()
			cmds = append(cmds, m.refresh())
		case "l":
			m.live = !m.live
			if m.live {
				m.statusMsg = fmt.Sprintf("Live sidereal time at %.2f°", m.longitude)
				m.syncClock()
				cmds = append(cmds, m.refresh())
			} else {
				m.statusMsg = "Live sidereal time off"
			}

		case "[":
			m.marker = astro.Normalize(m.marker - markerStep)
			m.placeMarker()
		case "]":
			m.marker = astro.Normalize(m.marker + markerStep)
			m.placeMarker()

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo takes ~10 lines, footer and events ~9
		contentHeight := msg.Height - 19
		m.cusps = m.cusps.SetSize(msg.Width, contentHeight)
		m.wheel = m.wheel.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		if m.live {
			m.syncClock()
			cmds = append(cmds, m.refresh())
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// nudge moves the inputs by hand, which ends live mode.
func (m *Model) nudge(dARMC, dLat float64) tea.Cmd {
	if dARMC != 0 && m.live {
		m.live = false
		m.statusMsg = "Live sidereal time off"
	}
	m.state.Nudge(dARMC, dLat)
	return m.refresh()
}

// syncClock sets the ARMC from the current sidereal time.
func (m *Model) syncClock() {
	in := m.state.Snapshot().Inputs
	moment := astro.Moment{Time: m.now(), Longitude: m.longitude}
	in.ARMC = moment.ARMC()
	in.Obliquity = moment.TrueObliquity()
	m.state.SetInputs(in)
}

// refresh recomputes the chart and pushes the snapshot to the sub-models.
func (m *Model) refresh() tea.Cmd {
	m.snapshot = m.state.Recompute()
	m.cusps = m.cusps.UpdateData(m.snapshot)

	var cmd tea.Cmd
	m.wheel, cmd = m.wheel.UpdateData(m.snapshot)
	m.placeMarker()
	return cmd
}

func (m *Model) placeMarker() {
	m.markerPl, m.markerOK = m.state.Place(m.marker, 0)
	m.wheel = m.wheel.SetMarker(m.marker, m.markerOK)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewCusps:
		m.cusps, cmd = m.cusps.Update(msg)
	case ViewWheel:
		m.wheel, cmd = m.wheel.Update(msg)
	}
	if _, ok := msg.(animTickMsg); ok && m.viewMode != ViewWheel {
		// keep the wheel animation running in the background
		m.wheel, cmd = m.wheel.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewCusps:
		content = m.cusps.View()
	case ViewWheel:
		content = m.wheel.View()
	case ViewEvents:
		content = titleStyle.Render("Session events") + "\n" +
			RenderEventsPanel(m.snapshot.Events, max(m.height-20, eventLines))
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderStatusLine()
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ██╗     ███████╗      ██╗  ██╗ ██████╗ ██╗   ██╗███████╗███████╗███████╗`,
		`  ██║     ██╔════╝      ██║  ██║██╔═══██╗██║   ██║██╔════╝██╔════╝██╔════╝`,
		`  ██║     ███████╗█████╗███████║██║   ██║██║   ██║███████╗█████╗  ███████╗`,
		`  ██║     ╚════██║╚════╝██╔══██║██║   ██║██║   ██║╚════██║██╔══╝  ╚════██║`,
		`  ███████╗███████║      ██║  ██║╚██████╔╝╚██████╔╝███████║███████╗███████║`,
		`  ╚══════╝╚══════╝      ╚═╝  ╚═╝ ╚═════╝  ╚═════╝ ╚══════╝╚══════╝╚══════╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		lineLen := len(runes)

		for col, r := range runes {
			color := gradientColor(col, row, lineLen, len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  House Systems · Cusps and Positions | v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// blue, purple, magenta, then pink, darkening toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	switch {
	case xRatio < 0.33:
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	case xRatio < 0.66:
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	default:
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	brightness := 1.0 - (yRatio * 0.5)
	clamp := func(v float64) int {
		return max(0, min(255, int(v*brightness)))
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp(r), clamp(g), clamp(b))
}

func (m Model) renderStatusLine() string {
	in := m.snapshot.Inputs
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	mode := "manual"
	if m.live {
		mode = "live"
	}
	inputs := fmt.Sprintf("ARMC %7.3f°  φ %+7.3f°  ε %.4f°  [%s]", in.ARMC, in.Latitude, in.Obliquity, mode)
	system := fmt.Sprintf("%s · fallback %s", m.snapshot.System, m.snapshot.Fallback)

	return m.renderTabs() + "\n  " + accent.Render(system) + "  " + dimStyle.Render(inputs) + "\n"
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Cusps", "[2] Wheel", "[3] Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var b strings.Builder

	if m.viewMode != ViewEvents {
		b.WriteString(RenderEventsPanel(m.snapshot.Events, eventLines))
		b.WriteString("\n\n")
	}

	b.WriteString("  ")
	b.WriteString(m.renderMarker())
	b.WriteString("\n  ")

	var status string
	switch {
	case m.snapshot.LastError != nil && m.snapshot.Houses == nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.snapshot.LastError != nil:
		status = lipgloss.NewStyle().Foreground(lipgloss.Color(colorEventFallback)).Render(m.snapshot.LastError.Error())
	case m.live:
		status = accentStyle.Render(spinner) + dimStyle.Render(" "+m.now().UTC().Format("15:04:05 UTC"))
	default:
		status = accentStyle.Render("●") + dimStyle.Render(" computed in "+m.snapshot.ComputeDuration.Round(time.Microsecond).String())
	}

	var help string
	switch m.viewMode {
	case ViewCusps:
		help = "←/→: ARMC | ↑/↓: latitude | s/S: system | f: fallback | j/k: row | [/]: marker | l: live"
	case ViewWheel:
		help = "←/→: ARMC | ↑/↓: latitude | s/S: system | a: labels | [/]: marker | l: live"
	default:
		help = "tab: switch view | q: quit"
	}

	b.WriteString(status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help))

	if m.statusMsg != "" {
		b.WriteString("\n  " + dimStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m Model) renderMarker() string {
	label := dimStyle.Render("Marker ")
	lon := angleStyle.Render(chart.FormatZodiac(m.marker))
	if !m.markerOK {
		return label + lon + dimStyle.Render("  no chart")
	}
	pos := fmt.Sprintf("  house %d (%.3f)", m.markerPl.House(), m.markerPl.Value)
	if m.markerPl.Degenerate() {
		return label + lon + errorStyle.Render(pos+" "+m.markerPl.Diagnostic)
	}
	return label + lon + rowStyle.Render(pos)
}

// Snapshot returns the snapshot currently on screen.
func (m Model) Snapshot() state.Snapshot {
	return m.snapshot
}

// MarkerPlacement returns the marker longitude and its house position.
func (m Model) MarkerPlacement() (float64, houses.Placement, bool) {
	return m.marker, m.markerPl, m.markerOK
}

// Live reports whether the ARMC follows the clock.
func (m Model) Live() bool {
	return m.live
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
