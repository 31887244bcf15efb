package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-houses/internal/astro"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/state"
)

const (
	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	glyphRing   = '·'
	glyphSpoke  = '∙'
	glyphAngle  = '●'
	glyphMarker = '✦'

	colorRing   = "60"
	colorSpoke  = "135"
	colorAngle  = "229"
	colorLabel  = "252"
	colorMarker = "#d0c8ff"
	colorCanvas = "236"

	// Terminal cells are roughly twice as tall as wide.
	cellAspect = 2.0
)

// LabelMode controls how house numbers are displayed.
type LabelMode int

const (
	LabelNone   LabelMode = iota // No labels
	LabelHouses                  // House numbers
	LabelAll                     // House numbers and cusp degrees
)

// WheelModel renders the chart as a wheel with the ascendant on the left.
type WheelModel struct {
	width  int
	height int

	// Wheel rotation: the ecliptic longitude drawn at 9 o'clock.
	rotation float64

	// Animation state
	animating   bool
	animStartRo float64
	animTargRo  float64
	animStart   time.Time

	houses    *houses.Houses
	marker    float64
	markerOK  bool
	labelMode LabelMode
}

// NewWheelModel creates a new wheel model.
func NewWheelModel() WheelModel {
	return WheelModel{labelMode: LabelHouses}
}

// SetSize updates the viewport size.
func (m WheelModel) SetSize(width, height int) WheelModel {
	m.width = width
	m.height = height
	return m
}

// SetMarker places the marker at an ecliptic longitude.
func (m WheelModel) SetMarker(lon float64, ok bool) WheelModel {
	m.marker = lon
	m.markerOK = ok
	return m
}

// UpdateData updates with a new snapshot and starts turning the wheel
// toward the new ascendant.
func (m WheelModel) UpdateData(snapshot state.Snapshot) (WheelModel, tea.Cmd) {
	first := m.houses == nil
	m.houses = snapshot.Houses
	if m.houses == nil {
		m.animating = false
		return m, nil
	}

	target := m.houses.Angles.Ascendant
	if first {
		m.rotation = target
		return m, nil
	}
	if math.Abs(normalizeAngle(target-m.rotation)) < 0.01 {
		return m, nil
	}
	return m.startAnimation(target)
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m WheelModel) Update(msg tea.Msg) (WheelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "a" {
			m.labelMode = (m.labelMode + 1) % 3
		}
	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}
	return m, nil
}

func (m WheelModel) startAnimation(target float64) (WheelModel, tea.Cmd) {
	wasAnimating := m.animating
	m.animating = true
	m.animStartRo = m.rotation
	m.animTargRo = target
	m.animStart = time.Now()
	if wasAnimating {
		return m, nil
	}
	return m, animTick()
}

func (m WheelModel) updateAnimation() (WheelModel, tea.Cmd) {
	elapsed := time.Since(m.animStart)
	t := float64(elapsed) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.rotation = m.animTargRo
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)
	m.rotation = lerpAngle(m.animStartRo, m.animTargRo, t)
	return m, animTick()
}

// View renders the wheel.
func (m WheelModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Wheel view requires larger terminal"
	}
	if m.houses == nil {
		return dimStyle.Render("No cusps to draw")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCanvas(m.width, m.height-2))
	return b.String()
}

func (m WheelModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")).Render("Wheel")

	var labelStr string
	switch m.labelMode {
	case LabelNone:
		labelStr = dimStyle.Render("Labels: off")
	case LabelHouses:
		labelStr = angleStyle.Render("Labels: houses")
	case LabelAll:
		labelStr = angleStyle.Render("Labels: all")
	}

	rot := dimStyle.Render(fmt.Sprintf("Asc %.1f° MC %.1f°", m.houses.Angles.Ascendant, m.houses.Angles.MC))
	return fmt.Sprintf("%s | %s | %s | %s", title, m.houses.System, labelStr, rot)
}

// project maps an ecliptic longitude and a radius in rows to a canvas
// cell. Longitudes increase counterclockwise from the rotation point.
func (m WheelModel) project(lon, radius float64, cx, cy int) (int, int) {
	phi := (180 + lon - m.rotation) * math.Pi / 180
	x := float64(cx) + radius*cellAspect*math.Cos(phi)
	y := float64(cy) - radius*math.Sin(phi)
	return int(math.Round(x)), int(math.Round(y))
}

func (m WheelModel) renderCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = colorCanvas
		}
	}

	set := func(x, y int, r rune, c lipgloss.Color) {
		if x >= 0 && x < width && y >= 0 && y < height {
			canvas[y][x] = r
			colors[y][x] = c
		}
	}
	text := func(x, y int, s string, c lipgloss.Color) {
		runes := []rune(s)
		x -= len(runes) / 2
		for i, r := range runes {
			set(x+i, y, r, c)
		}
	}

	cx, cy := width/2, height/2
	radius := math.Min(float64(height)/2-1, float64(width)/(2*cellAspect)-2)
	if radius < 3 {
		radius = 3
	}

	// Outer ring
	for deg := 0.0; deg < 360; deg += 2 {
		x, y := m.project(deg, radius, cx, cy)
		set(x, y, glyphRing, colorRing)
	}

	// Cusp spokes, from the inner circle to the ring
	h := m.houses
	for i := 1; i <= 12; i++ {
		for r := radius * 0.35; r < radius; r += 0.5 {
			x, y := m.project(h.Cusps[i], r, cx, cy)
			set(x, y, glyphSpoke, colorSpoke)
		}
	}

	// Labels at house midpoints
	if m.labelMode != LabelNone {
		for i := 1; i <= 12; i++ {
			next := h.Cusps[i%12+1]
			mid := h.Cusps[i] + astro.Normalize(next-h.Cusps[i])/2
			x, y := m.project(mid, radius*0.7, cx, cy)
			text(x, y, fmt.Sprintf("%d", i), colorLabel)
			if m.labelMode == LabelAll {
				x, y = m.project(h.Cusps[i], radius+1, cx, cy)
				text(x, y, fmt.Sprintf("%.0f", h.Cusps[i]), colorRing)
			}
		}
	}

	// Angles
	for _, a := range []struct {
		name string
		lon  float64
	}{
		{"ASC", h.Angles.Ascendant},
		{"DSC", h.Angles.Ascendant + 180},
		{"MC", h.Angles.MC},
		{"IC", h.Angles.MC + 180},
	} {
		x, y := m.project(a.lon, radius, cx, cy)
		set(x, y, glyphAngle, colorAngle)
		lx, ly := m.project(a.lon, radius+1.5, cx, cy)
		text(lx, ly, a.name, colorAngle)
	}

	if m.markerOK {
		x, y := m.project(m.marker, radius*0.85, cx, cy)
		set(x, y, glyphMarker, colorMarker)
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}
