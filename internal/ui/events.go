package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-houses/internal/state"
)

// Event colors
const (
	colorEventFallback  = "#FFD700" // Gold
	colorEventUndefined = "#FF4500" // Orange-red
	colorEventDegen     = "#FF6347" // Tomato
	colorEventSystem    = "#7B68EE" // Slate blue
)

// RenderEventsPanel renders the most recent session events, newest last.
// Format:
//
//	14:02:11  FALLBACK        Placidus → Porphyry @ 70.0°
//	14:02:15  SYSTEM_CHANGED  Porphyry → Koch
func RenderEventsPanel(events []state.Event, limit int) string {
	if len(events) == 0 {
		return dimStyle.Render("No events")
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	var lines []string
	for _, e := range events {
		ts := dimStyle.Render(e.Timestamp.Format("15:04:05"))
		kind := eventStyle(e.Type).Render(fmt.Sprintf("%-15s", e.Type))

		var detail string
		switch e.Type {
		case state.EventFallback:
			detail = fmt.Sprintf("%s → %s @ %.1f°", e.Previous, e.System, e.Latitude)
		case state.EventSystemChanged:
			detail = fmt.Sprintf("%s → %s", e.Previous, e.System)
		case state.EventUndefined:
			detail = fmt.Sprintf("%s @ %.1f°", e.System, e.Latitude)
		case state.EventDegenerate:
			detail = fmt.Sprintf("%s λ %.1f°: %s", e.System, e.Longitude, e.Detail)
		default:
			detail = e.Detail
		}
		lines = append(lines, ts+"  "+kind+" "+rowStyle.Render(detail))
	}
	return strings.Join(lines, "\n")
}

func eventStyle(t state.EventType) lipgloss.Style {
	var color string
	switch t {
	case state.EventFallback:
		color = colorEventFallback
	case state.EventUndefined:
		color = colorEventUndefined
	case state.EventDegenerate:
		color = colorEventDegen
	default:
		color = colorEventSystem
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
