package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-houses/internal/houses"
)

var signs = [12]string{
	"Ari", "Tau", "Gem", "Cnc", "Leo", "Vir",
	"Lib", "Sco", "Sgr", "Cap", "Aqr", "Psc",
}

// FormatZodiac renders an ecliptic longitude as degrees, minutes and
// seconds within its sign, e.g. 01°23'54" Leo.
func FormatZodiac(lon float64) string {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	totalSec := int(math.Round(lon * 3600))
	if totalSec >= 360*3600 {
		totalSec = 0
	}
	sign := totalSec / (30 * 3600)
	rem := totalSec % (30 * 3600)
	return fmt.Sprintf("%02d°%02d'%02d\" %s", rem/3600, rem%3600/60, rem%60, signs[sign])
}

func formatAngle(deg float64, u Units) string {
	if u == Radians {
		return fmt.Sprintf("%.6f", u.Angle(deg))
	}
	return fmt.Sprintf("%10.6f", deg)
}

// WriteJSON writes the chart as indented JSON in the given units.
func (c *Chart) WriteJSON(w io.Writer, u Units) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c.In(u))
}

// WriteJSON writes the placement as indented JSON in the given units.
func (p Placement) WriteJSON(w io.Writer, u Units) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p.In(u))
}

// WriteTable writes a text table of cusps and angles.
func (c *Chart) WriteTable(w io.Writer, u Units) {
	title := c.System.String()
	if c.Name != "" {
		title = c.Name + " · " + title
	}
	when := "ARMC only"
	if c.Time != nil {
		when = c.Time.UTC().Format(time.RFC3339)
	}

	fmt.Fprintf(w, "%s houses @ %s\n", title, when)
	fmt.Fprintf(w, "lat %s  lon %s  armc %s  eps %s (%s)\n",
		formatAngle(c.Latitude, u), formatAngle(c.Longitude, u),
		formatAngle(c.ARMC, u), formatAngle(c.Obliquity, u), u)
	if c.Note != "" {
		fmt.Fprintf(w, "note: %s\n", c.Note)
	}
	fmt.Fprintln(w, strings.Repeat("─", 48))

	fmt.Fprintf(w, "%-6s %-12s %-16s\n", "House", "Cusp", "Zodiac")
	fmt.Fprintln(w, strings.Repeat("─", 48))
	for i, cusp := range c.Cusps {
		fmt.Fprintf(w, "%-6d %-12s %-16s\n", i+1, formatAngle(cusp, u), FormatZodiac(cusp))
	}

	fmt.Fprintln(w, strings.Repeat("─", 48))
	a := c.Angles
	for _, row := range []struct {
		name string
		val  float64
	}{
		{"Ascendant", a.Ascendant},
		{"MC", a.MC},
		{"Vertex", a.Vertex},
		{"Equatorial asc.", a.EquatorialAscendant},
		{"Co-asc. (Koch)", a.CoAscendantKoch},
		{"Co-asc. (Munkasey)", a.CoAscendantMunkasey},
		{"Polar asc.", a.PolarAscendant},
	} {
		fmt.Fprintf(w, "%-19s %-12s %s\n", row.name, formatAngle(row.val, u), FormatZodiac(row.val))
	}
}

// WritePlacement writes a one-point summary.
func WritePlacement(w io.Writer, p Placement, u Units) {
	system := p.System.String()
	if p.FellBack() {
		system = fmt.Sprintf("%s (%s undefined)", p.System, p.Requested)
	}
	fmt.Fprintf(w, "%s at %s (%s): house %d, position %.6f\n",
		system, strings.TrimSpace(formatAngle(p.Longitude, u)), FormatZodiac(p.Longitude),
		p.House, p.Position)
	if p.Degenerate() {
		fmt.Fprintf(w, "  warning: %s\n", p.Diagnostic)
	}
	horizon := "below"
	if p.AboveHorizon {
		horizon = "above"
	}
	fmt.Fprintf(w, "  az %s  alt %s (%s horizon)  nearest cusp %d (%+.4f°)\n",
		strings.TrimSpace(formatAngle(p.Azimuth, u)), strings.TrimSpace(formatAngle(p.Altitude, u)),
		horizon, p.NearestCusp, p.CuspDistance)
}

// WriteSystems lists the supported house systems.
func WriteSystems(w io.Writer) {
	fmt.Fprintf(w, "%-4s %-16s\n", "Code", "System")
	fmt.Fprintln(w, strings.Repeat("─", 21))
	for _, sys := range houses.Systems {
		fmt.Fprintf(w, "%-4s %-16s\n", sys.Code(), truncateStr(sys.String(), 16))
	}
}

// WriteList writes one line per chart.
func WriteList(w io.Writer, charts []*Chart) {
	if len(charts) == 0 {
		fmt.Fprintln(w, "No saved charts")
		return
	}
	fmt.Fprintf(w, "%-36s %-16s %-14s %-20s\n", "ID", "Name", "System", "Created")
	fmt.Fprintln(w, strings.Repeat("─", 90))
	for _, c := range charts {
		fmt.Fprintf(w, "%-36s %-16s %-14s %-20s\n",
			c.ID, truncateStr(c.Name, 16), truncateStr(c.System.String(), 14),
			c.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "\nTotal: %d charts\n", len(charts))
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
