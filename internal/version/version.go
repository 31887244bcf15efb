// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.4.0"

// Milestones:
// 0.4.0 - Chart journal (SQLite), HTTP service with Prometheus metrics
// 0.3.0 - Wheel view, marker placement, live sidereal time in the TUI
// 0.2.0 - House positions for all systems, Horizon and Alcabitius inverses
// 0.1.0 - Initial release: eleven house systems, cusp table, headless modes
