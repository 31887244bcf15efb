// Package state provides thread-safe session state shared by the TUI and
// the HTTP service.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-houses/internal/astro"
	"github.com/litescript/ls-houses/internal/houses"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventFallback      EventType = "FALLBACK"
	EventDegenerate    EventType = "DEGENERATE"
	EventSystemChanged EventType = "SYSTEM_CHANGED"
	EventUndefined     EventType = "UNDEFINED"
)

// Event represents a notable change in the session.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	System    string    `json:"system"`
	Previous  string    `json:"previous,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// HistoryEntry is one computation kept in the history buffer.
type HistoryEntry struct {
	Timestamp time.Time
	Inputs    houses.Inputs
	Houses    houses.Houses
}

// Manager handles all shared session state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Session settings
	inputs     houses.Inputs
	system     houses.System
	fallback   houses.FallbackPolicy
	iterations int
	trace      houses.TraceFunc

	// Current result
	current         *houses.Houses
	lastCompute     time.Time
	lastError       error
	computeDuration time.Duration
	currentInputs   houses.Inputs
	prevSystem      houses.System
	prevOutcome     EventType

	// History buffer
	history       []HistoryEntry
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen int
	MaxEvents     int
	Inputs        houses.Inputs
	System        houses.System
	Fallback      houses.FallbackPolicy
	Iterations    int
	Trace         houses.TraceFunc
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen: 60,
		MaxEvents:     50,
		Inputs:        houses.Inputs{Obliquity: 23.4392911},
		System:        houses.Placidus,
		Iterations:    houses.DefaultRefinementIterations,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	sys := cfg.System
	if !sys.Valid() {
		sys = houses.Placidus
	}
	return &Manager{
		inputs:        cfg.Inputs,
		system:        sys,
		fallback:      cfg.Fallback,
		iterations:    cfg.Iterations,
		trace:         cfg.Trace,
		maxHistoryLen: cfg.MaxHistoryLen,
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
	}
}

// Engine builds an engine for the current session settings.
func (m *Manager) Engine() *houses.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engineLocked()
}

func (m *Manager) engineLocked() *houses.Engine {
	opts := []houses.Option{
		houses.WithRefinementIterations(m.iterations),
		houses.WithFallback(m.fallback),
	}
	if m.trace != nil {
		opts = append(opts, houses.WithTrace(m.trace))
	}
	return houses.New(opts...)
}

// SetInputs replaces the session inputs. The ARMC is normalized and the
// latitude clamped to [-90, 90].
func (m *Manager) SetInputs(in houses.Inputs) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setInputsLocked(in)
}

func (m *Manager) setInputsLocked(in houses.Inputs) {
	in.ARMC = astro.Normalize(in.ARMC)
	in.Latitude = max(-90, min(90, in.Latitude))
	m.inputs = in
}

// Nudge shifts ARMC and latitude by the given amounts.
func (m *Manager) Nudge(dARMC, dLat float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := m.inputs
	in.ARMC += dARMC
	in.Latitude += dLat
	m.setInputsLocked(in)
}

// SetSystem selects the house system.
func (m *Manager) SetSystem(sys houses.System) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sys.Valid() {
		m.system = sys
	}
}

// CycleSystem steps through houses.Systems by delta and returns the new
// system.
func (m *Manager) CycleSystem(delta int) houses.System {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(houses.Systems)
	idx := 0
	for i, sys := range houses.Systems {
		if sys == m.system {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%n + n) % n
	m.system = houses.Systems[idx]
	return m.system
}

// ToggleFallback switches between the Porphyry fallback and none.
func (m *Manager) ToggleFallback() houses.FallbackPolicy {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fallback == houses.FallbackPorphyry {
		m.fallback = houses.FallbackNone
	} else {
		m.fallback = houses.FallbackPorphyry
	}
	return m.fallback
}

// Recompute runs the engine on the session settings and records the result.
func (m *Manager) Recompute() Snapshot {
	m.mu.RLock()
	e := m.engineLocked()
	in, sys := m.inputs, m.system
	m.mu.RUnlock()

	start := time.Now()
	h, err := e.Houses(in, sys)
	m.Update(in, h, time.Since(start), err)
	return m.Snapshot()
}

// Update records a computation result. A result without cusps keeps only
// the error.
func (m *Manager) Update(in houses.Inputs, h houses.Houses, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCompute = time.Now()
	m.lastError = err
	m.computeDuration = duration

	m.detectEvents(in, h, err)
	m.prevSystem = h.Requested

	if h.System == 0 {
		m.current = nil
		return
	}

	m.current = &h
	m.currentInputs = in
	if m.maxHistoryLen > 0 {
		m.history = append(m.history, HistoryEntry{Timestamp: m.lastCompute, Inputs: in, Houses: h})
		if len(m.history) > m.maxHistoryLen {
			m.history = m.history[1:]
		}
	}
}

// detectEvents compares a new result with the previous one. Fallback and
// undefined results are logged when they start, not on every computation.
func (m *Manager) detectEvents(in houses.Inputs, h houses.Houses, err error) {
	now := time.Now()

	changed := m.prevSystem != 0 && m.prevSystem != h.Requested
	if changed {
		m.addEvent(Event{
			Type:      EventSystemChanged,
			Timestamp: now,
			System:    h.Requested.String(),
			Previous:  m.prevSystem.String(),
			Latitude:  in.Latitude,
		})
	}

	var outcome EventType
	switch {
	case err == nil:
	case h.System != 0:
		outcome = EventFallback
	default:
		outcome = EventUndefined
	}
	repeated := outcome == m.prevOutcome && !changed
	m.prevOutcome = outcome
	if repeated {
		return
	}

	switch outcome {
	case EventFallback:
		m.addEvent(Event{
			Type:      EventFallback,
			Timestamp: now,
			System:    h.System.String(),
			Previous:  h.Requested.String(),
			Latitude:  in.Latitude,
			Detail:    err.Error(),
		})
	case EventUndefined:
		m.addEvent(Event{
			Type:      EventUndefined,
			Timestamp: now,
			System:    h.Requested.String(),
			Latitude:  in.Latitude,
			Detail:    err.Error(),
		})
	}
}

// Place computes the house position of an ecliptic point in the current
// result, using the system the cusps were built with. It returns false
// when there is no result.
func (m *Manager) Place(lon, lat float64) (houses.Placement, bool) {
	m.mu.RLock()
	if m.current == nil {
		m.mu.RUnlock()
		return houses.Placement{}, false
	}
	e := m.engineLocked()
	in, sys := m.currentInputs, m.current.System
	m.mu.RUnlock()

	pl, err := e.Position(in, sys, lon, lat)
	if err != nil {
		return houses.Placement{}, false
	}
	m.RecordPlacement(sys, lon, pl)
	return pl, true
}

// RecordPlacement logs a degenerate house position.
func (m *Manager) RecordPlacement(sys houses.System, lon float64, pl houses.Placement) {
	if !pl.Degenerate() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e := Event{
		Type:      EventDegenerate,
		Timestamp: time.Now(),
		System:    sys.String(),
		Latitude:  m.inputs.Latitude,
		Longitude: lon,
		Detail:    pl.Diagnostic,
	}
	// Repeated placements of the same point are logged once.
	if last, ok := m.lastEvent(); ok && last.Type == e.Type && last.System == e.System &&
		last.Latitude == e.Latitude && last.Longitude == e.Longitude && last.Detail == e.Detail {
		return
	}
	m.addEvent(e)
}

// lastEvent returns the newest event in the ring buffer.
func (m *Manager) lastEvent() (Event, bool) {
	if len(m.events) == 0 {
		return Event{}, false
	}
	if len(m.events) < m.maxEvents {
		return m.events[len(m.events)-1], true
	}
	return m.events[(m.eventWriteAt+m.maxEvents-1)%m.maxEvents], true
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Inputs          houses.Inputs
	System          houses.System
	Fallback        houses.FallbackPolicy
	Iterations      int
	Houses          *houses.Houses
	LastCompute     time.Time
	LastError       error
	ComputeDuration time.Duration
	Events          []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var h *houses.Houses
	if m.current != nil {
		c := *m.current
		h = &c
	}

	return Snapshot{
		Inputs:          m.inputs,
		System:          m.system,
		Fallback:        m.fallback,
		Iterations:      m.iterations,
		Houses:          h,
		LastCompute:     m.lastCompute,
		LastError:       m.lastError,
		ComputeDuration: m.computeDuration,
		Events:          m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// History returns a copy of the computation history, oldest first.
func (m *Manager) History() []HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

// HasResult returns true if a chart has been computed.
func (m *Manager) HasResult() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
