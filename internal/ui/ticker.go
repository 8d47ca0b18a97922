package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ScheduleFunc has the shape of tea.Tick. Tests swap in one that fires immediately.
type ScheduleFunc func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

// pollTickMsg fires when a Ticker interval elapses. Gen identifies the run
// that scheduled it.
type pollTickMsg struct {
	Poll string
	Gen  int
}

// Ticker is a restartable, cancellable repeating timer built on tea.Tick.
// Bubble Tea cannot cancel a scheduled tick, so every Start or Stop bumps a
// generation counter and ticks from an older generation are dropped.
type Ticker struct {
	name     string
	interval time.Duration
	schedule ScheduleFunc
	gen      int
	active   bool
}

// NewTicker creates a stopped ticker. A nil schedule uses tea.Tick.
func NewTicker(name string, interval time.Duration, schedule ScheduleFunc) *Ticker {
	if schedule == nil {
		schedule = tea.Tick
	}
	return &Ticker{name: name, interval: interval, schedule: schedule}
}

// Start begins a new run, orphaning any tick still in flight from the previous one.
func (t *Ticker) Start() tea.Cmd {
	t.gen++
	t.active = true
	return t.Next()
}

// Stop cancels the current run.
func (t *Ticker) Stop() {
	if !t.active {
		return
	}
	t.active = false
	t.gen++
}

// Active reports whether the ticker is running.
func (t *Ticker) Active() bool {
	return t.active
}

// Accept reports whether msg belongs to the current run.
func (t *Ticker) Accept(msg pollTickMsg) bool {
	return t.active && msg.Poll == t.name && msg.Gen == t.gen
}

// Next schedules the following tick of the current run.
func (t *Ticker) Next() tea.Cmd {
	if !t.active {
		return nil
	}
	name, gen := t.name, t.gen
	return t.schedule(t.interval, func(time.Time) tea.Msg {
		return pollTickMsg{Poll: name, Gen: gen}
	})
}
