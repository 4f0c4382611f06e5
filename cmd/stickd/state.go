package main

import (
	"sync"
	"time"

	"github.com/gethiox/stickd/internal/pkg/analog"
	"github.com/gethiox/stickd/internal/pkg/joystick"
	"github.com/gethiox/stickd/internal/pkg/overlay"
)

// snapshot is what the poll loop shares with views, the LCD and the overlay.
type snapshot struct {
	Profile string
	Device  string

	Reading     joystick.Reading
	Direction   joystick.Direction
	Threshold   float64
	Calibrating bool

	X, Y analog.Calibration
}

func (s snapshot) overlay() overlay.State {
	return overlay.State{
		X:         s.Reading.X,
		Y:         s.Reading.Y,
		Magnitude: s.Reading.Magnitude,
		Direction: s.Direction.String(),
		Center:    [2]int{s.X.Center, s.Y.Center},
		DeadZone:  [2]int{s.X.DeadZone, s.Y.DeadZone},
	}
}

// stickState is written by the poll loop only, everything else reads copies.
type stickState struct {
	mu   sync.Mutex
	snap snapshot
}

func (s *stickState) Load() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *stickState) Store(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

type directionEvent struct {
	At       time.Time
	Snapshot snapshot
}

// history keeps the newest direction changes for the stick view.
type history struct {
	mu     sync.Mutex
	size   int
	events []directionEvent
}

func newHistory(size int) *history {
	return &history{size: size}
}

func (h *history) Add(ev directionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	if len(h.events) > h.size {
		h.events = h.events[len(h.events)-h.size:]
	}
}

// Last returns stored events, newest first.
func (h *history) Last() []directionEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]directionEvent, len(h.events))
	for i, ev := range h.events {
		out[len(h.events)-1-i] = ev
	}
	return out
}

func (h *history) consume(events <-chan directionEvent) {
	for ev := range events {
		h.Add(ev)
	}
}
