package midi

import (
	"math"

	"github.com/gethiox/stickd/internal/pkg/joystick"
)

// Disabled marks an unassigned control change number.
const Disabled = -1

// Mapping describes how joystick output is turned into MIDI messages.
type Mapping struct {
	Channel  uint8 // 0-15
	Velocity uint8

	XControl  int  // CC number driven by X axis, Disabled when unassigned
	YControl  int  // CC number driven by Y axis, Disabled when unassigned
	PitchBend bool // X axis drives pitch bend instead of XControl

	Notes map[joystick.Direction]byte // note held while stick points in given direction
}

// Mapper keeps the last emitted values so only changes produce events.
// It is not safe for concurrent use.
type Mapper struct {
	mapping Mapping

	lastX, lastY, lastBend int
	held                   bool
	heldNote               byte
}

func NewMapper(mapping Mapping) *Mapper {
	return &Mapper{
		mapping:  mapping,
		lastX:    -1,
		lastY:    -1,
		lastBend: -1,
	}
}

func (m *Mapper) Mapping() Mapping {
	return m.mapping
}

// SetMapping replaces the mapping, releasing the held note of previous one.
func (m *Mapper) SetMapping(mapping Mapping) []Event {
	events := m.Release()
	m.mapping = mapping
	m.lastX, m.lastY, m.lastBend = -1, -1, -1
	return events
}

// controlValue maps -1.0..1.0 into 0..127, rest position lands on 64.
func controlValue(v float64) int {
	cv := int(math.Round((v + 1) / 2 * 127))
	switch {
	case cv < 0:
		return 0
	case cv > 127:
		return 127
	}
	return cv
}

func bendValue(v float64) int {
	e := PitchBendEvent(0, v)
	return int(e[2])<<7 | int(e[1])
}

// Reading returns events for axis values that changed since the last call.
func (m *Mapper) Reading(r joystick.Reading) []Event {
	var events []Event
	ch := m.mapping.Channel

	if m.mapping.PitchBend {
		bend := bendValue(r.X)
		if bend != m.lastBend {
			m.lastBend = bend
			events = append(events, PitchBendEvent(ch, r.X))
		}
	} else if m.mapping.XControl != Disabled {
		x := controlValue(r.X)
		if x != m.lastX {
			m.lastX = x
			events = append(events, ControlChangeEvent(ch, uint8(m.mapping.XControl), uint8(x)))
		}
	}

	if m.mapping.YControl != Disabled {
		y := controlValue(r.Y)
		if y != m.lastY {
			m.lastY = y
			events = append(events, ControlChangeEvent(ch, uint8(m.mapping.YControl), uint8(y)))
		}
	}

	return events
}

// Direction releases the previously held note and presses the one assigned to d.
func (m *Mapper) Direction(d joystick.Direction) []Event {
	events := m.Release()

	note, ok := m.mapping.Notes[d]
	if !ok {
		return events
	}

	m.held = true
	m.heldNote = note
	return append(events, NoteEvent(NoteOn, m.mapping.Channel, note, m.mapping.Velocity))
}

// Release returns note off for the held note, if any.
func (m *Mapper) Release() []Event {
	if !m.held {
		return nil
	}
	m.held = false
	return []Event{NoteEvent(NoteOff, m.mapping.Channel, m.heldNote, 0)}
}
