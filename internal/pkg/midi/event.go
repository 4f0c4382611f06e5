package midi

import (
	"fmt"
)

const (
	// message types
	NoteOff          uint8 = 0b1000 << 4
	NoteOn           uint8 = 0b1001 << 4
	ControlChange    uint8 = 0b1011 << 4
	PitchWheelChange uint8 = 0b1110 << 4

	// ControlChange
	AllNotesOff uint8 = 0b01111011
)

type Event []byte

func (e Event) String() string {
	if len(e) == 0 {
		return "Warning: empty Midi event, it should be not emitted"
	}
	channel := e[0]&0b1111 + 1
	switch x := e[0] & 0b11110000; x {
	case NoteOff:
		return fmt.Sprintf("Note Off: %s (channel: %2d, velocity: %3d)", noteToString(e[1]), channel, e[2])
	case NoteOn:
		return fmt.Sprintf("Note On : %s (channel: %2d, velocity: %3d)", noteToString(e[1]), channel, e[2])
	case ControlChange:
		return fmt.Sprintf("Control Change: %3d, value: %3d (channel: %2d)", e[1], e[2], channel)
	case PitchWheelChange:
		val := float64((int(e[2])<<7)+int(e[1])-8192) / 8192 // max value: 16383, middle value (no pitch change): 8192
		return fmt.Sprintf("Pitch Bend: %4.0f%% (channel: %2d)", val*100, channel)
	default:
		msg := "unexpected event format: "
		for _, v := range e {
			msg += fmt.Sprintf("0x%02x ", v)
		}
		return msg
	}
}

func NoteEvent(messageType, channel, note, velocity uint8) Event {
	return Event{messageType | channel, note, velocity}
}

func ControlChangeEvent(channel, function, value uint8) Event {
	return Event{ControlChange | channel, function, value}
}

// PitchBendEvent accepts a value in range -1.0 to 1.0
func PitchBendEvent(channel uint8, val float64) Event {
	switch {
	case val < -1:
		val = -1
	case val > 1:
		val = 1
	}
	target := int(float64((1<<14)-1) * ((val + 1.0) / 2.0)) // valid 14-bit pitch-bend range
	msb := uint8((target >> 7) & 0b01111111)
	lsb := uint8(target & 0b01111111)
	return Event{PitchWheelChange | channel, lsb, msb}
}
