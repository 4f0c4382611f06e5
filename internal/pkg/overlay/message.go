// Package overlay streams joystick state to WebSocket clients, e.g. a browser source drawing the stick.
package overlay

import "time"

// State is the joystick snapshot sent to clients.
type State struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Magnitude float64 `json:"magnitude"`
	Direction string  `json:"direction"`

	Center   [2]int `json:"center"`
	DeadZone [2]int `json:"deadZone"`
}

// Message is sent from server to client.
type Message struct {
	Type      string `json:"type"` // "full" on connect and periodically, "state" on change, "direction" on direction change
	Seq       int64  `json:"seq"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	State     State  `json:"state"`
}

func newMessage(kind string, seq int64, state State) Message {
	return Message{
		Type:      kind,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		State:     state,
	}
}
