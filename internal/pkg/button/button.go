// Package button implements a debounced push button polled from the same loop as the joystick.
package button

import "time"

// DebouncePeriod is the minimal time between two accepted presses, in milliseconds.
const DebouncePeriod = 50

type Mode int

const (
	PullDown Mode = iota // pressed button reads high
	PullUp               // pressed button reads low
)

func (m Mode) String() string {
	switch m {
	case PullUp:
		return "pull-up"
	default:
		return "pull-down"
	}
}

type PinMode int

const (
	Input PinMode = iota
	InputPullUp
	InputPullDown
)

type DigitalPin interface {
	Configure(mode PinMode)
	ReadDigital() bool
}

// Clock is a monotonic millisecond counter, it is allowed to wrap around.
type Clock interface {
	Millis() uint32
}

type Button struct {
	Mode    Mode
	Handler func()

	pin   DigitalPin
	clock Clock

	lastState   bool
	lastPressMs uint32
}

func New(pin DigitalPin, mode Mode, clock Clock) *Button {
	return &Button{
		Mode:  mode,
		pin:   pin,
		clock: clock,
	}
}

// Init configures the pin, internal pull resistor is used unless externalPull is set.
func (b *Button) Init(externalPull bool) {
	b.pin.Configure(b.pinMode(externalPull))
}

// Poll fires Handler on a press edge, presses closer than DebouncePeriod to the previous one are ignored.
func (b *Button) Poll() {
	current := b.Read()
	now := b.clock.Millis()

	if current && !b.lastState {
		if now-b.lastPressMs > DebouncePeriod {
			if b.Handler != nil {
				b.Handler()
			}
			b.lastPressMs = now
		}
	}

	b.lastState = current
}

// Read returns true while the button is held down.
func (b *Button) Read() bool {
	if b.Mode == PullUp {
		return !b.pin.ReadDigital()
	}
	return b.pin.ReadDigital()
}

func (b *Button) pinMode(external bool) PinMode {
	if external {
		return Input
	}
	if b.Mode == PullUp {
		return InputPullUp
	}
	return InputPullDown
}

// SystemClock counts milliseconds since its creation.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() SystemClock {
	return SystemClock{start: time.Now()}
}

func (c SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}
