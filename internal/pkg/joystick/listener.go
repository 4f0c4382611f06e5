package joystick

import "math"

// DefaultThreshold is the distance from the center, on either axis, that leaves Home.
const DefaultThreshold = 0.2

type Direction int

const (
	Home Direction = iota
	Up
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Home:
		return "Home"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// Classify maps a position onto one of five zones, the dominant axis wins.
func Classify(x, y, threshold float64) Direction {
	absX, absY := math.Abs(x), math.Abs(y)

	if absX < threshold && absY < threshold {
		return Home
	}

	if absX > absY {
		if x > 0 {
			return Right
		}
		return Left
	}

	if y > 0 {
		return Up
	}
	return Down
}

type Source interface {
	Read() Reading
}

// Listener reports direction changes of a joystick.
// Handler is invoked once per transition, holding the stick in one zone does not repeat it.
type Listener struct {
	Handler   func(Direction)
	Threshold float64

	source Source
	last   Direction
}

func NewListener(source Source) *Listener {
	return &Listener{
		Threshold: DefaultThreshold,
		source:    source,
		last:      Home,
	}
}

// Poll reads the source and dispatches a transition if any.
// Without a Handler it does nothing at all, the source is not even read.
func (l *Listener) Poll() {
	if l.Handler == nil {
		return
	}
	l.Update(l.source.Read())
}

// Update is Poll for a reading obtained elsewhere, e.g. shared with other consumers.
func (l *Listener) Update(r Reading) {
	if l.Handler == nil {
		return
	}

	current := Classify(r.X, r.Y, l.Threshold)
	if current != l.last {
		l.last = current
		l.Handler(current)
	}
}

// Direction returns the last dispatched direction.
func (l *Listener) Direction() Direction {
	return l.last
}
