package display

import (
	"fmt"
	"math"
	"strings"
)

// partial fill of one cell, in fifths
var partials = []rune{' ', '▏', '▎', '▍', '▌'}

// State is a snapshot of the joystick shown on the screen.
type State struct {
	Direction   string
	X, Y        float64
	Magnitude   float64
	Events      uint // MIDI events emitted since start
	Calibrating bool
}

// Bar draws v in range -1.0..1.0 as a horizontal bar of given width, centered at the middle cell.
func Bar(v float64, width int) string {
	if width < 3 {
		return strings.Repeat(" ", width)
	}
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}

	half := (width - 1) / 2
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = ' '
	}
	cells[half] = '│'

	fill := int(math.Round(math.Abs(v) * float64(half) * 5)) // in fifths of a cell
	for i := 0; i < half && fill > 0; i++ {
		var r rune = '█'
		if fill < 5 {
			r = partials[fill]
		}
		fill -= 5

		if v > 0 {
			cells[half+1+i] = r
		} else {
			cells[half-1-i] = r
		}
	}
	return string(cells)
}

func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// Render composes screen lines for given state.
func Render(s State, cfg ScreenConfig) [4]string {
	width, rows := cfg.Size()
	var lines [4]string

	direction := s.Direction
	if s.Calibrating {
		direction = "calibrating"
	}

	barWidth := width - 2
	if rows == 2 {
		lines[0] = fit(fmt.Sprintf("◆ %-*s%4.2f", width-6, direction, s.Magnitude), width)
		lines[1] = fit("x"+Bar(s.X, barWidth/2)+"y"+Bar(s.Y, barWidth-barWidth/2), width)
		return lines
	}

	lines[0] = fit(fmt.Sprintf("◆ %s", direction), width)
	lines[1] = fit("x "+Bar(s.X, barWidth), width)
	lines[2] = fit("y "+Bar(s.Y, barWidth), width)
	lines[3] = fit(fmt.Sprintf("mag %4.2f ev %*d", s.Magnitude, width-12, s.Events), width)
	return lines
}
