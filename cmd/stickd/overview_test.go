package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gethiox/stickd/internal/pkg/analog"
	"github.com/gethiox/stickd/internal/pkg/joystick"
	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
)

func TestStickLines(t *testing.T) {
	au := aurora.NewAurora(false)
	snap := snapshot{
		Profile:   "pad",
		Device:    "test",
		Reading:   joystick.NewReading(0.3, 0.4),
		Direction: joystick.Up,
		Threshold: 0.2,
		X:         analog.Calibration{Center: 500, NegativeSpan: 500, PositiveSpan: 500},
		Y:         analog.Calibration{Center: 500, NegativeSpan: 500, PositiveSpan: 500},
	}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

	lines := stickLines(au, snap, []directionEvent{{At: at, Snapshot: snap}}, 80)
	assert.Len(t, lines, 5)
	assert.Equal(t, "profile: pad, device: test", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "x "))
	assert.Equal(t, "└ magnitude: 0.50, threshold: 0.20, direction: Up", lines[3])
	assert.Equal(t, "└ recent: 03:04:05.000 Up", lines[4])

	snap.Calibrating = true
	lines = stickLines(au, snap, nil, 80)
	assert.True(t, strings.HasSuffix(lines[3], "direction: calibrating"))
}

func TestAxisLineWidth(t *testing.T) {
	au := aurora.NewAurora(false)
	c := analog.Calibration{Center: 500, NegativeSpan: 500, PositiveSpan: 500}
	line := axisLine(au, "x", 0, c, 80)
	assert.Equal(t, 80, len([]rune(line)))
}
