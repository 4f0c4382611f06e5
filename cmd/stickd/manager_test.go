package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/gethiox/stickd/internal/pkg/config"
	"github.com/gethiox/stickd/internal/pkg/joystick"
	"github.com/gethiox/stickd/internal/pkg/midi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constPin struct {
	v int
}

func (p *constPin) ConfigureInput() {}

func (p *constPin) ReadAnalog() int {
	return p.v
}

func (p *constPin) Max() int {
	return 1000
}

func testStick(t *testing.T, x, y int) *stick {
	px, py := &constPin{v: x}, &constPin{v: y}
	js, err := joystick.New(px, py, 1000, 1)
	require.Equal(t, nil, err)

	return &stick{
		cfg: config.Stickd{
			CalibrationSamples: 5,
			CalibrationMode:    config.CalibrationFull,
			Threshold:          0.2,
		},
		source:   source{name: "test", x: px, y: py, closer: io.NopCloser(strings.NewReader(""))},
		joystick: js,
		listener: joystick.NewListener(js),
	}
}

func TestStickApply(t *testing.T) {
	s := testStick(t, 500, 500)
	s.deadZone = [2]int{7, 9}

	s.apply(config.Profile{
		Name:      "custom",
		X:         config.Axis{Inverted: true, DeadZone: 20},
		Threshold: 0.5,
	})
	assert.Equal(t, true, s.joystick.X.Inverted)
	assert.Equal(t, false, s.joystick.Y.Inverted)
	assert.Equal(t, 20, s.joystick.X.DeadZone)
	assert.Equal(t, 9, s.joystick.Y.DeadZone)
	assert.Equal(t, 0.5, s.listener.Threshold)
	assert.Equal(t, "custom", s.profile.Name)

	s.apply(config.Profile{})
	assert.Equal(t, false, s.joystick.X.Inverted)
	assert.Equal(t, 7, s.joystick.X.DeadZone)
	assert.Equal(t, 0.2, s.listener.Threshold)
}

func TestStickCalibrate(t *testing.T) {
	for _, tc := range []struct {
		name             string
		mode             config.CalibrationMode
		samples          int
		profile          config.Profile
		centerX, centerY int
		deadX, deadY     int
	}{
		{
			name: "full", mode: config.CalibrationFull, samples: 5,
			centerX: 400, centerY: 600,
		},
		{
			name: "profile dead zone wins", mode: config.CalibrationFull, samples: 5,
			profile: config.Profile{Y: config.Axis{DeadZone: 15}},
			centerX: 400, centerY: 600, deadY: 15,
		},
		{
			name: "center only", mode: config.CalibrationCenter, samples: 3,
			centerX: 400, centerY: 600,
		},
		{
			name: "disabled", mode: config.CalibrationFull, samples: 0,
			centerX: 500, centerY: 500,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := testStick(t, 400, 600)
			s.cfg.CalibrationMode = tc.mode
			s.cfg.CalibrationSamples = tc.samples
			s.profile = tc.profile

			s.calibrate()

			x, y := s.joystick.X.Calibration(), s.joystick.Y.Calibration()
			assert.Equal(t, tc.centerX, x.Center)
			assert.Equal(t, tc.centerY, y.Center)
			assert.Equal(t, tc.deadX, x.DeadZone)
			assert.Equal(t, tc.deadY, y.DeadZone)
			assert.Equal(t, [2]int{0, 0}, s.deadZone)
		})
	}
}

func TestStickSnapshot(t *testing.T) {
	s := testStick(t, 500, 500)
	s.apply(config.Profile{Name: "pad", Threshold: 0.3})

	snap := s.snapshot()
	assert.Equal(t, "pad", snap.Profile)
	assert.Equal(t, "test", snap.Device)
	assert.Equal(t, joystick.Home, snap.Direction)
	assert.Equal(t, 0.3, snap.Threshold)
	assert.Equal(t, 500, snap.X.Center)
}

func TestAxisMax(t *testing.T) {
	pin := &constPin{}
	assert.Equal(t, 300, axisMax(config.Axis{Max: 300}, pin))
	assert.Equal(t, 1000, axisMax(config.Axis{}, pin))
}

func TestOpenSourceUnknownType(t *testing.T) {
	_, err := openSource(context.Background(), config.Stickd{}, config.Profile{Source: config.Source{Type: "serial"}})
	assert.True(t, errors.Is(err, config.ErrUnknownSource))
}

func TestRunStickMissingProfile(t *testing.T) {
	err := runStick(
		context.Background(), config.Config{}, "/nonexistent/profile.yaml",
		&stickState{}, make(chan midi.Event, 1), make(chan directionEvent, 1), nil,
	)
	assert.NotEqual(t, nil, err)
}

func TestSendMidi(t *testing.T) {
	out := make(chan midi.Event, 2)
	sendMidi(out, []midi.Event{midi.ControlChangeEvent(0, midi.AllNotesOff, 0), midi.NoteEvent(midi.NoteOff, 0, 60, 0)})
	assert.Len(t, out, 2)
	assert.Equal(t, midi.ControlChangeEvent(0, midi.AllNotesOff, 0), <-out)
}
