package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gethiox/stickd/internal/pkg/adc"
	"github.com/gethiox/stickd/internal/pkg/analog"
	"github.com/gethiox/stickd/internal/pkg/button"
	"github.com/gethiox/stickd/internal/pkg/config"
	"github.com/gethiox/stickd/internal/pkg/input"
	"github.com/gethiox/stickd/internal/pkg/joystick"
	"github.com/gethiox/stickd/internal/pkg/logger"
	"github.com/gethiox/stickd/internal/pkg/midi"
	"github.com/gethiox/stickd/internal/pkg/overlay"
	"go.uber.org/zap"
)

// rangedPin is an analog pin aware of its own range.
type rangedPin interface {
	analog.Pin
	Max() int
}

type source struct {
	name   string
	x, y   rangedPin
	button button.DigitalPin // nil when profile has no button
	closer io.Closer
}

func openEvdev(ctx context.Context, cfg config.Stickd, p config.Profile) (source, error) {
	info, err := input.WaitForJoystick(ctx, p.Source.Device, cfg.DiscoveryRate)
	if err != nil {
		return source{}, err
	}

	dev, err := input.Open(info)
	if err != nil {
		return source{}, err
	}

	src, err := func() (source, error) {
		if p.Source.Grab {
			err := dev.Grab()
			if err != nil {
				return source{}, fmt.Errorf("cannot grab device: %w", err)
			}
			log.Info("device grabbed", zap.String("device_name", info.Name), logger.Debug)
		}

		x, err := dev.AbsPin(p.X.Input)
		if err != nil {
			return source{}, fmt.Errorf("x axis: %w", err)
		}
		y, err := dev.AbsPin(p.Y.Input)
		if err != nil {
			return source{}, fmt.Errorf("y axis: %w", err)
		}

		src := source{name: info.Name, x: x, y: y, closer: dev}
		if p.Button != nil {
			key, err := dev.KeyPin(p.Button.Input)
			if err != nil {
				return source{}, fmt.Errorf("button: %w", err)
			}
			src.button = key
		}
		return src, nil
	}()
	if err != nil {
		dev.Close()
		return source{}, err
	}
	return src, nil
}

func openADS1115(p config.Profile) (source, error) {
	a, err := adc.Open(p.Source.Address, p.Source.Bus)
	if err != nil {
		return source{}, err
	}

	channel := func(name string) (*adc.Pin, error) {
		ch, err := strconv.Atoi(name)
		if err != nil {
			return nil, err
		}
		return a.Channel(ch)
	}

	src, err := func() (source, error) {
		x, err := channel(p.X.Input)
		if err != nil {
			return source{}, fmt.Errorf("x axis: %w", err)
		}
		y, err := channel(p.Y.Input)
		if err != nil {
			return source{}, fmt.Errorf("y axis: %w", err)
		}

		src := source{
			name:   fmt.Sprintf("ADS1115 %d-%04x", p.Source.Bus, p.Source.Address),
			x:      x,
			y:      y,
			closer: a,
		}
		if p.Button != nil {
			b, err := channel(p.Button.Input)
			if err != nil {
				return source{}, fmt.Errorf("button: %w", err)
			}
			src.button = b
		}
		return src, nil
	}()
	if err != nil {
		a.Close()
		return source{}, err
	}
	return src, nil
}

func openSource(ctx context.Context, cfg config.Stickd, p config.Profile) (source, error) {
	switch p.Source.Type {
	case config.SourceEvdev:
		return openEvdev(ctx, cfg, p)
	case config.SourceADS1115:
		return openADS1115(p)
	default:
		return source{}, fmt.Errorf("%w: \"%s\"", config.ErrUnknownSource, p.Source.Type)
	}
}

func axisMax(a config.Axis, pin rangedPin) int {
	if a.Max > 0 {
		return a.Max
	}
	return pin.Max()
}

// stick is the joystick with everything its profile wires around it.
type stick struct {
	cfg     config.Stickd
	profile config.Profile
	source  source

	joystick *joystick.Joystick
	listener *joystick.Listener
	button   *button.Button

	deadZone [2]int // last calibrated dead zones, profile values take precedence
}

func newStick(ctx context.Context, cfg config.Stickd, p config.Profile) (*stick, error) {
	src, err := openSource(ctx, cfg, p)
	if err != nil {
		return nil, err
	}

	x, err := analog.NewAxis(src.x, axisMax(p.X, src.x), cfg.FilterK)
	if err != nil {
		src.closer.Close()
		return nil, fmt.Errorf("x axis: %w", err)
	}
	y, err := analog.NewAxis(src.y, axisMax(p.Y, src.y), cfg.FilterK)
	if err != nil {
		src.closer.Close()
		return nil, fmt.Errorf("y axis: %w", err)
	}

	js := joystick.NewFromAxes(x, y)
	js.Init()

	s := &stick{
		cfg:      cfg,
		source:   src,
		joystick: js,
		listener: joystick.NewListener(js),
	}

	if src.button != nil {
		s.button = button.New(src.button, p.Button.Mode, button.NewSystemClock())
		s.button.Init(p.Button.ExternalPull)
	}

	s.apply(p)
	return s, nil
}

// apply sets everything of the profile that does not need the source to be reopened.
func (s *stick) apply(p config.Profile) {
	s.profile = p

	s.joystick.X.Inverted = p.X.Inverted
	s.joystick.Y.Inverted = p.Y.Inverted
	s.joystick.X.DeadZone = s.deadZone[0]
	if p.X.DeadZone > 0 {
		s.joystick.X.DeadZone = p.X.DeadZone
	}
	s.joystick.Y.DeadZone = s.deadZone[1]
	if p.Y.DeadZone > 0 {
		s.joystick.Y.DeadZone = p.Y.DeadZone
	}

	s.listener.Threshold = s.cfg.Threshold
	if p.Threshold > 0 {
		s.listener.Threshold = p.Threshold
	}

	if s.button != nil && p.Button != nil {
		s.button.Mode = p.Button.Mode
		s.button.Init(p.Button.ExternalPull)
	}
}

// calibrate blocks for the whole measurement, the stick has to rest meanwhile.
func (s *stick) calibrate() {
	if s.cfg.CalibrationSamples <= 0 {
		return
	}

	log.Info(
		fmt.Sprintf("calibrating (%s, %d samples), keep the stick at rest", s.cfg.CalibrationMode, s.cfg.CalibrationSamples),
		zap.String("device_name", s.source.name), logger.Info,
	)

	s.joystick.X.DeadZone, s.joystick.Y.DeadZone = s.deadZone[0], s.deadZone[1]
	switch s.cfg.CalibrationMode {
	case config.CalibrationCenter:
		s.joystick.CalibrateCenter(s.cfg.CalibrationSamples)
	default:
		s.joystick.Calibrate(s.cfg.CalibrationSamples)
	}
	s.deadZone = [2]int{s.joystick.X.DeadZone, s.joystick.Y.DeadZone}

	s.apply(s.profile)

	for _, a := range []struct {
		name string
		axis *analog.Axis
	}{{"x", s.joystick.X}, {"y", s.joystick.Y}} {
		c := a.axis.Calibration()
		log.Info(fmt.Sprintf("%s axis %s", a.name, c), zap.String("device_name", s.source.name), logger.Info)
		if c.Degenerate() {
			log.Info(
				fmt.Sprintf("%s axis center sits at the edge of its range, readings are unusable until recalibrated", a.name),
				zap.String("device_name", s.source.name), logger.Warning,
			)
		}
	}
}

func (s *stick) snapshot() snapshot {
	return snapshot{
		Profile:   s.profile.Name,
		Device:    s.source.name,
		Direction: s.listener.Direction(),
		Threshold: s.listener.Threshold,
		X:         s.joystick.X.Calibration(),
		Y:         s.joystick.Y.Calibration(),
	}
}

func (s *stick) Close() error {
	return s.source.closer.Close()
}

func sendMidi(out chan<- midi.Event, events []midi.Event) {
	for _, ev := range events {
		out <- ev
	}
}

// runStick is the poll loop. It owns the joystick, so calibration and profile reloads happen here,
// never concurrently with a read.
func runStick(
	ctx context.Context, cfg config.Config, profilePath string,
	state *stickState, midiOut chan<- midi.Event, directions chan<- directionEvent, server *overlay.Server,
) error {
	p, err := config.LoadProfile(profilePath)
	if err != nil {
		return err
	}
	log.Info("profile loaded", zap.String("profile", p.Name), logger.Info)

	changes, err := config.DetectProfileChanges(ctx, profilePath)
	if err != nil {
		log.Info(fmt.Sprintf("profile changes will not be detected: %v", err), zap.String("profile", p.Name), logger.Warning)
	}

	s, err := newStick(ctx, cfg.Stickd, p)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	defer func() {
		err := s.Close()
		if err != nil {
			log.Info(fmt.Sprintf("failed to close source: %v", err), zap.String("device_name", s.source.name), logger.Warning)
		}
	}()
	log.Info("stick ready", zap.String("device_name", s.source.name), zap.String("profile", p.Name), logger.Info)

	var mapper *midi.Mapper
	if p.Midi != nil {
		mapper = midi.NewMapper(*p.Midi)
	}

	snap := s.snapshot()
	publish := func(calibrating bool) {
		snap = s.snapshot()
		snap.Reading = lastReading(state)
		snap.Calibrating = calibrating
		state.Store(snap)
	}

	s.listener.Handler = func(d joystick.Direction) {
		log.Info("direction changed", zap.String("direction", d.String()), logger.Direction)
		if mapper != nil {
			sendMidi(midiOut, mapper.Direction(d))
		}
		snap.Direction = d
		directions <- directionEvent{At: time.Now(), Snapshot: snap}
	}

	var calibrationRequested bool
	if s.button != nil {
		s.button.Handler = func() {
			switch s.profile.Button.Action {
			case config.ActionCalibrate:
				log.Info("calibration requested", zap.String("device_name", s.source.name), logger.Action)
				calibrationRequested = true
			case config.ActionPanic:
				log.Info("all notes off", zap.String("device_name", s.source.name), logger.Action)
				if mapper != nil {
					m := mapper.Mapping()
					sendMidi(midiOut, mapper.Release())
					sendMidi(midiOut, []midi.Event{midi.ControlChangeEvent(m.Channel, midi.AllNotesOff, 0)})
				}
			}
		}
	}

	calibrate := func() {
		publish(true)
		s.calibrate()
		publish(false)
	}
	calibrate()

	reload := func() {
		next, err := config.LoadProfile(profilePath)
		if err != nil {
			log.Info(fmt.Sprintf("profile reload failed, keeping previous one: %v", err), zap.String("profile", s.profile.Name), logger.Warning)
			return
		}
		if !s.profile.Reloadable(next) {
			log.Info("profile source or inputs changed, restart required to apply them", zap.String("profile", next.Name), logger.Warning)
			return
		}

		s.apply(next)
		switch {
		case next.Midi == nil && mapper != nil:
			sendMidi(midiOut, mapper.Release())
			mapper = nil
		case next.Midi != nil && mapper == nil:
			mapper = midi.NewMapper(*next.Midi)
		case next.Midi != nil:
			sendMidi(midiOut, mapper.SetMapping(*next.Midi))
		}
		publish(false)
		log.Info("profile reloaded", zap.String("profile", next.Name), logger.Action)
	}

	ticker := time.NewTicker(cfg.Stickd.PollRate)
	defer ticker.Stop()

	var last joystick.Reading
	for {
		select {
		case <-ctx.Done():
			if mapper != nil {
				sendMidi(midiOut, mapper.Release())
			}
			log.Info("poll loop stopped", logger.Debug)
			return nil
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			reload()
			continue
		case <-ticker.C:
		}

		r := s.joystick.Read()
		snap.Reading = r
		s.listener.Update(r)
		if mapper != nil {
			sendMidi(midiOut, mapper.Reading(r))
		}

		if r != last {
			log.Info(r.String(), logger.Analog)
			last = r
			state.Store(snap)
			if server != nil {
				server.Publish(snap.overlay())
			}
		}

		if s.button != nil {
			s.button.Poll()
		}
		if calibrationRequested {
			calibrationRequested = false
			calibrate()
		}
	}
}

func lastReading(state *stickState) joystick.Reading {
	return state.Load().Reading
}
