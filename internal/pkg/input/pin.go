package input

import (
	"fmt"
	"sync"

	"github.com/gethiox/stickd/internal/pkg/button"
	"github.com/gethiox/stickd/internal/pkg/logger"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

// absReader is the part of *evdev.InputDevice used by AbsPin.
type absReader interface {
	AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error)
}

// stateReader is the part of *evdev.InputDevice used by KeyPin.
type stateReader interface {
	State(t evdev.EvType) (evdev.StateMap, error)
}

// AbsPin samples one absolute axis of an event device.
// Reported values are shifted so the axis minimum maps to 0.
type AbsPin struct {
	dev    absReader
	code   evdev.EvCode
	axis   string
	device string

	min, max int32
	last     int

	errOnce sync.Once
}

func newAbsPin(dev absReader, axis, device string) (*AbsPin, error) {
	code, ok := evdev.ABSFromString[axis]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, axis)
	}

	infos, err := dev.AbsInfos()
	if err != nil {
		return nil, fmt.Errorf("cannot read absolute axes: %w", err)
	}

	info, ok := infos[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAxisNotFound, axis)
	}
	if info.Maximum <= info.Minimum {
		return nil, fmt.Errorf("axis %s has empty range %d..%d", axis, info.Minimum, info.Maximum)
	}

	p := &AbsPin{
		dev:    dev,
		code:   code,
		axis:   axis,
		device: device,
		min:    info.Minimum,
		max:    info.Maximum,
	}
	p.last = p.scale(info.Value)
	return p, nil
}

// ConfigureInput does nothing, the kernel already reports the axis.
func (p *AbsPin) ConfigureInput() {}

// Max returns the highest value ReadAnalog can produce.
func (p *AbsPin) Max() int {
	return int(p.max - p.min)
}

func (p *AbsPin) scale(v int32) int {
	switch {
	case v < p.min:
		v = p.min
	case v > p.max:
		v = p.max
	}
	return int(v - p.min)
}

// ReadAnalog returns current axis value. On read failure the previous value is repeated.
func (p *AbsPin) ReadAnalog() int {
	infos, err := p.dev.AbsInfos()
	if err != nil {
		p.errOnce.Do(func() {
			log.Info(fmt.Sprintf("axis %s read failed: %v", p.axis, err), zap.String("device_name", p.device), logger.Warning)
		})
		return p.last
	}

	info, ok := infos[p.code]
	if !ok {
		return p.last
	}
	p.last = p.scale(info.Value)
	return p.last
}

// KeyPin reads state of one key or button of an event device.
type KeyPin struct {
	dev    stateReader
	code   evdev.EvCode
	key    string
	device string

	errOnce sync.Once
}

var _ button.DigitalPin = &KeyPin{}

func newKeyPin(dev stateReader, key, device string) (*KeyPin, error) {
	code, ok := evdev.KEYFromString[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, key)
	}
	return &KeyPin{dev: dev, code: code, key: key, device: device}, nil
}

// Configure does nothing, pull resistors are not a thing for event devices.
func (p *KeyPin) Configure(button.PinMode) {}

// ReadDigital reports whether the key is held down.
func (p *KeyPin) ReadDigital() bool {
	state, err := p.dev.State(evdev.EV_KEY)
	if err != nil {
		p.errOnce.Do(func() {
			log.Info(fmt.Sprintf("key %s state read failed: %v", p.key, err), zap.String("device_name", p.device), logger.Warning)
		})
		return false
	}
	return state[p.code]
}
