package input

import (
	"errors"
	"fmt"

	"github.com/gethiox/stickd/internal/pkg/logger"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

var (
	ErrUnknownCode  = errors.New("unknown event code")
	ErrAxisNotFound = errors.New("axis not reported by device")
)

// Device is an opened joystick event handler, source of axis and button pins.
type Device struct {
	Info DeviceInfo

	dev *evdev.InputDevice
}

// Open opens event handler of given device.
func Open(info DeviceInfo) (*Device, error) {
	path := info.EventPath()
	if path == "" {
		return nil, fmt.Errorf("device \"%s\" has no event handler", info.Name)
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open \"%s\": %w", path, err)
	}

	log.Info(fmt.Sprintf("opened %s", path), zap.String("device_name", info.Name), logger.Debug)
	return &Device{Info: info, dev: dev}, nil
}

// Grab takes exclusive access, events stop reaching other readers.
func (d *Device) Grab() error {
	return d.dev.Grab()
}

// AbsPin returns a pin sampling axis named like "ABS_X".
func (d *Device) AbsPin(axis string) (*AbsPin, error) {
	return newAbsPin(d.dev, axis, d.Info.Name)
}

// KeyPin returns a pin reading key or button named like "BTN_THUMBL".
func (d *Device) KeyPin(key string) (*KeyPin, error) {
	return newKeyPin(d.dev, key, d.Info.Name)
}

func (d *Device) Close() error {
	return d.dev.Close()
}
