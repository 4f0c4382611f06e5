package input

import (
	"errors"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAbs struct {
	infos map[evdev.EvCode]evdev.AbsInfo
	err   error
}

func (f *fakeAbs) AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error) {
	return f.infos, f.err
}

func (f *fakeAbs) set(code evdev.EvCode, v int32) {
	info := f.infos[code]
	info.Value = v
	f.infos[code] = info
}

func newFakeAbs() *fakeAbs {
	return &fakeAbs{infos: map[evdev.EvCode]evdev.AbsInfo{
		evdev.ABS_X: {Value: 0, Minimum: -32768, Maximum: 32767},
		evdev.ABS_Y: {Value: 128, Minimum: 0, Maximum: 255},
	}}
}

func TestAbsPin(t *testing.T) {
	dev := newFakeAbs()

	pin, err := newAbsPin(dev, "ABS_X", "pad")
	require.Equal(t, nil, err)
	assert.Equal(t, 65535, pin.Max())
	assert.Equal(t, 32768, pin.ReadAnalog())

	dev.set(evdev.ABS_X, -32768)
	assert.Equal(t, 0, pin.ReadAnalog())
	dev.set(evdev.ABS_X, 32767)
	assert.Equal(t, 65535, pin.ReadAnalog())

	pin, err = newAbsPin(dev, "ABS_Y", "pad")
	require.Equal(t, nil, err)
	assert.Equal(t, 255, pin.Max())
	assert.Equal(t, 128, pin.ReadAnalog())
}

func TestAbsPinOutOfRange(t *testing.T) {
	dev := newFakeAbs()
	pin, err := newAbsPin(dev, "ABS_Y", "pad")
	require.Equal(t, nil, err)

	dev.set(evdev.ABS_Y, 300)
	assert.Equal(t, 255, pin.ReadAnalog())
	dev.set(evdev.ABS_Y, -5)
	assert.Equal(t, 0, pin.ReadAnalog())
}

func TestAbsPinRepeatsLastOnError(t *testing.T) {
	dev := newFakeAbs()
	pin, err := newAbsPin(dev, "ABS_Y", "pad")
	require.Equal(t, nil, err)

	dev.set(evdev.ABS_Y, 200)
	assert.Equal(t, 200, pin.ReadAnalog())

	dev.err = errors.New("no such device")
	assert.Equal(t, 200, pin.ReadAnalog())
	assert.Equal(t, 200, pin.ReadAnalog())
}

func TestAbsPinErrors(t *testing.T) {
	dev := newFakeAbs()

	_, err := newAbsPin(dev, "ABS_NOPE", "pad")
	assert.True(t, errors.Is(err, ErrUnknownCode))

	_, err = newAbsPin(dev, "ABS_RX", "pad")
	assert.True(t, errors.Is(err, ErrAxisNotFound))

	dev.infos[evdev.ABS_Z] = evdev.AbsInfo{Minimum: 10, Maximum: 10}
	_, err = newAbsPin(dev, "ABS_Z", "pad")
	assert.NotEqual(t, nil, err)
}

type fakeState struct {
	state evdev.StateMap
	err   error
}

func (f *fakeState) State(t evdev.EvType) (evdev.StateMap, error) {
	return f.state, f.err
}

func TestKeyPin(t *testing.T) {
	dev := &fakeState{state: evdev.StateMap{}}

	pin, err := newKeyPin(dev, "BTN_THUMBL", "pad")
	require.Equal(t, nil, err)
	assert.False(t, pin.ReadDigital())

	dev.state[evdev.BTN_THUMBL] = true
	assert.True(t, pin.ReadDigital())

	dev.err = errors.New("gone")
	assert.False(t, pin.ReadDigital())

	_, err = newKeyPin(dev, "BTN_NOPE", "pad")
	assert.True(t, errors.Is(err, ErrUnknownCode))
}
