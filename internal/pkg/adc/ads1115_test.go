package adc

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gethiox/stickd/internal/pkg/button"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegisters struct {
	configs    []uint16
	busyPolls  int
	conversion map[int]uint16
	channel    int
	err        error
}

func (f *fakeRegisters) WriteRegU16BE(reg byte, value uint16) error {
	if f.err != nil {
		return f.err
	}
	if reg == regConfig {
		f.configs = append(f.configs, value)
		f.channel = int(value>>12) & 0b11
	}
	return nil
}

func (f *fakeRegisters) ReadRegU16BE(reg byte) (uint16, error) {
	if f.err != nil {
		return 0, f.err
	}
	switch reg {
	case regConfig:
		if f.busyPolls > 0 {
			f.busyPolls--
			return 0, nil
		}
		return cfgStartSingle, nil
	case regConversion:
		return f.conversion[f.channel], nil
	}
	return 0, fmt.Errorf("unexpected register %d", reg)
}

func noSleep(time.Duration) {}

func TestConfigWord(t *testing.T) {
	for i, tc := range []struct {
		channel  int
		expected uint16
	}{
		{channel: 0, expected: 0xC3E3},
		{channel: 1, expected: 0xD3E3},
		{channel: 2, expected: 0xE3E3},
		{channel: 3, expected: 0xF3E3},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, config(tc.channel))
		})
	}
}

func TestConvert(t *testing.T) {
	regs := &fakeRegisters{busyPolls: 2, conversion: map[int]uint16{1: 12345, 2: 0xfff0}}
	a := newADS1115(regs, noSleep)

	v, err := a.Convert(1)
	require.Equal(t, nil, err)
	assert.Equal(t, 12345, v)
	assert.Equal(t, []uint16{config(1)}, regs.configs)

	v, err = a.Convert(2)
	require.Equal(t, nil, err)
	assert.Equal(t, 0, v, "negative result is reported as 0")
}

func TestConvertErrors(t *testing.T) {
	a := newADS1115(&fakeRegisters{}, noSleep)
	_, err := a.Convert(4)
	assert.ErrorIs(t, err, ErrChannel)
	_, err = a.Channel(-1)
	assert.ErrorIs(t, err, ErrChannel)

	a = newADS1115(&fakeRegisters{busyPolls: 100}, noSleep)
	_, err = a.Convert(0)
	assert.ErrorIs(t, err, ErrTimeout)

	broken := errors.New("remote I/O error")
	a = newADS1115(&fakeRegisters{err: broken}, noSleep)
	_, err = a.Convert(0)
	assert.ErrorIs(t, err, broken)
}

func TestPinRepeatsLastValueOnFailure(t *testing.T) {
	regs := &fakeRegisters{conversion: map[int]uint16{3: 20000}}
	a := newADS1115(regs, noSleep)

	pin, err := a.Channel(3)
	require.Equal(t, nil, err)
	pin.ConfigureInput()
	assert.Equal(t, MaxValue, pin.Max())
	assert.Equal(t, 20000, pin.ReadAnalog())

	regs.err = errors.New("remote I/O error")
	assert.Equal(t, 20000, pin.ReadAnalog())
	assert.Equal(t, 20000, pin.ReadAnalog())

	regs.err = nil
	regs.conversion[3] = 100
	assert.Equal(t, 100, pin.ReadAnalog())
}

func TestPinReadDigital(t *testing.T) {
	regs := &fakeRegisters{conversion: map[int]uint16{2: 26000}}
	a := newADS1115(regs, noSleep)

	pin, err := a.Channel(2)
	require.Equal(t, nil, err)
	pin.Configure(button.InputPullUp)
	assert.True(t, pin.ReadDigital())

	regs.conversion[2] = 300
	assert.False(t, pin.ReadDigital())
}
