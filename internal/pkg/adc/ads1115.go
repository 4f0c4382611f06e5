// Package adc samples analog joystick axes through an ADS1115 converter on the I2C bus.
package adc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/d2r2/go-i2c"
	shittyLogger "github.com/d2r2/go-logger"
	"github.com/gethiox/stickd/internal/pkg/button"
	"github.com/gethiox/stickd/internal/pkg/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	DefaultAddress = 0x48
	Channels       = 4

	// MaxValue is the highest single-ended conversion result.
	MaxValue = 0x7fff

	regConversion = 0x00
	regConfig     = 0x01

	cfgStartSingle = 1 << 15
	cfgMuxSingle   = 0b100 << 12 // AINx against GND, channel in bits 12..13
	cfgGain4V      = 0b001 << 9  // +-4.096V
	cfgModeSingle  = 1 << 8
	cfgRate860     = 0b111 << 5
	cfgCompDisable = 0b11

	conversionTime = 1200 * time.Microsecond
	maxPolls       = 10
)

var (
	ErrChannel = errors.New("channel out of range 0-3")
	ErrTimeout = errors.New("conversion timed out")
)

// registers is the part of *i2c.I2C used by the converter.
type registers interface {
	WriteRegU16BE(reg byte, value uint16) error
	ReadRegU16BE(reg byte) (uint16, error)
}

// ADS1115 performs single-shot conversions, one channel at a time.
type ADS1115 struct {
	mu    sync.Mutex
	regs  registers
	bus   *i2c.I2C
	sleep func(time.Duration)
}

// Open connects to the converter at given address and bus number.
func Open(addr uint8, bus int) (*ADS1115, error) {
	shittyLogger.ChangePackageLogLevel("i2c", shittyLogger.InfoLevel)

	raw, err := i2c.NewI2C(addr, bus)
	if err != nil {
		return nil, fmt.Errorf("cannot open i2c-%d at 0x%02x: %w", bus, addr, err)
	}

	log.Info(fmt.Sprintf("ADS1115 opened on i2c-%d at 0x%02x", bus, addr), logger.Debug)
	return &ADS1115{regs: raw, bus: raw, sleep: time.Sleep}, nil
}

func newADS1115(regs registers, sleep func(time.Duration)) *ADS1115 {
	return &ADS1115{regs: regs, sleep: sleep}
}

func (a *ADS1115) Close() error {
	if a.bus == nil {
		return nil
	}
	return a.bus.Close()
}

func config(channel int) uint16 {
	return cfgStartSingle | cfgMuxSingle | uint16(channel)<<12 | cfgGain4V | cfgModeSingle | cfgRate860 | cfgCompDisable
}

// Convert runs one single-shot conversion of given channel.
// Negative results, possible with small offsets around ground, are reported as 0.
func (a *ADS1115) Convert(channel int) (int, error) {
	if channel < 0 || channel >= Channels {
		return 0, ErrChannel
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.regs.WriteRegU16BE(regConfig, config(channel))
	if err != nil {
		return 0, fmt.Errorf("cannot start conversion: %w", err)
	}

	for i := 0; ; i++ {
		a.sleep(conversionTime)
		status, err := a.regs.ReadRegU16BE(regConfig)
		if err != nil {
			return 0, fmt.Errorf("cannot read status: %w", err)
		}
		if status&cfgStartSingle != 0 {
			break
		}
		if i >= maxPolls {
			return 0, ErrTimeout
		}
	}

	raw, err := a.regs.ReadRegU16BE(regConversion)
	if err != nil {
		return 0, fmt.Errorf("cannot read conversion: %w", err)
	}

	value := int(int16(raw))
	if value < 0 {
		value = 0
	}
	return value, nil
}

// Channel returns a pin sampling given input of the converter.
func (a *ADS1115) Channel(channel int) (*Pin, error) {
	if channel < 0 || channel >= Channels {
		return nil, ErrChannel
	}
	return &Pin{adc: a, channel: channel}, nil
}

// Pin is one converter input usable as a joystick axis source.
type Pin struct {
	adc     *ADS1115
	channel int
	last    int
	failed  bool
}

// ConfigureInput does nothing, the mux is configured on every conversion.
func (p *Pin) ConfigureInput() {}

// Max returns the highest value ReadAnalog can produce.
func (p *Pin) Max() int {
	return MaxValue
}

// Configure does nothing, button inputs are sampled as analog too.
func (p *Pin) Configure(button.PinMode) {}

// ReadDigital treats the input as high above half of the range.
func (p *Pin) ReadDigital() bool {
	return p.ReadAnalog() > MaxValue/2
}

// ReadAnalog returns fresh conversion result. On bus failure the previous value is repeated.
func (p *Pin) ReadAnalog() int {
	v, err := p.adc.Convert(p.channel)
	if err != nil {
		if !p.failed {
			log.Info(fmt.Sprintf("conversion failed: %v", err), zap.Int("channel", p.channel), logger.Warning)
			p.failed = true
		}
		return p.last
	}
	if p.failed {
		log.Info("conversion recovered", zap.Int("channel", p.channel), logger.Info)
		p.failed = false
	}
	p.last = v
	return v
}
