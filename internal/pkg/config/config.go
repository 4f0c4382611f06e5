package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/d2r2/go-hd44780"
	"github.com/gethiox/stickd/internal/pkg/display"
	"github.com/go-ini/ini"
)

type CalibrationMode string

const (
	CalibrationFull   CalibrationMode = "full"   // center and dead zone
	CalibrationCenter CalibrationMode = "center" // center only
)

var ErrCalibrationMode = errors.New("unsupported calibration mode")

type Stickd struct {
	PollRate           time.Duration
	CalibrationSamples int
	CalibrationMode    CalibrationMode
	FilterK            float64
	Threshold          float64
	Profile            string
	LogViewRate        time.Duration
	DiscoveryRate      time.Duration
}

type Overlay struct {
	Enabled bool
	Address string
}

type Config struct {
	Stickd  Stickd
	Screen  display.ScreenConfig
	Overlay Overlay
}

func rate(key *ini.Key) (time.Duration, error) {
	i, err := key.Int()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key.Name(), err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("%s: rate has to be positive, got %d", key.Name(), i)
	}
	return time.Second / time.Duration(i), nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (Config, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("cannot parse config: %w", err)
	}

	var c Config

	// [stickd]
	stickd := cfg.Section("stickd")

	c.Stickd.PollRate, err = rate(stickd.Key("poll_rate"))
	if err != nil {
		return Config{}, err
	}
	c.Stickd.DiscoveryRate, err = rate(stickd.Key("discovery_rate"))
	if err != nil {
		return Config{}, err
	}
	c.Stickd.LogViewRate, err = rate(stickd.Key("log_view_rate"))
	if err != nil {
		return Config{}, err
	}

	c.Stickd.CalibrationSamples, err = stickd.Key("calibration_samples").Int()
	if err != nil {
		return Config{}, fmt.Errorf("calibration_samples: %w", err)
	}

	switch m := CalibrationMode(stickd.Key("calibration_mode").String()); m {
	case CalibrationFull, CalibrationCenter:
		c.Stickd.CalibrationMode = m
	default:
		return Config{}, fmt.Errorf("%w: \"%s\"", ErrCalibrationMode, m)
	}

	c.Stickd.FilterK, err = stickd.Key("filter_k").Float64()
	if err != nil {
		return Config{}, fmt.Errorf("filter_k: %w", err)
	}
	c.Stickd.Threshold, err = stickd.Key("threshold").Float64()
	if err != nil {
		return Config{}, fmt.Errorf("threshold: %w", err)
	}
	if c.Stickd.Threshold <= 0 || c.Stickd.Threshold >= 1 {
		return Config{}, fmt.Errorf("threshold has to be in (0, 1) range, got %f", c.Stickd.Threshold)
	}

	c.Stickd.Profile = stickd.Key("profile").String()
	if c.Stickd.Profile == "" {
		return Config{}, errors.New("profile: missing value")
	}

	// [screen]
	screen := cfg.Section("screen")

	c.Screen.Enabled, err = screen.Key("enabled").Bool()
	if err != nil {
		return Config{}, fmt.Errorf("screen enabled: %w", err)
	}

	switch t := screen.Key("type").String(); t {
	case "16x2":
		c.Screen.LcdType = hd44780.LCD_16x2
	case "20x4":
		c.Screen.LcdType = hd44780.LCD_20x4
	default:
		return Config{}, fmt.Errorf("unsupported screen type: \"%s\"", t)
	}

	c.Screen.Bus, err = screen.Key("bus").Int()
	if err != nil {
		return Config{}, fmt.Errorf("screen bus: %w", err)
	}

	address, err := screen.Key("address").Int()
	if err != nil {
		return Config{}, fmt.Errorf("screen address: %w", err)
	}
	if address < 0 || address > 0x7f {
		return Config{}, fmt.Errorf("screen address outside of 7-bit range: %d", address)
	}
	c.Screen.Address = uint8(address)

	c.Screen.UpdateRate, err = rate(screen.Key("update_rate"))
	if err != nil {
		return Config{}, err
	}

	for i := range c.Screen.ExitMessage {
		c.Screen.ExitMessage[i] = screen.Key(fmt.Sprintf("exit_message%d", i+1)).String()
	}

	// [overlay]
	overlay := cfg.Section("overlay")
	c.Overlay.Enabled, err = overlay.Key("enabled").Bool()
	if err != nil {
		return Config{}, fmt.Errorf("overlay enabled: %w", err)
	}
	c.Overlay.Address = overlay.Key("address").String()
	if c.Overlay.Enabled && c.Overlay.Address == "" {
		return Config{}, errors.New("overlay address: missing value")
	}

	return c, nil
}
