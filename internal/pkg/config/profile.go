package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gethiox/stickd/internal/pkg/button"
	"github.com/gethiox/stickd/internal/pkg/joystick"
	"github.com/gethiox/stickd/internal/pkg/midi"
	"gopkg.in/yaml.v3"
)

type SourceType string

const (
	SourceEvdev   SourceType = "evdev"
	SourceADS1115 SourceType = "ads1115"
)

type ButtonAction string

const (
	ActionCalibrate ButtonAction = "calibrate"
	ActionPanic     ButtonAction = "panic" // all notes off
)

var (
	ErrUnknownSource = errors.New("unknown source type")
	ErrUnknownAction = errors.New("unknown button action")
)

type YamlSource struct {
	Type    SourceType `yaml:"type"`
	Device  string     `yaml:"device"`
	Grab    bool       `yaml:"grab"`
	Bus     int        `yaml:"bus"`
	Address int        `yaml:"address"`
}

type YamlAxis struct {
	Input    string `yaml:"input"`
	Max      int    `yaml:"max"`
	Inverted bool   `yaml:"inverted"`
	DeadZone int    `yaml:"dead_zone"`
}

type YamlButton struct {
	Input        string `yaml:"input"`
	Mode         string `yaml:"mode"`
	ExternalPull bool   `yaml:"external_pull"`
	Action       string `yaml:"action"`
}

type YamlMidi struct {
	Channel   int               `yaml:"channel"`
	Velocity  int               `yaml:"velocity"`
	XControl  *int              `yaml:"x_control"`
	YControl  *int              `yaml:"y_control"`
	PitchBend bool              `yaml:"pitch_bend"`
	Notes     map[string]string `yaml:"notes"`
}

type YamlProfile struct {
	Name   string     `yaml:"name"`
	Source YamlSource `yaml:"source"`
	Axes   struct {
		X YamlAxis `yaml:"x"`
		Y YamlAxis `yaml:"y"`
	} `yaml:"axes"`
	Threshold float64     `yaml:"threshold"`
	Button    *YamlButton `yaml:"button"`
	Midi      *YamlMidi   `yaml:"midi"`
}

type Source struct {
	Type    SourceType
	Device  string // evdev: fragment of device name
	Grab    bool
	Bus     int   // ads1115
	Address uint8 // ads1115
}

type Axis struct {
	Input    string // ABS code name for evdev, channel number for ads1115
	Max      int    // 0 means the range reported by the source
	Inverted bool
	DeadZone int // 0 keeps calibrated dead zone
}

// Channel returns ADS1115 input number of the axis.
func (a Axis) Channel() (int, error) {
	return strconv.Atoi(a.Input)
}

type Button struct {
	Input        string
	Mode         button.Mode
	ExternalPull bool
	Action       ButtonAction
}

type Profile struct {
	File      string
	Name      string
	Source    Source
	X, Y      Axis
	Threshold float64 // 0 keeps threshold from stickd config
	Button    *Button
	Midi      *midi.Mapping
}

// LoadProfile parses yaml file and provides ready to use Profile
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile failed: %w", err)
	}

	p, err := parseProfile(data)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	p.File = path
	return p, nil
}

func parseProfile(data []byte) (Profile, error) {
	var raw YamlProfile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&raw)
	if err != nil {
		return Profile{}, fmt.Errorf("parsing yaml failed: %w", err)
	}

	p := Profile{Name: raw.Name, Threshold: raw.Threshold}

	if raw.Threshold < 0 || raw.Threshold >= 1 {
		return Profile{}, fmt.Errorf("threshold has to be in [0, 1) range, got %f", raw.Threshold)
	}

	p.Source, err = parseSource(raw.Source)
	if err != nil {
		return Profile{}, err
	}

	for i, a := range []YamlAxis{raw.Axes.X, raw.Axes.Y} {
		axis, err := parseAxis(p.Source.Type, a)
		if err != nil {
			return Profile{}, fmt.Errorf("axis %s: %w", []string{"x", "y"}[i], err)
		}
		if i == 0 {
			p.X = axis
		} else {
			p.Y = axis
		}
	}

	if raw.Button != nil {
		b, err := parseButton(p.Source.Type, *raw.Button)
		if err != nil {
			return Profile{}, fmt.Errorf("button: %w", err)
		}
		p.Button = &b
	}

	if raw.Midi != nil {
		m, err := parseMidi(*raw.Midi)
		if err != nil {
			return Profile{}, fmt.Errorf("midi: %w", err)
		}
		p.Midi = &m
	}

	return p, nil
}

func parseSource(raw YamlSource) (Source, error) {
	s := Source{Type: raw.Type, Device: raw.Device, Grab: raw.Grab, Bus: raw.Bus}

	switch raw.Type {
	case SourceEvdev:
	case SourceADS1115:
		if raw.Address < 0 || raw.Address > 0x7f {
			return Source{}, fmt.Errorf("address outside of 7-bit range: %d", raw.Address)
		}
		s.Address = uint8(raw.Address)
	default:
		return Source{}, fmt.Errorf("%w: \"%s\"", ErrUnknownSource, raw.Type)
	}

	return s, nil
}

func parseAxis(source SourceType, raw YamlAxis) (Axis, error) {
	if raw.Input == "" {
		return Axis{}, errors.New("input not specified")
	}
	if raw.Max < 0 {
		return Axis{}, fmt.Errorf("max has to be positive, got %d", raw.Max)
	}
	if raw.DeadZone < 0 {
		return Axis{}, fmt.Errorf("dead zone has to be positive, got %d", raw.DeadZone)
	}

	axis := Axis{Input: raw.Input, Max: raw.Max, Inverted: raw.Inverted, DeadZone: raw.DeadZone}

	switch source {
	case SourceEvdev:
		if !strings.HasPrefix(raw.Input, "ABS_") {
			return Axis{}, fmt.Errorf("absolute axis name expected, got \"%s\"", raw.Input)
		}
	case SourceADS1115:
		ch, err := axis.Channel()
		if err != nil || ch < 0 || ch > 3 {
			return Axis{}, fmt.Errorf("ADS1115 channel 0-3 expected, got \"%s\"", raw.Input)
		}
	}

	return axis, nil
}

func parseButton(source SourceType, raw YamlButton) (Button, error) {
	b := Button{Input: raw.Input, ExternalPull: raw.ExternalPull}

	switch raw.Mode {
	case "", "pull_up":
		b.Mode = button.PullUp
	case "pull_down":
		b.Mode = button.PullDown
	default:
		return Button{}, fmt.Errorf("unsupported mode: \"%s\"", raw.Mode)
	}

	switch a := ButtonAction(raw.Action); a {
	case ActionCalibrate, ActionPanic:
		b.Action = a
	default:
		return Button{}, fmt.Errorf("%w: \"%s\"", ErrUnknownAction, raw.Action)
	}

	switch source {
	case SourceEvdev:
		if !strings.HasPrefix(raw.Input, "BTN_") && !strings.HasPrefix(raw.Input, "KEY_") {
			return Button{}, fmt.Errorf("key or button name expected, got \"%s\"", raw.Input)
		}
	case SourceADS1115:
		ch, err := strconv.Atoi(raw.Input)
		if err != nil || ch < 0 || ch > 3 {
			return Button{}, fmt.Errorf("ADS1115 channel 0-3 expected, got \"%s\"", raw.Input)
		}
	}

	return b, nil
}

var directionNames = map[string]joystick.Direction{
	"home":  joystick.Home,
	"up":    joystick.Up,
	"down":  joystick.Down,
	"left":  joystick.Left,
	"right": joystick.Right,
}

func parseNote(raw string) (byte, error) {
	noteInt, err := strconv.Atoi(raw)
	if err == nil {
		if noteInt < 0 || noteInt > 127 {
			return 0, fmt.Errorf("note value outside of 0-127 range: %d", noteInt)
		}
		return byte(noteInt), nil
	}
	return midi.StringToNote(raw)
}

func parseControl(raw *int, name string) (int, error) {
	if raw == nil || *raw == midi.Disabled {
		return midi.Disabled, nil
	}
	if *raw < 0 || *raw > 119 {
		return 0, fmt.Errorf("%s: control number outside of 0-119 range: %d", name, *raw)
	}
	return *raw, nil
}

func parseMidi(raw YamlMidi) (midi.Mapping, error) {
	var m midi.Mapping

	channel := raw.Channel
	if channel == 0 {
		channel = 1
	}
	if channel < 1 || channel > 16 {
		return midi.Mapping{}, fmt.Errorf("channel outside of 1-16 range: %d", raw.Channel)
	}
	m.Channel = uint8(channel - 1)

	velocity := raw.Velocity
	if velocity == 0 {
		velocity = 100
	}
	if velocity < 1 || velocity > 127 {
		return midi.Mapping{}, fmt.Errorf("velocity outside of 1-127 range: %d", raw.Velocity)
	}
	m.Velocity = uint8(velocity)

	var err error
	m.XControl, err = parseControl(raw.XControl, "x_control")
	if err != nil {
		return midi.Mapping{}, err
	}
	m.YControl, err = parseControl(raw.YControl, "y_control")
	if err != nil {
		return midi.Mapping{}, err
	}
	m.PitchBend = raw.PitchBend

	m.Notes = make(map[joystick.Direction]byte, len(raw.Notes))
	for name, noteRaw := range raw.Notes {
		d, ok := directionNames[strings.ToLower(name)]
		if !ok {
			return midi.Mapping{}, fmt.Errorf("unknown direction: \"%s\"", name)
		}
		note, err := parseNote(noteRaw)
		if err != nil {
			return midi.Mapping{}, fmt.Errorf("%s: %w", name, err)
		}
		m.Notes[d] = note
	}

	return m, nil
}

// Reloadable reports whether switching from p to next can be applied without reopening the source.
func (p Profile) Reloadable(next Profile) bool {
	return p.Source == next.Source &&
		p.X.Input == next.X.Input && p.X.Max == next.X.Max &&
		p.Y.Input == next.Y.Input && p.Y.Max == next.Y.Max &&
		(p.Button == nil) == (next.Button == nil) &&
		(p.Button == nil || p.Button.Input == next.Button.Input)
}
