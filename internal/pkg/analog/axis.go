// Package analog turns raw ADC samples of a single joystick axis into a calibrated,
// signed reading.
package analog

import (
	"fmt"

	"github.com/gethiox/stickd/internal/pkg/filter"
)

const (
	// DefaultMax is the highest sample of a 12-bit ADC.
	DefaultMax = 4095
	// DefaultCenter is used until the axis gets calibrated.
	DefaultCenter = DefaultMax / 2
)

// Pin is the hardware capability consumed by an Axis.
type Pin interface {
	// ConfigureInput sets the pin up for analog input, invoked once by Axis.Init.
	ConfigureInput()
	// ReadAnalog returns a raw sample in [0, max] range.
	ReadAnalog() int
}

// Calibration is a snapshot of axis calibration state, all values in raw units.
type Calibration struct {
	Center       int
	NegativeSpan float64
	PositiveSpan float64
	DeadZone     int
	Inverted     bool
}

// Degenerate reports calibration that makes Read divide by zero (or by a negative span).
// It happens when the center lands on (or beyond) either end of the raw range.
func (c Calibration) Degenerate() bool {
	return c.NegativeSpan <= 0 || c.PositiveSpan <= 0
}

func (c Calibration) String() string {
	return fmt.Sprintf(
		"center: %d, span: -%.0f/+%.0f, dead zone: %d, inverted: %t",
		c.Center, c.NegativeSpan, c.PositiveSpan, c.DeadZone, c.Inverted,
	)
}

// Axis is a single analog axis: median filter, center/edge normalization,
// dead zone, exponential filter and optional inversion.
//
// Axis is not safe for concurrent use, calibration must not overlap with Read.
type Axis struct {
	// Inverted flips the sign of Read output.
	Inverted bool
	// DeadZone is a raw distance from the center below which Read returns exactly 0.
	DeadZone int

	pin    Pin
	max    int
	center int

	negativeSpan float64
	positiveSpan float64

	median *filter.Median
	smooth *filter.Exponential
}

// NewAxis creates an axis for samples in [0, max] range. The k coefficient is the exponential
// filter gain and has to be in (0, 1] range.
func NewAxis(pin Pin, max int, k float64) (*Axis, error) {
	if max <= 0 {
		return nil, fmt.Errorf("invalid analog maximum: %d", max)
	}

	smooth, err := filter.NewExponential(k)
	if err != nil {
		return nil, err
	}

	center := max / 2
	median, err := filter.NewMedian(filter.DefaultWindow, center)
	if err != nil {
		return nil, err
	}

	a := Axis{
		pin:    pin,
		max:    max,
		median: median,
		smooth: smooth,
	}
	a.UpdateCenter(center)
	return &a, nil
}

func (a *Axis) Init() {
	a.pin.ConfigureInput()
}

// ReadRaw returns an unfiltered sample, it is what calibration works on.
func (a *Axis) ReadRaw() int {
	return a.pin.ReadAnalog()
}

// UpdateCenter recomputes both edge spans from a new raw center.
// No bounds are enforced, a center at 0 or at the maximum gives a zero span, see Calibration.Degenerate.
func (a *Axis) UpdateCenter(center int) {
	a.center = center
	a.negativeSpan = float64(center)
	a.positiveSpan = float64(a.max - center)
}

// Read returns the normalized axis value, nominally in [-1.0, 1.0].
// The value is not clamped, a stale calibration may push it slightly out of range.
func (a *Axis) Read() float64 {
	deviation := a.median.Calc(a.ReadRaw()) - a.center

	if abs(deviation) < a.DeadZone {
		return 0
	}

	value := a.smooth.Calc(float64(deviation))
	if value < 0 {
		value /= a.negativeSpan
	} else {
		value /= a.positiveSpan
	}

	if a.Inverted {
		return -value
	}
	return value
}

func (a *Axis) Max() int {
	return a.max
}

func (a *Axis) Calibration() Calibration {
	return Calibration{
		Center:       a.center,
		NegativeSpan: a.negativeSpan,
		PositiveSpan: a.positiveSpan,
		DeadZone:     a.DeadZone,
		Inverted:     a.Inverted,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
