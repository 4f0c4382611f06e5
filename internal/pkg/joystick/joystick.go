// Package joystick combines two analog axes into a calibrated 2D stick
// and classifies its position into directions.
package joystick

import (
	"fmt"
	"math"
	"time"

	"github.com/gethiox/stickd/internal/pkg/analog"
)

const (
	// CalibrationPeriod separates samples of the two-pass calibration.
	CalibrationPeriod = time.Millisecond
	// CenterCalibrationPeriod separates samples of the center-only calibration.
	CenterCalibrationPeriod = 10 * time.Millisecond

	// readings shorter than that are reported as an exact zero
	restEpsilon = 1e-3
)

// Reading is a joystick position, X and Y are in [-1.0, 1.0] range and the vector length never exceeds 1.0.
type Reading struct {
	X, Y      float64
	Magnitude float64
}

func (r Reading) String() string {
	return fmt.Sprintf("x: %5.2f, y: %5.2f, magnitude: %4.2f", r.X, r.Y, r.Magnitude)
}

// NewReading builds a Reading out of raw axis values.
// Vectors longer than 1.0 are scaled down radially, so the direction is preserved.
func NewReading(x, y float64) Reading {
	h := math.Hypot(x, y)

	switch {
	case h < restEpsilon:
		return Reading{}
	case h > 1:
		return Reading{X: x / h, Y: y / h, Magnitude: 1}
	default:
		return Reading{X: x, Y: y, Magnitude: h}
	}
}

// Joystick owns two axes sharing the same smoothing coefficient.
// Just like the axes themselves it is meant to be used from a single goroutine.
type Joystick struct {
	X, Y *analog.Axis

	sleep func(time.Duration)
}

func New(pinX, pinY analog.Pin, max int, k float64) (*Joystick, error) {
	x, err := analog.NewAxis(pinX, max, k)
	if err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}
	y, err := analog.NewAxis(pinY, max, k)
	if err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}

	return NewFromAxes(x, y), nil
}

// NewFromAxes builds a joystick out of separately constructed axes, e.g. with different ranges.
func NewFromAxes(x, y *analog.Axis) *Joystick {
	return &Joystick{X: x, Y: y, sleep: time.Sleep}
}

func (j *Joystick) Init() {
	j.X.Init()
	j.Y.Init()
}

// Calibrate measures the rest position. The first pass averages samples into a center,
// the second one looks for the biggest deviation from it and sets the dead zone to 1.5 of that.
//
// The stick has to stay untouched for the whole 2*samples*CalibrationPeriod,
// there is no way to tell if it was moved in the meantime.
func (j *Joystick) Calibrate(samples int) {
	if samples <= 0 {
		return
	}

	centerX, centerY := j.center(samples, CalibrationPeriod)

	var maxDevX, maxDevY int
	for i := 0; i < samples; i++ {
		maxDevX = maxInt(maxDevX, absInt(j.X.ReadRaw()-centerX))
		maxDevY = maxInt(maxDevY, absInt(j.Y.ReadRaw()-centerY))
		j.sleep(CalibrationPeriod)
	}

	j.X.UpdateCenter(centerX)
	j.Y.UpdateCenter(centerY)
	j.X.DeadZone = maxDevX * 3 / 2
	j.Y.DeadZone = maxDevY * 3 / 2
}

// CalibrateCenter is a single-pass variant of Calibrate, dead zones stay intact.
func (j *Joystick) CalibrateCenter(samples int) {
	if samples <= 0 {
		return
	}

	centerX, centerY := j.center(samples, CenterCalibrationPeriod)
	j.X.UpdateCenter(centerX)
	j.Y.UpdateCenter(centerY)
}

func (j *Joystick) center(samples int, period time.Duration) (int, int) {
	var sumX, sumY int
	for i := 0; i < samples; i++ {
		sumX += j.X.ReadRaw()
		sumY += j.Y.ReadRaw()
		j.sleep(period)
	}
	return sumX / samples, sumY / samples
}

func (j *Joystick) Read() Reading {
	return NewReading(j.X.Read(), j.Y.Read())
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
