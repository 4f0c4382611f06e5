package filter

import (
	"errors"
	"fmt"
)

var ErrCoefficient = errors.New("smoothing coefficient must be in (0, 1] range")

// Exponential is a single-pole IIR low-pass filter:
// out = k*in + (1-k)*prev
//
// The previous output starts at 0, so the first few outputs after construction
// (or Reset) ramp up towards the input.
type Exponential struct {
	k    float64
	prev float64
}

func NewExponential(k float64) (*Exponential, error) {
	if !(k > 0 && k <= 1) {
		return nil, fmt.Errorf("%w: %v", ErrCoefficient, k)
	}
	return &Exponential{k: k}, nil
}

// Calc does not validate anything, the coefficient is checked once by NewExponential.
func (e *Exponential) Calc(sample float64) float64 {
	e.prev = e.k*sample + (1-e.k)*e.prev
	return e.prev
}

func (e *Exponential) K() float64 {
	return e.k
}

func (e *Exponential) Reset() {
	e.prev = 0
}
