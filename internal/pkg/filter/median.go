package filter

import (
	"errors"
	"fmt"
)

// DefaultWindow is the median window used by analog axes.
const DefaultWindow = 5

var ErrWindowSize = errors.New("median window size must be odd and positive")

// Median is a rank filter over the last N integer samples.
// It rejects short spikes that an exponential filter would smear into the output.
type Median struct {
	window  []int
	sorted  []int
	pointer int
}

// NewMedian returns a filter with all window slots set to seed,
// so the output is stable from the very first Calc call.
func NewMedian(size, seed int) (*Median, error) {
	if size <= 0 || size%2 == 0 {
		return nil, fmt.Errorf("%w: %d", ErrWindowSize, size)
	}

	m := Median{
		window: make([]int, size),
		sorted: make([]int, size),
	}
	for i := range m.window {
		m.window[i] = seed
	}
	return &m, nil
}

// Calc overwrites the oldest sample and returns the median of the window.
func (m *Median) Calc(sample int) int {
	m.window[m.pointer] = sample
	m.pointer++
	if m.pointer == len(m.window) {
		m.pointer = 0
	}

	copy(m.sorted, m.window)
	for i := 1; i < len(m.sorted); i++ {
		v := m.sorted[i]
		j := i - 1
		for ; j >= 0 && m.sorted[j] > v; j-- {
			m.sorted[j+1] = m.sorted[j]
		}
		m.sorted[j+1] = v
	}

	return m.sorted[len(m.sorted)/2]
}

func (m *Median) Size() int {
	return len(m.window)
}
