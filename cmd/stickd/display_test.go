package main

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/d2r2/go-hd44780"
	"github.com/gethiox/stickd/internal/pkg/display"
	"github.com/gethiox/stickd/internal/pkg/joystick"
	"github.com/stretchr/testify/assert"
)

func TestExitLines(t *testing.T) {
	lines := exitLines(display.ScreenConfig{LcdType: hd44780.LCD_20x4})
	assert.Equal(t, "   stickd stopped   ", lines[0])
	assert.Equal(t, "", lines[2])

	lines = exitLines(display.ScreenConfig{
		LcdType:     hd44780.LCD_16x2,
		ExitMessage: [4]string{"bye", "", "not shown", ""},
	})
	assert.Equal(t, "      bye       ", lines[0])
	assert.Equal(t, strings.Repeat(" ", 16), lines[1])
	assert.Equal(t, "", lines[2])
}

func TestGenerateDisplayData(t *testing.T) {
	state := &stickState{}
	state.Store(snapshot{Direction: joystick.Left})

	cfg := display.ScreenConfig{LcdType: hd44780.LCD_20x4, UpdateRate: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	wg := sync.WaitGroup{}
	wg.Add(1)
	dd := GenerateDisplayData(ctx, &wg, cfg, state)

	first := <-dd
	assert.Equal(t, false, first.LastMsg)
	assert.True(t, strings.HasPrefix(first.Lines[0], "◆ Left"))

	cancel()
	var last display.DisplayData
	for data := range dd {
		last = data
	}
	wg.Wait()
	assert.Equal(t, true, last.LastMsg)
	assert.Equal(t, "   stickd stopped   ", last.Lines[0])
}
