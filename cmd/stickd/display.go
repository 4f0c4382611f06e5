package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gethiox/stickd/internal/pkg/display"
)

// exitLines is shown when the daemon stops and no exit message is configured.
func exitLines(cfg display.ScreenConfig) [4]string {
	width, rows := cfg.Size()
	center := func(s string) string {
		return fmt.Sprintf("%*s", -width, fmt.Sprintf("%*s", (width+len(s))/2, s))
	}

	var lines [4]string
	if !cfg.HaveExitMessage() {
		lines[0] = center("stickd stopped")
		lines[1] = center(fmt.Sprintf("events: %d", midiEventsEmitted.Load()))
		return lines
	}

	for i, msg := range cfg.ExitMessage[:rows] {
		r := []rune(msg)
		if len(r) > width {
			r = r[:width]
		}
		lines[i] = center(string(r))
	}
	return lines
}

// GenerateDisplayData renders the stick state at screen update rate until ctx is done,
// then sends one last frame with the exit message.
func GenerateDisplayData(ctx context.Context, wg *sync.WaitGroup, cfg display.ScreenConfig, state *stickState) <-chan display.DisplayData {
	data := make(chan display.DisplayData)

	go func() {
		defer wg.Done()
		defer close(data)

		ticker := time.NewTicker(cfg.UpdateRate)
		defer ticker.Stop()

	root:
		for {
			snap := state.Load()
			lines := display.Render(display.State{
				Direction:   snap.Direction.String(),
				X:           snap.Reading.X,
				Y:           snap.Reading.Y,
				Magnitude:   snap.Reading.Magnitude,
				Events:      uint(midiEventsEmitted.Load()),
				Calibrating: snap.Calibrating,
			}, cfg)

			select {
			case data <- display.DisplayData{Lines: lines}:
			case <-ctx.Done():
				break root
			}

			select {
			case <-ctx.Done():
				break root
			case <-ticker.C:
			}
		}

		data <- display.DisplayData{
			Lines:   exitLines(cfg),
			LastMsg: true,
		}
	}()

	return data
}
