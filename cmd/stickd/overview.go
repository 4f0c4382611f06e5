package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/stickd/internal/pkg/analog"
	"github.com/gethiox/stickd/internal/pkg/display"
	"github.com/gethiox/stickd/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
)

func axisLine(au aurora.Aurora, name string, v float64, c analog.Calibration, width int) string {
	desc := fmt.Sprintf(" %+.2f  %s", v, c)
	if c.Degenerate() {
		desc = fmt.Sprintf(" %+.2f  %s", v, au.Red(c.String()).String())
	}
	barWidth := width - len(name) - 1 - rawStringLen(desc)
	if barWidth < 3 {
		barWidth = 3
	}
	return fmt.Sprintf("%s %s%s", name, display.Bar(v, barWidth), desc)
}

// stickLines renders the stick view content, one entry per view row.
func stickLines(au aurora.Aurora, snap snapshot, events []directionEvent, width int) []string {
	direction := colorForString(au, snap.Direction.String()).String()
	if snap.Calibrating {
		direction = au.Yellow("calibrating").String()
	}

	var recent []string
	for _, ev := range events {
		recent = append(recent, fmt.Sprintf("%s %s", ev.At.Format("15:04:05.000"), colorForString(au, ev.Snapshot.Direction.String()).String()))
	}

	return []string{
		fmt.Sprintf("profile: %s, device: %s", colorForString(au, snap.Profile).String(), colorForString(au, snap.Device).String()),
		axisLine(au, "x", snap.Reading.X, snap.X, width),
		axisLine(au, "y", snap.Reading.Y, snap.Y, width),
		fmt.Sprintf("└ magnitude: %.2f, threshold: %.2f, direction: %s", snap.Reading.Magnitude, snap.Threshold, direction),
		fmt.Sprintf("└ recent: %s", strings.Join(recent, ", ")),
	}
}

func writeLines(view *gocui.View, lines []string) {
	x, y := view.Size()
	view.Rewind()
	for i := 0; i < y; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		free := x - rawStringLen(line)
		if free < 0 {
			free = 0
		}
		view.Write([]byte(line + strings.Repeat(" ", free)))
		view.Write([]byte{'\n'})
	}
}

func stickView(g *gocui.Gui, colors bool, state *stickState, h *history, rate time.Duration) {
	view, err := g.View(ViewStick)
	if err != nil {
		panic(err)
	}

	au := aurora.NewAurora(colors)

	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	for range ticker.C {
		x, _ := view.Size()
		lines := stickLines(au, state.Load(), h.Last(), x)
		g.Update(func(*gocui.Gui) error {
			writeLines(view, lines)
			return nil
		})
	}
}

func logView(g *gocui.Gui, color bool, logLevel, bufSize int) {
	feeder, err := NewFeeder(g, ViewLogs, logLevel, aurora.NewAurora(color))
	if err != nil {
		panic(err)
	}

	buf := newLogBuffer(bufSize)

	var newMessage = make(chan bool, 1)
	go func() {
		for msg := range logger.Messages {
			buf.WriteMessage(msg)
			select {
			case newMessage <- true:
			default:
			}
		}
		close(newMessage)
	}()

	sizeCheck := time.NewTicker(time.Millisecond * 100)
	defer sizeCheck.Stop()

	var lastX, lastY int
	for {
		select {
		case _, ok := <-newMessage:
			if !ok {
				return
			}
		case <-sizeCheck.C:
			x, y := feeder.view.Size()
			if x == lastX && y == lastY {
				continue
			}
			lastX, lastY = x, y
		}

		g.Update(func(*gocui.Gui) error {
			feeder.view.Clear()
			_, y := feeder.view.Size()
			for _, msg := range buf.ReadLastMessages(y) {
				feeder.Write(msg)
			}
			return nil
		})
	}
}

func lcdView(g *gocui.Gui, dd <-chan display.DisplayData) {
	view, err := g.View(ViewLCD)
	if err != nil {
		panic(err)
	}

	for data := range dd {
		lines := data.Lines
		g.Update(func(*gocui.Gui) error {
			writeLines(view, lines[:])
			return nil
		})
	}
}
