package display

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/d2r2/go-hd44780"
	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	for i, tc := range []struct {
		value    float64
		width    int
		expected string
	}{
		{value: 0, width: 7, expected: "   │   "},
		{value: 1, width: 7, expected: "   │███"},
		{value: -1, width: 7, expected: "███│   "},
		{value: 2, width: 7, expected: "   │███"},
		{value: 0.5, width: 7, expected: "   │█▍ "},
		{value: 0.2, width: 7, expected: "   │▍  "},
		{value: 1, width: 2, expected: "  "},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, Bar(tc.value, tc.width))
		})
	}
}

func TestRender(t *testing.T) {
	state := State{Direction: "Right", X: 1, Y: 0, Magnitude: 1, Events: 42}

	for _, tc := range []struct {
		lcdType  hd44780.LcdType
		width    int
		rows     int
		expected [4]string
	}{
		{
			lcdType: hd44780.LCD_20x4, width: 20, rows: 4,
			expected: [4]string{
				"◆ Right             ",
				"x         │████████ ",
				"y         │         ",
				"mag 1.00 ev       42",
			},
		},
		{
			lcdType: hd44780.LCD_16x2, width: 16, rows: 2,
			expected: [4]string{
				"◆ Right     1.00",
				"x   │███y   │   ",
			},
		},
	} {
		t.Run(fmt.Sprintf("%dx%d", tc.width, tc.rows), func(t *testing.T) {
			lines := Render(state, ScreenConfig{LcdType: tc.lcdType})
			assert.Equal(t, tc.expected, lines)
			for _, l := range lines[:tc.rows] {
				assert.Equal(t, tc.width, utf8.RuneCountInString(l))
			}
		})
	}
}

func TestRenderCalibrating(t *testing.T) {
	lines := Render(State{Direction: "Home", Calibrating: true}, ScreenConfig{LcdType: hd44780.LCD_20x4})
	assert.Equal(t, "◆ calibrating       ", lines[0])
}

func TestReplaceCharsForDisplay(t *testing.T) {
	assert.Equal(t, "x\x05\x04\x02 ?", replaceCharsForDisplay("x│█▍ é"))
	assert.Equal(t, "ab\x06", replaceCharsForDisplay("ab◆"))
}
