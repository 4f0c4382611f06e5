package config

import (
	"strings"
	"testing"
	"time"

	"github.com/d2r2/go-hd44780"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `[stickd]
poll_rate = 100
discovery_rate = 2
log_view_rate = 20
calibration_samples = 40
calibration_mode = full
filter_k = 0.3
threshold = 0.2
profile = thumbstick.yaml

[screen]
enabled = true
type = 20x4
bus = 1
address = 39
update_rate = 4
exit_message1 = bye

[overlay]
enabled = true
address = 127.0.0.1:8787
`

func TestParseConfig(t *testing.T) {
	c, err := parseConfig([]byte(sampleConfig))
	require.Equal(t, nil, err)

	assert.Equal(t, 10*time.Millisecond, c.Stickd.PollRate)
	assert.Equal(t, 500*time.Millisecond, c.Stickd.DiscoveryRate)
	assert.Equal(t, 50*time.Millisecond, c.Stickd.LogViewRate)
	assert.Equal(t, 40, c.Stickd.CalibrationSamples)
	assert.Equal(t, CalibrationFull, c.Stickd.CalibrationMode)
	assert.Equal(t, 0.3, c.Stickd.FilterK)
	assert.Equal(t, 0.2, c.Stickd.Threshold)
	assert.Equal(t, "thumbstick.yaml", c.Stickd.Profile)

	assert.True(t, c.Screen.Enabled)
	assert.Equal(t, hd44780.LCD_20x4, c.Screen.LcdType)
	assert.Equal(t, 1, c.Screen.Bus)
	assert.Equal(t, uint8(39), c.Screen.Address)
	assert.Equal(t, 250*time.Millisecond, c.Screen.UpdateRate)
	assert.Equal(t, "bye", c.Screen.ExitMessage[0])
	assert.True(t, c.Screen.HaveExitMessage())

	assert.True(t, c.Overlay.Enabled)
	assert.Equal(t, "127.0.0.1:8787", c.Overlay.Address)
}

func TestParseConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		old     string
		new     string
		errPart string
	}{
		{name: "zero poll rate", old: "poll_rate = 100", new: "poll_rate = 0", errPart: "poll_rate"},
		{name: "bad calibration mode", old: "calibration_mode = full", new: "calibration_mode = twice", errPart: "calibration mode"},
		{name: "threshold too big", old: "threshold = 0.2", new: "threshold = 1.5", errPart: "threshold"},
		{name: "missing profile", old: "profile = thumbstick.yaml", new: "", errPart: "profile"},
		{name: "bad screen type", old: "type = 20x4", new: "type = 40x2", errPart: "screen type"},
		{name: "bad address", old: "address = 39", new: "address = 300", errPart: "7-bit"},
		{name: "overlay without address", old: "address = 127.0.0.1:8787", new: "", errPart: "overlay address"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data := strings.Replace(sampleConfig, tc.old, tc.new, 1)
			_, err := parseConfig([]byte(data))
			require.NotEqual(t, nil, err)
			assert.Contains(t, err.Error(), tc.errPart)
		})
	}
}
