package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gethiox/stickd/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
)

func TestRawStringLen(t *testing.T) {
	for i, tc := range []struct {
		input    string
		expected int
	}{
		{input: "", expected: 0},
		{input: "a", expected: 1},
		{input: "a\033", expected: 2},
		{input: "a\033[", expected: 3},
		{input: "a\033[2", expected: 4},
		{input: "a\033[2A", expected: 1},
		{input: "a\033[2Aa", expected: 2},
		{input: "\033[38;5;33mUp\033[0m", expected: 2},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			l := rawStringLen(tc.input)
			assert.Equal(t, tc.expected, l)
		})
	}
}

func testEntry() Entry {
	return Entry{
		Ts:        TimeNanosecond(time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.Local)),
		Caller:    "stickd/manager.go:42",
		Msg:       "direction changed",
		Level:     logger.DirectionLvl,
		Direction: "Up",
		Device:    "pad",
	}
}

func TestPrepareString(t *testing.T) {
	au := aurora.NewAurora(false)

	assert.Equal(t, "[03:04:05.006] direction changed [Up] [dev=pad]", prepareString(testEntry(), au, -1, logger.DirectionLvl))
	assert.Equal(t, "", prepareString(testEntry(), au, -1, logger.InfoLvl))

	s := prepareString(testEntry(), au, 60, logger.AnalogLvl)
	assert.Equal(t, 60, rawStringLen(s))
	assert.True(t, strings.HasSuffix(s, " [Up] [dev=pad]"))

	s = prepareString(testEntry(), au, -1, logger.DebugLvl)
	assert.True(t, strings.HasSuffix(s, "(stickd/manager.go:42)"))
}

func TestPrepareStringChannel(t *testing.T) {
	channel := 3
	e := Entry{Msg: "conversion failed", Level: logger.WarningLvl, Channel: &channel}
	s := prepareString(e, aurora.NewAurora(false), -1, logger.InfoLvl)
	assert.True(t, strings.HasSuffix(s, "conversion failed [ch=3]"))
}

func TestUnpack(t *testing.T) {
	e, err := unpack([]byte(`{"ts":1704164645006000000,"msg":"hi","level":2,"device_name":"pad"}`))
	assert.Equal(t, nil, err)
	assert.Equal(t, "hi", e.Msg)
	assert.Equal(t, logger.InfoLvl, e.Level)
	assert.Equal(t, "pad", e.Device)
	assert.Equal(t, int64(1704164645006000000), time.Time(e.Ts).UnixNano())

	_, err = unpack([]byte("not json"))
	assert.NotEqual(t, nil, err)
}

func TestLogBuffer(t *testing.T) {
	b := newLogBuffer(3)
	assert.Len(t, b.ReadLastMessages(5), 0)

	b.WriteMessage([]byte("a"))
	b.WriteMessage([]byte("b"))
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, b.ReadLastMessages(5))

	b.WriteMessage([]byte("c"))
	b.WriteMessage([]byte("d"))
	assert.Equal(t, [][]byte{[]byte("b"), []byte("c"), []byte("d")}, b.ReadLastMessages(5))
	assert.Equal(t, [][]byte{[]byte("c"), []byte("d")}, b.ReadLastMessages(2))
}
