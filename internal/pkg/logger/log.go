package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Messages carries JSON-encoded log entries, one per message.
// Consumer has to drain it, otherwise logging blocks once the buffer is full.
var Messages = make(chan []byte, 128)

const (
	ErrorLvl     = 0
	WarningLvl   = 1
	InfoLvl      = 2
	ActionLvl    = 3
	DirectionLvl = 4
	AnalogLvl    = 5

	DebugLvl = 378
)

var (
	Error     = zap.Int("level", ErrorLvl)
	Warning   = zap.Int("level", WarningLvl)
	Info      = zap.Int("level", InfoLvl)
	Action    = zap.Int("level", ActionLvl)
	Direction = zap.Int("level", DirectionLvl)
	Analog    = zap.Int("level", AnalogLvl)

	Debug = zap.Int("level", DebugLvl)
)

type chanWriter struct {
	sync.Mutex
	out chan<- []byte
}

func (w *chanWriter) Write(p []byte) (n int, err error) {
	w.Lock()
	var newSlice = make([]byte, len(p))
	copy(newSlice, p)
	w.out <- newSlice
	w.Unlock()
	return len(p), nil
}

func (w *chanWriter) Sync() error {
	return nil
}

func newLogger(out chan<- []byte) *zap.Logger {
	writer := &chanWriter{out: out}
	cfg := zap.NewProductionEncoderConfig()
	cfg.SkipLineEnding = true
	cfg.EncodeTime = zapcore.EpochNanosTimeEncoder
	cfg.LevelKey = ""
	encoder := zapcore.NewJSONEncoder(cfg)

	return zap.New(
		zapcore.NewCore(encoder, zapcore.Lock(writer), zap.DebugLevel),
		zap.AddCaller(),
	)
}

// GetLogger returns a logger writing into Messages.
func GetLogger() *zap.Logger {
	return newLogger(Messages)
}
