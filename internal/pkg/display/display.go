package display

import (
	"fmt"
	"sync"

	device "github.com/d2r2/go-hd44780"
	"github.com/d2r2/go-i2c"
	shittyLogger "github.com/d2r2/go-logger"
	"github.com/gethiox/stickd/internal/pkg/logger"
)

var log = logger.GetLogger()

func getDisplay(addr uint8, bus int, lcdType device.LcdType) (*device.Lcd, *i2c.I2C, error) {
	shittyLogger.ChangePackageLogLevel("i2c", shittyLogger.InfoLevel)

	lcdRaw, err := i2c.NewI2C(addr, bus)
	if err != nil {
		return nil, nil, err
	}

	lcd, err := device.NewLcd(lcdRaw, lcdType)
	if err != nil {
		return nil, lcdRaw, err
	}

	return lcd, lcdRaw, nil
}

func loadCustomCharacters(lcd *device.Lcd, characters [][]byte) {
	for i, char := range characters {
		var location = uint8(i) & 0x7

		lcd.Command(device.CMD_CGRAM_Set | (location << 3))
		lcd.Write(char)
	}
}

// barChars are loaded into CGRAM slots 0-7, bars in DisplayData lines use these slots
var barChars = [][]byte{
	{0x10, 0x10, 0x10, 0x10, 0x10, 0x10, 0x10, 0x10}, // "▏"
	{0x18, 0x18, 0x18, 0x18, 0x18, 0x18, 0x18, 0x18}, // "▎"
	{0x1C, 0x1C, 0x1C, 0x1C, 0x1C, 0x1C, 0x1C, 0x1C}, // "▍"
	{0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E}, // "▌"
	{0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F}, // "█"
	{0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04}, // "│"
	{0x00, 0x04, 0x0E, 0x1F, 0x0E, 0x04, 0x00, 0x00}, // "◆"
}

var conversionMap = map[rune]byte{
	'▏': 0,
	'▎': 1,
	'▍': 2,
	'▌': 3,
	'█': 4,
	'│': 5,
	'◆': 6,
}

func replaceCharsForDisplay(s string) string {
	var ns []byte
	for _, r := range s {
		n, ok := conversionMap[r]
		if ok {
			ns = append(ns, n)
		} else if r < 0x80 {
			ns = append(ns, byte(r))
		} else {
			ns = append(ns, '?')
		}
	}
	return string(ns)
}

type DisplayData struct {
	Lines   [4]string
	LastMsg bool // last frame, display is left as is afterwards
}

// HandleDisplay writes incoming frames to the LCD until dd is closed.
// Without a working display frames are drained anyway.
func HandleDisplay(wg *sync.WaitGroup, cfg ScreenConfig, dd <-chan DisplayData) {
	defer wg.Done()
	lcd, bus, err := getDisplay(cfg.Address, cfg.Bus, cfg.LcdType)
	if err != nil {
		log.Info(fmt.Sprintf("display unavailable: %v", err), logger.Warning)
		if bus != nil {
			bus.Close()
		}
		for range dd {
		}
		return
	}

	loadCustomCharacters(lcd, barChars)

	lcd.BacklightOn()
	lcd.Clear()

	_, rows := cfg.Size()
	for data := range dd {
		if data.LastMsg {
			lcd.Clear()
		}
		for i, s := range data.Lines[:rows] {
			lcd.SetPosition(i, 0)
			lcd.Write([]byte(replaceCharsForDisplay(s)))
		}
	}

	bus.Close()
	log.Info("display closed", logger.Debug)
}
