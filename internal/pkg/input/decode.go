package input

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

const devicesPath = "/proc/bus/input/devices"

// GetHandlers returns a list of available input handlers in the system.
// Note: there is non-zero probability that returned list may be incomplete,
// no matter where they come from, either /proc/bus/input/devices or /dev/input listing has the same behavior.
// This is needed to be handled when user wants to have a complete group of handlers for given hardware device.
func GetHandlers() ([]DeviceInfo, error) {
	data, err := os.ReadFile(devicesPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read input devices: %w", err)
	}

	di, err := unmarshal(data)
	if err != nil {
		return nil, err
	}

	return di, nil
}

// longBits is a width of unsigned long used by the kernel when printing bitmaps
const longBits = strconv.IntSize

// setBitmap stores kernel-printed bitmap words into 32-bit array f.
// The kernel prints the most significant word first and skips leading zero words.
func setBitmap(f reflect.Value, words []string, width int) error {
	for i, v := range words {
		uv, err := strconv.ParseUint(v, 16, width)
		if err != nil {
			return fmt.Errorf("hex decoding failed: %w", err)
		}

		base := (len(words) - 1 - i) * width / 32
		for part := 0; part < width/32; part++ {
			chunk := uint32(uv >> (32 * part))
			if chunk == 0 {
				continue
			}
			if base+part >= f.Len() {
				return fmt.Errorf("too long: %d words", len(words))
			}
			f.Index(base + part).SetUint(uint64(chunk))
		}
	}
	return nil
}

// unmarshal parses /proc/bus/input/devices file
func unmarshal(data []byte) ([]DeviceInfo, error) {
	var devices = make([]DeviceInfo, 0)

	if len(data) == 0 {
		return devices, nil
	}

	sdata := string(data)

	var device DeviceInfo

	var emptyLineCounter = 0
	for _, line := range strings.Split(sdata, "\n") {
		if line == "" {
			emptyLineCounter += 1
			if emptyLineCounter < 2 {
				devices = append(devices, device)
				device = DeviceInfo{}
			}
			continue
		}
		emptyLineCounter = 0

		if len(line) < 3 {
			return devices, fmt.Errorf("malformed line: %q", line)
		}
		label := line[:1]
		info := line[3:]

		switch label {
		case "I":
			ps := reflect.ValueOf(&device.ID)
			s := ps.Elem()

			for _, param := range strings.Split(info, " ") {
				l, v, ok := strings.Cut(param, "=")
				if !ok {
					return devices, fmt.Errorf("malformed id parameter: %q", param)
				}
				f := s.FieldByName(l)
				if !f.IsValid() {
					continue
				}

				hv, err := hex.DecodeString(fmt.Sprintf("%04s", v))
				if err != nil {
					return devices, fmt.Errorf("hex decoding failed: %w", err)
				}
				uv := binary.BigEndian.Uint16(hv)

				f.SetUint(uint64(uv))
			}
		case "N":
			device.Name = strings.Trim(strings.TrimPrefix(info, "Name="), "\"")
		case "P":
			device.Phys = strings.TrimPrefix(info, "Phys=")
		case "S":
			device.Sysfs = strings.TrimPrefix(info, "Sysfs=")
		case "U":
			device.Uniq = strings.TrimPrefix(info, "Uniq=")
		case "H":
			// If there is at least one handler, there is additional space at the end of the line
			handlersChain := strings.TrimPrefix(info, "Handlers=")
			device.Handlers = strings.Fields(handlersChain)
		case "B":
			ps := reflect.ValueOf(&device.Bitmaps)
			s := ps.Elem()

			l, vs, ok := strings.Cut(info, "=")
			if !ok {
				return devices, fmt.Errorf("malformed bitmap: %q", info)
			}
			f := s.FieldByName(l)
			if !f.IsValid() {
				continue
			}
			err := setBitmap(f, strings.Fields(vs), longBits)
			if err != nil {
				return devices, fmt.Errorf("bitmap %s: %w", l, err)
			}
		}
	}

	if device.Name != "" || len(device.Handlers) > 0 {
		devices = append(devices, device)
	}

	return devices, nil
}
