package input

// Related things to separate handlers that comes from /proc/bus/input/devices

import (
	"fmt"
	"strings"

	"github.com/holoplot/go-evdev"
)

type PhysicalID string
type HandlerType int

const (
	DI_TYPE_UNKNOWN = HandlerType(iota)
	DI_TYPE_KBD     // keyboard-like handler, keys only
	DI_TYPE_MOUSE
	DI_TYPE_JOYSTICK // joystick handler with at least one absolute axis pair
)

func (ht HandlerType) String() string {
	switch ht {
	case DI_TYPE_KBD:
		return "KBD"
	case DI_TYPE_MOUSE:
		return "MOUSE"
	case DI_TYPE_JOYSTICK:
		return "JOYSTICK"
	default:
		return "UNKNOWN"
	}
}

// DeviceInfo contains information of every reported event device
// it is supposed to be created by unmarshal function only
type DeviceInfo struct {
	ID       InputID  // ID of the device
	Name     string   // name of the device
	Phys     string   // physical path to the device in the system hierarchy
	Sysfs    string   // sysfs path
	Uniq     string   // unique identification code for the device (if device has it)
	Handlers []string // list of input handles associated with the device
	Bitmaps  Bitmaps
}

type InputID struct {
	Bus     uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

func (id InputID) String() string {
	return fmt.Sprintf("%04x:%04x:%04x:%04x", id.Bus, id.Vendor, id.Product, id.Version)
}

// Bitmaps keeps BITS_TO_LONGS lengths of the kernel capability bitmaps (32-bit words).
// Index 0 holds the lowest codes.
type Bitmaps struct {
	PROP [1]uint32  // device properties and quirks
	EV   [1]uint32  // types of events supported by the device
	KEY  [24]uint32 // keys/buttons this device has
	REL  [1]uint32
	ABS  [2]uint32
	MSC  [1]uint32 // miscellaneous events supported by the device
	LED  [1]uint32 // leds present on the device
	SND  [1]uint32
	FF   [4]uint32
	SW   [1]uint32
}

func bitSet(words []uint32, code evdev.EvCode) bool {
	word := int(code) / 32
	if word >= len(words) {
		return false
	}
	return words[word]&(1<<(uint(code)%32)) != 0
}

// HasEventType reports whether the handler emits events of given type.
func (d *DeviceInfo) HasEventType(t evdev.EvType) bool {
	return bitSet(d.Bitmaps.EV[:], evdev.EvCode(t))
}

// HasAbs reports whether the handler has given absolute axis.
func (d *DeviceInfo) HasAbs(code evdev.EvCode) bool {
	return bitSet(d.Bitmaps.ABS[:], code)
}

// HasKey reports whether the handler has given key or button.
func (d *DeviceInfo) HasKey(code evdev.EvCode) bool {
	return bitSet(d.Bitmaps.KEY[:], code)
}

// Event returns event name, like "event0" for /dev/input/event0
func (d *DeviceInfo) Event() string {
	for _, handler := range d.Handlers {
		if strings.HasPrefix(handler, "event") {
			return handler
		}
	}
	return ""
}

// EventPath returns a /dev/input/event filepath
func (d *DeviceInfo) EventPath() string {
	event := d.Event()
	if event == "" {
		return ""
	}
	return fmt.Sprintf("/dev/input/%s", event)
}

func (d *DeviceInfo) HandlerType() HandlerType {
	for _, h := range d.Handlers {
		if strings.HasPrefix(h, "js") {
			return DI_TYPE_JOYSTICK
		}
	}

	if d.HasEventType(evdev.EV_ABS) && d.HasAbs(evdev.ABS_X) && d.HasAbs(evdev.ABS_Y) {
		return DI_TYPE_JOYSTICK
	}

	for _, h := range d.Handlers {
		if strings.HasPrefix(h, "mouse") {
			return DI_TYPE_MOUSE
		}
	}

	if d.HasEventType(evdev.EV_KEY) {
		return DI_TYPE_KBD
	}

	return DI_TYPE_UNKNOWN
}

// PhysicalUUID returns unique UUID based on connection of given USB port
// The main usage is to identify groups of handlers that represent one physical device
func (d *DeviceInfo) PhysicalUUID() PhysicalID {
	phys := strings.Split(d.Phys, "/")
	return PhysicalID(phys[0])
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s [%s] (%s, %s)", d.Name, d.ID, d.Event(), d.HandlerType())
}
