package midi

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const sndDir = "/dev/snd"

// DetectDevices lists raw MIDI devices, like /dev/snd/midiC1D0.
func DetectDevices() ([]IODevice, error) {
	return detectDevices(sndDir)
}

func detectDevices(dir string) ([]IODevice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list midi devices: %w", err)
	}

	var devices = make([]IODevice, 0)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.HasPrefix(entry.Name(), "midi") {
			devices = append(devices, IODevice{Path: filepath.Join(dir, entry.Name())})
		}
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Path < devices[j].Path
	})

	return devices, nil
}

type IODevice struct {
	Path string
}

func (d *IODevice) Open() (*os.File, error) {
	return os.OpenFile(d.Path, os.O_RDWR|os.O_SYNC, 0)
}
