package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gethiox/stickd/internal/pkg/logger"
)

//go:embed stickd-config/stickd.config
//go:embed stickd-config/profiles/*.yaml
var templateConfig embed.FS

const (
	configDir = "stickd-config"
)

// createConfigDirectoryIfNeeded writes the embedded config tree into dst.
// Files that already exist are left intact, so user changes survive upgrades
// and profiles added in new releases still show up.
func createConfigDirectoryIfNeeded(dst string) error {
	return fs.WalkDir(templateConfig, configDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(configDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			err := os.MkdirAll(target, 0o777)
			if err != nil {
				return fmt.Errorf("cannot create \"%s\" directory: %w", target, err)
			}
			return nil
		}

		_, err = os.Stat(target)
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("unexpected error when reading \"%s\": %w", target, err)
		}

		data, err := fs.ReadFile(templateConfig, path)
		if err != nil {
			return fmt.Errorf("cannot read \"%s\" template file: %w", path, err)
		}

		err = os.WriteFile(target, data, 0o666)
		if err != nil {
			return fmt.Errorf("cannot write data into \"%s\" file: %w", target, err)
		}

		log.Info(fmt.Sprintf("Created \"%s\" file", target), logger.Debug)
		return nil
	})
}
