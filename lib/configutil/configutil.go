// Package configutil reads json5 configuration files with local overrides.
package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath is the override file read next to path, config.json5 becomes
// config.local.json5.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func readFile[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads path and merges the values of its local override on top.
// os.ErrNotExist is returned when neither file exists.
func ReadConfig[T any](path string) (T, error) {
	var out T

	found, err := readFile(path, &out)
	if err != nil {
		return out, err
	}

	local := LocalPath(path)
	var override T
	foundLocal, err := readFile(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merged config with local overrides", "local", local)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for name in the working directory and then in each
// of its parents, reading the first match with ReadConfig.
func ReadRecursively[T any](name string) (T, string, error) {
	var empty T

	current, err := os.Getwd()
	if err != nil {
		return empty, "", err
	}
	for {
		path := filepath.Join(current, name)
		config, err := ReadConfig[T](path)
		if err == nil {
			return config, path, nil
		}
		if !os.IsNotExist(err) {
			return empty, "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return empty, "", os.ErrNotExist
		}
		current = parent
	}
}
