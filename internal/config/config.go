// Package config loads the optional per-tree settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the source root. The file is optional, all fields
// are optional, and flags as well as environment variables take precedence.
const FileName = ".pydock.yaml"

// Settings holds the tree-level defaults of a deployment.
type Settings struct {
	// Dest is the destination base the tree is mirrored to.
	Dest string `yaml:"dest"`

	// Bin is the shared binary directory receiving the wrappers.
	Bin string `yaml:"bin"`

	// Prefix is prepended to every wrapper name.
	Prefix string `yaml:"prefix"`

	// Elevate forces wrapper installation through privilege elevation.
	Elevate bool `yaml:"elevate"`
}

// Load reads the settings file from the given directory. A missing file is
// not an error and yields zero settings.
func Load(dir string) (Settings, error) {
	var settings Settings
	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("cannot read %s: %w", FileName, err)
	}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return settings, fmt.Errorf("malformed %s: %w", FileName, err)
	}
	return settings, nil
}
