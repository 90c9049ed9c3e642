package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// ErrUnknownPreset is returned by Preset for names without an embedded file.
var ErrUnknownPreset = errors.New("unknown catalog preset")

// Parse decodes YAML data into a validated catalog. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(spec)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(p string) (*Catalog, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return c, nil
}

// Preset returns one of the catalogs embedded in the binary.
func Preset(name string) (*Catalog, error) {
	data, err := presetFS.ReadFile(path.Join("presets", name+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// PresetNames lists the embedded presets, sorted.
func PresetNames() []string {
	entries, _ := presetFS.ReadDir("presets")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
