package netlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a format name or file extension that is
// not TOML, YAML or JSON.
var ErrUnknownFormat = errors.New("unknown netlist format")

// Format names a netlist encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTOML, FormatYAML, FormatJSON}

// ParseFormat accepts "toml", "yaml", "yml" and "json", in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Decode reads a netlist in format f from r and validates it. Decode does
// not close r.
func Decode(r io.Reader, f Format) (*Netlist, error) {
	var nl Netlist
	var err error
	switch f {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&nl)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&nl)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&nl)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	if err := nl.Validate(); err != nil {
		return nil, err
	}
	return &nl, nil
}

// Load reads and validates the netlist file at path. A netlist without a
// name is named after the file.
func Load(path string) (*Netlist, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	nl, err := Decode(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if nl.Name == "" {
		nl.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return nl, nil
}

// Encode writes nl to w in format f.
func Encode(w io.Writer, f Format, nl *Netlist) error {
	var err error
	switch f {
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(nl)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(nl); err == nil {
			err = enc.Close()
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(nl)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Save writes nl to path, picking the format from the extension.
func Save(path string, nl *Netlist) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(file, f, nl); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
