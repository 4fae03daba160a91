// Package dataset loads the static list of legacy registrations from external
// configuration and feeds it to a blockstate.Builder in file order.
//
// A dataset file lists entries in registration order. Order is significant:
// the first entry seen for a block kind becomes that kind's group default, a
// later entry reusing a variant record takes that record over, and the first
// entry using a legacy name keeps that name.
//
//	version: 1
//	entries:
//	  - id: 16
//	    canonical: "{Name:'minecraft:stone'}"
//	    variants:
//	      - "{Name:'minecraft:stone',Properties:{variant:'stone'}}"
//	  - block: 1
//	    meta: 1
//	    canonical: "{Name:'minecraft:granite'}"
//
// An entry addresses its slot with either id or block+meta.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	blockstate "github.com/goliatone/go-blockstate"
	"github.com/goliatone/go-blockstate/internal/hydrate"
	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a dataset file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned when a format cannot be determined.
var ErrUnknownFormat = errors.New("dataset: unknown format")

// File is a decoded dataset.
type File struct {
	Version     int    `json:"version"`
	Description string `json:"description,omitempty"`
	// EmptyName overrides the sentinel returned for unknown ids.
	EmptyName string  `json:"empty_name,omitempty"`
	Entries   []Entry `json:"entries"`
}

// Entry is one registration triple.
type Entry struct {
	ID        int      `json:"id"`
	Canonical string   `json:"canonical"`
	Variants  []string `json:"variants,omitempty"`
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Load reads and decodes the dataset at path.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()
	return decode(f, format, path)
}

// Decode reads a dataset from r.
func Decode(r io.Reader, format Format) (*File, error) {
	return decode(r, format, "reader")
}

func decode(r io.Reader, format Format, source string) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w", source, err)
	}
	payload := map[string]any{}
	switch format {
	case FormatJSON:
		err = json.Unmarshal(raw, &payload)
	case FormatYAML:
		err = yaml.Unmarshal(raw, &payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s %q: %w", format, source, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	file, err := fileDecoder.Decode(hydrate.Context{Source: source, Format: string(format)}, payload)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Registrations converts the entries for blockstate.Build.
func (f *File) Registrations() []blockstate.Entry {
	out := make([]blockstate.Entry, 0, len(f.Entries))
	for _, e := range f.Entries {
		out = append(out, blockstate.Entry{
			ID:        blockstate.LegacyID(e.ID),
			Canonical: e.Canonical,
			Variants:  append([]string(nil), e.Variants...),
		})
	}
	return out
}

// Apply registers every entry on b in file order and stops at the first
// failure.
func (f *File) Apply(b *blockstate.Builder) error {
	for _, e := range f.Entries {
		if err := b.Register(blockstate.LegacyID(e.ID), e.Canonical, e.Variants...); err != nil {
			return err
		}
	}
	return nil
}

// Options returns builder options the file itself carries.
func (f *File) Options() []blockstate.Option {
	var opts []blockstate.Option
	if f.EmptyName != "" {
		opts = append(opts, blockstate.WithEmptyName(f.EmptyName))
	}
	return opts
}

// Build applies f to a new builder and freezes it. Options carried by the file
// come first so explicit opts win.
func Build(f *File, opts ...blockstate.Option) (*blockstate.Registry, error) {
	all := append(f.Options(), opts...)
	b := blockstate.NewBuilder(all...)
	// A failed Apply leaves the builder failed; Freeze reports the error and
	// notifies activity hooks.
	_ = f.Apply(b)
	return b.Freeze()
}

// LoadRegistry is Load followed by Build.
func LoadRegistry(path string, opts ...blockstate.Option) (*blockstate.Registry, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Build(f, opts...)
}
