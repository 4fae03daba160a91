package dataset

import (
	"fmt"
	"math"

	blockstate "github.com/goliatone/go-blockstate"
	"github.com/goliatone/go-blockstate/internal/hydrate"
)

var fileDecoder = hydrate.NewDecoder[File](
	hydrate.WithDisallowUnknownFields[File](),
	hydrate.WithPreHook[File](resolveSlots),
	hydrate.WithPostHook[File](validateFile),
)

// resolveSlots rewrites block+meta addressed entries into id addressed ones.
func resolveSlots(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	raw, ok := payload["entries"]
	if !ok || raw == nil {
		return payload, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("entries must be a list, got %T", raw)
	}
	for i, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d must be a map, got %T", i, item)
		}
		block, hasBlock := entry["block"]
		meta, hasMeta := entry["meta"]
		if !hasBlock && !hasMeta {
			continue
		}
		if _, hasID := entry["id"]; hasID {
			return nil, fmt.Errorf("entry %d sets both id and block/meta", i)
		}
		b, err := wholeNumber(block, hasBlock, 0)
		if err != nil {
			return nil, fmt.Errorf("entry %d block: %w", i, err)
		}
		m, err := wholeNumber(meta, hasMeta, 0)
		if err != nil {
			return nil, fmt.Errorf("entry %d meta: %w", i, err)
		}
		if b < 0 || b >= blockstate.GroupCount || m < 0 || m > 0xF {
			return nil, fmt.Errorf("entry %d block=%d meta=%d out of range", i, b, m)
		}
		delete(entry, "block")
		delete(entry, "meta")
		entry["id"] = int(blockstate.MakeLegacyID(b, m))
	}
	return payload, nil
}

func wholeNumber(value any, present bool, fallback int) (int, error) {
	if !present {
		return fallback, nil
	}
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", value)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected a whole number, got %v", f)
	}
	return int(f), nil
}

func validateFile(_ hydrate.Context, f *File) error {
	for i, e := range f.Entries {
		if !blockstate.LegacyID(e.ID).Valid() {
			return fmt.Errorf("entry %d: id %d: %w", i, e.ID, blockstate.ErrIDOutOfRange)
		}
		if e.Canonical == "" {
			return fmt.Errorf("entry %d (id %d): canonical form is required", i, e.ID)
		}
	}
	return nil
}
