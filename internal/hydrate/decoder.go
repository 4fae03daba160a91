// Package hydrate turns loosely typed payloads (decoded JSON or YAML) into
// typed structs, with hooks to normalize the payload before decoding and to
// validate the result after.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the payload being hydrated in errors and hooks.
type Context struct {
	Source string
	Format string
}

func (c Context) String() string {
	if c.Format == "" {
		return fmt.Sprintf("%q", c.Source)
	}
	return fmt.Sprintf("%q (%s)", c.Source, c.Format)
}

// PreHook lets callers rewrite the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default JSON round trip when provided.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts payload maps into T.
type Decoder[T any] struct {
	preHooks        []PreHook
	postHooks       []PostHook[T]
	useNumber       bool
	disallowUnknown bool
	custom          CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding. Hooks run in registration order.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.useNumber = true
	}
}

// WithDisallowUnknownFields rejects payload keys with no matching field.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.disallowUnknown = true
	}
}

// WithCustomDecoder replaces the default JSON decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

// NewDecoder constructs a Decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T applying configured hooks. The caller's
// payload is never mutated.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %s", ctx)
	}

	current, err := clonePayload(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: clone payload for %s: %w", ctx, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx, err)
		}
		if next != nil {
			current = next
		}
	}

	result, err := d.decode(ctx, current)
	if err != nil {
		return zero, err
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx, err)
		}
	}

	return result, nil
}

func (d *Decoder[T]) decode(ctx Context, payload map[string]any) (T, error) {
	var result T
	if d.custom != nil {
		out, err := d.custom(ctx, payload)
		if err != nil {
			return result, fmt.Errorf("hydrate: custom decoder for %s failed: %w", ctx, err)
		}
		return out, nil
	}
	buffer, err := json.Marshal(payload)
	if err != nil {
		return result, fmt.Errorf("hydrate: marshal payload for %s: %w", ctx, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.useNumber {
		decoder.UseNumber()
	}
	if d.disallowUnknown {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&result); err != nil {
		return result, fmt.Errorf("hydrate: decode %s: %w", ctx, err)
	}
	return result, nil
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}
