package blockstate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Builder populates the migration table. It is single-threaded: register every
// historical triple, then Freeze to obtain a shareable Registry. A Builder is
// not safe for concurrent use.
//
// The first failed registration is sticky. Every later call returns it and
// Freeze refuses to produce a partially built Registry.
type Builder struct {
	cfg    config
	parser Parser

	table        [TableSize]*Record
	groupDefault [GroupCount]*Record
	backfilled   [TableSize]bool

	// records: last write wins. names: first write wins.
	records map[string]LegacyID
	names   map[string]LegacyID

	registered int
	variants   int
	err        error
	frozen     bool
}

// NewBuilder constructs an empty builder.
func NewBuilder(opts ...Option) *Builder {
	cfg := applyOptions(opts)
	return &Builder{
		cfg:     cfg,
		parser:  cfg.parserOrDefault(),
		records: make(map[string]LegacyID),
		names:   make(map[string]LegacyID),
	}
}

// Register parses canonical and variants and records them against id.
//
// The canonical form overwrites table[id]. If the group of id has no default
// yet, canonical becomes it. Each variant is mapped back to id in the record
// map (a later identical variant reassigns it) and its name is mapped to id
// in the name map only when that name is not mapped yet.
func (b *Builder) Register(id LegacyID, canonical string, variants ...string) error {
	if err := b.usable(); err != nil {
		return err
	}
	start := time.Now()
	if !id.Valid() {
		return b.fail(id, len(variants), start, &RegistrationError{ID: id, Err: ErrIDOutOfRange})
	}
	canon, err := b.parser.Parse(canonical)
	if err != nil {
		return b.fail(id, len(variants), start, &RegistrationError{ID: id, Form: canonical, Err: err})
	}
	parsed := make([]Record, 0, len(variants))
	for _, form := range variants {
		variant, err := b.parser.Parse(form)
		if err != nil {
			return b.fail(id, len(variants), start, &RegistrationError{ID: id, Form: form, Err: err})
		}
		parsed = append(parsed, variant)
	}
	b.store(id, canon, parsed)
	b.cfg.buildLog().LogBuild(BuildLogEvent{
		Phase:    BuildPhaseRegister,
		ID:       id,
		Variants: len(parsed),
		Duration: time.Since(start),
	})
	return nil
}

// RegisterRecords is Register for already parsed records.
func (b *Builder) RegisterRecords(id LegacyID, canonical Record, variants ...Record) error {
	if err := b.usable(); err != nil {
		return err
	}
	start := time.Now()
	if !id.Valid() {
		return b.fail(id, len(variants), start, &RegistrationError{ID: id, Err: ErrIDOutOfRange})
	}
	if canonical.Name == "" {
		return b.fail(id, len(variants), start, &RegistrationError{ID: id, Form: canonical.String(), Err: fmt.Errorf("canonical record has no name")})
	}
	for _, variant := range variants {
		if variant.Name == "" {
			return b.fail(id, len(variants), start, &RegistrationError{ID: id, Form: variant.String(), Err: fmt.Errorf("variant record has no name")})
		}
	}
	b.store(id, canonical, variants)
	b.cfg.buildLog().LogBuild(BuildLogEvent{
		Phase:    BuildPhaseRegister,
		ID:       id,
		Variants: len(variants),
		Duration: time.Since(start),
	})
	return nil
}

// MustRegister is Register for static tables; it panics on error.
func (b *Builder) MustRegister(id LegacyID, canonical string, variants ...string) {
	if err := b.Register(id, canonical, variants...); err != nil {
		panic(err)
	}
}

// Err returns the error that aborted the build, if any.
func (b *Builder) Err() error {
	return b.err
}

// Finalize fills every unset slot whose group has a default and returns the
// number of slots it filled. Slots already set are never touched, so a second
// call fills nothing.
func (b *Builder) Finalize() int {
	start := time.Now()
	filled := 0
	for i := range b.table {
		if b.table[i] != nil {
			continue
		}
		if def := b.groupDefault[i>>4]; def != nil {
			b.table[i] = def
			b.backfilled[i] = true
			filled++
		}
	}
	b.cfg.buildLog().LogBuild(BuildLogEvent{
		Phase:    BuildPhaseFinalize,
		Filled:   filled,
		Duration: time.Since(start),
	})
	return filled
}

// Freeze finalizes the table and returns the immutable Registry.
func (b *Builder) Freeze() (*Registry, error) {
	return b.FreezeContext(context.Background())
}

// FreezeContext is Freeze with a context for activity hooks.
func (b *Builder) FreezeContext(ctx context.Context) (*Registry, error) {
	start := time.Now()
	emitter := newActivityEmitter(b.cfg)
	if b.frozen {
		return nil, ErrFrozen
	}
	if b.err != nil {
		b.cfg.buildLog().LogBuild(BuildLogEvent{Phase: BuildPhaseFreeze, Duration: time.Since(start), Err: b.err})
		b.notify(emitter.Emit(ctx, registryFailedEvent(b.err)))
		return nil, b.err
	}
	b.Finalize()
	b.frozen = true

	reg := &Registry{
		id:         uuid.NewString(),
		cfg:        b.cfg,
		table:      b.table,
		backfilled: b.backfilled,
		records:    b.records,
		names:      b.names,
	}
	reg.stats = reg.computeStats(b.registered, b.variants)
	reg.evaluator = b.cfg.resolveEvaluator()
	reg.engine = evaluatorEngineName(reg.evaluator)
	b.records = nil
	b.names = nil

	b.cfg.buildLog().LogBuild(BuildLogEvent{
		Phase:    BuildPhaseFreeze,
		Filled:   reg.stats.Backfilled,
		Duration: time.Since(start),
	})
	b.notify(emitter.Emit(ctx, registryFrozenEvent(reg)))
	return reg, nil
}

func (b *Builder) store(id LegacyID, canonical Record, variants []Record) {
	canon := canonical.Clone()
	b.table[id] = &canon
	b.backfilled[id] = false
	if b.groupDefault[id.Group()] == nil {
		b.groupDefault[id.Group()] = &canon
	}
	for _, variant := range variants {
		b.records[variant.Key()] = id
		if _, ok := b.names[variant.Name]; !ok {
			b.names[variant.Name] = id
		}
	}
	b.registered++
	b.variants += len(variants)
}

func (b *Builder) usable() error {
	if b.frozen {
		return ErrFrozen
	}
	return b.err
}

func (b *Builder) fail(id LegacyID, variants int, start time.Time, err error) error {
	b.err = err
	b.cfg.buildLog().LogBuild(BuildLogEvent{
		Phase:    BuildPhaseRegister,
		ID:       id,
		Variants: variants,
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

func (b *Builder) notify(err error) {
	if err == nil {
		return
	}
	b.cfg.buildLog().LogBuild(BuildLogEvent{Phase: BuildPhaseNotify, Err: err})
}

// Build registers entries in order and freezes the result.
func Build(entries []Entry, opts ...Option) (*Registry, error) {
	b := NewBuilder(opts...)
	for _, entry := range entries {
		if err := b.Register(entry.ID, entry.Canonical, entry.Variants...); err != nil {
			break
		}
	}
	return b.Freeze()
}

// MustBuild is Build for package-level tables; it panics on error.
func MustBuild(entries []Entry, opts ...Option) *Registry {
	reg, err := Build(entries, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}
