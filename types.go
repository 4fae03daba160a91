package blockstate

import (
	"fmt"

	"github.com/goliatone/go-blockstate/pkg/activity"
)

const (
	// TableSize is the number of addressable legacy ids.
	TableSize = 4096
	// GroupCount is the number of block kinds; each owns 16 metadata slots.
	GroupCount = TableSize >> 4
	// DefaultEmptyName is returned by UpgradeID for unknown or unset ids.
	DefaultEmptyName = "minecraft:air"
)

// LegacyID is the (block_kind << 4) | metadata integer used by the legacy
// on-disk encoding.
type LegacyID int

// MakeLegacyID packs a block kind and metadata nibble into a LegacyID. Values
// are not range checked; use Valid on the result.
func MakeLegacyID(block, meta int) LegacyID {
	return LegacyID(block<<4 | meta&0xF)
}

// Valid reports whether id addresses a slot in the table.
func (id LegacyID) Valid() bool {
	return id >= 0 && id < TableSize
}

// Group returns the block kind bucket (id >> 4).
func (id LegacyID) Group() int {
	return int(id) >> 4
}

// Block is an alias for Group kept for call sites that think in block kinds.
func (id LegacyID) Block() int {
	return id.Group()
}

// Metadata returns the low nibble.
func (id LegacyID) Metadata() int {
	return int(id) & 0xF
}

func (id LegacyID) String() string {
	return fmt.Sprintf("%d:%d", id.Block(), id.Metadata())
}

// Entry is one (id, canonical form, variant forms) registration triple.
type Entry struct {
	ID        LegacyID
	Canonical string
	Variants  []string
}

// RuleContext carries inputs needed when evaluating an expression against a
// table slot.
type RuleContext struct {
	ID     LegacyID
	Record Record
	Args   map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) label() string {
	if !ctx.ID.Valid() {
		return "unknown"
	}
	return ctx.ID.String()
}

// binding exposes the slot as the variable set shared by every engine.
func (ctx RuleContext) binding() map[string]any {
	props := make(map[string]any, len(ctx.Record.Properties))
	for key, value := range ctx.Record.Properties {
		props[key] = value
	}
	return map[string]any{
		"id":         int(ctx.ID),
		"block":      ctx.ID.Block(),
		"meta":       ctx.ID.Metadata(),
		"group":      ctx.ID.Group(),
		"name":       ctx.Record.Name,
		"ns":         ctx.Record.Namespace(),
		"path":       ctx.Record.Path(),
		"properties": props,
		"args":       ctx.Args,
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// Option configures a Builder and the Registry it freezes into.
type Option func(*config)

type config struct {
	parser        Parser
	emptyName     string
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	logger        EvaluatorLogger
	buildLogger   BuildLogger
	activityHooks activity.Hooks

	activityConfig     activity.Config
	activityConfigured bool
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.emptyName == "" {
		cfg.emptyName = DefaultEmptyName
	}
	return cfg
}

// WithParser replaces the record grammar parser used during registration.
func WithParser(p Parser) Option {
	return func(cfg *config) {
		cfg.parser = p
	}
}

// WithEmptyName overrides the sentinel name returned for unknown ids.
func WithEmptyName(name string) Option {
	return func(cfg *config) {
		cfg.emptyName = name
	}
}

// WithEvaluator configures the evaluator used by Registry.Evaluate and Select.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

func (cfg config) parserOrDefault() Parser {
	if cfg.parser != nil {
		return cfg.parser
	}
	return defaultParser
}

func (cfg config) evaluatorLogger() EvaluatorLogger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopEvaluatorLogger{}
}

func (cfg config) buildLog() BuildLogger {
	if cfg.buildLogger != nil {
		return cfg.buildLogger
	}
	return noopBuildLogger{}
}
