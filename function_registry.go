package blockstate

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable exposed to rule expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by lower-cased name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// BuiltinFunctions returns a registry preloaded with helpers for working with
// legacy ids and namespaced names:
//
//	legacy_id(block, meta) -> int
//	namespace_of(name)     -> string
//	path_of(name)          -> string
func BuiltinFunctions() *FunctionRegistry {
	r := NewFunctionRegistry()
	_ = r.Register("legacy_id", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("legacy_id expects 2 arguments, got %d", len(args))
		}
		block, err := toInt(args[0])
		if err != nil {
			return nil, fmt.Errorf("legacy_id block: %w", err)
		}
		meta, err := toInt(args[1])
		if err != nil {
			return nil, fmt.Errorf("legacy_id meta: %w", err)
		}
		return int(MakeLegacyID(block, meta)), nil
	})
	_ = r.Register("namespace_of", func(args ...any) (any, error) {
		name, err := singleString("namespace_of", args)
		if err != nil {
			return nil, err
		}
		return Record{Name: name}.Namespace(), nil
	})
	_ = r.Register("path_of", func(args ...any) (any, error) {
		name, err := singleString("path_of", args)
		if err != nil {
			return nil, err
		}
		return Record{Name: name}.Path(), nil
	})
	return r
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("blockstate: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("blockstate: function name must not be empty")
	}
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("blockstate: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("blockstate: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("blockstate: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry exposes registry to the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the default evaluator.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func singleString(fn string, args []any) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s expects 1 argument, got %d", fn, len(args))
	}
	s, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("%s expects a string, got %T", fn, args[0])
	}
	return s, nil
}
