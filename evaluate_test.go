package blockstate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type evaluatorFactory struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
	// call renders a call(name, args...) invocation in the engine's syntax.
	call func(name string, args ...string) string
}

var evaluatorFactories = []evaluatorFactory{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprEvaluator(opts...)
		},
		call: spreadCall,
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELEvaluator(opts...)
		},
		call: func(name string, args ...string) string {
			return fmt.Sprintf("call('%s', [%s])", name, strings.Join(args, ", "))
		},
	},
}

func spreadCall(name string, args ...string) string {
	all := append([]string{fmt.Sprintf("'%s'", name)}, args...)
	return fmt.Sprintf("call(%s)", strings.Join(all, ", "))
}

type fakeProgramCache struct {
	store  map[string]any
	hits   int
	misses int
}

func (c *fakeProgramCache) Get(key string) (any, bool) {
	if c.store == nil {
		c.store = map[string]any{}
	}
	value, ok := c.store[key]
	if ok {
		c.hits++
		return value, true
	}
	c.misses++
	return nil, false
}

func (c *fakeProgramCache) Set(key string, value any) {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = value
}

type capturingEvaluator struct {
	contexts []RuleContext
}

func (c *capturingEvaluator) Evaluate(ctx RuleContext, _ string) (any, error) {
	c.contexts = append(c.contexts, ctx)
	return true, nil
}

func (c *capturingEvaluator) Compile(string) (CompiledRule, error) {
	return nil, errors.New("compile not supported")
}

func stoneRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	b := NewBuilder(opts...)
	b.MustRegister(0, airForm)
	b.MustRegister(16, stoneForm, "{Name:'minecraft:stone',Properties:{variant:'stone'}}")
	b.MustRegister(17, "{Name:'minecraft:granite'}", "{Name:'minecraft:stone',Properties:{variant:'granite'}}")
	b.MustRegister(32, "{Name:'minecraft:grass_block',Properties:{snowy:'false'}}")
	b.MustRegister(50, "{Name:'minecraft:podzol',Properties:{snowy:'false'}}")
	b.MustRegister(52, "{Name:'mod:peat',Properties:{wet:'true'}}")
	return freeze(t, b)
}

func TestEvaluateBindsSlot(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			reg := stoneRegistry(t, WithEvaluator(factory.new(nil, nil)))

			cases := []struct {
				id   LegacyID
				expr string
				want any
			}{
				{17, "name", "minecraft:granite"},
				{17, "block == 1 && meta == 1 && group == 1", true},
				{17, "id == 17", true},
				{52, "ns == 'mod' && path == 'peat'", true},
				{50, "properties.snowy == 'false'", true},
				// backfilled slot carries its group default.
				{40, "name == 'minecraft:grass_block'", true},
			}
			for _, tc := range cases {
				got, err := reg.Evaluate(tc.id, tc.expr)
				if err != nil {
					t.Fatalf("%s: unexpected error: %v", tc.expr, err)
				}
				if got != tc.want {
					t.Fatalf("%s: expected %v, got %v", tc.expr, tc.want, got)
				}
			}
		})
	}
}

func TestSelect(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			reg := stoneRegistry(t, WithEvaluator(factory.new(nil, nil)))

			ids, err := reg.Select("name == 'minecraft:granite'")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(ids, []LegacyID{17}) {
				t.Fatalf("expected [17], got %v", ids)
			}

			ids, err = reg.SelectWith("group == args.group && meta > 12", map[string]any{"group": 3})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(ids, []LegacyID{61, 62, 63}) {
				t.Fatalf("expected [61 62 63], got %v", ids)
			}

			if _, err := reg.Select("name"); err == nil {
				t.Fatalf("expected non-bool predicate to fail")
			} else {
				var evalErr *EvaluationError
				if !errors.As(err, &evalErr) || evalErr.Slot != "0:0" {
					t.Fatalf("expected EvaluationError on first slot, got %v", err)
				}
			}
		})
	}
}

func TestEvaluatorProgramCache(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			cache := &fakeProgramCache{}
			reg := stoneRegistry(t, WithEvaluator(factory.new(cache, nil)))

			for i := 0; i < 3; i++ {
				if _, err := reg.Evaluate(16, "name == 'minecraft:stone'"); err != nil {
					t.Fatalf("unexpected error on iteration %d: %v", i, err)
				}
			}
			if cache.misses != 1 || cache.hits != 2 {
				t.Fatalf("expected 1 miss and 2 hits, got %d/%d", cache.misses, cache.hits)
			}
		})
	}
}

func TestDefaultEvaluatorUsesProgramCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	reg := stoneRegistry(t, WithProgramCache(cache))

	if _, err := reg.Select("block == 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reg.Evaluate(3, "block == 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached program, got %d", cache.Len())
	}
}

func TestCustomFunctionsAcrossEvaluators(t *testing.T) {
	registry := BuiltinFunctions()
	if err := registry.Register("is_dirt_like", func(args ...any) (any, error) {
		name, err := singleString("is_dirt_like", args)
		if err != nil {
			return nil, err
		}
		return strings.HasSuffix(name, "podzol") || strings.HasSuffix(name, "dirt"), nil
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			reg := stoneRegistry(t, WithEvaluator(factory.new(nil, registry)))

			got, err := reg.Evaluate(17, factory.call("legacy_id", "block", "meta")+" == id")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != true {
				t.Fatalf("expected legacy_id to rebuild the id, got %v", got)
			}

			got, err = reg.Evaluate(52, factory.call("namespace_of", "name")+" == 'mod'")
			if err != nil || got != true {
				t.Fatalf("expected namespace_of to split the name, got %v %v", got, err)
			}

			ids, err := reg.Select(factory.call("is_dirt_like", "name"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// 48..63 except 50 and 52 are backfilled from 50.
			if len(ids) != 15 || ids[0] != 48 {
				t.Fatalf("unexpected selection %v", ids)
			}

			if _, err := reg.Evaluate(16, factory.call("missing", "name")); err == nil {
				t.Fatalf("expected unknown function to fail")
			}
		})
	}
}

func TestExprCallsRegistryFunctionsDirectly(t *testing.T) {
	reg := stoneRegistry(t, WithFunctionRegistry(BuiltinFunctions()))

	got, err := reg.Evaluate(17, "path_of(name) == 'granite' && legacy_id(1, 1) == id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestWithCustomFunctionReachesDefaultEvaluator(t *testing.T) {
	reg := stoneRegistry(t, WithCustomFunction("double", func(args ...any) (any, error) {
		n, err := toInt(args[0])
		return n * 2, err
	}))

	got, err := reg.Evaluate(17, "double(meta)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestEvaluateWithCustomContext(t *testing.T) {
	capture := &capturingEvaluator{}
	reg := stoneRegistry(t, WithEvaluator(capture))

	if _, err := reg.Evaluate(5000, "anything"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(capture.contexts) != 1 {
		t.Fatalf("expected one evaluation, got %d", len(capture.contexts))
	}
	if ctx := capture.contexts[0]; ctx.Record.Name != "minecraft:air" || ctx.ID != 5000 {
		t.Fatalf("expected fallback record for out of range id, got %+v", ctx)
	}

	ctx := RuleContext{ID: 3, Record: NewRecord("custom:block"), Args: map[string]any{"k": 1}}
	if _, err := reg.EvaluateWith(ctx, "anything"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := capture.contexts[1]; got.Record.Name != "custom:block" || got.Args["k"] != 1 {
		t.Fatalf("expected explicit context to reach evaluator, got %+v", got)
	}

	if _, err := reg.Select("anything"); err == nil {
		t.Fatalf("expected Select to surface compile failure")
	}
}

func TestEvaluateRejectsEmptyExpression(t *testing.T) {
	reg := stoneRegistry(t)
	if _, err := reg.Evaluate(16, ""); err == nil {
		t.Fatalf("expected empty expression to fail")
	}
	if _, err := reg.Select(""); err == nil {
		t.Fatalf("expected empty predicate to fail")
	}
}

func TestEvaluateCompileErrorCarriesMetadata(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			reg := stoneRegistry(t, WithEvaluator(factory.new(nil, nil)))
			_, err := reg.Evaluate(16, "name ==")
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("expected EvaluationError, got %v", err)
			}
			if evalErr.Engine != factory.name || evalErr.Expr != "name ==" {
				t.Fatalf("unexpected error metadata %+v", evalErr)
			}
		})
	}
}

func TestEngineNames(t *testing.T) {
	if got := stoneRegistry(t).engine; got != "expr" {
		t.Fatalf("expected default engine expr, got %q", got)
	}
	if got := stoneRegistry(t, WithEvaluator(NewCELEvaluator())).engine; got != "cel" {
		t.Fatalf("expected cel engine, got %q", got)
	}
	if got := stoneRegistry(t, WithEvaluator(&capturingEvaluator{})).engine; got != "custom" {
		t.Fatalf("expected custom engine, got %q", got)
	}
}
