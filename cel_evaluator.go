package blockstate

import (
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// slotVariables lists the variables RuleContext.binding exposes.
var slotVariables = []string{"id", "block", "meta", "group", "name", "ns", "path", "properties", "args"}

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
// Functions are reachable through call(name, args...).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry

	envOnce sync.Once
	env     *celgo.Env
	envErr  error
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx.withDefaults(), expression, program)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.environment()
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, prg)
	}
	return prg, nil
}

// environment is built once; the variable set does not depend on the slot.
func (e *celEvaluator) environment() (*celgo.Env, error) {
	e.envOnce.Do(func() {
		opts := make([]celgo.EnvOption, 0, len(slotVariables)+1)
		for _, name := range slotVariables {
			opts = append(opts, celgo.Variable(name, celgo.DynType))
		}
		if e.registry != nil {
			opts = append(opts, celgo.Function("call", celgo.Overload(
				"call_dyn",
				[]*celgo.Type{celgo.StringType, celgo.DynType},
				celgo.DynType,
				celgo.FunctionBinding(functions.FunctionOp(e.callBinding())),
			)))
		}
		e.env, e.envErr = celgo.NewEnv(opts...)
	})
	return e.env, e.envErr
}

func (e *celEvaluator) run(ctx RuleContext, expression string, program celgo.Program) (any, error) {
	out, _, err := program.Eval(ctx.binding())
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.label(), err)
	}
	return out.Value(), nil
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
	program    celgo.Program
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.run(ctx.withDefaults(), r.expression, r.program)
}

// callBinding dispatches call(name, [args...]) to the function registry. The
// second argument is spread when it is a list.
func (e *celEvaluator) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("blockstate: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("blockstate: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("blockstate: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			native := val.Value()
			if list, ok := native.([]ref.Val); ok {
				for _, item := range list {
					args = append(args, item.Value())
				}
				continue
			}
			args = append(args, native)
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
