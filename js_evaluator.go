//go:build js_eval

package blockstate

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	gojaast "github.com/dop251/goja/ast"
	gojaparser "github.com/dop251/goja/parser"
	gojatoken "github.com/dop251/goja/token"
)

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	s := newJSSettings(opts)
	return &jsEvaluator{
		cache:    s.cache,
		registry: s.functions,
	}
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx.withDefaults(), expression, program)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(expression), true)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

// run uses a fresh runtime per call; goja runtimes are not goroutine safe.
func (e *jsEvaluator) run(ctx RuleContext, expression string, program *goja.Program) (any, error) {
	vm := goja.New()
	for key, value := range ctx.binding() {
		if err := vm.Set(key, value); err != nil {
			return nil, wrapEvaluationError("js", expression, ctx.label(), err)
		}
	}
	if e.registry != nil {
		_ = vm.Set("call", func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		})
		for _, name := range e.registry.Names() {
			fn := name
			_ = vm.Set(fn, func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			})
		}
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, ctx.label(), err)
	}
	return value.Export(), nil
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("js", fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.run(ctx.withDefaults(), r.expression, r.program)
}

func jsEvaluatorAvailable() bool {
	return true
}

// jsParser reads the record grammar as a JavaScript object literal. The
// source is parsed to a syntax tree and walked; it is never run.
type jsParser struct{}

// NewJSParser constructs a Parser backed by goja.
func NewJSParser() Parser {
	return jsParser{}
}

func (jsParser) Parse(text string) (Record, error) {
	if strings.TrimSpace(text) == "" {
		return Record{}, &ParseError{Engine: "js", Input: text, Err: fmt.Errorf("record must not be empty")}
	}
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return Record{}, &ParseError{Engine: "js", Input: text, Err: fmt.Errorf("expected object literal")}
	}
	program, err := gojaparser.ParseFile(nil, "", "("+text+")", 0)
	if err != nil {
		return Record{}, &ParseError{Engine: "js", Input: text, Err: err}
	}
	if len(program.Body) != 1 {
		return Record{}, &ParseError{Engine: "js", Input: text, Err: fmt.Errorf("expected a single object literal, got %d statements", len(program.Body))}
	}
	stmt, ok := program.Body[0].(*gojaast.ExpressionStatement)
	if !ok {
		return Record{}, &ParseError{Engine: "js", Input: text, Err: fmt.Errorf("expected object literal, got %T", program.Body[0])}
	}
	fields, err := jsObjectLiteral(stmt.Expression)
	if err != nil {
		return Record{}, &ParseError{Engine: "js", Input: text, Err: err}
	}
	return recordFromMap("js", text, fields)
}

// jsObjectLiteral converts an object literal syntax tree into a map. Only
// literal keys and values are accepted; nothing is evaluated.
func jsObjectLiteral(expr gojaast.Expression) (map[string]any, error) {
	obj, ok := expr.(*gojaast.ObjectLiteral)
	if !ok {
		return nil, fmt.Errorf("expected object literal, got %T", expr)
	}
	out := make(map[string]any, len(obj.Value))
	for _, prop := range obj.Value {
		keyed, ok := prop.(*gojaast.PropertyKeyed)
		if !ok {
			return nil, fmt.Errorf("unsupported property %T", prop)
		}
		if keyed.Computed || keyed.Kind != gojaast.PropertyKindValue {
			return nil, fmt.Errorf("unsupported property kind %q", keyed.Kind)
		}
		key, err := jsPropertyKey(keyed.Key)
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		value, err := jsLiteralValue(keyed.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}

func jsPropertyKey(expr gojaast.Expression) (string, error) {
	switch k := expr.(type) {
	case *gojaast.StringLiteral:
		return k.Value.String(), nil
	case *gojaast.NumberLiteral:
		return k.Literal, nil
	default:
		return "", fmt.Errorf("unsupported key %T", expr)
	}
}

func jsLiteralValue(expr gojaast.Expression) (any, error) {
	switch v := expr.(type) {
	case *gojaast.StringLiteral:
		return v.Value.String(), nil
	case *gojaast.NumberLiteral:
		return v.Value, nil
	case *gojaast.BooleanLiteral:
		return v.Value, nil
	case *gojaast.UnaryExpression:
		if v.Operator != gojatoken.MINUS {
			return nil, fmt.Errorf("unsupported operator %s", v.Operator)
		}
		n, ok := v.Operand.(*gojaast.NumberLiteral)
		if !ok {
			return nil, fmt.Errorf("unsupported operand %T", v.Operand)
		}
		switch num := n.Value.(type) {
		case int64:
			return -num, nil
		case float64:
			return -num, nil
		}
		return nil, fmt.Errorf("unsupported number %v", n.Value)
	case *gojaast.ObjectLiteral:
		return jsObjectLiteral(v)
	default:
		return nil, fmt.Errorf("unsupported value %T", expr)
	}
}
