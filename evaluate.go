package blockstate

import (
	"fmt"
	"time"
)

// Evaluate runs expr against the canonical record stored for id. Unset and
// out of range ids evaluate against the CanonicalFor fallback.
func (r *Registry) Evaluate(id LegacyID, expr string) (any, error) {
	return r.EvaluateWith(RuleContext{ID: id, Record: r.CanonicalFor(id)}, expr)
}

// EvaluateWith runs expr against an explicit rule context.
func (r *Registry) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("blockstate: expression must not be empty")
	}
	if r.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	start := time.Now()
	value, err := r.evaluator.Evaluate(ctx, expr)
	err = wrapEvaluationError(r.engine, expr, ctx.label(), err)
	r.cfg.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   r.engine,
		Expr:     expr,
		Slot:     ctx.label(),
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

// Select returns, in id order, every set slot whose canonical record
// satisfies expr. The expression must produce a bool.
func (r *Registry) Select(expr string) ([]LegacyID, error) {
	return r.SelectWith(expr, nil)
}

// SelectWith is Select with extra args bound under "args".
func (r *Registry) SelectWith(expr string, args map[string]any) ([]LegacyID, error) {
	if expr == "" {
		return nil, fmt.Errorf("blockstate: expression must not be empty")
	}
	if r.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	start := time.Now()
	ids, err := r.selectSlots(expr, args)
	r.cfg.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   r.engine,
		Expr:     expr,
		Slot:     "*",
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Registry) selectSlots(expr string, args map[string]any) ([]LegacyID, error) {
	rule, err := r.evaluator.Compile(expr)
	if err != nil {
		return nil, wrapEvaluationError(r.engine, expr, "", err)
	}
	var ids []LegacyID
	for i, slot := range r.table {
		if slot == nil {
			continue
		}
		ctx := RuleContext{ID: LegacyID(i), Record: *slot, Args: args}
		value, err := rule.Evaluate(ctx)
		if err != nil {
			return nil, wrapEvaluationError(r.engine, expr, ctx.label(), err)
		}
		matched, ok := value.(bool)
		if !ok {
			return nil, &EvaluationError{Engine: r.engine, Expr: expr, Slot: ctx.label(), Err: fmt.Errorf("expected bool result, got %T", value)}
		}
		if matched {
			ids = append(ids, LegacyID(i))
		}
	}
	return ids, nil
}

// resolveEvaluator picks the configured evaluator or builds the expr default.
func (cfg config) resolveEvaluator() Evaluator {
	if cfg.evaluator != nil {
		return cfg.evaluator
	}
	var exprOpts []ExprEvaluatorOption
	if cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
	}
	if cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
	}
	return NewExprEvaluator(exprOpts...)
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch e.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if jsEvaluatorAvailable() && fmt.Sprintf("%T", e) == "*blockstate.jsEvaluator" {
			return "js"
		}
		return "custom"
	}
}
