package blockstate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFrozen is returned when a builder is used after Freeze.
	ErrFrozen = errors.New("blockstate: builder already frozen")
	// ErrIDOutOfRange is returned when a legacy id falls outside [0, TableSize).
	ErrIDOutOfRange = errors.New("blockstate: legacy id out of range")
	// ErrNoEvaluator is returned by the evaluation methods of a zero Registry.
	// Registries produced by Freeze always carry an evaluator, expr when
	// none is configured.
	ErrNoEvaluator = errors.New("blockstate: evaluator not configured")
)

// ParseError reports a record string the grammar parser rejected.
type ParseError struct {
	Engine string
	Input  string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("blockstate: %s parser input=%q: %v", e.Engine, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RegistrationError reports the registration call that aborted a build.
type RegistrationError struct {
	ID   LegacyID
	Form string
	Err  error
}

func (e *RegistrationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Form == "" {
		return fmt.Sprintf("blockstate: register id=%d: %v", int(e.ID), e.Err)
	}
	return fmt.Sprintf("blockstate: register id=%d form=%q: %v", int(e.ID), e.Form, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Slot   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("blockstate: %s evaluator %s slot=%s: %v", e.Engine, describeExpression(e.Expr), e.Slot, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "blockstate:") {
		return err
	}
	return fmt.Errorf("blockstate: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, slot string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Slot == "" {
			evalErr.Slot = slot
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Slot:   slot,
		Err:    err,
	}
}
