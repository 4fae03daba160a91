package blockstate

import "time"

// BuildPhase names the builder step a BuildLogEvent describes.
type BuildPhase string

const (
	BuildPhaseRegister BuildPhase = "register"
	BuildPhaseFinalize BuildPhase = "finalize"
	BuildPhaseFreeze   BuildPhase = "freeze"
	// BuildPhaseNotify reports activity hooks that failed after a freeze.
	BuildPhaseNotify BuildPhase = "notify"
)

// BuildLogEvent describes one builder step for logging.
type BuildLogEvent struct {
	Phase    BuildPhase
	ID       LegacyID
	Variants int
	// Filled is the number of slots backfilled from group defaults.
	Filled   int
	Duration time.Duration
	Err      error
}

// BuildLogger records builder events.
type BuildLogger interface {
	LogBuild(BuildLogEvent)
}

// BuildLoggerFunc adapts a function to BuildLogger.
type BuildLoggerFunc func(BuildLogEvent)

// LogBuild implements BuildLogger.
func (f BuildLoggerFunc) LogBuild(event BuildLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopBuildLogger struct{}

func (noopBuildLogger) LogBuild(BuildLogEvent) {}

// WithBuildLogger attaches a logger for register/finalize/freeze steps.
func WithBuildLogger(logger BuildLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.buildLogger = noopBuildLogger{}
			return
		}
		cfg.buildLogger = logger
	}
}

// EvaluatorLogEvent describes an evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Slot     string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// WithEvaluatorLogger attaches an evaluator logger to the registry.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}
