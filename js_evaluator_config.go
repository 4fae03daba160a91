package blockstate

// JSEvaluatorOption configures the goja evaluator. The options exist in every
// build so callers compile without the js_eval tag; NewJSEvaluator returns nil
// when the tag is absent.
type JSEvaluatorOption func(*jsSettings)

type jsSettings struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// JSWithProgramCache stores compiled goja programs in cache.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(s *jsSettings) { s.cache = cache }
}

// JSWithFunctionRegistry exposes registry functions as JS globals and through
// call(name, ...args).
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(s *jsSettings) {
		if registry != nil {
			s.functions = registry.Clone()
		}
	}
}

func newJSSettings(opts []JSEvaluatorOption) jsSettings {
	var s jsSettings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
