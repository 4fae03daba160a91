//go:build !js_eval

package blockstate

// NewJSEvaluator is unavailable without the js_eval build tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSSettings(opts)
	return nil
}

// NewJSParser is unavailable without the js_eval build tag.
func NewJSParser() Parser {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
