package formiq

import (
	"fmt"
	"time"
)

// ExpressionOption configures ExpressionValidators.
type ExpressionOption func(*expressionConfig)

type expressionConfig struct {
	logger EvaluatorLogger
	args   map[string]any
}

// WithEvaluatorLogger records every predicate run.
func WithEvaluatorLogger(logger EvaluatorLogger) ExpressionOption {
	return func(cfg *expressionConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithExpressionArgs exposes args to every expression as `args`.
func WithExpressionArgs(args map[string]any) ExpressionOption {
	return func(cfg *expressionConfig) {
		cfg.args = copyArgs(args)
	}
}

// ExpressionValidators returns a ValidatorFactory that compiles validator
// expressions with evaluator. The raw field value is bound to `value`.
//
// Results are read as:
//   - bool: pass or fail
//   - string: "" passes, anything else fails with that string as the kind
//   - nil: pass
//
// Any other result type is an error and is reported as an exception.
func ExpressionValidators(evaluator Evaluator, opts ...ExpressionOption) ValidatorFactory {
	cfg := expressionConfig{logger: noopEvaluatorLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	engine := evaluatorEngineName(evaluator)

	return func(expression string) (Predicate, error) {
		if evaluator == nil {
			return nil, fmt.Errorf("formiq: evaluator not configured")
		}
		rule, err := evaluator.Compile(expression)
		if err != nil {
			return nil, err
		}
		return func(value string) (bool, error) {
			start := time.Now()
			result, evalErr := rule.Evaluate(RuleContext{
				Value: value,
				Args:  copyArgs(cfg.args),
			})
			passed, err := interpretResult(result, evalErr)
			cfg.logger.LogEvaluation(EvaluatorLogEvent{
				Engine:   engine,
				Expr:     expression,
				Duration: time.Since(start),
				Passed:   passed,
				Err:      evalErr,
			})
			return passed, err
		}, nil
	}
}

func interpretResult(result any, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	switch v := result.(type) {
	case nil:
		return true, nil
	case bool:
		return v, nil
	case string:
		if v == "" {
			return true, nil
		}
		return false, Fail(v)
	default:
		return false, fmt.Errorf("formiq: validator returned %T, expected bool or string", result)
	}
}

func copyArgs(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for key, value := range args {
		out[key] = value
	}
	return out
}
