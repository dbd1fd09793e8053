package formiq

import (
	"time"

	"github.com/rs/zerolog"
)

// EvaluatorLogEvent describes a validator expression run for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Duration time.Duration
	Passed   bool
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

// ZerologEvaluatorLogger writes evaluation events to logger at debug level,
// or warn level when the run failed with an error.
func ZerologEvaluatorLogger(logger zerolog.Logger) EvaluatorLogger {
	return EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		entry := logger.Debug()
		if event.Err != nil {
			entry = logger.Warn().Err(event.Err)
		}
		entry.
			Str("engine", event.Engine).
			Str("expr", event.Expr).
			Dur("duration", event.Duration).
			Bool("passed", event.Passed).
			Msg("validator expression evaluated")
	})
}
