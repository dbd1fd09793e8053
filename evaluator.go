package formiq

import (
	"fmt"
	"time"
)

// RuleContext carries the inputs of a single validator expression run.
type RuleContext struct {
	Value string
	Now   *time.Time
	Args  map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

// Evaluator executes validator expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*formiq.exprEvaluator":
		return "expr"
	case "*formiq.celEvaluator":
		return "cel"
	case "*formiq.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}

func defaultConverterRegistry(registry *ConverterRegistry) *ConverterRegistry {
	if registry != nil {
		return registry.Clone()
	}
	return NewConverterRegistryFrom(BuiltinConverters())
}
