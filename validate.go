package formiq

import (
	"errors"
	"fmt"
)

// Error kinds produced by the validation pipeline.
const (
	ErrorRequired  = "required"
	ErrorInvalid   = "invalid"
	ErrorException = "exception"
)

// State is the validation state of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateValid
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "idle"
	}
}

// ValidationError is one failed check. It is data, not a returned error.
type ValidationError struct {
	Field   string
	Kind    string
	Message string
	// Err is the cause for exception failures.
	Err error
}

func (e ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

// ErrorSet is the ordered result of a validation pass. A nil ErrorSet means
// the form was valid.
type ErrorSet []ValidationError

// Field returns the errors recorded for name, in order.
func (s ErrorSet) Field(name string) ErrorSet {
	var out ErrorSet
	for _, err := range s {
		if err.Field == name {
			out = append(out, err)
		}
	}
	return out
}

// Messages groups messages by field name, skipping empty messages.
func (s ErrorSet) Messages() map[string][]string {
	if len(s) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, err := range s {
		if err.Message == "" {
			continue
		}
		out[err.Field] = append(out[err.Field], err.Message)
	}
	return out
}

func (s ErrorSet) clone() ErrorSet {
	if len(s) == 0 {
		return nil
	}
	out := make(ErrorSet, len(s))
	copy(out, s)
	return out
}

// Pipeline runs validation passes and owns the resulting error state.
type Pipeline struct {
	state  State
	errors ErrorSet
}

// State returns the state left by the last pass.
func (p *Pipeline) State() State {
	return p.state
}

// Errors returns a copy of the last pass result without validating.
func (p *Pipeline) Errors() ErrorSet {
	return p.errors.clone()
}

// Run validates fields in document order. The error set is reset before the
// pass and replaced once at the end. A ConversionError aborts the pass,
// leaving the pipeline idle with no errors.
func (p *Pipeline) Run(fields []Field, settings Settings, converters *ConverterRegistry) (ErrorSet, error) {
	p.errors = nil
	p.state = StateRunning

	values, err := Decode(fields, converters, settings.ConverterAttribute)
	if err != nil {
		p.state = StateIdle
		return nil, err
	}

	var (
		collected  ErrorSet
		required   = map[string]struct{}{}
		predicates = map[string]compiledPredicate{}
	)
	record := func(field, kind string, cause error) {
		collected = append(collected, ValidationError{
			Field:   field,
			Kind:    kind,
			Message: settings.ErrorMessages.Lookup(field, kind),
			Err:     cause,
		})
	}

	for _, field := range fields {
		name := field.Name()

		if field.Required() && requiredMissing(field, values) {
			if _, seen := required[name]; !seen || name == "" {
				required[name] = struct{}{}
				record(name, ErrorRequired, nil)
			}
		}

		if settings.ValidatorFactory == nil {
			continue
		}
		expression, ok := field.Attr(settings.ValidatorAttribute)
		if !ok || expression == "" {
			continue
		}
		compiled, ok := predicates[expression]
		if !ok {
			compiled.predicate, compiled.err = buildPredicate(settings.ValidatorFactory, expression)
			predicates[expression] = compiled
		}
		if compiled.err != nil {
			record(name, ErrorException, compiled.err)
			continue
		}
		raw, _ := field.Raw()
		passed, err := runPredicate(compiled.predicate, raw)
		if passed && err == nil {
			continue
		}
		var failure *Failure
		switch {
		case err == nil:
			record(name, ErrorInvalid, nil)
		case errors.As(err, &failure) && failure.Kind != "":
			record(name, failure.Kind, nil)
		default:
			record(name, ErrorException, err)
		}
	}

	p.errors = collected
	if len(collected) == 0 {
		p.state = StateValid
	} else {
		p.state = StateInvalid
	}
	return collected.clone(), nil
}

type compiledPredicate struct {
	predicate Predicate
	err       error
}

func requiredMissing(field Field, values Values) bool {
	if field.Name() == "" {
		raw, ok := field.Raw()
		return !ok || raw == ""
	}
	value, present := values[field.Name()]
	return isEmptyValue(value, present)
}

func buildPredicate(factory ValidatorFactory, expression string) (predicate Predicate, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			predicate = nil
			err = panicError{value: recovered}
		}
	}()
	predicate, err = factory(expression)
	if err == nil && predicate == nil {
		err = fmt.Errorf("formiq: validator factory returned nil predicate for %q", expression)
	}
	return predicate, err
}

func runPredicate(predicate Predicate, value string) (passed bool, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			passed = false
			err = panicError{value: recovered}
		}
	}()
	return predicate(value)
}
