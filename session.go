// Package formiq reads, writes and validates the values of a form through
// a small host interface. A Session binds one form; controls are decoded into
// Values keyed by name, and fields sharing a name become ordered sequences.
package formiq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-formiq/layering"
	"github.com/goliatone/go-formiq/pkg/activity"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session binds one host form to value extraction, assignment and
// validation. A Session is not safe for concurrent use.
type Session struct {
	id       string
	name     string
	form     Form
	selector string

	defaults   Settings
	instance   Settings
	settings   Settings
	converters *ConverterRegistry
	pipeline   Pipeline

	logger  zerolog.Logger
	emitter *activity.Emitter
	ctx     context.Context

	destroyed bool
}

// New binds form to a session. The process-wide defaults are captured at this
// point; later ConfigureDefaults calls do not affect the session.
func New(form Form, opts ...SessionOption) (*Session, error) {
	if form == nil {
		return nil, &ConstructionError{Err: fmt.Errorf("%w: form is nil", ErrFormNotFound)}
	}
	return newSession(form, "", opts)
}

// Select resolves selector through loc and binds the resulting form.
func Select(loc Locator, selector string, opts ...SessionOption) (*Session, error) {
	if loc == nil {
		return nil, &ConstructionError{Selector: selector, Err: fmt.Errorf("%w: locator is nil", ErrFormNotFound)}
	}
	form, err := loc.Lookup(selector)
	if err != nil {
		if !errors.Is(err, ErrFormNotFound) {
			err = fmt.Errorf("%w: %w", ErrFormNotFound, err)
		}
		return nil, &ConstructionError{Selector: selector, Err: err}
	}
	if form == nil {
		return nil, &ConstructionError{Selector: selector, Err: ErrFormNotFound}
	}
	return newSession(form, selector, opts)
}

func newSession(form Form, selector string, opts []SessionOption) (*Session, error) {
	cfg := applySessionOptions(opts)

	s := &Session{
		id:       uuid.NewString(),
		name:     cfg.name,
		form:     form,
		selector: selector,
		defaults: Defaults(),
		instance: applySettings(Settings{}, cfg.settings),
		ctx:      cfg.ctx,
	}
	if s.name == "" {
		s.name = selector
	}
	s.emitter = activity.NewEmitter(cfg.hooks, activity.Config{
		SessionID: s.id,
		FormName:  s.name,
		Channel:   cfg.channel,
		Identity:  cfg.identity,
	})
	s.logger = cfg.logger.With().
		Str("session", s.id).
		Str("form", s.name).
		Logger()
	s.resolve()
	return s, nil
}

func (s *Session) resolve() {
	s.settings = layering.MergeLayers(s.instance, s.defaults)
	s.converters = NewConverterRegistryFrom(s.settings.Converters)
}

func (s *Session) live(op string) error {
	if s == nil || s.destroyed {
		return &LifecycleError{Op: op}
	}
	return nil
}

func (s *Session) fields() []Field {
	return BindFields(s.form.Controls())
}

// ID returns the session identifier stamped on activity events.
func (s *Session) ID() (string, error) {
	if err := s.live("id"); err != nil {
		return "", err
	}
	return s.id, nil
}

// Settings returns a copy of the effective settings.
func (s *Session) Settings() (Settings, error) {
	if err := s.live("settings"); err != nil {
		return Settings{}, err
	}
	return layering.Clone(s.settings), nil
}

// Configure merges opts into the instance layer. The process-wide defaults
// are not touched; use ConfigureDefaults for that.
func (s *Session) Configure(opts ...Option) error {
	if err := s.live("configure"); err != nil {
		return err
	}
	s.instance = applySettings(s.instance, opts)
	s.resolve()
	return nil
}

// GetValue decodes the current field values.
func (s *Session) GetValue() (Values, error) {
	if err := s.live("get value"); err != nil {
		return nil, err
	}
	return Decode(s.fields(), s.converters, s.settings.ConverterAttribute)
}

// SetValue writes value to every field named name.
func (s *Session) SetValue(name string, value any) error {
	if err := s.live("set value"); err != nil {
		return err
	}
	return s.write(Values{name: value})
}

// SetValues writes every entry of values. Names without a matching field are
// ignored.
func (s *Session) SetValues(values Values) error {
	if err := s.live("set values"); err != nil {
		return err
	}
	return s.write(values)
}

func (s *Session) write(values Values) error {
	if err := Encode(s.fields(), values); err != nil {
		s.logger.Debug().Err(err).Msg("encode failed")
		return err
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	s.notified(activity.VerbValuesUpdated, s.emitter.ValuesUpdated(s.ctx, names))
	return nil
}

// EachField calls visit once per field in document order. index is the
// position of the field in the form. An error from visit stops the iteration
// and is returned.
func (s *Session) EachField(visit func(f Field, name string, index int) error) error {
	if err := s.live("each field"); err != nil {
		return err
	}
	if visit == nil {
		return nil
	}
	for index, field := range s.fields() {
		if err := visit(field, field.Name(), index); err != nil {
			return err
		}
	}
	return nil
}

// Validate runs a validation pass and returns its error set. A nil set means
// the form is valid. Conversion failures abort the pass and are returned as
// errors.
func (s *Session) Validate() (ErrorSet, error) {
	if err := s.live("validate"); err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := s.pipeline.Run(s.fields(), s.settings, s.converters)
	if err != nil {
		s.logger.Debug().Err(err).Msg("validation aborted")
		return nil, err
	}
	s.logger.Debug().
		Str("state", s.pipeline.State().String()).
		Int("errors", len(result)).
		Dur("duration", time.Since(start)).
		Msg("form validated")
	s.notified(activity.VerbValidated, s.emitter.Validated(s.ctx, s.pipeline.State().String(), len(result)))
	return result, nil
}

// IsValid always runs a fresh validation pass.
func (s *Session) IsValid() (bool, error) {
	result, err := s.Validate()
	if err != nil {
		return false, err
	}
	return len(result) == 0, nil
}

// Errors returns the result of the last pass without validating.
func (s *Session) Errors() (ErrorSet, error) {
	if err := s.live("errors"); err != nil {
		return nil, err
	}
	return s.pipeline.Errors(), nil
}

// ErrorMessage looks up the configured message for field and kind. A missing
// entry yields "" and no error.
func (s *Session) ErrorMessage(field, kind string) (string, error) {
	if err := s.live("error message"); err != nil {
		return "", err
	}
	return s.settings.ErrorMessages.Lookup(field, kind), nil
}

// State returns the validation state.
func (s *Session) State() (State, error) {
	if err := s.live("state"); err != nil {
		return StateIdle, err
	}
	return s.pipeline.State(), nil
}

// Submit asks the host form to submit itself.
func (s *Session) Submit() error {
	if err := s.live("submit"); err != nil {
		return err
	}
	submitter, ok := s.form.(Submitter)
	if !ok {
		return fmt.Errorf("formiq: submit: %w", ErrUnsupported)
	}
	return submitter.Submit()
}

// Reset asks the host form to restore its initial state.
func (s *Session) Reset() error {
	if err := s.live("reset"); err != nil {
		return err
	}
	resetter, ok := s.form.(Resetter)
	if !ok {
		return fmt.Errorf("formiq: reset: %w", ErrUnsupported)
	}
	return resetter.Reset()
}

// Destroy releases the form. Every later call fails with a LifecycleError.
func (s *Session) Destroy() error {
	if err := s.live("destroy"); err != nil {
		return err
	}
	s.notified(activity.VerbDestroyed, s.emitter.Destroyed(s.ctx))
	s.form = nil
	s.pipeline = Pipeline{}
	s.destroyed = true
	s.logger.Debug().Msg("session destroyed")
	return nil
}

// notified logs a hook failure. Hook errors never fail the session call.
func (s *Session) notified(verb string, err error) {
	if err != nil {
		s.logger.Warn().Err(err).Str("verb", verb).Msg("activity hook failed")
	}
}
