package formiq

import (
	"context"
	"sync"

	"github.com/goliatone/go-formiq/layering"
	"github.com/goliatone/go-formiq/pkg/activity"
	"github.com/rs/zerolog"
)

const (
	// DefaultValidatorAttribute names the attribute carrying a validator expression.
	DefaultValidatorAttribute = "data-validator"
	// DefaultConverterAttribute names the attribute carrying a converter name.
	DefaultConverterAttribute = "data-converter"
)

// Predicate checks a raw field value. Returning false with a *Failure reports
// a validator specific kind; any other error is treated as an exception.
type Predicate func(value string) (bool, error)

// ValidatorFactory compiles a validator expression into a Predicate.
type ValidatorFactory func(expression string) (Predicate, error)

// MessageTable maps field name to error kind to message.
type MessageTable map[string]map[string]string

// Lookup returns the message for field and kind, or "" when none is set.
func (t MessageTable) Lookup(field, kind string) string {
	if t == nil {
		return ""
	}
	return t[field][kind]
}

// Settings is the resolved configuration of a session. Zero values defer to
// the process-wide defaults when layered.
type Settings struct {
	ValidatorAttribute string
	ConverterAttribute string
	Converters         map[string]Converter
	ValidatorFactory   ValidatorFactory
	ErrorMessages      MessageTable
	// Extra holds unrecognised options. They are stored and have no effect.
	Extra map[string]any
}

// Option configures Settings.
type Option func(*Settings)

// WithValidatorAttribute sets the attribute read for validator expressions.
func WithValidatorAttribute(name string) Option {
	return func(s *Settings) {
		s.ValidatorAttribute = name
	}
}

// WithConverterAttribute sets the attribute read for converter names.
func WithConverterAttribute(name string) Option {
	return func(s *Settings) {
		s.ConverterAttribute = name
	}
}

// WithConverter registers fn under name.
func WithConverter(name string, fn Converter) Option {
	return func(s *Settings) {
		if name == "" || fn == nil {
			return
		}
		if s.Converters == nil {
			s.Converters = map[string]Converter{}
		}
		s.Converters[name] = fn
	}
}

// WithConverters registers every converter in converters.
func WithConverters(converters map[string]Converter) Option {
	return func(s *Settings) {
		for name, fn := range converters {
			WithConverter(name, fn)(s)
		}
	}
}

// WithValidatorFactory injects the factory used to compile validator expressions.
func WithValidatorFactory(factory ValidatorFactory) Option {
	return func(s *Settings) {
		s.ValidatorFactory = factory
	}
}

// WithErrorMessage sets the message reported for field and kind.
func WithErrorMessage(field, kind, message string) Option {
	return func(s *Settings) {
		if s.ErrorMessages == nil {
			s.ErrorMessages = MessageTable{}
		}
		if s.ErrorMessages[field] == nil {
			s.ErrorMessages[field] = map[string]string{}
		}
		s.ErrorMessages[field][kind] = message
	}
}

// WithErrorMessages merges messages into the message table.
func WithErrorMessages(messages MessageTable) Option {
	return func(s *Settings) {
		for field, kinds := range messages {
			for kind, message := range kinds {
				WithErrorMessage(field, kind, message)(s)
			}
		}
	}
}

// WithExtra stores an unrecognised option.
func WithExtra(key string, value any) Option {
	return func(s *Settings) {
		if key == "" {
			return
		}
		if s.Extra == nil {
			s.Extra = map[string]any{}
		}
		s.Extra[key] = value
	}
}

func applySettings(base Settings, opts []Option) Settings {
	out := layering.Clone(base)
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

var (
	defaultsMu sync.RWMutex
	defaults   = builtinSettings()
)

func builtinSettings() Settings {
	return Settings{
		ValidatorAttribute: DefaultValidatorAttribute,
		ConverterAttribute: DefaultConverterAttribute,
		Converters:         BuiltinConverters(),
	}
}

// ConfigureDefaults applies opts to the process-wide defaults. Only sessions
// constructed afterwards observe the change; existing sessions keep the
// snapshot they captured in New.
func ConfigureDefaults(opts ...Option) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaults = applySettings(defaults, opts)
}

// Defaults returns a copy of the process-wide defaults.
func Defaults() Settings {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return layering.Clone(defaults)
}

// ResetDefaults restores the built-in process-wide defaults.
func ResetDefaults() {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaults = builtinSettings()
}

// SessionOption configures session collaborators that are not part of
// Settings.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	settings []Option
	logger   zerolog.Logger
	hooks    activity.Hooks
	ctx      context.Context
	channel  string
	identity activity.Identity
	name     string
}

// WithSettings applies settings options to the session instance layer.
func WithSettings(opts ...Option) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.settings = append(cfg.settings, opts...)
	}
}

// WithLogger attaches a zerolog logger to the session.
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.logger = logger
	}
}

// WithActivityHooks attaches activity hooks notified on session lifecycle
// events. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) SessionOption {
	hooks = append(activity.Hooks(nil), hooks...)
	return func(cfg *sessionConfig) {
		cfg.hooks = hooks
	}
}

// WithActivityChannel sets the channel stamped on emitted activity events.
func WithActivityChannel(channel string) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.channel = channel
	}
}

// WithActivityIdentity sets the actor, user and tenant stamped on emitted
// activity events.
func WithActivityIdentity(identity activity.Identity) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.identity = identity
	}
}

// WithFormName names the form in logs and activity events. Sessions built
// with Select default to the selector.
func WithFormName(name string) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.name = name
	}
}

// WithContext sets the context handed to activity hooks.
func WithContext(ctx context.Context) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.ctx = ctx
	}
}

func applySessionOptions(opts []SessionOption) sessionConfig {
	cfg := sessionConfig{
		logger: zerolog.Nop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}
	return cfg
}
