package formiq

import (
	"github.com/goliatone/go-formiq/internal/hydrate"
)

// BindOption configures Bind.
type BindOption func(*bindConfig)

type bindConfig struct {
	sequences []string
	dropEmpty bool
	strict    bool
	useNumber bool
	prepare   []func(Values) (Values, error)
}

// BindSequences decodes the named values as slices even when a single field
// contributed them.
func BindSequences(names ...string) BindOption {
	return func(cfg *bindConfig) {
		cfg.sequences = append(cfg.sequences, names...)
	}
}

// BindDropEmpty skips empty string values so they leave the target field at
// its zero value.
func BindDropEmpty() BindOption {
	return func(cfg *bindConfig) {
		cfg.dropEmpty = true
	}
}

// BindStrict rejects values without a matching struct field.
func BindStrict() BindOption {
	return func(cfg *bindConfig) {
		cfg.strict = true
	}
}

// BindUseNumber decodes numbers into interface fields as json.Number.
func BindUseNumber() BindOption {
	return func(cfg *bindConfig) {
		cfg.useNumber = true
	}
}

// BindPrepare rewrites the values before they are decoded.
func BindPrepare(fn func(Values) (Values, error)) BindOption {
	return func(cfg *bindConfig) {
		if fn != nil {
			cfg.prepare = append(cfg.prepare, fn)
		}
	}
}

// Bind decodes the current values of s into a T. Struct fields are matched
// through their json tags.
func Bind[T any](s *Session, opts ...BindOption) (T, error) {
	var zero T
	values, err := s.GetValue()
	if err != nil {
		return zero, err
	}

	cfg := bindConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	decoderOpts := []hydrate.DecoderOption[T]{}
	for _, fn := range cfg.prepare {
		prepare := fn
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](func(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
			out, err := prepare(Values(payload))
			return map[string]any(out), err
		}))
	}
	if len(cfg.sequences) > 0 {
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](hydrate.Sequences(cfg.sequences...)))
	}
	if cfg.dropEmpty {
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](hydrate.DropEmpty()))
	}
	if cfg.strict {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}
	if cfg.useNumber {
		decoderOpts = append(decoderOpts, hydrate.WithUseNumber[T]())
	}

	ctx := hydrate.Context{Session: s.id, Form: s.name}
	return hydrate.NewDecoder[T](decoderOpts...).Decode(ctx, map[string]any(values))
}
