package formiq

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Converter transforms a raw field value while decoding.
type Converter func(raw string) (any, error)

// Built-in converter names.
const (
	ConverterNumber   = "number"
	ConverterTrim     = "trim"
	ConverterSanitize = "sanitize"
)

// ConverterRegistry stores converters keyed by name.
type ConverterRegistry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewConverterRegistry constructs an empty registry.
func NewConverterRegistry() *ConverterRegistry {
	return &ConverterRegistry{
		converters: make(map[string]Converter),
	}
}

// NewConverterRegistryFrom builds a registry from a name to converter map.
// Nil converters and empty names are skipped.
func NewConverterRegistryFrom(converters map[string]Converter) *ConverterRegistry {
	r := NewConverterRegistry()
	for name, fn := range converters {
		if name == "" || fn == nil {
			continue
		}
		r.converters[name] = fn
	}
	return r
}

// Register stores fn under name, replacing any previous converter.
func (r *ConverterRegistry) Register(name string, fn Converter) error {
	if fn == nil {
		return fmt.Errorf("formiq: converter %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("formiq: converter name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.converters == nil {
		r.converters = make(map[string]Converter)
	}
	r.converters[name] = fn
	return nil
}

// Lookup returns the converter registered for name.
func (r *ConverterRegistry) Lookup(name string) (Converter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.converters[name]
	return fn, ok && fn != nil
}

// Apply runs the converter registered for name. Unknown names pass the raw
// value through unchanged.
func (r *ConverterRegistry) Apply(name, raw string) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return raw, nil
	}
	return callConverter(fn, raw)
}

// Clone returns a shallow copy of the registry.
func (r *ConverterRegistry) Clone() *ConverterRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &ConverterRegistry{
		converters: make(map[string]Converter, len(r.converters)),
	}
	for name, fn := range r.converters {
		clone.converters[name] = fn
	}
	return clone
}

// Names returns registered converter names sorted alphabetically.
func (r *ConverterRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.converters))
	for name := range r.converters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// call adapts a converter to the variadic function shape used by expression
// engines. The first argument is formatted as the raw string.
func (r *ConverterRegistry) call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("formiq: converter registry is nil")
	}
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("formiq: converter %q not registered", name)
	}
	raw := ""
	if len(args) > 0 {
		raw = formatScalar(args[0])
	}
	return callConverter(fn, raw)
}

func callConverter(fn Converter, raw string) (value any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			value = nil
			err = panicError{value: recovered}
		}
	}()
	return fn(raw)
}

// BuiltinConverters returns the converters every session starts with.
func BuiltinConverters() map[string]Converter {
	return map[string]Converter{
		ConverterNumber:   NumberConverter,
		ConverterTrim:     TrimConverter,
		ConverterSanitize: SanitizeConverter(),
	}
}

// NumberConverter maps "" to nil and parses anything else as a float64.
func NumberConverter(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, fmt.Errorf("number: %w", err)
	}
	return value, nil
}

// TrimConverter strips leading and trailing whitespace.
func TrimConverter(raw string) (any, error) {
	return strings.TrimSpace(raw), nil
}

// SanitizeConverter strips markup using bluemonday's strict policy.
func SanitizeConverter() Converter {
	policy := bluemonday.StrictPolicy()
	return func(raw string) (any, error) {
		return policy.Sanitize(raw), nil
	}
}
