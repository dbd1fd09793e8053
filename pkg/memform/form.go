package memform

import (
	"sort"

	formiq "github.com/goliatone/go-formiq"
)

// Form holds controls in document order.
type Form struct {
	controls []*Control
	onSubmit func(map[string][]string) error
}

// FormOption configures a Form.
type FormOption func(*Form)

// OnSubmit sets the handler that receives the submitted pairs.
func OnSubmit(handler func(map[string][]string) error) FormOption {
	return func(f *Form) {
		f.onSubmit = handler
	}
}

// New builds a form from controls.
func New(controls ...*Control) *Form {
	return &Form{controls: controls}
}

// NewWithOptions builds a form from controls and applies opts.
func NewWithOptions(controls []*Control, opts ...FormOption) *Form {
	f := New(controls...)
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Controls returns the controls in document order.
func (f *Form) Controls() []formiq.Control {
	out := make([]formiq.Control, len(f.controls))
	for i, c := range f.controls {
		out[i] = c
	}
	return out
}

// Add appends controls.
func (f *Form) Add(controls ...*Control) {
	f.controls = append(f.controls, controls...)
}

// Control returns the n-th control named name, or nil.
func (f *Form) Control(name string, n int) *Control {
	for _, c := range f.controls {
		if c.name != name {
			continue
		}
		if n == 0 {
			return c
		}
		n--
	}
	return nil
}

// Snapshot returns the submittable pairs: named controls with a value,
// skipping unchecked checkboxes and radios and buttons.
func (f *Form) Snapshot() map[string][]string {
	out := map[string][]string{}
	for _, c := range f.controls {
		if c.name == "" || c.tag == "button" {
			continue
		}
		if (c.typ == "checkbox" || c.typ == "radio") && !c.checked {
			continue
		}
		out[c.name] = append(out[c.name], c.value)
	}
	return out
}

var (
	_ formiq.Form      = (*Form)(nil)
	_ formiq.Submitter = (*Form)(nil)
	_ formiq.Resetter  = (*Form)(nil)
	_ formiq.Control   = (*Control)(nil)
)

// Names returns the distinct control names, sorted.
func (f *Form) Names() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, c := range f.controls {
		if c.name == "" {
			continue
		}
		if _, ok := seen[c.name]; ok {
			continue
		}
		seen[c.name] = struct{}{}
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// Submit hands the snapshot to the submit handler.
func (f *Form) Submit() error {
	if f.onSubmit == nil {
		return ErrNoSubmitHandler
	}
	return f.onSubmit(f.Snapshot())
}

// Reset restores every control to its construction-time state.
func (f *Form) Reset() error {
	for _, c := range f.controls {
		c.reset()
	}
	return nil
}
