package formiq

import (
	"slices"
	"strings"
)

// Control is a single form control exposed by the host form. The session only
// reads name, tag/type, value, checked state, required flag and attributes, and
// only writes value and checked state.
type Control interface {
	Name() string
	Tag() string
	Type() string
	Value() string
	SetValue(value string)
	Checked() bool
	SetChecked(checked bool)
	Required() bool
	Attr(name string) (string, bool)
}

// Form is the host form bound to a session. Controls must be returned in
// document order.
type Form interface {
	Controls() []Control
}

// Submitter is implemented by forms that can be submitted.
type Submitter interface {
	Submit() error
}

// Resetter is implemented by forms that can restore their initial state.
type Resetter interface {
	Reset() error
}

// Locator resolves a selector into a form.
type Locator interface {
	Lookup(selector string) (Form, error)
}

// Kind classifies how a control stores its value.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindCheckbox
	KindRadio
	KindSelect
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	case KindSelect:
		return "select"
	default:
		return "other"
	}
}

// Checkable reports whether the value of the kind is gated by a checked state.
func (k Kind) Checkable() bool {
	return k == KindCheckbox || k == KindRadio
}

// KindOf derives the kind of c from its tag and type.
func KindOf(c Control) Kind {
	if c == nil {
		return KindOther
	}
	switch strings.ToLower(strings.TrimSpace(c.Tag())) {
	case "input":
		switch strings.ToLower(strings.TrimSpace(c.Type())) {
		case "checkbox":
			return KindCheckbox
		case "radio":
			return KindRadio
		case "submit", "button", "reset", "image", "file":
			return KindOther
		default:
			return KindText
		}
	case "select":
		return KindSelect
	case "textarea":
		return KindText
	default:
		return KindOther
	}
}

// Field is a control bound to its kind. The kind is resolved once at bind
// time.
type Field struct {
	control Control
	kind    Kind
	name    string
}

// BindFields resolves the kind and name of every control, preserving order.
func BindFields(controls []Control) []Field {
	fields := make([]Field, 0, len(controls))
	for _, control := range controls {
		if control == nil {
			continue
		}
		fields = append(fields, Field{
			control: control,
			kind:    KindOf(control),
			name:    control.Name(),
		})
	}
	return fields
}

// Name returns the field name; empty means the field is excluded from values.
func (f Field) Name() string { return f.name }

// Kind returns the bound kind.
func (f Field) Kind() Kind { return f.kind }

// Control returns the underlying host control.
func (f Field) Control() Control { return f.control }

// Required reports the control's required flag.
func (f Field) Required() bool { return f.control.Required() }

// Attr looks up an attribute on the underlying control.
func (f Field) Attr(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	return f.control.Attr(name)
}

// Raw returns the current value. Checkable fields report ok=false when they
// are not checked, which is distinct from an empty value.
func (f Field) Raw() (string, bool) {
	if f.kind.Checkable() && !f.control.Checked() {
		return "", false
	}
	return f.control.Value(), true
}

func (f Field) writeScalar(value string) {
	if f.kind.Checkable() {
		f.control.SetChecked(f.control.Value() == value)
		return
	}
	f.control.SetValue(value)
}

func (f Field) writeMembership(values []string) {
	f.control.SetChecked(slices.Contains(values, f.control.Value()))
}
