// Package memform is an in-memory formiq host for tests and programs that
// build forms in code.
package memform

import (
	"errors"
	"strings"
)

// ErrNoSubmitHandler is returned by Submit when the form has no handler.
var ErrNoSubmitHandler = errors.New("memform: no submit handler")

// Control is a mutable form control.
type Control struct {
	tag      string
	typ      string
	name     string
	value    string
	checked  bool
	required bool
	attrs    map[string]string

	initialValue   string
	initialChecked bool
}

// ControlOption configures a Control.
type ControlOption func(*Control)

// Required marks the control as required.
func Required() ControlOption {
	return func(c *Control) {
		c.required = true
	}
}

// Checked sets the initial checked state.
func Checked() ControlOption {
	return func(c *Control) {
		c.checked = true
	}
}

// Attr sets an attribute.
func Attr(name, value string) ControlOption {
	return func(c *Control) {
		if c.attrs == nil {
			c.attrs = map[string]string{}
		}
		c.attrs[strings.ToLower(name)] = value
	}
}

// Validator sets the data-validator attribute.
func Validator(expression string) ControlOption {
	return Attr("data-validator", expression)
}

// Converter sets the data-converter attribute.
func Converter(name string) ControlOption {
	return Attr("data-converter", name)
}

func newControl(tag, typ, name, value string, opts []ControlOption) *Control {
	c := &Control{tag: tag, typ: typ, name: name, value: value}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.initialValue = c.value
	c.initialChecked = c.checked
	return c
}

// Input builds an <input> of the given type.
func Input(typ, name, value string, opts ...ControlOption) *Control {
	return newControl("input", typ, name, value, opts)
}

// Text builds a text input.
func Text(name, value string, opts ...ControlOption) *Control {
	return Input("text", name, value, opts...)
}

// Checkbox builds a checkbox carrying value.
func Checkbox(name, value string, opts ...ControlOption) *Control {
	return Input("checkbox", name, value, opts...)
}

// Radio builds a radio button carrying value.
func Radio(name, value string, opts ...ControlOption) *Control {
	return Input("radio", name, value, opts...)
}

// Select builds a single-value <select>.
func Select(name, value string, opts ...ControlOption) *Control {
	return newControl("select", "select-one", name, value, opts)
}

// Textarea builds a <textarea>.
func Textarea(name, value string, opts ...ControlOption) *Control {
	return newControl("textarea", "textarea", name, value, opts)
}

// Button builds a submit button.
func Button(name, value string, opts ...ControlOption) *Control {
	return newControl("button", "submit", name, value, opts)
}

func (c *Control) Name() string  { return c.name }
func (c *Control) Tag() string   { return c.tag }
func (c *Control) Type() string  { return c.typ }
func (c *Control) Value() string { return c.value }

func (c *Control) SetValue(value string) { c.value = value }

func (c *Control) Checked() bool { return c.checked }

func (c *Control) SetChecked(checked bool) { c.checked = checked }

func (c *Control) Required() bool { return c.required }

func (c *Control) Attr(name string) (string, bool) {
	value, ok := c.attrs[strings.ToLower(name)]
	return value, ok
}

func (c *Control) reset() {
	c.value = c.initialValue
	c.checked = c.initialChecked
}
