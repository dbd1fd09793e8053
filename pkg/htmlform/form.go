package htmlform

import (
	"net/url"
	"strings"

	formiq "github.com/goliatone/go-formiq"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Form is a <form> element of a Document.
type Form struct {
	doc  *Document
	node *html.Node
}

var (
	_ formiq.Form      = (*Form)(nil)
	_ formiq.Submitter = (*Form)(nil)
	_ formiq.Resetter  = (*Form)(nil)
	_ formiq.Locator   = (*Document)(nil)
)

// Attr returns an attribute of the form element.
func (f *Form) Attr(name string) (string, bool) {
	return attr(f.node, name)
}

// Controls returns the input, select, textarea and button descendants in
// document order.
func (f *Form) Controls() []formiq.Control {
	nodes := f.controlNodes()
	out := make([]formiq.Control, len(nodes))
	for i, n := range nodes {
		out[i] = &Control{node: n}
	}
	return out
}

func (f *Form) controlNodes() []*html.Node {
	var out []*html.Node
	walk(f.node, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Input, atom.Button, atom.Select, atom.Textarea:
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// Values returns the successful controls: named, enabled, checked when
// checkable, excluding buttons.
func (f *Form) Values() url.Values {
	values := url.Values{}
	for _, n := range f.controlNodes() {
		c := &Control{node: n}
		name := c.Name()
		if name == "" {
			continue
		}
		if _, disabled := attr(n, "disabled"); disabled {
			continue
		}
		switch formiq.KindOf(c) {
		case formiq.KindOther:
			continue
		case formiq.KindCheckbox, formiq.KindRadio:
			if !c.Checked() {
				continue
			}
		}
		if n.DataAtom == atom.Select {
			if _, multiple := attr(n, "multiple"); multiple {
				for _, option := range options(n) {
					if _, selected := attr(option, "selected"); selected {
						values.Add(name, optionValue(option))
					}
				}
				continue
			}
		}
		values.Add(name, c.Value())
	}
	return values
}

// Submit hands the form values to the document's submit handler.
func (f *Form) Submit() error {
	if f.doc == nil || f.doc.onSubmit == nil {
		return ErrNoSubmitHandler
	}
	action, _ := attr(f.node, "action")
	method, ok := attr(f.node, "method")
	if !ok || method == "" {
		method = "get"
	}
	return f.doc.onSubmit(action, strings.ToLower(method), f.Values())
}

// Reset restores every control to its parse-time state.
func (f *Form) Reset() error {
	if f.doc == nil {
		return nil
	}
	for _, n := range f.controlNodes() {
		f.doc.restore(n)
	}
	return nil
}

// Control wraps a form control node.
type Control struct {
	node *html.Node
}

// Name returns the name attribute.
func (c *Control) Name() string {
	name, _ := attr(c.node, "name")
	return name
}

// Tag returns the lower case element name.
func (c *Control) Tag() string {
	return c.node.Data
}

// Type returns the control type, applying the HTML defaults.
func (c *Control) Type() string {
	switch c.node.DataAtom {
	case atom.Input:
		if typ, ok := attr(c.node, "type"); ok && typ != "" {
			return strings.ToLower(typ)
		}
		return "text"
	case atom.Button:
		if typ, ok := attr(c.node, "type"); ok && typ != "" {
			return strings.ToLower(typ)
		}
		return "submit"
	case atom.Select:
		if _, multiple := attr(c.node, "multiple"); multiple {
			return "select-multiple"
		}
		return "select-one"
	default:
		return c.node.Data
	}
}

// Value returns the current value. A select reports its selected option,
// or the first option when none is selected.
func (c *Control) Value() string {
	switch c.node.DataAtom {
	case atom.Textarea:
		return textContent(c.node)
	case atom.Select:
		opts := options(c.node)
		for _, option := range opts {
			if _, selected := attr(option, "selected"); selected {
				return optionValue(option)
			}
		}
		if len(opts) > 0 {
			return optionValue(opts[0])
		}
		return ""
	default:
		value, ok := attr(c.node, "value")
		if !ok && (c.Type() == "checkbox" || c.Type() == "radio") {
			return "on"
		}
		return value
	}
}

// SetValue writes value. A select marks the first matching option selected
// and clears the rest.
func (c *Control) SetValue(value string) {
	switch c.node.DataAtom {
	case atom.Textarea:
		setText(c.node, value)
	case atom.Select:
		matched := false
		for _, option := range options(c.node) {
			if !matched && optionValue(option) == value {
				setAttr(option, "selected", "")
				matched = true
				continue
			}
			removeAttr(option, "selected")
		}
	default:
		setAttr(c.node, "value", value)
	}
}

// Checked reports the checked attribute.
func (c *Control) Checked() bool {
	_, ok := attr(c.node, "checked")
	return ok
}

// SetChecked sets or clears the checked attribute.
func (c *Control) SetChecked(checked bool) {
	if checked {
		setAttr(c.node, "checked", "")
		return
	}
	removeAttr(c.node, "checked")
}

// Required reports the required attribute.
func (c *Control) Required() bool {
	_, ok := attr(c.node, "required")
	return ok
}

// Attr looks up an attribute by name.
func (c *Control) Attr(name string) (string, bool) {
	return attr(c.node, name)
}

func optionValue(option *html.Node) string {
	if value, ok := attr(option, "value"); ok {
		return value
	}
	return strings.Join(strings.Fields(textContent(option)), " ")
}
