package formiq

type testControl struct {
	tag      string
	typ      string
	name     string
	value    string
	checked  bool
	required bool
	attrs    map[string]string
}

func (c *testControl) Name() string            { return c.name }
func (c *testControl) Tag() string             { return c.tag }
func (c *testControl) Type() string            { return c.typ }
func (c *testControl) Value() string           { return c.value }
func (c *testControl) SetValue(value string)   { c.value = value }
func (c *testControl) Checked() bool           { return c.checked }
func (c *testControl) SetChecked(checked bool) { c.checked = checked }
func (c *testControl) Required() bool          { return c.required }

func (c *testControl) Attr(name string) (string, bool) {
	value, ok := c.attrs[name]
	return value, ok
}

func (c *testControl) with(attr, value string) *testControl {
	if c.attrs == nil {
		c.attrs = map[string]string{}
	}
	c.attrs[attr] = value
	return c
}

func (c *testControl) require() *testControl {
	c.required = true
	return c
}

func textControl(name, value string) *testControl {
	return &testControl{tag: "input", typ: "text", name: name, value: value}
}

func checkboxControl(name, value string, checked bool) *testControl {
	return &testControl{tag: "input", typ: "checkbox", name: name, value: value, checked: checked}
}

func radioControl(name, value string, checked bool) *testControl {
	return &testControl{tag: "input", typ: "radio", name: name, value: value, checked: checked}
}

type testForm []*testControl

func (f testForm) Controls() []Control {
	out := make([]Control, len(f))
	for i, c := range f {
		out[i] = c
	}
	return out
}

func bindControls(controls ...*testControl) []Field {
	return BindFields(testForm(controls).Controls())
}
