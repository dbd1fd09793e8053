package formiq

import "testing"

func TestKindOf(t *testing.T) {
	cases := []struct {
		tag  string
		typ  string
		want Kind
	}{
		{tag: "input", typ: "text", want: KindText},
		{tag: "INPUT", typ: "Checkbox", want: KindCheckbox},
		{tag: "input", typ: "radio", want: KindRadio},
		{tag: "input", typ: "email", want: KindText},
		{tag: "input", typ: "", want: KindText},
		{tag: "input", typ: "submit", want: KindOther},
		{tag: "input", typ: "file", want: KindOther},
		{tag: "select", typ: "select-one", want: KindSelect},
		{tag: "textarea", want: KindText},
		{tag: "button", typ: "submit", want: KindOther},
		{tag: "fieldset", want: KindOther},
	}
	for _, tc := range cases {
		got := KindOf(&testControl{tag: tc.tag, typ: tc.typ})
		if got != tc.want {
			t.Fatalf("KindOf(%s/%s) = %s, want %s", tc.tag, tc.typ, got, tc.want)
		}
	}
	if KindOf(nil) != KindOther {
		t.Fatalf("expected nil control to be KindOther")
	}
}

func TestFieldRawDistinguishesUnsetFromEmpty(t *testing.T) {
	fields := bindControls(
		textControl("title", ""),
		checkboxControl("agree", "yes", false),
		checkboxControl("agree", "", true),
	)

	if raw, ok := fields[0].Raw(); !ok || raw != "" {
		t.Fatalf("expected empty text value to be set, got %q %v", raw, ok)
	}
	if _, ok := fields[1].Raw(); ok {
		t.Fatalf("expected unchecked checkbox to be unset")
	}
	if raw, ok := fields[2].Raw(); !ok || raw != "" {
		t.Fatalf("expected checked checkbox with empty value to be set, got %q %v", raw, ok)
	}
}

func TestBindSkipsNilControls(t *testing.T) {
	fields := BindFields([]Control{nil, textControl("a", "1")})
	if len(fields) != 1 || fields[0].Name() != "a" || fields[0].Kind() != KindText {
		t.Fatalf("unexpected fields %+v", fields)
	}
}
