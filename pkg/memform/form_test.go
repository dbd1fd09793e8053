package memform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSnapshotSkipsUncheckedAndButtons(t *testing.T) {
	form := New(
		Text("title", "hello"),
		Checkbox("color", "red", Checked()),
		Checkbox("color", "blue"),
		Radio("size", "m", Checked()),
		Button("save", "1"),
		Text("", "anonymous"),
	)

	want := map[string][]string{
		"title": {"hello"},
		"color": {"red"},
		"size":  {"m"},
	}
	if diff := cmp.Diff(want, form.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"color", "save", "size", "title"}, form.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	form := New(Text("title", "hello"), Checkbox("agree", "yes"))

	form.Control("title", 0).SetValue("changed")
	form.Control("agree", 0).SetChecked(true)

	if err := form.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := form.Control("title", 0).Value(); got != "hello" {
		t.Fatalf("expected title restored, got %q", got)
	}
	if form.Control("agree", 0).Checked() {
		t.Fatalf("expected agree unchecked after reset")
	}
}

func TestSubmitRequiresHandler(t *testing.T) {
	form := New(Text("title", "hello"))
	if err := form.Submit(); !errors.Is(err, ErrNoSubmitHandler) {
		t.Fatalf("expected ErrNoSubmitHandler, got %v", err)
	}

	var got map[string][]string
	form = NewWithOptions([]*Control{Text("title", "hello")}, OnSubmit(func(values map[string][]string) error {
		got = values
		return nil
	}))
	if err := form.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"title": {"hello"}}, got); diff != "" {
		t.Fatalf("submitted mismatch (-want +got):\n%s", diff)
	}
}

func TestControlAttributesAreCaseInsensitive(t *testing.T) {
	c := Text("age", "", Converter("number"), Attr("Data-Extra", "x"), Required())
	if v, ok := c.Attr("data-converter"); !ok || v != "number" {
		t.Fatalf("expected converter attribute, got %q %v", v, ok)
	}
	if v, ok := c.Attr("DATA-EXTRA"); !ok || v != "x" {
		t.Fatalf("expected extra attribute, got %q %v", v, ok)
	}
	if !c.Required() {
		t.Fatalf("expected required control")
	}
	if _, ok := c.Attr("missing"); ok {
		t.Fatalf("expected missing attribute")
	}
}
