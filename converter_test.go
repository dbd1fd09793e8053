package formiq

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConverterRegistryRegisterAndApply(t *testing.T) {
	registry := NewConverterRegistry()

	if err := registry.Register("", TrimConverter); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
	if err := registry.Register("upper", nil); err == nil {
		t.Fatalf("expected nil converter to be rejected")
	}

	upper := func(raw string) (any, error) { return strings.ToUpper(raw), nil }
	if err := registry.Register("upper", upper); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := registry.Apply("upper", "go")
	if err != nil || got != "GO" {
		t.Fatalf("expected GO, got %v %v", got, err)
	}

	lower := func(raw string) (any, error) { return strings.ToLower(raw), nil }
	if err := registry.Register("upper", lower); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if got, _ := registry.Apply("upper", "GO"); got != "go" {
		t.Fatalf("expected later registration to win, got %v", got)
	}

	if got, _ := registry.Apply("missing", "raw"); got != "raw" {
		t.Fatalf("expected unknown converter to pass raw through, got %v", got)
	}
}

func TestConverterRegistryCloneIsDetached(t *testing.T) {
	registry := NewConverterRegistryFrom(BuiltinConverters())
	clone := registry.Clone()
	if err := clone.Register("extra", TrimConverter); err != nil {
		t.Fatalf("register: %v", err)
	}

	if diff := cmp.Diff([]string{"number", "sanitize", "trim"}, registry.Names()); diff != "" {
		t.Fatalf("original names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"extra", "number", "sanitize", "trim"}, clone.Names()); diff != "" {
		t.Fatalf("clone names mismatch (-want +got):\n%s", diff)
	}
}

func TestNumberConverter(t *testing.T) {
	cases := []struct {
		raw     string
		want    any
		wantErr bool
	}{
		{raw: "42", want: 42.0},
		{raw: " 3.5 ", want: 3.5},
		{raw: "-1e3", want: -1000.0},
		{raw: "", want: nil},
		{raw: "   ", want: nil},
		{raw: "abc", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NumberConverter(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NumberConverter(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NumberConverter(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("NumberConverter(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestRegistryCallFormatsFirstArgument(t *testing.T) {
	registry := NewConverterRegistryFrom(BuiltinConverters())

	got, err := registry.call(ConverterNumber, 7)
	if err != nil || got != 7.0 {
		t.Fatalf("expected 7.0, got %v %v", got, err)
	}
	if _, err := registry.call("missing", "x"); err == nil {
		t.Fatalf("expected unknown converter error from call")
	}
}
