package hydrate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_signup.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[signup](buildOptions(tc)...)

			ctx := Context{
				Session: tc.Session,
				Form:    tc.Form,
			}

			result, err := decoder.Decode(ctx, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if diff := cmp.Diff(tc.Expect, result); diff != "" {
				t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeNilPayload(t *testing.T) {
	_, err := NewDecoder[signup]().Decode(Context{Form: "signup"}, nil)
	if err == nil || !strings.Contains(err.Error(), `payload is nil for form "signup"`) {
		t.Fatalf("expected nil payload error, got %v", err)
	}
}

func TestDecodeDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"username": "ada", "colors": "red"}
	decoder := NewDecoder[signup](WithPreHook[signup](Sequences("colors")))

	if _, err := decoder.Decode(Context{}, input); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if input["colors"] != "red" {
		t.Fatalf("expected input untouched, got %v", input["colors"])
	}
}

func TestPreHookErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	decoder := NewDecoder[signup](WithPreHook[signup](func(Context, map[string]any) (map[string]any, error) {
		return nil, boom
	}))
	_, err := decoder.Decode(Context{Session: "s-1"}, map[string]any{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped hook error, got %v", err)
	}
	if !strings.Contains(err.Error(), `pre-hook for form "s-1"`) {
		t.Fatalf("expected session label in error, got %v", err)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[signup] {
	options := []DecoderOption[signup]{}

	for _, optName := range tc.Options {
		switch optName {
		case "use_number":
			options = append(options, WithUseNumber[signup]())
		case "disallow_unknown":
			options = append(options, WithDisallowUnknownFields[signup]())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "sequences":
			options = append(options, WithPreHook[signup](Sequences("colors")))
		case "drop_empty":
			options = append(options, WithPreHook[signup](DropEmpty()))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "default_newsletter":
			options = append(options, WithPostHook[signup](defaultNewsletter))
		}
	}

	switch tc.CustomDecoder {
	case "csv_colors":
		options = append(options, WithCustomDecoder[signup](csvColorsDecoder))
	}

	return options
}

func defaultNewsletter(_ Context, out *signup) error {
	if out == nil {
		return errors.New("signup is nil")
	}
	if out.Newsletter == "" {
		out.Newsletter = "off"
	}
	return nil
}

func csvColorsDecoder(_ Context, payload map[string]any) (signup, error) {
	var out signup
	out.Username, _ = payload["username"].(string)
	raw, _ := payload["colors"].(string)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out.Colors = append(out.Colors, part)
		}
	}
	return out, nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name          string         `json:"name"`
	Session       string         `json:"session"`
	Form          string         `json:"form"`
	Input         map[string]any `json:"input"`
	Expect        signup         `json:"expect"`
	ExpectErr     string         `json:"expectErr"`
	PreHooks      []string       `json:"preHooks"`
	PostHooks     []string       `json:"postHooks"`
	Options       []string       `json:"options"`
	CustomDecoder string         `json:"customDecoder"`
}

type signup struct {
	Username   string   `json:"username"`
	Age        int      `json:"age"`
	Colors     []string `json:"colors"`
	Newsletter string   `json:"newsletter"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
