package htmlform_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	formiq "github.com/goliatone/go-formiq"
	"github.com/goliatone/go-formiq/pkg/htmlform"
	"github.com/google/go-cmp/cmp"
)

const signupPage = `<!doctype html>
<html><body>
<form id="search" name="search"><input name="q" value="go"></form>
<form id="signup" name="signup" action="/signup" method="POST">
  <input type="text" name="username" value="ada" required>
  <input type="number" name="age" value="36" data-converter="number">
  <input type="checkbox" name="color" value="red" checked>
  <input type="checkbox" name="color" value="green">
  <input type="checkbox" name="color" value="blue" checked>
  <input type="radio" name="plan" value="free">
  <input type="radio" name="plan" value="pro" checked>
  <select name="country">
    <option value="es">Spain</option>
    <option value="fr" selected>France</option>
  </select>
  <textarea name="bio">Hello</textarea>
  <input type="text" name="tags" value="a">
  <input type="text" name="tags" value="b">
  <button type="submit" name="go" value="1">Send</button>
</form>
</body></html>`

func parse(t *testing.T, opts ...htmlform.Option) *htmlform.Document {
	t.Helper()
	doc, err := htmlform.ParseString(signupPage, opts...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestFindSelectors(t *testing.T) {
	doc := parse(t)

	cases := []struct {
		selector string
		wantName string
	}{
		{selector: "#signup", wantName: "signup"},
		{selector: "form#signup", wantName: "signup"},
		{selector: "form[name=signup]", wantName: "signup"},
		{selector: "form[action='/signup']", wantName: "signup"},
		{selector: "form", wantName: "search"},
		{selector: "form:nth-of-type(2)", wantName: "signup"},
		{selector: "body > form:last-of-type", wantName: "signup"},
	}
	for _, tc := range cases {
		t.Run(tc.selector, func(t *testing.T) {
			form, err := doc.Find(tc.selector)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if name, _ := form.Attr("name"); name != tc.wantName {
				t.Fatalf("expected form %q, got %q", tc.wantName, name)
			}
		})
	}

	// "input[name=q]" matches a control, not a form; "form[" does not compile.
	for _, selector := range []string{"#missing", "form:nth-of-type(7)", "signup", "input[name=q]", "form[", ""} {
		if _, err := doc.Find(selector); !errors.Is(err, formiq.ErrFormNotFound) {
			t.Fatalf("selector %q: expected ErrFormNotFound, got %v", selector, err)
		}
	}
}

func TestSessionReadsDocument(t *testing.T) {
	doc := parse(t)
	session, err := formiq.Select(doc, "#signup")
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	values, err := session.GetValue()
	if err != nil {
		t.Fatalf("get value: %v", err)
	}
	want := formiq.Values{
		"username": "ada",
		"age":      36.0,
		"color":    []any{"red", "blue"},
		"plan":     "pro",
		"country":  "fr",
		"bio":      "Hello",
		"tags":     []any{"a", "b"},
		"go":       "1",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectMissingFormIsConstructionError(t *testing.T) {
	doc := parse(t)
	_, err := formiq.Select(doc, "#missing")
	var constructionErr *formiq.ConstructionError
	if !errors.As(err, &constructionErr) {
		t.Fatalf("expected ConstructionError, got %v", err)
	}
	if !errors.Is(err, formiq.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestSessionWritesRenderAndReset(t *testing.T) {
	doc := parse(t)
	session, err := formiq.Select(doc, "form[name=signup]")
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	err = session.SetValues(formiq.Values{
		"username": "grace",
		"color":    []string{"green"},
		"plan":     "free",
		"country":  "es",
		"bio":      "Compilers",
		"tags":     []string{"x", "y"},
	})
	if err != nil {
		t.Fatalf("set values: %v", err)
	}

	values, err := session.GetValue()
	if err != nil {
		t.Fatalf("get value: %v", err)
	}
	want := formiq.Values{
		"username": "grace",
		"age":      36.0,
		"color":    "green",
		"plan":     "free",
		"country":  "es",
		"bio":      "Compilers",
		"tags":     []any{"x", "y"},
		"go":       "1",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	rendered := doc.String()
	if !strings.Contains(rendered, `value="grace"`) || !strings.Contains(rendered, ">Compilers</textarea>") {
		t.Fatalf("expected rendered document to carry writes:\n%s", rendered)
	}

	if err := session.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	values, err = session.GetValue()
	if err != nil {
		t.Fatalf("get value after reset: %v", err)
	}
	if values["username"] != "ada" || values["country"] != "fr" || values["bio"] != "Hello" {
		t.Fatalf("expected parse-time values after reset, got %v", values)
	}
	if diff := cmp.Diff([]any{"red", "blue"}, values["color"]); diff != "" {
		t.Fatalf("color mismatch after reset (-want +got):\n%s", diff)
	}
}

func TestSubmitHandsValuesToHandler(t *testing.T) {
	var (
		gotAction string
		gotMethod string
		gotValues url.Values
	)
	doc := parse(t, htmlform.WithSubmitHandler(func(action, method string, values url.Values) error {
		gotAction, gotMethod, gotValues = action, method, values
		return nil
	}))
	session, err := formiq.Select(doc, "#signup")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := session.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if gotAction != "/signup" || gotMethod != "post" {
		t.Fatalf("unexpected action/method %q %q", gotAction, gotMethod)
	}
	want := url.Values{
		"username": {"ada"},
		"age":      {"36"},
		"color":    {"red", "blue"},
		"plan":     {"pro"},
		"country":  {"fr"},
		"bio":      {"Hello"},
		"tags":     {"a", "b"},
	}
	if diff := cmp.Diff(want, gotValues); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitWithoutHandler(t *testing.T) {
	doc := parse(t)
	form, err := doc.Find("#signup")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := form.Submit(); !errors.Is(err, htmlform.ErrNoSubmitHandler) {
		t.Fatalf("expected ErrNoSubmitHandler, got %v", err)
	}
}

func TestRequiredFromMarkup(t *testing.T) {
	doc := parse(t)
	session, err := formiq.Select(doc, "#signup")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := session.SetValue("username", ""); err != nil {
		t.Fatalf("set value: %v", err)
	}
	result, err := session.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(result) != 1 || result[0].Field != "username" || result[0].Kind != formiq.ErrorRequired {
		t.Fatalf("expected one required error on username, got %+v", result)
	}
}
