// Package htmlform hosts formiq sessions on parsed HTML documents. Writes made
// through a session mutate the node tree, which Render serialises back.
package htmlform

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	formiq "github.com/goliatone/go-formiq"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoSubmitHandler is returned by Submit when the document has no handler.
var ErrNoSubmitHandler = errors.New("htmlform: no submit handler")

// SubmitHandler receives the successful controls of a submitted form.
type SubmitHandler func(action, method string, values url.Values) error

// Option configures a Document.
type Option func(*Document)

// WithSubmitHandler sets the handler called by Form.Submit.
func WithSubmitHandler(handler SubmitHandler) Option {
	return func(d *Document) {
		d.onSubmit = handler
	}
}

// Document is a parsed HTML document.
type Document struct {
	root     *html.Node
	forms    []*Form
	initial  map[*html.Node]nodeState
	onSubmit SubmitHandler
}

type nodeState struct {
	attrs []html.Attribute
	text  string
}

// Parse reads an HTML document from r.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmlform: parse: %w", err)
	}
	doc := &Document{
		root:    root,
		initial: map[*html.Node]nodeState{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(doc)
		}
	}
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Form {
			doc.forms = append(doc.forms, &Form{doc: doc, node: n})
		}
		return true
	})
	for _, form := range doc.forms {
		for _, n := range form.controlNodes() {
			doc.remember(n)
		}
	}
	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(markup string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(markup), opts...)
}

// Forms returns the forms in document order.
func (d *Document) Forms() []*Form {
	out := make([]*Form, len(d.forms))
	copy(out, d.forms)
	return out
}

// Find resolves a CSS selector to a form. The first element in document order
// that matches and is a <form> wins, so "form" is the first form and
// "form#signup", "form[name=signup]" or "#signup" address one directly.
func (d *Document) Find(selector string) (*Form, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, fmt.Errorf("htmlform: empty selector: %w", formiq.ErrFormNotFound)
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("htmlform: selector %q: %w: %w", selector, formiq.ErrFormNotFound, err)
	}
	for _, n := range sel.MatchAll(d.root) {
		for _, form := range d.forms {
			if form.node == n {
				return form, nil
			}
		}
	}
	return nil, fmt.Errorf("htmlform: selector %q: %w", selector, formiq.ErrFormNotFound)
}

// Lookup implements formiq.Locator.
func (d *Document) Lookup(selector string) (formiq.Form, error) {
	form, err := d.Find(selector)
	if err != nil {
		return nil, err
	}
	return form, nil
}

// Render writes the current document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" on failure.
func (d *Document) String() string {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return ""
	}
	return sb.String()
}

func (d *Document) remember(n *html.Node) {
	d.initial[n] = nodeState{
		attrs: append([]html.Attribute(nil), n.Attr...),
		text:  textContent(n),
	}
	if n.DataAtom == atom.Select {
		for _, option := range options(n) {
			d.initial[option] = nodeState{attrs: append([]html.Attribute(nil), option.Attr...)}
		}
	}
}

func (d *Document) restore(n *html.Node) {
	state, ok := d.initial[n]
	if !ok {
		return
	}
	n.Attr = append([]html.Attribute(nil), state.attrs...)
	switch n.DataAtom {
	case atom.Textarea:
		setText(n, state.text)
	case atom.Select:
		for _, option := range options(n) {
			d.restore(option)
		}
	}
}

func walk(n *html.Node, visit func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if visit(c) {
			walk(c, visit)
		}
	}
}

func attr(n *html.Node, key string) (string, bool) {
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, value string) {
	key = strings.ToLower(key)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	key = strings.ToLower(key)
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func options(n *html.Node) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.DataAtom == atom.Option {
			out = append(out, c)
			return false
		}
		return true
	})
	return out
}
