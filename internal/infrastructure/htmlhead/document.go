// Package htmlhead renders the single-page app shell with a per-post head.
// It is the only code that writes meta tags or the page title.
package htmlhead

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

// dynamicAttr marks tags injected for a post so they can be removed again.
const dynamicAttr = "data-dynamic"

//go:embed shell.html
var defaultShell []byte

// Shell is the raw page template every Document is parsed from.
type Shell struct {
	raw []byte
}

// LoadShell reads the template at path, or uses the built-in one when path
// is empty.
func LoadShell(path string) (*Shell, error) {
	if path == "" {
		return &Shell{raw: defaultShell}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shell %s: %w", path, err)
	}
	return &Shell{raw: raw}, nil
}

// Document returns a fresh, independently mutable copy of the shell.
func (s *Shell) Document() (*Document, error) {
	return Parse(bytes.NewReader(s.raw))
}

// Document is a parsed HTML page whose head can be rewritten.
type Document struct {
	mu   sync.Mutex
	root *html.Node
	head *html.Node
}

var _ ports.DocumentHead = (*Document)(nil)

// Parse reads an HTML page. The parser always yields a head element, even
// for fragments.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	head := find(root, func(n *html.Node) bool { return n.DataAtom == atom.Head })
	if head == nil {
		return nil, fmt.Errorf("parse html: no head element")
	}
	return &Document{root: root, head: head}, nil
}

// RemoveDynamicMeta drops every meta tag previously added by AppendMeta.
func (d *Document) RemoveDynamicMeta() {
	d.mu.Lock()
	defer d.mu.Unlock()

	var marked []*html.Node
	walk(d.root, func(n *html.Node) {
		if n.DataAtom == atom.Meta && attr(n, dynamicAttr) == "true" {
			marked = append(marked, n)
		}
	})
	for _, n := range marked {
		n.Parent.RemoveChild(n)
	}
}

// AppendMeta adds tag at the end of the head, marked as dynamic.
func (d *Document) AppendMeta(tag domain.MetaTag) {
	d.mu.Lock()
	defer d.mu.Unlock()

	attrs := []html.Attribute{{Key: dynamicAttr, Val: "true"}}
	if tag.Property != "" {
		attrs = append(attrs, html.Attribute{Key: "property", Val: tag.Property})
	}
	if tag.Name != "" {
		attrs = append(attrs, html.Attribute{Key: "name", Val: tag.Name})
	}
	attrs = append(attrs, html.Attribute{Key: "content", Val: tag.Content})

	d.head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		Data:     "meta",
		DataAtom: atom.Meta,
		Attr:     attrs,
	})
}

// SetTitle replaces the page title, creating the element when missing.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := find(d.head, func(n *html.Node) bool { return n.DataAtom == atom.Title })
	if t == nil {
		t = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		d.head.AppendChild(t)
	}
	for c := t.FirstChild; c != nil; c = t.FirstChild {
		t.RemoveChild(c)
	}
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

// Title returns the current page title.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := find(d.head, func(n *html.Node) bool { return n.DataAtom == atom.Title })
	if t == nil {
		return ""
	}
	var b strings.Builder
	for c := t.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// DynamicMeta lists the injected tags in document order.
func (d *Document) DynamicMeta() []domain.MetaTag {
	d.mu.Lock()
	defer d.mu.Unlock()

	var tags []domain.MetaTag
	walk(d.root, func(n *html.Node) {
		if n.DataAtom == atom.Meta && attr(n, dynamicAttr) == "true" {
			tags = append(tags, domain.MetaTag{
				Property: attr(n, "property"),
				Name:     attr(n, "name"),
				Content:  attr(n, "content"),
			})
		}
	})
	return tags
}

// Render writes the whole page.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}
