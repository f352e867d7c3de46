// Package markdown parses translated pages with goldmark for analysis. It never
// re-renders markdown.
package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// LinkKind classifies an extracted destination.
type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

// Link is a destination found in a page. Line is 1-based; 0 means unknown.
type Link struct {
	Kind        LinkKind
	Destination string
	Line        int
}

// HTMLFragment is raw HTML embedded in a page, block or inline.
type HTMLFragment struct {
	Raw  string
	Line int
}

// Document is a parsed page body.
type Document struct {
	source []byte
	root   gmast.Node
	refs   []parser.Reference
}

// Parse parses a markdown body (frontmatter already removed).
func Parse(body []byte) *Document {
	ctx := parser.NewContext()
	root := goldmark.New().Parser().Parse(text.NewReader(body), parser.WithContext(ctx))
	return &Document{source: body, root: root, refs: ctx.References()}
}

// Links returns images, links and autolinks in document order, followed by
// reference definitions sorted by label. Code spans and blocks are not searched.
func (d *Document) Links() []Link {
	links := make([]Link, 0)
	_ = gmast.Walk(d.root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(d.source)), Line: d.lineOf(n)})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination), Line: d.lineOf(n)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination), Line: d.lineOf(n)})
		}
		return gmast.WalkContinue, nil
	})

	refs := append([]parser.Reference(nil), d.refs...)
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return links
}

// Images returns only image destinations.
func (d *Document) Images() []Link {
	var images []Link
	for _, l := range d.Links() {
		if l.Kind == LinkKindImage {
			images = append(images, l)
		}
	}
	return images
}

// HTML returns raw HTML blocks and inline raw HTML in document order.
func (d *Document) HTML() []HTMLFragment {
	var out []HTMLFragment
	_ = gmast.Walk(d.root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.HTMLBlock:
			var buf bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(d.source))
			}
			if node.HasClosure() {
				buf.Write(node.ClosureLine.Value(d.source))
			}
			out = append(out, HTMLFragment{Raw: buf.String(), Line: d.lineOf(n)})
		case *gmast.RawHTML:
			var buf bytes.Buffer
			start := -1
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				if start < 0 {
					start = seg.Start
				}
				buf.Write(seg.Value(d.source))
			}
			out = append(out, HTMLFragment{Raw: buf.String(), Line: d.lineAt(start)})
		}
		return gmast.WalkContinue, nil
	})
	return out
}

// lineOf finds the first source line of n or of its nearest block ancestor.
func (d *Document) lineOf(n gmast.Node) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() != gmast.TypeBlock {
			continue
		}
		if lines := cur.Lines(); lines != nil && lines.Len() > 0 {
			return d.lineAt(lines.At(0).Start)
		}
	}
	return 0
}

func (d *Document) lineAt(offset int) int {
	if offset < 0 || offset > len(d.source) {
		return 0
	}
	return bytes.Count(d.source[:offset], []byte("\n")) + 1
}

// ExtractLinks parses body and returns its links.
func ExtractLinks(body []byte) []Link {
	return Parse(body).Links()
}
