// Package audit inspects translated pages for GitBook markup that survived
// translation and for image references the asset directory cannot satisfy.
package audit

import (
	"bufio"
	"bytes"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/frontmatter"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/markdown"
)

// Kind classifies a finding.
type Kind string

const (
	// KindResidualTag is a GitBook {% ... %} tag left in the output, either
	// malformed or a block no pass handles (embed, file, swagger, ...).
	KindResidualTag Kind = "residual_tag"
	// KindResidualFigure is a <figure> whose shape the figures pass did not match.
	KindResidualFigure Kind = "residual_figure"
	// KindHTMLImage is an <img> left as raw HTML.
	KindHTMLImage Kind = "html_image"
	// KindMissingAsset is an image under the asset alias with no file behind it.
	KindMissingAsset Kind = "missing_asset"
)

// Finding is one audit result. Line is 1-based within the page.
type Finding struct {
	Page   string
	Line   int
	Kind   Kind
	Detail string
}

// gitbookTags lists the block tags GitBook exports.
var gitbookTags = map[string]bool{
	"hint": true, "tabs": true, "tab": true, "code": true, "content-ref": true,
	"embed": true, "file": true, "swagger": true, "openapi": true,
	"stepper": true, "step": true, "columns": true, "column": true,
	"include": true, "updates": true, "update": true,
}

var tagPattern = regexp.MustCompile(`\{%-?\s*(?:end)?([a-z][a-z-]*)\b[^%]*-?%\}`)

// Auditor checks pages against one asset directory.
type Auditor struct {
	assetDir string
	alias    string
}

// New returns an Auditor. assetDir is the on-disk asset source; alias is the
// directory name translated pages reference it by. An empty assetDir disables
// the missing-asset check.
func New(assetDir, alias string) *Auditor {
	return &Auditor{assetDir: assetDir, alias: strings.Trim(path.Clean(filepath.ToSlash(alias)), "/")}
}

// Page audits one translated page.
func (a *Auditor) Page(page string, content []byte) []Finding {
	body := content
	offset := 0
	if fm, rest, had, err := frontmatter.Split(content); err == nil && had {
		body = rest
		offset = bytes.Count(fm, []byte("\n")) + 2
	}

	var findings []Finding
	add := func(line int, kind Kind, detail string) {
		if line > 0 {
			line += offset
		}
		findings = append(findings, Finding{Page: page, Line: line, Kind: kind, Detail: detail})
	}

	for _, t := range residualTags(body) {
		add(t.line, KindResidualTag, t.text)
	}

	doc := markdown.Parse(body)
	for _, img := range doc.Images() {
		if a.missing(img.Destination) {
			add(img.Line, KindMissingAsset, img.Destination)
		}
	}
	for _, frag := range doc.HTML() {
		for _, el := range htmlElements(frag.Raw) {
			switch el.tag {
			case atom.Figure:
				add(frag.Line, KindResidualFigure, "<figure>")
			case atom.Img:
				add(frag.Line, KindHTMLImage, el.src)
				if a.missing(el.src) {
					add(frag.Line, KindMissingAsset, el.src)
				}
			}
		}
	}

	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Line < findings[j].Line })
	return findings
}

// missing reports whether dest points below the alias and no such file exists.
func (a *Auditor) missing(dest string) bool {
	if a.assetDir == "" || dest == "" {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	p := u.Path

	marker := a.alias + "/"
	var rel string
	switch i := strings.Index(p, "/"+marker); {
	case strings.HasPrefix(p, marker):
		rel = p[len(marker):]
	case i >= 0:
		rel = p[i+1+len(marker):]
	default:
		return false
	}
	if rel == "" {
		return false
	}
	_, err = os.Stat(filepath.Join(a.assetDir, filepath.FromSlash(rel)))
	return os.IsNotExist(err)
}

type tagHit struct {
	line int
	text string
}

// residualTags finds GitBook tags outside fenced code blocks.
func residualTags(body []byte) []tagHit {
	var hits []tagHit
	fence := ""
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
			if gitbookTags[m[1]] {
				hits = append(hits, tagHit{line: line, text: m[0]})
			}
		}
	}
	return hits
}

func fenceMarker(trimmed string) string {
	for _, ch := range []string{"`", "~"} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch[0] {
			n++
		}
		if n >= 3 {
			return strings.Repeat(ch, n)
		}
	}
	return ""
}

type element struct {
	tag atom.Atom
	src string
}

// htmlElements returns the figure and img elements of an HTML fragment.
func htmlElements(raw string) []element {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return nil
	}

	var out []element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Figure:
				out = append(out, element{tag: atom.Figure})
			case atom.Img:
				out = append(out, element{tag: atom.Img, src: getAttr(n, "src")})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
