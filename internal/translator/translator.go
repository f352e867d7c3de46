// Package translator rewrites GitBook-flavoured markdown into the markdown dialect
// understood by MkDocs Material.
//
// Translation is a fixed pipeline of independent passes. Each pass scans the whole
// document for one construct and substitutes it; text outside the construct is
// copied through unchanged. The order is part of the contract because later
// passes consume output of earlier ones (tabs are re-indented after hints and
// titled code blocks have already been rewritten):
//
//  1. footnote_markers  strip "[^1]" and "[^1]:"
//  2. content_refs      unwrap {% content-ref %} blocks
//  3. code_titles       fold {% code title="..." %} into the fence line
//  4. hints             {% hint style="..." %} to !!! admonitions
//  5. tabs              {% tabs %}/{% tab %} to === tab headers
//  6. figures           <figure><img ...></figure> to ![alt](src)
//  7. asset_paths       .gitbook/assets/ to gbassets/
//
// A Translator holds no mutable state and may be shared between goroutines.
package translator

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultOrder is the documented execution order of the built-in passes.
var DefaultOrder = []string{
	footnoteMarkersName,
	contentRefsName,
	codeTitlesName,
	hintsName,
	tabsName,
	figuresName,
	assetPathsName,
}

// Stats reports how many constructs each pass rewrote.
type Stats struct {
	Rewrites map[string]int
}

// Total returns the number of rewrites across all passes.
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Rewrites {
		n += c
	}
	return n
}

// Passes returns the pass names with at least one rewrite, sorted.
func (s Stats) Passes() []string {
	names := make([]string, 0, len(s.Rewrites))
	for name, c := range s.Rewrites {
		if c > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Translator applies an ordered pass pipeline to documents.
type Translator struct {
	passes []Pass
}

type options struct {
	skip        []string
	assetSource string
	assetAlias  string
}

// Option configures a Translator.
type Option func(*options)

// WithSkip disables the named passes.
func WithSkip(names ...string) Option {
	return func(o *options) { o.skip = append(o.skip, names...) }
}

// WithAssetPaths overrides the asset directory rewritten by the asset_paths pass.
// Both values are directory paths relative to the docs root, without trailing slash.
func WithAssetPaths(source, alias string) Option {
	return func(o *options) {
		o.assetSource = source
		o.assetAlias = alias
	}
}

// New builds a Translator from the registered passes.
func New(opts ...Option) (*Translator, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if err := lookup(o.skip); err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(o.skip))
	for _, n := range o.skip {
		skip[n] = struct{}{}
	}

	var selected []Pass
	for _, p := range registered() {
		if _, ok := skip[p.Name()]; ok {
			continue
		}
		if p.Name() == assetPathsName && (o.assetSource != "" || o.assetAlias != "") {
			ap, err := newAssetPathsPass(o.assetSource, o.assetAlias)
			if err != nil {
				return nil, err
			}
			p = ap
		}
		selected = append(selected, p)
	}

	pipeline, err := BuildPipeline(selected)
	if err != nil {
		return nil, fmt.Errorf("build pass pipeline: %w", err)
	}
	return &Translator{passes: pipeline}, nil
}

// Passes returns the resolved pipeline in execution order.
func (t *Translator) Passes() []Pass {
	out := make([]Pass, len(t.passes))
	copy(out, t.passes)
	return out
}

// Translate converts a whole document. It never fails.
func (t *Translator) Translate(text string) string {
	out, _ := t.TranslateWithStats(text)
	return out
}

// TranslateWithStats converts a document and reports per-pass rewrite counts.
func (t *Translator) TranslateWithStats(text string) (string, Stats) {
	stats := Stats{Rewrites: make(map[string]int, len(t.passes))}
	for _, p := range t.passes {
		var n int
		text, n = p.Apply(text)
		stats.Rewrites[p.Name()] = n
	}
	return text, stats
}

// Default returns the translator built from every registered pass with default options.
var Default = sync.OnceValue(func() *Translator {
	t, err := New()
	if err != nil {
		// The built-in passes form a fixed acyclic graph; a failure here is a programming error.
		panic(err)
	}
	return t
})

// Translate converts a document with the default pipeline.
func Translate(text string) string {
	return Default().Translate(text)
}
