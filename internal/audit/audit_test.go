package audit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditor(t *testing.T) *Auditor {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "present.png"), []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "nested.png"), []byte("png"), 0o600))
	return New(dir, "gbassets")
}

func kinds(findings []Finding) []Kind {
	out := make([]Kind, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

func TestPage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Kind
	}{
		{
			name:    "clean page",
			content: "# Title\n\n![ok](../gbassets/present.png)\n\n![nested](gbassets/img/nested.png)\n",
			want:    []Kind{},
		},
		{
			name:    "missing asset",
			content: "![gone](../gbassets/absent.png)\n",
			want:    []Kind{KindMissingAsset},
		},
		{
			name:    "remote and unrelated images ignored",
			content: "![r](https://example.com/gbassets/x.png)\n![l](images/x.png)\n",
			want:    []Kind{},
		},
		{
			name:    "residual hint tag",
			content: "{% hint style=\"info\" %}\nno closing tag\n",
			want:    []Kind{KindResidualTag},
		},
		{
			name:    "unsupported embed",
			content: "{% embed url=\"https://youtu.be/x\" %}\n",
			want:    []Kind{KindResidualTag},
		},
		{
			name:    "non gitbook tags ignored",
			content: "{% raw %}{{ x }}{% endraw %}\n",
			want:    []Kind{},
		},
		{
			name:    "tags inside fenced code ignored",
			content: "```\n{% hint style=\"info\" %}\n```\n",
			want:    []Kind{},
		},
		{
			name:    "residual figure",
			content: "<figure><img alt=\"x\" src=\"../gbassets/present.png\"><figcaption>c</figcaption></figure>\n",
			want:    []Kind{KindResidualFigure, KindHTMLImage},
		},
		{
			name:    "html image with missing asset",
			content: "Text <img src=\"gbassets/absent.png\"> more\n",
			want:    []Kind{KindHTMLImage, KindMissingAsset},
		},
	}

	a := newAuditor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Page("page.md", []byte(tt.content))
			assert.ElementsMatch(t, tt.want, kinds(got))
		})
	}
}

func TestPage_LinesCountFrontmatter(t *testing.T) {
	a := newAuditor(t)
	content := "---\ntitle: T\ncover: ../gbassets/present.png\n---\n\n![gone](gbassets/absent.png)\n"

	got := a.Page("docs/page.md", []byte(content))

	require.Len(t, got, 1)
	assert.Equal(t, Finding{Page: "docs/page.md", Line: 6, Kind: KindMissingAsset, Detail: "gbassets/absent.png"}, got[0])
}

func TestPage_NoAssetDir(t *testing.T) {
	a := New("", "gbassets")
	assert.Empty(t, a.Page("p.md", []byte("![gone](gbassets/absent.png)\n")))
}

func TestReport(t *testing.T) {
	var r Report
	r.Add(nil)
	assert.True(t, r.Clean())

	r.Add([]Finding{{Page: "b.md", Line: 3, Kind: KindHTMLImage, Detail: "x.png"}})
	assert.True(t, r.Clean())

	r.Add([]Finding{
		{Page: "a.md", Line: 9, Kind: KindResidualTag, Detail: "{% embed %}"},
		{Page: "a.md", Line: 2, Kind: KindMissingAsset, Detail: "gbassets/y.png"},
	})
	assert.False(t, r.Clean())
	assert.Equal(t, 3, r.Pages)
	assert.Equal(t, map[Kind]int{KindHTMLImage: 1, KindResidualTag: 1, KindMissingAsset: 1}, r.Counts())

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "a.md:2: missing_asset: gbassets/y.png\na.md:9: residual_tag: {% embed %}\nb.md:3: html_image: x.png\n")
	assert.Contains(t, out, "3 pages checked, 3 findings")
}
