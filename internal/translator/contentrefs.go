package translator

import (
	"regexp"
	"strings"
)

const contentRefsName = "content_refs"

var (
	// contentRefBarePattern matches the attribute-free tag pair on a single line.
	contentRefBarePattern = regexp.MustCompile(`\{% content-ref %\}(.*?)\{% endcontent-ref %\}`)

	// contentRefTaggedPattern allows inline tokens before the tag name and
	// parameters before the closing "%}" on both tags, across lines.
	contentRefTaggedPattern = regexp.MustCompile(`(?s)\{%[\w\s]+?content-ref\s*.*?%\}(.*?)\{%[\w\s]+?endcontent-ref\s*.*?%\}`)
)

// contentRefsPass removes {% content-ref %} wrappers and keeps the enclosed reference.
type contentRefsPass struct{}

func (contentRefsPass) Name() string     { return contentRefsName }
func (contentRefsPass) Stage() PassStage { return StageStrip }

func (contentRefsPass) Dependencies() PassDependencies {
	return PassDependencies{
		MustRunAfter: []string{footnoteMarkersName},
		SpansLines:   true,
	}
}

func (contentRefsPass) Apply(text string) (string, int) {
	if !strings.Contains(text, "content-ref") {
		return text, 0
	}
	keepInner := func(g []string) string { return g[1] }
	text, bare := replaceSubmatches(contentRefBarePattern, text, keepInner)
	text, tagged := replaceSubmatches(contentRefTaggedPattern, text, keepInner)
	return text, bare + tagged
}

// UnwrapContentRefs drops {% content-ref %}...{% endcontent-ref %} tags, keeping the text between them.
func UnwrapContentRefs(text string) string {
	out, _ := contentRefsPass{}.Apply(text)
	return out
}

func init() {
	Register(contentRefsPass{})
}
