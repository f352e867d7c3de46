package translator

import (
	"regexp"
	"strings"
)

const hintsName = "hints"

// hintPattern captures style, the first line (title) and the body up to the
// first {% endhint %}. Lazy groups keep a hint from running into the next one.
var hintPattern = regexp.MustCompile(`(?s)\{% hint style="([a-zA-Z]+)" %\}\s*(.*?)\s*\n(.*?)\s*\{% endhint %\}`)

// hintsPass converts GitBook hints into admonitions:
//
//	{% hint style="info" %}          !!! info "Title"
//	Title                       =>       Body line
//	Body line
//	{% endhint %}
type hintsPass struct{}

func (hintsPass) Name() string     { return hintsName }
func (hintsPass) Stage() PassStage { return StageBlocks }

func (hintsPass) Dependencies() PassDependencies {
	return PassDependencies{
		MustRunAfter:  []string{codeTitlesName},
		MustRunBefore: []string{tabsName},
		SpansLines:    true,
		Reindents:     true,
	}
}

func (hintsPass) Apply(text string) (string, int) {
	if !strings.Contains(text, "{% hint ") {
		return text, 0
	}
	return replaceSubmatches(hintPattern, text, func(g []string) string {
		style := g[1]
		title := strings.TrimSpace(g[2])
		body := trimRightSpace(g[3])
		return "!!! " + style + " \"" + title + "\"\n" + indentUnit + strings.ReplaceAll(body, "\n", "\n"+indentUnit) + "\n"
	})
}

// ConvertHints rewrites GitBook hint blocks into admonition blocks.
func ConvertHints(text string) string {
	out, _ := hintsPass{}.Apply(text)
	return out
}

func init() {
	Register(hintsPass{})
}
