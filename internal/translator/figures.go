package translator

import (
	"regexp"
	"strings"
)

const figuresName = "figures"

// figurePattern matches the exact figure shape GitBook exports; the caption is discarded.
var figurePattern = regexp.MustCompile(`<figure><img src="(.*?)" alt="(.*?)"><figcaption>.*?</figcaption></figure>`)

// figuresPass rewrites GitBook figures into markdown images.
type figuresPass struct{}

func (figuresPass) Name() string     { return figuresName }
func (figuresPass) Stage() PassStage { return StageInline }

func (figuresPass) Dependencies() PassDependencies {
	return PassDependencies{
		MustRunAfter:  []string{tabsName},
		MustRunBefore: []string{assetPathsName},
	}
}

func (figuresPass) Apply(text string) (string, int) {
	if !strings.Contains(text, "<figure>") {
		return text, 0
	}
	return replaceSubmatches(figurePattern, text, func(g []string) string {
		return "![" + g[2] + "](" + g[1] + ")"
	})
}

// ReplaceFigures rewrites <figure><img src alt><figcaption/></figure> into ![alt](src).
func ReplaceFigures(text string) string {
	out, _ := figuresPass{}.Apply(text)
	return out
}

func init() {
	Register(figuresPass{})
}
