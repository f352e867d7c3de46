package translator

import (
	"regexp"
	"strings"
)

const footnoteMarkersName = "footnote_markers"

// footnoteMarkerPattern matches the GitBook back-reference marker. Only the
// numeral-1 form is handled; other footnotes are left alone.
var footnoteMarkerPattern = regexp.MustCompile(`\[\^1\]:?`)

// footnoteMarkersPass removes "[^1]" and "[^1]:" wherever they occur.
type footnoteMarkersPass struct{}

func (footnoteMarkersPass) Name() string     { return footnoteMarkersName }
func (footnoteMarkersPass) Stage() PassStage { return StageStrip }

func (footnoteMarkersPass) Dependencies() PassDependencies {
	return PassDependencies{
		MustRunBefore: []string{contentRefsName},
	}
}

func (footnoteMarkersPass) Apply(text string) (string, int) {
	if !strings.Contains(text, "[^1]") {
		return text, 0
	}
	n := len(footnoteMarkerPattern.FindAllStringIndex(text, -1))
	return footnoteMarkerPattern.ReplaceAllLiteralString(text, ""), n
}

// StripFootnoteMarkers removes GitBook "[^1]" footnote markers (and a following colon).
func StripFootnoteMarkers(text string) string {
	out, _ := footnoteMarkersPass{}.Apply(text)
	return out
}

func init() {
	Register(footnoteMarkersPass{})
}
