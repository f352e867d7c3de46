package translator

import (
	"regexp"
	"strings"
)

const tabsName = "tabs"

var (
	// tabGroupPattern matches a {% tabs %} group up to its first {% endtabs %}.
	tabGroupPattern = regexp.MustCompile(`(?s)\{% tabs %\}(.*?)\{% endtabs %\}`)

	// tabPattern matches one tab inside a group up to its own {% endtab %}.
	tabPattern = regexp.MustCompile(`(?s)\{% tab title="([^"]+)" %\}(.*?)\{% endtab %\}`)
)

// tabsPass converts GitBook tab groups into content tabs:
//
//	{% tabs %}
//	{% tab title="A" %}              === "A"
//	text                        =>       text
//	{% endtab %}
//	{% endtabs %}
//
// A tab body is bounded by its own {% endtab %} tag, not by the next header,
// so a literal `=== "..."` line inside a fenced block is never taken for a tab.
// Headers are always emitted at the start of a line; when the tab tag is only
// preceded by whitespace on its line, that whitespace is kept as the header's
// indentation so tabs nested in an admonition stay inside it.
type tabsPass struct{}

func (tabsPass) Name() string     { return tabsName }
func (tabsPass) Stage() PassStage { return StageBlocks }

func (tabsPass) Dependencies() PassDependencies {
	return PassDependencies{
		MustRunAfter: []string{codeTitlesName, hintsName},
		SpansLines:   true,
		Reindents:    true,
	}
}

func (tabsPass) Apply(text string) (string, int) {
	if !strings.Contains(text, "{% tabs %}") {
		return text, 0
	}

	groups := tabGroupPattern.FindAllStringSubmatchIndex(text, -1)
	if len(groups) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	count := 0
	for _, loc := range groups {
		b.WriteString(text[last:loc[0]])
		count += writeTabGroup(&b, text[loc[2]:loc[3]])
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String(), count
}

// writeTabGroup writes the converted body of one group (tags already dropped)
// and returns the number of tabs converted.
func writeTabGroup(b *strings.Builder, inner string) int {
	tabs := tabPattern.FindAllStringSubmatchIndex(inner, -1)
	last := 0
	for _, loc := range tabs {
		b.WriteString(inner[last:loc[0]])

		title := inner[loc[2]:loc[3]]
		body := trimBlankLines(inner[loc[4]:loc[5]])

		nl := lineEnding(inner[loc[4]:])

		if prefix := linePrefix(b.String()); !isBlank(prefix) {
			b.WriteString(nl)
		}
		b.WriteString(`=== "` + title + `"`)
		b.WriteString(nl)
		if body != "" {
			b.WriteString(indentBlock(body))
		}

		rest := inner[loc[1]:]
		if !strings.HasPrefix(rest, "\n") && !strings.HasPrefix(rest, "\r\n") {
			b.WriteString(nl)
		}
		last = loc[1]
	}
	b.WriteString(inner[last:])
	return len(tabs)
}

// ConvertTabs rewrites GitBook tab groups into content tab headers with indented bodies.
func ConvertTabs(text string) string {
	out, _ := tabsPass{}.Apply(text)
	return out
}

func init() {
	Register(tabsPass{})
}
