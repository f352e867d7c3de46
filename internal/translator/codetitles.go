package translator

import (
	"regexp"
	"strings"
)

const codeTitlesName = "code_titles"

// codeTitlePattern captures the title attribute, the opening fence line (fence
// plus optional language) and the body up to the first {% endcode %}.
var codeTitlePattern = regexp.MustCompile("(?s)\\{% code (title=\"[^\"]+\") %\\}\\n(```.*?)\\n(.*?)\\s*\\{% endcode %\\}")

// codeTitlesPass folds a {% code title="..." %} wrapper into the fence line:
//
//	{% code title="app.py" %}        ```py title="app.py"
//	```py                       =>    print(1)
//	print(1)                          ```
//	```
//	{% endcode %}
type codeTitlesPass struct{}

func (codeTitlesPass) Name() string     { return codeTitlesName }
func (codeTitlesPass) Stage() PassStage { return StageBlocks }

func (codeTitlesPass) Dependencies() PassDependencies {
	return PassDependencies{
		MustRunBefore: []string{hintsName, tabsName},
		SpansLines:    true,
	}
}

func (codeTitlesPass) Apply(text string) (string, int) {
	if !strings.Contains(text, "{% code ") {
		return text, 0
	}
	return replaceSubmatches(codeTitlePattern, text, func(g []string) string {
		fence := strings.TrimSpace(g[2])
		return fence + " " + g[1] + "\n" + trimRightSpace(g[3]) + "\n"
	})
}

// ConvertCodeTitles rewrites titled GitBook code blocks into fences with a title annotation.
func ConvertCodeTitles(text string) string {
	out, _ := codeTitlesPass{}.Apply(text)
	return out
}

func init() {
	Register(codeTitlesPass{})
}
