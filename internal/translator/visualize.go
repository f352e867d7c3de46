package translator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VisualizationFormat represents the output format for pipeline visualization.
type VisualizationFormat string

const (
	FormatText    VisualizationFormat = "text"
	FormatMermaid VisualizationFormat = "mermaid"
	FormatDOT     VisualizationFormat = "dot"
	FormatJSON    VisualizationFormat = "json"
)

// Visualize renders the translator's resolved pipeline.
func (t *Translator) Visualize(format VisualizationFormat) (string, error) {
	switch format {
	case FormatText:
		return visualizeText(t.passes), nil
	case FormatMermaid:
		return visualizeMermaid(t.passes), nil
	case FormatDOT:
		return visualizeDOT(t.passes), nil
	case FormatJSON:
		return visualizeJSON(t.passes)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func groupByStage(passes []Pass) map[PassStage][]Pass {
	byStage := make(map[PassStage][]Pass)
	for _, p := range passes {
		byStage[p.Stage()] = append(byStage[p.Stage()], p)
	}
	return byStage
}

func visualizeText(passes []Pass) string {
	var sb strings.Builder
	sb.WriteString("Translation Pipeline\n")
	sb.WriteString("====================\n\n")

	byStage := groupByStage(passes)
	order := 0
	for i, stage := range StageOrder {
		stagePasses := byStage[stage]
		if len(stagePasses) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "┌─ Stage %d: %s\n", i+1, stage)
		for j, p := range stagePasses {
			order++
			prefix := "├──"
			connector := "│   "
			if j == len(stagePasses)-1 {
				prefix = "└──"
				connector = "    "
			}
			fmt.Fprintf(&sb, "│ %s %d. %s\n", prefix, order, p.Name())
			if deps := p.Dependencies(); len(deps.MustRunAfter) > 0 {
				fmt.Fprintf(&sb, "│ %s   ⤷ after: %s\n", connector, strings.Join(deps.MustRunAfter, ", "))
			}
		}
		sb.WriteString("│\n")
	}
	fmt.Fprintf(&sb, "\nTotal: %d passes across %d stages\n", len(passes), len(byStage))
	return sb.String()
}

func visualizeMermaid(passes []Pass) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph TD\n")

	byStage := groupByStage(passes)
	for _, stage := range StageOrder {
		stagePasses := byStage[stage]
		if len(stagePasses) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    subgraph %s[\"Stage: %s\"]\n", stage, stage)
		for _, p := range stagePasses {
			fmt.Fprintf(&sb, "        %s[\"%s\"]\n", mermaidID(p.Name()), p.Name())
		}
		sb.WriteString("    end\n")
	}

	sb.WriteString("\n")
	for i := 1; i < len(passes); i++ {
		fmt.Fprintf(&sb, "    %s --> %s\n", mermaidID(passes[i-1].Name()), mermaidID(passes[i].Name()))
	}
	sb.WriteString("```\n")
	return sb.String()
}

func mermaidID(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "_", ""), "-", "")
}

func visualizeDOT(passes []Pass) string {
	var sb strings.Builder
	sb.WriteString("digraph TranslationPipeline {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n\n")

	byStage := groupByStage(passes)
	for i, stage := range StageOrder {
		stagePasses := byStage[stage]
		if len(stagePasses) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    subgraph cluster_%d {\n", i)
		fmt.Fprintf(&sb, "        label=\"Stage: %s\";\n", stage)
		for _, p := range stagePasses {
			fmt.Fprintf(&sb, "        \"%s\";\n", p.Name())
		}
		sb.WriteString("    }\n\n")
	}

	for i := 1; i < len(passes); i++ {
		fmt.Fprintf(&sb, "    \"%s\" -> \"%s\";\n", passes[i-1].Name(), passes[i].Name())
	}
	sb.WriteString("}\n")
	return sb.String()
}

type passJSON struct {
	Name         string   `json:"name"`
	Stage        string   `json:"stage"`
	Order        int      `json:"order"`
	MustRunAfter []string `json:"mustRunAfter"`
	SpansLines   bool     `json:"spansLines"`
	Reindents    bool     `json:"reindents"`
}

func visualizeJSON(passes []Pass) (string, error) {
	out := struct {
		Passes      []passJSON `json:"passes"`
		TotalPasses int        `json:"totalPasses"`
	}{Passes: make([]passJSON, 0, len(passes)), TotalPasses: len(passes)}

	for i, p := range passes {
		deps := p.Dependencies()
		after := deps.MustRunAfter
		if after == nil {
			after = []string{}
		}
		out.Passes = append(out.Passes, passJSON{
			Name:         p.Name(),
			Stage:        string(p.Stage()),
			Order:        i + 1,
			MustRunAfter: after,
			SpansLines:   deps.SpansLines,
			Reindents:    deps.Reindents,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal pipeline: %w", err)
	}
	return string(data) + "\n", nil
}

// SupportedFormats returns the visualization formats accepted by Visualize.
func SupportedFormats() []VisualizationFormat {
	return []VisualizationFormat{FormatText, FormatMermaid, FormatDOT, FormatJSON}
}

// FormatDescription returns a description of a visualization format.
func FormatDescription(format VisualizationFormat) string {
	descriptions := map[VisualizationFormat]string{
		FormatText:    "Human-readable text with ASCII art",
		FormatMermaid: "Mermaid diagram (for GitHub, GitLab, etc.)",
		FormatDOT:     "Graphviz DOT format (render with `dot -Tpng passes.dot -o passes.png`)",
		FormatJSON:    "Structured JSON representation",
	}
	return descriptions[format]
}
