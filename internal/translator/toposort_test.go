package translator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPass is a minimal pass for exercising ordering.
type mockPass struct {
	name  string
	stage PassStage
	deps  PassDependencies
}

func (m mockPass) Name() string                     { return m.name }
func (m mockPass) Stage() PassStage                 { return m.stage }
func (m mockPass) Dependencies() PassDependencies   { return m.deps }
func (m mockPass) Apply(text string) (string, int) { return text, 0 }

func names(passes []Pass) []string {
	out := make([]string, len(passes))
	for i, p := range passes {
		out[i] = p.Name()
	}
	return out
}

func TestTopologicalSort(t *testing.T) {
	tests := []struct {
		name    string
		passes  []Pass
		want    []string
		wantErr string
	}{
		{
			name:   "empty",
			passes: nil,
			want:   []string{},
		},
		{
			name: "independent passes sorted by name",
			passes: []Pass{
				mockPass{name: "c", stage: StageBlocks},
				mockPass{name: "a", stage: StageBlocks},
				mockPass{name: "b", stage: StageBlocks},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "must run after",
			passes: []Pass{
				mockPass{name: "a", stage: StageBlocks, deps: PassDependencies{MustRunAfter: []string{"b"}}},
				mockPass{name: "b", stage: StageBlocks},
			},
			want: []string{"b", "a"},
		},
		{
			name: "must run before",
			passes: []Pass{
				mockPass{name: "a", stage: StageBlocks},
				mockPass{name: "z", stage: StageBlocks, deps: PassDependencies{MustRunBefore: []string{"a"}}},
			},
			want: []string{"z", "a"},
		},
		{
			name: "unknown dependency ignored",
			passes: []Pass{
				mockPass{name: "a", stage: StageBlocks, deps: PassDependencies{MustRunAfter: []string{"elsewhere"}}},
			},
			want: []string{"a"},
		},
		{
			name: "cycle",
			passes: []Pass{
				mockPass{name: "a", stage: StageBlocks, deps: PassDependencies{MustRunAfter: []string{"b"}}},
				mockPass{name: "b", stage: StageBlocks, deps: PassDependencies{MustRunAfter: []string{"a"}}},
			},
			wantErr: "circular dependency",
		},
		{
			name: "duplicate",
			passes: []Pass{
				mockPass{name: "a", stage: StageBlocks},
				mockPass{name: "a", stage: StageBlocks},
			},
			wantErr: "duplicate pass name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := topologicalSort(tt.passes)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestBuildPipeline_StageOrderWins(t *testing.T) {
	passes := []Pass{
		mockPass{name: "a_assets", stage: StageAssets},
		mockPass{name: "b_strip", stage: StageStrip},
		mockPass{name: "c_inline", stage: StageInline},
	}

	got, err := BuildPipeline(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"b_strip", "c_inline", "a_assets"}, names(got))
}

func TestBuildPipeline_InvalidStage(t *testing.T) {
	_, err := BuildPipeline([]Pass{mockPass{name: "x", stage: "render"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid stage")
}

func TestValidateDependencies(t *testing.T) {
	err := ValidateDependencies([]Pass{
		mockPass{name: "a", stage: StageBlocks, deps: PassDependencies{MustRunAfter: []string{"missing"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	builtins, err := List()
	require.NoError(t, err)
	assert.NoError(t, ValidateDependencies(builtins))
}

func TestRegister_Idempotent(t *testing.T) {
	saved := snapshotRegistry()
	defer restoreRegistry(saved)

	before := len(registered())
	Register(figuresPass{})
	Register(nil)
	assert.Len(t, registered(), before)

	Register(mockPass{name: "extra", stage: StageInline})
	assert.Contains(t, Names(), "extra")
}

func TestStageIndex(t *testing.T) {
	assert.Equal(t, 0, StageIndex(StageStrip))
	assert.Equal(t, 3, StageIndex(StageAssets))
	assert.Equal(t, -1, StageIndex("unknown"))
	assert.False(t, IsValidStage("unknown"))
}

func TestVisualize(t *testing.T) {
	tr := Default()

	for _, format := range SupportedFormats() {
		t.Run(string(format), func(t *testing.T) {
			out, err := tr.Visualize(format)
			require.NoError(t, err)
			assert.NotEmpty(t, FormatDescription(format))
			for _, name := range DefaultOrder {
				if format == FormatMermaid {
					name = mermaidID(name)
				}
				assert.Contains(t, out, name)
			}
		})
	}

	_, err := tr.Visualize("svg")
	assert.Error(t, err)
}

func TestVisualize_JSONOrder(t *testing.T) {
	out, err := Default().Visualize(FormatJSON)
	require.NoError(t, err)

	var decoded struct {
		Passes []struct {
			Name  string `json:"name"`
			Order int    `json:"order"`
		} `json:"passes"`
		TotalPasses int `json:"totalPasses"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Passes, len(DefaultOrder))
	assert.Equal(t, len(DefaultOrder), decoded.TotalPasses)
	for i, p := range decoded.Passes {
		assert.Equal(t, DefaultOrder[i], p.Name)
		assert.Equal(t, i+1, p.Order)
	}
}

func TestVisualize_TextMentionsStages(t *testing.T) {
	out, err := Default().Visualize(FormatText)
	require.NoError(t, err)
	for _, stage := range StageOrder {
		assert.True(t, strings.Contains(out, string(stage)), "stage %s", stage)
	}
}
