package translator

// PassStage represents a phase of the translation pipeline.
// Stages execute in the order defined by StageOrder.
type PassStage string

const (
	// StageStrip removes or unwraps source-only markup (footnote markers, content-ref wrappers).
	StageStrip PassStage = "strip"

	// StageBlocks rewrites multi-line block constructs (titled code, hints, tabs).
	StageBlocks PassStage = "blocks"

	// StageInline rewrites single-line embedded HTML (figures).
	StageInline PassStage = "inline"

	// StageAssets rewrites asset path references.
	StageAssets PassStage = "assets"
)

// StageOrder defines the execution order of translation stages.
// Passes are grouped by stage and executed in this order.
var StageOrder = []PassStage{
	StageStrip,
	StageBlocks,
	StageInline,
	StageAssets,
}

// Pass is a single self-contained text rewrite over a whole document.
type Pass interface {
	// Name returns the unique identifier for this pass (lowercase snake_case).
	Name() string

	// Stage returns the pipeline stage where this pass executes.
	Stage() PassStage

	// Dependencies declares ordering constraints and matching capabilities.
	Dependencies() PassDependencies

	// Apply rewrites every occurrence of the pass's construct and reports how
	// many were rewritten. Apply must never fail and must leave unmatched text untouched.
	Apply(text string) (string, int)
}

// PassDependencies declares explicit ordering constraints and capabilities.
type PassDependencies struct {
	// MustRunAfter lists pass names that must complete before this one.
	MustRunAfter []string

	// MustRunBefore lists pass names that must run after this one.
	MustRunBefore []string

	// SpansLines indicates the pattern may match across line breaks.
	SpansLines bool

	// Reindents indicates the pass re-flows captured content with a fixed indent.
	Reindents bool
}

// StageIndex returns the numeric index of a stage in StageOrder.
// Returns -1 if the stage is not found.
func StageIndex(stage PassStage) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// IsValidStage returns true if the stage is defined in StageOrder.
func IsValidStage(stage PassStage) bool {
	return StageIndex(stage) >= 0
}
