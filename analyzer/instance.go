package analyzer

import (
	"github.com/boardscript/analyzer/config"
)

// Program is the parsed+desugared program (spec.md §3.1/§3.2): the parser
// and desugarer are out of scope (spec.md §1), so Program is the input
// contract this analyzer consumes.
type Program struct {
	// Source is the single source-text buffer every Location indexes into.
	Source string

	// FlatNodes is the flat node array (spec.md §3.1). Object-node
	// children must be sorted by AttributeKey ascending; array-node
	// children are in syntactic order; parent(root) == root for every
	// statement root.
	FlatNodes []FlatNode

	// TypedNodes mirrors FlatNodes index-for-index with a typed AST
	// variant wherever later passes need structured access (ColumnRef,
	// TableRef); entries outside that set are nil.
	TypedNodes []ASTNode

	// Statements is the statement list (spec.md §3.1); statement id is
	// its index in this slice.
	Statements []Statement
}

// DependencyKind is the closed set of dependency edge carriers (spec.md
// §4.1).
type DependencyKind uint8

const (
	DependencyTableRef DependencyKind = iota
	DependencyColumnRef
)

// NoEdgeNode is the sentinel edge-node-id used for Load-source edges,
// which have no concrete carrying AST node (spec.md §4.1: "using a
// sentinel edge-node-id").
const NoEdgeNode int32 = -1

// DependencyEdge is the value half of the statement_depends_on /
// statement_required_for maps (spec.md §3.3).
type DependencyEdge struct {
	Kind       DependencyKind
	EdgeNodeID int32
}

// StatementPair is a (source, target) statement-id key.
type StatementPair struct{ Source, Target int }

// ProgramInstance is the analyzer's per-program analysis state (spec.md
// §3.3), keyed by statement id.
type ProgramInstance struct {
	Settings *config.AnalysisSettings
	Program  *Program

	StatementNames  []NamePath     // nil entry = unset
	StatementByName map[string]int // normalized-name key -> statement id, first writer wins
	StatementByRoot map[int32]int  // root flat-node index -> statement id

	StatementDependsOn   map[StatementPair]DependencyEdge
	StatementRequiredFor map[StatementPair]DependencyEdge

	StatementLiveness []bool

	Input []ScalarValue // caller-supplied Declare input values, keyed by statement id

	Cards         map[int]Card
	CardPositions map[int]BoardPosition

	NodeErrors []NodeError

	cachedDefaultSchema *string
	cachedSubtreeSizes  map[int32]int
	cachedSubtreeHashes map[int32]uint64
}

// NewProgramInstance builds the per-statement side tables the instance
// builder stage owns (spec.md §2 stage 1, §3.3 "Set by: instance
// builder"): statement_by_root and zero-valued slots for the remaining
// fields, which later stages populate.
func NewProgramInstance(settings *config.AnalysisSettings, program *Program, input []ScalarValue) (*ProgramInstance, error) {
	inst := &ProgramInstance{
		Settings:             settings,
		Program:              program,
		StatementNames:       make([]NamePath, len(program.Statements)),
		StatementByName:      make(map[string]int),
		StatementByRoot:      make(map[int32]int, len(program.Statements)),
		StatementDependsOn:   make(map[StatementPair]DependencyEdge),
		StatementRequiredFor: make(map[StatementPair]DependencyEdge),
		StatementLiveness:    make([]bool, len(program.Statements)),
		Input:                input,
		Cards:                make(map[int]Card),
		CardPositions:        make(map[int]BoardPosition),
	}
	for stmtID, stmt := range program.Statements {
		root := stmt.RootNode()
		if int(root) < 0 || int(root) >= len(program.FlatNodes) {
			return nil, wrapSystemError(&SystemError{
				Kind:    SystemErrorInvalidStatementRoot,
				NodeID:  root,
				Message: "statement root node index out of range",
			})
		}
		if !program.FlatNodes[root].IsRoot(root) {
			return nil, wrapSystemError(&SystemError{
				Kind:    SystemErrorInvalidStatementRoot,
				NodeID:  root,
				Message: "statement root node is not self-parented",
			})
		}
		inst.StatementByRoot[root] = stmtID
	}
	return inst, nil
}

// defaultSchema returns the configured default schema, allocating it once
// per instance (spec.md §3.3 cached_default_schema; spec.md §9's interior-
// mutability note — a plain field suffices since analysis is
// single-threaded, spec.md §5).
func (inst *ProgramInstance) defaultSchema() string {
	if inst.cachedDefaultSchema != nil {
		return *inst.cachedDefaultSchema
	}
	schema := inst.Settings.DefaultSchema
	if schema == "" {
		schema = "main"
	}
	inst.cachedDefaultSchema = &schema
	return schema
}

// AnalyzeProgram runs the instance-builder, name-resolver, liveness and
// board-card stages (spec.md §2 stages 1–3, plus the supplemented
// board-card pass) and returns the resulting instance. Diffing and task
// planning/migration are separate entry points since they operate over a
// pair of instances (spec.md §4.3/§4.5).
func AnalyzeProgram(settings *config.AnalysisSettings, program *Program, input []ScalarValue) (*ProgramInstance, error) {
	inst, err := NewProgramInstance(settings, program, input)
	if err != nil {
		return nil, err
	}
	NormalizeStatementNames(inst)
	DiscoverStatementDependencies(inst)
	DetermineStatementLiveness(inst)
	if err := AllocateCardPositions(inst); err != nil {
		return nil, err
	}
	CollectCards(inst)
	return inst, nil
}
