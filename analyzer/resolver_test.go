package analyzer

import (
	"testing"

	"github.com/boardscript/analyzer/config"
	"github.com/stretchr/testify/assert"
)

func namePath(names ...string) NamePath {
	p := make(NamePath, len(names))
	for i, n := range names {
		p[i] = IndirectionName{Name: n}
	}
	return p
}

func TestNormalizeNameDefaultSchema(t *testing.T) {
	got := NormalizeName("main", namePath("weather"))
	assert.True(t, got.Equal(namePath("main", "weather")))
}

func TestNormalizeNameAlreadyQualified(t *testing.T) {
	got := NormalizeName("main", namePath("other", "weather"))
	assert.True(t, got.Equal(namePath("other", "weather")))
}

func TestNormalizeNameDeepPathUnchanged(t *testing.T) {
	got := NormalizeName("main", namePath("db", "schema", "weather"))
	assert.True(t, got.Equal(namePath("db", "schema", "weather")))
}

func TestNormalizeNameNoLeadingNameUnchanged(t *testing.T) {
	path := NamePath{IndirectionIndex{}}
	got := NormalizeName("main", path)
	assert.Equal(t, path, got)
}

// buildCreateLoadVizProgram builds a minimal program exercising both
// dependency-edge kinds (spec.md §4.1 Pass 2): a CREATE TABLE, a LOAD whose
// source references it, a table-ref node inside a CREATE-AS query
// referencing the same table, and a Viz statement's table-ref targeting
// the loaded table.
func buildCreateLoadVizProgram(t *testing.T) *ProgramInstance {
	t.Helper()
	var nodes []FlatNode
	appendRoot := func() int32 {
		idx := int32(len(nodes))
		nodes = append(nodes, FlatNode{Type: NodeTypeNone, Parent: idx})
		return idx
	}
	appendTableRefChild := func(parent int32, name NamePath) int32 {
		idx := int32(len(nodes))
		nodes = append(nodes, FlatNode{Type: NodeTypeObjectSQLTableRef, Parent: parent})
		return idx
	}

	createRoot := appendRoot()
	loadRoot := appendRoot()
	vizRoot := appendRoot()
	vizTableRef := appendTableRefChild(vizRoot, namePath("weather"))

	program := &Program{
		FlatNodes:  nodes,
		TypedNodes: make([]ASTNode, len(nodes)),
		Statements: []Statement{
			&CreateStatement{Root: createRoot, Name: namePath("weather")},
			&LoadStatement{Root: loadRoot, Name: namePath("weather_copy"), Source: namePath("weather")},
			&VizStatement{Root: vizRoot, Target: TableRefRelation{Name: namePath("weather")}},
		},
	}
	program.TypedNodes[vizTableRef] = TableRefNode{Ref: TableRefRelation{Name: namePath("weather")}}

	settings := config.NewAnalysisSettings()
	inst, err := NewProgramInstance(settings, program, nil)
	if err != nil {
		t.Fatalf("NewProgramInstance: %v", err)
	}
	NormalizeStatementNames(inst)
	DiscoverStatementDependencies(inst)
	return inst
}

func TestDiscoverStatementDependenciesLoadSource(t *testing.T) {
	inst := buildCreateLoadVizProgram(t)
	edge, ok := inst.StatementDependsOn[StatementPair{Source: 1, Target: 0}]
	assert.True(t, ok, "LOAD should depend on its source CREATE")
	assert.Equal(t, DependencyTableRef, edge.Kind)
	assert.Equal(t, NoEdgeNode, edge.EdgeNodeID)

	_, ok = inst.StatementRequiredFor[StatementPair{Source: 0, Target: 1}]
	assert.True(t, ok, "dependency should be recorded in both directions")
}

func TestDiscoverStatementDependenciesTableRef(t *testing.T) {
	inst := buildCreateLoadVizProgram(t)
	_, ok := inst.StatementDependsOn[StatementPair{Source: 2, Target: 0}]
	assert.True(t, ok, "VIZ should depend on the table it targets")
}

// TestDiscoverStatementDependenciesFirstReferenceWins mirrors spec.md's
// first-write-wins rule for a statement that references the same target
// more than once: only the first reference's edge node id survives, later
// references to the same (from, to) pair must not overwrite it.
func TestDiscoverStatementDependenciesFirstReferenceWins(t *testing.T) {
	var nodes []FlatNode
	appendRoot := func() int32 {
		idx := int32(len(nodes))
		nodes = append(nodes, FlatNode{Type: NodeTypeNone, Parent: idx})
		return idx
	}
	appendTableRefChild := func(parent int32) int32 {
		idx := int32(len(nodes))
		nodes = append(nodes, FlatNode{Type: NodeTypeObjectSQLTableRef, Parent: parent})
		return idx
	}

	createRoot := appendRoot()
	vizRoot := appendRoot()
	firstRef := appendTableRefChild(vizRoot)
	secondRef := appendTableRefChild(vizRoot)

	program := &Program{
		FlatNodes:  nodes,
		TypedNodes: make([]ASTNode, len(nodes)),
		Statements: []Statement{
			&CreateStatement{Root: createRoot, Name: namePath("weather")},
			&VizStatement{Root: vizRoot, Target: TableRefRelation{Name: namePath("weather")}},
		},
	}
	program.TypedNodes[firstRef] = TableRefNode{Ref: TableRefRelation{Name: namePath("weather")}}
	program.TypedNodes[secondRef] = TableRefNode{Ref: TableRefRelation{Name: namePath("weather")}}

	inst, err := NewProgramInstance(config.NewAnalysisSettings(), program, nil)
	if err != nil {
		t.Fatalf("NewProgramInstance: %v", err)
	}
	NormalizeStatementNames(inst)
	DiscoverStatementDependencies(inst)

	edge, ok := inst.StatementDependsOn[StatementPair{Source: 1, Target: 0}]
	assert.True(t, ok)
	assert.Equal(t, firstRef, edge.EdgeNodeID, "a second reference to the same target must not overwrite the first")

	reverse, ok := inst.StatementRequiredFor[StatementPair{Source: 0, Target: 1}]
	assert.True(t, ok)
	assert.Equal(t, firstRef, reverse.EdgeNodeID, "the reverse edge must stay in sync with the forward one")
}
