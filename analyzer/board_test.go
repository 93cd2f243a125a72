package analyzer

import (
	"testing"

	"github.com/boardscript/analyzer/config"
	"github.com/stretchr/testify/assert"
)

// buildDeclareOnlyProgram builds n independent Declare statements (input
// cards), each a bare root with no table-ref children, so only the
// board-card allocator needs exercising.
func buildDeclareOnlyProgram(n int, extras []DsonValue) *Program {
	nodes := make([]FlatNode, n)
	stmts := make([]Statement, n)
	for i := 0; i < n; i++ {
		nodes[i] = FlatNode{Type: NodeTypeNone, Parent: int32(i)}
		var extra DsonValue
		if extras != nil {
			extra = extras[i]
		}
		stmts[i] = &DeclareStatement{Root: int32(i), Name: namePath(string(rune('a' + i))), ValueType: "DOUBLE", Extra: extra}
	}
	return &Program{FlatNodes: nodes, TypedNodes: make([]ASTNode, n), Statements: stmts}
}

// TestAllocateCardPositionsPacksRowByWidth mirrors board_card.rs's
// row-packing behavior: four default-width (3-column) input cards exactly
// fill a 12-column row, and the fifth wraps onto a new row.
func TestAllocateCardPositionsPacksRowByWidth(t *testing.T) {
	program := buildDeclareOnlyProgram(5, nil)
	inst, err := NewProgramInstance(config.NewAnalysisSettings(), program, nil)
	if err != nil {
		t.Fatalf("NewProgramInstance: %v", err)
	}
	NormalizeStatementNames(inst)
	if err := AllocateCardPositions(inst); err != nil {
		t.Fatalf("AllocateCardPositions: %v", err)
	}

	for i := 0; i < 4; i++ {
		pos := inst.CardPositions[i]
		assert.Equal(t, 0, pos.Row, "card %d should pack into row 0", i)
		assert.Equal(t, i*defaultInputCardWidth, pos.Column)
		assert.Equal(t, defaultInputCardWidth, pos.Width)
	}
	last := inst.CardPositions[4]
	assert.Equal(t, 1, last.Row, "a 5th 3-wide card does not fit the 12-wide row, so it wraps")
	assert.Equal(t, 0, last.Column)
}

// TestAllocateCardPositionsHonorsExplicitPosition mirrors board_card.rs's
// explicit DSON_POSITION override path: a caller-supplied row/column is
// used verbatim instead of flowing into the packer.
func TestAllocateCardPositionsHonorsExplicitPosition(t *testing.T) {
	explicit := &DsonObject{Fields: []DsonField{
		{Key: KnownDsonKey(AttributeKeyDsonPosition), Value: &DsonObject{Fields: []DsonField{
			{Key: KnownDsonKey(AttributeKeyDsonRow), Value: DsonExpression{Expr: LiteralExpression{Value: ScalarValue{Kind: ScalarFloat64, Number: 5}}}},
			{Key: KnownDsonKey(AttributeKeyDsonColumn), Value: DsonExpression{Expr: LiteralExpression{Value: ScalarValue{Kind: ScalarFloat64, Number: 9}}}},
		}}},
	}}
	program := buildDeclareOnlyProgram(1, []DsonValue{explicit})
	inst, err := NewProgramInstance(config.NewAnalysisSettings(), program, nil)
	if err != nil {
		t.Fatalf("NewProgramInstance: %v", err)
	}
	NormalizeStatementNames(inst)
	if err := AllocateCardPositions(inst); err != nil {
		t.Fatalf("AllocateCardPositions: %v", err)
	}

	pos := inst.CardPositions[0]
	assert.Equal(t, 5, pos.Row)
	assert.Equal(t, 9, pos.Column)
	assert.Equal(t, defaultInputCardWidth, pos.Width, "unset width field keeps the default")
	assert.Empty(t, inst.NodeErrors)
}

// TestCollectCardsTitlesDeclareByNormalizedNameAndVizByTarget mirrors
// board_card.rs's collect_cards title rules.
func TestCollectCardsTitlesDeclareByNormalizedNameAndVizByTarget(t *testing.T) {
	b := &taskPlannerBuilder{}
	declareRoot := b.appendRoot()
	vizRoot := b.appendRoot()
	b.appendTableRef(vizRoot, namePath("threshold"))
	program := &Program{
		FlatNodes:  b.nodes,
		TypedNodes: b.typed,
		Statements: []Statement{
			&DeclareStatement{Root: declareRoot, Name: namePath("threshold"), ValueType: "DOUBLE"},
			&VizStatement{Root: vizRoot, Target: TableRefRelation{Name: namePath("threshold")}, ComponentType: "TABLE"},
		},
	}
	inst := planInstance(t, program, nil)

	assert.Equal(t, "main.threshold", inst.Cards[0].Title)
	assert.Equal(t, "threshold", inst.Cards[1].Title, "viz card title comes from the unresolved target name path, not the normalized statement name")
}
