package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// programBuilder assembles a synthetic flat-node program for diff tests.
// The diff algorithm operates purely on FlatNode shape, attribute keys and
// source text — never on statement semantics — so tests build minimal
// trees directly instead of going through a parser (out of scope here).
type programBuilder struct {
	src   strings.Builder
	nodes []FlatNode
}

func (b *programBuilder) appendLeaf(parent int32, attr AttributeKey, text string) int32 {
	idx := int32(len(b.nodes))
	offset := b.src.Len()
	b.src.WriteString(text)
	b.nodes = append(b.nodes, FlatNode{
		Type:         NodeTypeStringRef,
		AttributeKey: attr,
		Parent:       parent,
		Location:     Location{Offset: offset, Length: len(text)},
	})
	return idx
}

// appendTextStatement appends a single self-parented StringRef root
// spanning text verbatim, for statements that should be compared as an
// exact textual unit (used for the Keep/Delete/Insert/Move fixtures, where
// the original statements are either byte-identical or wholly different).
func (b *programBuilder) appendTextStatement(text string) int32 {
	root := int32(len(b.nodes))
	offset := b.src.Len()
	b.src.WriteString(text)
	b.nodes = append(b.nodes, FlatNode{
		Type:     NodeTypeStringRef,
		Parent:   root,
		Location: Location{Offset: offset, Length: len(text)},
	})
	return root
}

// appendSelectIntoStatement appends a 4-child object statement: a command
// marker, a target-table marker and a source-table marker (shared verbatim
// across the two test programs), plus a one-digit literal value that
// varies — giving 4 of 5 nodes (root + 3 shared leaves) structurally
// matching and 1 (the literal) not, a 0.8 similarity score that clears the
// 0.75 update threshold while still differing from the source statement
// (spec.md §4.3's Update case).
func (b *programBuilder) appendSelectIntoStatement(value string) int32 {
	root := int32(len(b.nodes))
	b.nodes = append(b.nodes, FlatNode{}) // placeholder; patched below
	childBegin := int32(len(b.nodes))
	b.appendLeaf(root, 1, "cmd:select_into")
	b.appendLeaf(root, 2, "table:weather_avg")
	b.appendLeaf(root, 3, "table:weather")
	b.appendLeaf(root, 4, value)
	rootOffset := b.nodes[childBegin].Location.Offset
	rootLength := b.src.Len() - rootOffset
	b.nodes[root] = FlatNode{
		Type:                 NodeTypeObject,
		Parent:               root,
		ChildrenBeginOrValue: childBegin,
		ChildrenCount:        int32(len(b.nodes)) - childBegin,
		Location:             Location{Offset: rootOffset, Length: rootLength},
	}
	return root
}

func buildInstance(t *testing.T, build func(b *programBuilder) []Statement) *ProgramInstance {
	t.Helper()
	b := &programBuilder{}
	stmts := build(b)
	program := &Program{
		Source:     b.src.String(),
		FlatNodes:  b.nodes,
		TypedNodes: make([]ASTNode, len(b.nodes)),
		Statements: stmts,
	}
	inst, err := NewProgramInstance(nil, program, nil)
	if err != nil {
		t.Fatalf("NewProgramInstance: %v", err)
	}
	return inst
}

// textStatements builds one self-parented StringRef statement per entry of
// texts, separated by ";" in the shared source buffer.
func textStatements(t *testing.T, texts []string) *ProgramInstance {
	t.Helper()
	return buildInstance(t, func(b *programBuilder) []Statement {
		var stmts []Statement
		for i, text := range texts {
			if i > 0 {
				b.src.WriteString(";")
			}
			root := b.appendTextStatement(text)
			stmts = append(stmts, &SelectStatement{Root: root, Text: text})
		}
		return stmts
	})
}

func diffOp(code DiffOpCode, source, target *int) DiffOp {
	return DiffOp{OpCode: code, Source: source, Target: target}
}

func TestDiffEqual(t *testing.T) {
	source := textStatements(t, []string{"SELECT 1"})
	target := textStatements(t, []string{"SELECT 1"})
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{diffOp(DiffKeep, intRef(0), intRef(0))}, ops)
}

func TestDiffDelete(t *testing.T) {
	source := textStatements(t, []string{"SELECT 1", "SELECT 42"})
	target := textStatements(t, []string{"SELECT 1"})
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{
		diffOp(DiffKeep, intRef(0), intRef(0)),
		diffOp(DiffDelete, intRef(1), nil),
	}, ops)
}

func TestDiffInsertAppend(t *testing.T) {
	source := textStatements(t, []string{"SELECT 1"})
	target := textStatements(t, []string{"SELECT 1", "SELECT 42"})
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{
		diffOp(DiffKeep, intRef(0), intRef(0)),
		diffOp(DiffInsert, nil, intRef(1)),
	}, ops)
}

func TestDiffInsertPrepend(t *testing.T) {
	source := textStatements(t, []string{"SELECT 1"})
	target := textStatements(t, []string{"SELECT 42", "SELECT 1"})
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{
		diffOp(DiffKeep, intRef(0), intRef(1)),
		diffOp(DiffInsert, nil, intRef(0)),
	}, ops)
}

func TestDiffMove(t *testing.T) {
	source := textStatements(t, []string{"SELECT 1", "SELECT 2", "SELECT 3"})
	target := textStatements(t, []string{"SELECT 1", "SELECT 3", "SELECT 2"})
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{
		diffOp(DiffKeep, intRef(0), intRef(0)),
		diffOp(DiffMove, intRef(1), intRef(2)),
		diffOp(DiffKeep, intRef(2), intRef(1)),
	}, ops)
}

// buildPipelineProgram builds the 4-ish-statement LOAD/SELECT-INTO/VIZ
// pipeline the fixtures below vary, matching program_diff.rs's test
// scripts structurally (LOAD and VIZ as textually comparable statements,
// the SELECT...INTO as the 4-node composite that can score an Update).
func buildPipelineProgram(t *testing.T, withDeadSelect bool, selectIntoValue string, withExtraViz bool) *ProgramInstance {
	t.Helper()
	return buildInstance(t, func(b *programBuilder) []Statement {
		var stmts []Statement
		load := b.appendTextStatement("LOAD weather FROM weather_csv USING CSV")
		stmts = append(stmts, &LoadStatement{Root: load})
		if withDeadSelect {
			b.src.WriteString(";")
			dead := b.appendTextStatement("SELECT 4")
			stmts = append(stmts, &SelectStatement{Root: dead, Text: "SELECT 4"})
		}
		b.src.WriteString(";")
		selectInto := b.appendSelectIntoStatement(selectIntoValue)
		stmts = append(stmts, &CreateAsStatement{Root: selectInto})
		b.src.WriteString(";")
		viz := b.appendTextStatement("VIZ weather_avg USING LINE")
		stmts = append(stmts, &VizStatement{Root: viz})
		if withExtraViz {
			b.src.WriteString(";")
			viz2 := b.appendTextStatement("VIZ weather_avg_2 USING BAR")
			stmts = append(stmts, &VizStatement{Root: viz2})
		}
		return stmts
	})
}

func TestDiffScriptUpdateInsert(t *testing.T) {
	source := buildPipelineProgram(t, true, "4", false)
	target := buildPipelineProgram(t, false, "1", true)
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{
		diffOp(DiffKeep, intRef(0), intRef(0)),
		diffOp(DiffDelete, intRef(1), nil),
		diffOp(DiffUpdate, intRef(2), intRef(1)),
		diffOp(DiffKeep, intRef(3), intRef(2)),
		diffOp(DiffInsert, nil, intRef(3)),
	}, ops)
}

func TestDiffScriptUpdateOnly(t *testing.T) {
	source := buildPipelineProgram(t, true, "4", false)
	target := buildPipelineProgram(t, false, "1", false)
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{
		diffOp(DiffKeep, intRef(0), intRef(0)),
		diffOp(DiffDelete, intRef(1), nil),
		diffOp(DiffUpdate, intRef(2), intRef(1)),
		diffOp(DiffKeep, intRef(3), intRef(2)),
	}, ops)
}

func TestDiffScriptDoubleDelete(t *testing.T) {
	source := buildInstance(t, func(b *programBuilder) []Statement {
		load := b.appendTextStatement("LOAD weather FROM weather_csv USING CSV")
		b.src.WriteString(";")
		selectInto := b.appendSelectIntoStatement("2")
		b.src.WriteString(";")
		dead := b.appendTextStatement("SELECT 4")
		b.src.WriteString(";")
		viz := b.appendTextStatement("VIZ weather_avg USING LINE")
		return []Statement{
			&LoadStatement{Root: load},
			&CreateAsStatement{Root: selectInto},
			&SelectStatement{Root: dead, Text: "SELECT 4"},
			&VizStatement{Root: viz},
		}
	})
	target := buildInstance(t, func(b *programBuilder) []Statement {
		load := b.appendTextStatement("LOAD weather FROM weather_csv USING CSV")
		b.src.WriteString(";")
		viz := b.appendTextStatement("VIZ weather_avg USING LINE")
		return []Statement{
			&LoadStatement{Root: load},
			&VizStatement{Root: viz},
		}
	})
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{
		diffOp(DiffKeep, intRef(0), intRef(0)),
		diffOp(DiffDelete, intRef(1), nil),
		diffOp(DiffDelete, intRef(2), nil),
		diffOp(DiffKeep, intRef(3), intRef(1)),
	}, ops)
}

func TestDiffScriptUpdateMiddle(t *testing.T) {
	source := buildPipelineProgram(t, false, "1", false)
	target := buildPipelineProgram(t, false, "2", false)
	ops := computeDiff(source, target)
	assert.Equal(t, []DiffOp{
		diffOp(DiffKeep, intRef(0), intRef(0)),
		diffOp(DiffUpdate, intRef(1), intRef(1)),
		diffOp(DiffKeep, intRef(2), intRef(2)),
	}, ops)
}

func TestDiffSelfIsAllKeep(t *testing.T) {
	texts := []string{
		"LOAD weather FROM weather_csv USING CSV",
		"SELECT 1 INTO weather_avg FROM weather",
		"VIZ weather_avg USING LINE",
	}
	source := textStatements(t, texts)
	target := textStatements(t, texts)
	ops := computeDiff(source, target)
	for i, op := range ops {
		assert.Equal(t, DiffKeep, op.OpCode, "op %d should be a Keep", i)
		assert.Equal(t, i, *op.Source)
		assert.Equal(t, i, *op.Target)
	}
}
