package analyzer

// StatementKind tags the closed set of statement roots (spec.md §3.2).
type StatementKind uint8

const (
	StatementKindNone StatementKind = iota
	StatementKindCreate
	StatementKindCreateAs
	StatementKindCreateView
	StatementKindFetch
	StatementKindLoad
	StatementKindDeclare
	StatementKindSet
	StatementKindViz
	StatementKindSelect
)

func (k StatementKind) String() string {
	switch k {
	case StatementKindCreate:
		return "Create"
	case StatementKindCreateAs:
		return "CreateAs"
	case StatementKindCreateView:
		return "CreateView"
	case StatementKindFetch:
		return "Fetch"
	case StatementKindLoad:
		return "Load"
	case StatementKindDeclare:
		return "Declare"
	case StatementKindSet:
		return "Set"
	case StatementKindViz:
		return "Viz"
	case StatementKindSelect:
		return "Select"
	default:
		return "None"
	}
}

// Statement is the closed set of statement-root variants (spec.md §3.2).
type Statement interface {
	Kind() StatementKind
	RootNode() int32
}

// CreateStatement is `CREATE TABLE name (...)`.
type CreateStatement struct {
	Root    int32
	Name    NamePath
	Columns []string
}

func (s *CreateStatement) Kind() StatementKind { return StatementKindCreate }
func (s *CreateStatement) RootNode() int32     { return s.Root }

// CreateAsStatement is `CREATE TABLE name AS <select>`.
type CreateAsStatement struct {
	Root  int32
	Name  NamePath
	Query *SelectStatement
}

func (s *CreateAsStatement) Kind() StatementKind { return StatementKindCreateAs }
func (s *CreateAsStatement) RootNode() int32     { return s.Root }

// CreateViewStatement is `CREATE VIEW name AS <select>`.
type CreateViewStatement struct {
	Root  int32
	Name  NamePath
	Query *SelectStatement
}

func (s *CreateViewStatement) Kind() StatementKind { return StatementKindCreateView }
func (s *CreateViewStatement) RootNode() int32     { return s.Root }

// FetchStatement is `FETCH name FROM uri [USING method]`.
type FetchStatement struct {
	Root    int32
	Name    NamePath
	Method  string
	FromURI string
	Extra   DsonValue
}

func (s *FetchStatement) Kind() StatementKind { return StatementKindFetch }
func (s *FetchStatement) RootNode() int32     { return s.Root }

// LoadStatement is `LOAD name FROM source [USING method]`.
type LoadStatement struct {
	Root   int32
	Name   NamePath
	Source NamePath
	Method string
	Extra  DsonValue
}

func (s *LoadStatement) Kind() StatementKind { return StatementKindLoad }
func (s *LoadStatement) RootNode() int32     { return s.Root }

// DeclareStatement is `DECLARE name TYPE [= value] [WITH (...)]` (an input
// card).
type DeclareStatement struct {
	Root      int32
	Name      NamePath
	ValueType string
	Extra     DsonValue
}

func (s *DeclareStatement) Kind() StatementKind { return StatementKindDeclare }
func (s *DeclareStatement) RootNode() int32     { return s.Root }

// SetStatement assigns session/app variables.
type SetStatement struct {
	Root   int32
	Fields map[string]Expression
}

func (s *SetStatement) Kind() StatementKind { return StatementKindSet }
func (s *SetStatement) RootNode() int32     { return s.Root }

// VizStatement is `VISUALIZE target USING component [WITH (...)]`.
type VizStatement struct {
	Root          int32
	Target        TableRef
	ComponentType string
	TypeModifiers []string
	Extra         DsonValue
}

func (s *VizStatement) Kind() StatementKind { return StatementKindViz }
func (s *VizStatement) RootNode() int32     { return s.Root }

// SelectStatement is a bare `SELECT ...` not bound to a CREATE.
type SelectStatement struct {
	Root int32
	Text string
}

func (s *SelectStatement) Kind() StatementKind { return StatementKindSelect }
func (s *SelectStatement) RootNode() int32     { return s.Root }

// declaredName returns the name a definition-bearing statement declares,
// per the table in spec.md §4.1 Pass 1. Statements without a declared name
// (Set, Viz, Select) return ok=false.
func declaredName(stmt Statement) (NamePath, bool) {
	switch s := stmt.(type) {
	case *CreateStatement:
		return s.Name, true
	case *CreateAsStatement:
		return s.Name, true
	case *CreateViewStatement:
		return s.Name, true
	case *FetchStatement:
		return s.Name, true
	case *LoadStatement:
		return s.Name, true
	case *DeclareStatement:
		return s.Name, true
	default:
		return nil, false
	}
}

// ScalarKind is the closed set of evaluated expression value shapes this
// repo needs (board-card position evaluation only; full scalar/execution
// typing is out of scope per spec.md's Non-goals).
type ScalarKind uint8

const (
	ScalarNull ScalarKind = iota
	ScalarBool
	ScalarFloat64
	ScalarString
)

// ScalarValue is a minimal evaluated value, sufficient for card-position
// arithmetic (spec.md's supplemented board-card feature) and for Declare
// input-value comparison (spec.md §4.5 rule 5).
type ScalarValue struct {
	Kind   ScalarKind
	Bool   bool
	Number float64
	Text   string
}

// Equal compares two scalar values for the purposes of spec.md §4.5's
// Declare-applicability rule.
func (v ScalarValue) Equal(o ScalarValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ScalarNull:
		return true
	case ScalarBool:
		return v.Bool == o.Bool
	case ScalarFloat64:
		return v.Number == o.Number
	case ScalarString:
		return v.Text == o.Text
	}
	return false
}

// AsFloat64 casts v to float64, per spec.md's board-card allocator
// ("position value cannot be casted to double" is a NodeError otherwise).
func (v ScalarValue) AsFloat64() (float64, bool) {
	switch v.Kind {
	case ScalarFloat64:
		return v.Number, true
	case ScalarBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Expression is the closed set of expression shapes. Only literal
// expressions are evaluable in this repo; everything else is a stand-in
// for the expression kinds spec.md's Non-goals put out of scope (query
// execution, type checking).
type Expression interface{ expression() }

// LiteralExpression wraps a constant scalar value.
type LiteralExpression struct{ Value ScalarValue }

func (LiteralExpression) expression() {}

// OpaqueExpression stands in for any expression shape this repo does not
// evaluate (column references, function calls, subqueries, ...).
type OpaqueExpression struct{ Describe string }

func (OpaqueExpression) expression() {}

// Evaluate resolves e to a scalar value. A LiteralExpression yields its
// value and a nil expression yields a null value; every other expression
// reports an error, mirroring original_source's
// `ExpressionEvaluationFailed` NodeError.
func Evaluate(e Expression) (ScalarValue, error) {
	switch v := e.(type) {
	case LiteralExpression:
		return v.Value, nil
	case nil:
		return ScalarValue{}, nil
	default:
		_ = v
		return ScalarValue{}, errExpressionEvaluationFailed
	}
}
