package analyzer

import "github.com/boardscript/analyzer/sqlwriter"

// Format methods let the definition-bearing statement kinds satisfy
// sqlwriter.Node, so the task planner can render a statement's SQL task
// payload through the shared pretty-printer (spec.md §4.4).

func (s *CreateStatement) Format(buf *sqlwriter.TrackedBuffer) {
	buf.Myprintf("create table %s (", s.Name.Key())
	for i, col := range s.Columns {
		if i > 0 {
			buf.Myprintf(", ")
		}
		buf.Myprintf("%s", col)
	}
	buf.Myprintf(")")
}

func (s *CreateAsStatement) Format(buf *sqlwriter.TrackedBuffer) {
	buf.Myprintf("create table %s as (%s)", s.Name.Key(), selectText(s.Query))
}

func (s *CreateViewStatement) Format(buf *sqlwriter.TrackedBuffer) {
	buf.Myprintf("create view %s as (%s)", s.Name.Key(), selectText(s.Query))
}

func (s *SelectStatement) Format(buf *sqlwriter.TrackedBuffer) {
	buf.Myprintf("%s", s.Text)
}

func selectText(q *SelectStatement) string {
	if q == nil {
		return ""
	}
	return q.Text
}

// printStatementScript renders the SQL task payload text for the
// statement kinds the task planner materializes as SQL (spec.md §4.4:
// "SQL text of the statement, produced by the SQL pretty-printer").
// Statement kinds with no SQL shape (Fetch, Load, Declare, Viz, Set)
// return "".
func printStatementScript(stmt Statement) string {
	node, ok := stmt.(sqlwriter.Node)
	if !ok {
		return ""
	}
	return sqlwriter.Print(node)
}
