package analyzer

// DetermineStatementLiveness runs the liveness pass (spec.md §2 stage 3): a
// reverse breadth-first search seeded at every Viz-statement sink, walking
// statement_depends_on edges outward from each live statement, marking every
// reached statement live. Unreached statements (dead code: orphaned Creates,
// stale Declares, anything not transitively required by a Viz) stay false.
func DetermineStatementLiveness(inst *ProgramInstance) {
	// Adjacency over statement_depends_on (s -> t means "s depends on
	// t"): from a live s, every t it depends on becomes live too
	// (spec.md §4.2 step 2: "mark every t with (s,t) ∈
	// statement_depends_on live").
	dependsOn := make(map[int][]int, len(inst.Program.Statements))
	for pair := range inst.StatementDependsOn {
		dependsOn[pair.Source] = append(dependsOn[pair.Source], pair.Target)
	}

	var queue []int
	for id, stmt := range inst.Program.Statements {
		if stmt.Kind() == StatementKindViz {
			inst.StatementLiveness[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, target := range dependsOn[id] {
			if inst.StatementLiveness[target] {
				continue
			}
			inst.StatementLiveness[target] = true
			queue = append(queue, target)
		}
	}
}
