package analyzer

// topoWorklist yields task ids in a topological order of their
// "depends_on" edges: a task becomes available once every task it
// depends on has been popped (spec.md §4.5: "Evaluate in topological
// order of previous-task dependencies (so rule 3 is available)").
//
// Grounded on task_planner.rs's `TopologicalSort`, a decrementing-key
// working set keyed by remaining dependency count; this is the
// standard Kahn's-algorithm queue the original structure reduces to
// for a dependency DAG (statement_depends_on is acyclic by
// construction — see spec.md §4.1).
type topoWorklist struct {
	remaining []int
	ready     []int
}

// newTopoWorklist builds a worklist over n tasks, where inDegree[i] is
// the number of dependencies task i has outstanding.
func newTopoWorklist(inDegree []int) *topoWorklist {
	w := &topoWorklist{remaining: append([]int(nil), inDegree...)}
	for id, n := range w.remaining {
		if n == 0 {
			w.ready = append(w.ready, id)
		}
	}
	return w
}

func (w *topoWorklist) isEmpty() bool { return len(w.ready) == 0 }

// pop removes and returns the next available task id.
func (w *topoWorklist) pop() int {
	id := w.ready[0]
	w.ready = w.ready[1:]
	return id
}

// decrementKey records that one of id's dependencies has now been
// popped, making id available once its count reaches zero.
func (w *topoWorklist) decrementKey(id int) {
	w.remaining[id]--
	if w.remaining[id] == 0 {
		w.ready = append(w.ready, id)
	}
}
