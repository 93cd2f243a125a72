package analyzer

import "sort"

// taskPlannerContext threads the translation/diff/migration state
// through the task-planner stages (spec.md §4.4/§4.5), grounded on
// task_planner.rs's `TaskPlannerContext`.
type taskPlannerContext struct {
	nextProgram   *ProgramInstance
	prevProgram   *ProgramInstance
	prevTaskGraph *TaskGraph

	// diff is the statement-level edit script A→B (spec.md §4.3).
	diff []DiffOp
	// diffByPrevStatement maps a previous statement id to its diff op.
	// computeDiff's output is total (every previous statement appears
	// exactly once as an op's source), so this is a safe re-indexing of
	// diff by source rather than relying on diff's array position
	// happening to equal the source id.
	diffByPrevStatement []DiffOp

	// reverseTaskMapping maps a next-program task id to the previous
	// task id it was diffed against, for Keep/Move/Update pairs only
	// (spec.md §4.5 "Reverse task mapping").
	reverseTaskMapping []*int

	// applicability[a] tells whether previous task a's runtime output
	// can be reused (spec.md §4.5 "Applicability").
	applicability []bool

	nextTaskGraph *TaskGraph
}

func (ctx *taskPlannerContext) hasPrev() bool {
	return ctx.prevProgram != nil && ctx.prevTaskGraph != nil
}

// translateStatements builds a fresh TaskGraph from ctx.nextProgram, in
// statement order, each task getting a brand-new object id continuing
// from the previous graph's counter (spec.md §4.4).
func translateStatements(ctx *taskPlannerContext) {
	next := ctx.nextProgram
	nextObjectID := 0
	if ctx.hasPrev() {
		nextObjectID = ctx.prevTaskGraph.NextObjectID
	}

	programTasks := make([]ProgramTask, 0, len(next.Program.Statements))
	programTaskByStatement := make([]*int, len(next.Program.Statements))

	for stmtID, stmt := range next.Program.Statements {
		status := TaskStatusSkipped
		if next.StatementLiveness[stmtID] {
			status = TaskStatusPending
		}
		var objectName *string
		if name := next.StatementNames[stmtID]; name != nil {
			key := name.Key()
			objectName = &key
		}

		task := ProgramTask{
			StatusCode:      status,
			OriginStatement: stmtID,
			ObjectID:        nextObjectID,
			ObjectName:      objectName,
		}

		switch s := stmt.(type) {
		case *CreateStatement:
			task.TaskType = ProgramTaskCreateTable
			task.Data = SQLTaskData{Script: printStatementScript(s)}
		case *CreateAsStatement:
			task.TaskType = ProgramTaskCreateTable
			task.Data = SQLTaskData{Script: printStatementScript(s)}
		case *CreateViewStatement:
			task.TaskType = ProgramTaskCreateView
			task.Data = SQLTaskData{Script: printStatementScript(s)}
		case *DeclareStatement:
			task.TaskType = ProgramTaskDeclare
			task.Data = DeclareTaskData{Card: next.Cards[stmtID]}
		case *FetchStatement:
			task.TaskType = ProgramTaskFetch
		case *LoadStatement:
			task.TaskType = ProgramTaskLoad
		case *VizStatement:
			task.TaskType = ProgramTaskCreateViz
			task.Data = VizTaskData{Card: next.Cards[stmtID]}
		case *SelectStatement:
			task.TaskType = ProgramTaskCreateTable
			task.Data = SQLTaskData{Script: printStatementScript(s)}
		case *SetStatement:
			task.TaskType = ProgramTaskSet
		}

		nextObjectID++
		idx := len(programTasks)
		programTaskByStatement[stmtID] = &idx
		programTasks = append(programTasks, task)
	}

	for pair := range next.StatementDependsOn {
		a := programTaskByStatement[pair.Source]
		b := programTaskByStatement[pair.Target]
		if a == nil || b == nil {
			continue
		}
		programTasks[*a].DependsOn = append(programTasks[*a].DependsOn, *b)
		programTasks[*b].RequiredFor = append(programTasks[*b].RequiredFor, *a)
	}

	ctx.nextTaskGraph = &TaskGraph{
		NextObjectID:           nextObjectID,
		ProgramTasks:           programTasks,
		ProgramTaskByStatement: programTaskByStatement,
	}
}

// diffPrograms computes the statement-level diff against the previous
// program and the reverse task mapping migration reads (spec.md §4.5).
//
// Every next-program statement gets exactly one program task in
// statement order (translateStatements never skips a statement), so a
// statement id and its task id coincide in both graphs; diff source/
// target statement ids double as task ids below.
func diffPrograms(ctx *taskPlannerContext) {
	if !ctx.hasPrev() {
		return
	}
	ctx.diff = computeDiff(ctx.prevProgram, ctx.nextProgram)

	ctx.diffByPrevStatement = make([]DiffOp, len(ctx.prevProgram.Program.Statements))
	for _, op := range ctx.diff {
		if op.Source != nil {
			ctx.diffByPrevStatement[*op.Source] = op
		}
	}

	ctx.reverseTaskMapping = make([]*int, len(ctx.nextTaskGraph.ProgramTasks))
	for _, op := range ctx.diff {
		switch op.OpCode {
		case DiffKeep, DiffMove, DiffUpdate:
			if op.Source != nil && op.Target != nil {
				ctx.reverseTaskMapping[*op.Target] = intRef(*op.Source)
			}
		}
	}
}

// scalarAt reads inst's caller-supplied input value for statement
// stmtID, if any was supplied.
func scalarAt(inst *ProgramInstance, stmtID int) (ScalarValue, bool) {
	if stmtID < 0 || stmtID >= len(inst.Input) {
		return ScalarValue{}, false
	}
	return inst.Input[stmtID], true
}

func intsEqualAsSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// identifyApplicableTasks walks the previous task graph in topological
// order of depends_on, deciding for every previous task whether its
// runtime output is still reusable (spec.md §4.5 "Applicability").
func identifyApplicableTasks(ctx *taskPlannerContext) {
	if !ctx.hasPrev() {
		return
	}
	prevTasks := ctx.prevTaskGraph
	nextTasks := ctx.nextTaskGraph
	ctx.applicability = make([]bool, len(prevTasks.ProgramTasks))

	// invalidate marks taskID, and every task it depends on transitively
	// through a data-carrying task type, as not applicable. Pessimistic
	// by design (spec.md §4.5's rationale): we'd rather re-materialize a
	// table than serve stale data.
	invalidate := func(taskID int) {
		visited := make(map[int]bool)
		pending := []int{taskID}
		for len(pending) > 0 {
			top := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			if visited[top] {
				continue
			}
			visited[top] = true

			task := prevTasks.ProgramTasks[top]
			if task.TaskType.propagatesInvalidation() {
				pending = append(pending, task.DependsOn...)
			}
			ctx.applicability[top] = false
		}
	}

	inDegree := make([]int, len(prevTasks.ProgramTasks))
	for i, t := range prevTasks.ProgramTasks {
		inDegree[i] = len(t.DependsOn)
	}
	pendingTasks := newTopoWorklist(inDegree)

	for !pendingTasks.isEmpty() {
		prevTaskID := pendingTasks.pop()
		a := prevTasks.ProgramTasks[prevTaskID]
		for _, next := range a.RequiredFor {
			pendingTasks.decrementKey(next)
		}

		// An incomplete previous task has no runtime output to reuse;
		// irrelevant for migration.
		if a.StatusCode != TaskStatusCompleted {
			invalidate(prevTaskID)
			continue
		}

		diffOp := ctx.diffByPrevStatement[a.OriginStatement]
		switch diffOp.OpCode {
		case DiffMove, DiffKeep:
			allApplicable := true
			for _, dep := range a.DependsOn {
				if !ctx.applicability[dep] {
					allApplicable = false
				}
			}
			if !allApplicable {
				invalidate(prevTaskID)
				continue
			}

			if diffOp.Target == nil {
				invalidate(prevTaskID)
				continue
			}
			nextTaskIdx := nextTasks.ProgramTaskByStatement[*diffOp.Target]
			if nextTaskIdx == nil {
				invalidate(prevTaskID)
				continue
			}
			nextTaskID := *nextTaskIdx

			// The dependency set should be unchanged too — the diff is
			// Move/Keep but rare cases (e.g. location-derived
			// dependencies on Insert/Update neighbors) can still shift
			// it, and a Keep/Move whose *dependencies* moved is not
			// truly reusable.
			prevDeps := append([]int(nil), a.DependsOn...)
			nextDeps := append([]int(nil), nextTasks.ProgramTasks[nextTaskID].DependsOn...)
			depsMapped := true
			for i, dep := range nextDeps {
				mapped := ctx.reverseTaskMapping[dep]
				if mapped == nil {
					depsMapped = false
					break
				}
				nextDeps[i] = *mapped
			}
			sort.Ints(prevDeps)
			sort.Ints(nextDeps)
			if !depsMapped || !intsEqualAsSets(nextDeps, prevDeps) {
				invalidate(prevTaskID)
				continue
			}

			// A Declare task additionally needs its bound input value
			// unchanged; a changed value must re-run downstream.
			// Declare does not itself propagate invalidation, but every
			// consumer is visited later in topological order and fails
			// the all-dependencies-applicable check above, even when its
			// own diff op is Keep/Move.
			if a.TaskType == ProgramTaskDeclare {
				prevStmtID := a.OriginStatement
				nextStmtID := *diffOp.Target
				prevParam, prevOK := scalarAt(ctx.prevProgram, prevStmtID)
				nextParam, nextOK := scalarAt(ctx.nextProgram, nextStmtID)
				if prevOK != nextOK || (prevOK && !prevParam.Equal(nextParam)) {
					invalidate(prevTaskID)
					continue
				}
			}

			ctx.applicability[prevTaskID] = true

		case DiffUpdate, DiffDelete:
			invalidate(prevTaskID)

		case DiffInsert:
			panic("diff op for a previous task's origin statement cannot be Insert")
		}
	}
}

// migrateTaskGraph emits the final migration decisions: applicable
// tasks get their new counterpart patched to Completed with the old
// object id, inapplicable tasks with an update-task-type get patched
// in place, and everything else gets a setup task that drops the old
// output (spec.md §4.5 "Emit migration decisions").
func migrateTaskGraph(ctx *taskPlannerContext) {
	if !ctx.hasPrev() {
		return
	}
	prevTasks := ctx.prevTaskGraph
	nextTasks := ctx.nextTaskGraph

	setup := make([]*SetupTask, len(prevTasks.ProgramTasks))
	for prevTaskID := range prevTasks.ProgramTasks {
		prevTask := prevTasks.ProgramTasks[prevTaskID]
		diffOp := ctx.diffByPrevStatement[prevTask.OriginStatement]

		if ctx.applicability[prevTaskID] {
			nextTaskIdx := nextTasks.ProgramTaskByStatement[*diffOp.Target]
			nextTask := &nextTasks.ProgramTasks[*nextTaskIdx]
			nextTask.StatusCode = TaskStatusCompleted
			nextTask.ObjectID = prevTask.ObjectID
			continue
		}

		updateType, hasUpdate := prevTask.TaskType.updateTaskType()
		isReplay := diffOp.OpCode == DiffUpdate || diffOp.OpCode == DiffMove || diffOp.OpCode == DiffKeep
		if hasUpdate && isReplay && diffOp.Target != nil {
			nextTaskIdx := nextTasks.ProgramTaskByStatement[*diffOp.Target]
			nextTask := &nextTasks.ProgramTasks[*nextTaskIdx]
			nextTask.TaskType = updateType
			nextTask.ObjectID = prevTask.ObjectID
			continue
		}

		dropType := prevTask.TaskType.setupTaskType()
		if dropType == SetupTaskNone {
			continue
		}
		setup[prevTaskID] = &SetupTask{
			TaskType:   dropType,
			StatusCode: TaskStatusPending,
			DependsOn:  append([]int(nil), prevTask.DependsOn...),
			ObjectID:   prevTask.ObjectID,
			ObjectName: prevTask.ObjectName,
		}
	}

	taskMapping := make([]*int, len(setup))
	for prevTaskID, s := range setup {
		if s == nil {
			continue
		}
		idx := len(nextTasks.SetupTasks)
		taskMapping[prevTaskID] = &idx
		nextTasks.SetupTasks = append(nextTasks.SetupTasks, *s)
	}

	patchIDs := func(ids []int) []int {
		out := ids[:0]
		for _, id := range ids {
			if mapped := taskMapping[id]; mapped != nil {
				out = append(out, *mapped)
			}
		}
		return out
	}
	for i := range nextTasks.SetupTasks {
		nextTasks.SetupTasks[i].RequiredFor = patchIDs(nextTasks.SetupTasks[i].RequiredFor)
		nextTasks.SetupTasks[i].DependsOn = patchIDs(nextTasks.SetupTasks[i].DependsOn)
	}
}

// PlanTasks builds the task graph for nextProgram, migrating it
// against (prevProgram, prevTaskGraph) when a previous analysis is
// available (spec.md §2 stage 5, §4.4/§4.5). Pass nil, nil for a
// program with no history.
func PlanTasks(nextProgram *ProgramInstance, prevProgram *ProgramInstance, prevTaskGraph *TaskGraph) *TaskGraph {
	ctx := &taskPlannerContext{
		nextProgram:   nextProgram,
		prevProgram:   prevProgram,
		prevTaskGraph: prevTaskGraph,
	}
	translateStatements(ctx)
	diffPrograms(ctx)
	identifyApplicableTasks(ctx)
	migrateTaskGraph(ctx)
	return ctx.nextTaskGraph
}
