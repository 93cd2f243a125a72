package analyzer

// TaskClass distinguishes the two node kinds that make up a TaskGraph
// (spec.md §4.4/§4.5): setup tasks drop previous state, program tasks
// (re)produce a statement's runtime output.
type TaskClass uint8

const (
	TaskClassSetup TaskClass = iota
	TaskClassProgram
)

// TaskStatusCode is the closed set of task lifecycle states (spec.md
// §5's task scheduling model).
type TaskStatusCode uint8

const (
	TaskStatusPending TaskStatusCode = iota
	TaskStatusSkipped
	TaskStatusRunning
	TaskStatusBlocked
	TaskStatusFailed
	TaskStatusCompleted
)

func (c TaskStatusCode) String() string {
	switch c {
	case TaskStatusSkipped:
		return "Skipped"
	case TaskStatusRunning:
		return "Running"
	case TaskStatusBlocked:
		return "Blocked"
	case TaskStatusFailed:
		return "Failed"
	case TaskStatusCompleted:
		return "Completed"
	default:
		return "Pending"
	}
}

// TaskBlocker tags why a Blocked task cannot currently run. Task
// execution itself is out of scope for this repo (spec.md §5 "out of
// scope for detail"); this enum is carried for the scheduler interface
// a host runtime would implement against a TaskGraph.
type TaskBlocker uint8

const (
	TaskBlockerNone TaskBlocker = iota
	TaskBlockerDependency
	TaskBlockerUserInteraction
	TaskBlockerHTTPRequest
)

// SetupTaskType is the closed set of teardown operations a setup task
// performs (spec.md §4.5's migration table).
type SetupTaskType uint8

const (
	SetupTaskNone SetupTaskType = iota
	SetupTaskDropBlob
	SetupTaskDropInput
	SetupTaskDropTable
	SetupTaskDropView
	SetupTaskDropViz
	SetupTaskUnset
)

// SetupTask drops a previous task's runtime output that migration did
// not reuse (spec.md §4.4 "A `SetupTask` has...").
type SetupTask struct {
	TaskType    SetupTaskType
	StatusCode  TaskStatusCode
	DependsOn   []int
	RequiredFor []int
	ObjectID    int
	ObjectName  *string
}

func (t *SetupTask) Class() TaskClass       { return TaskClassSetup }
func (t *SetupTask) Status() TaskStatusCode { return t.StatusCode }

// ProgramTaskType is the closed set of runtime-producing operations a
// program task performs (spec.md §4.4's statement-to-task-type table).
type ProgramTaskType uint8

const (
	ProgramTaskNone ProgramTaskType = iota
	ProgramTaskCreateTable
	ProgramTaskCreateView
	ProgramTaskCreateViz
	ProgramTaskFetch
	ProgramTaskDeclare
	ProgramTaskLoad
	ProgramTaskModifyTable
	ProgramTaskSet
	ProgramTaskUpdateViz
)

// updateTaskType returns the in-place "update" variant of t, if the
// task type has one — in the core system only CreateViz has one
// (spec.md §4.5: "the only instance in the core is CreateViz ↔
// UpdateViz").
func (t ProgramTaskType) updateTaskType() (ProgramTaskType, bool) {
	switch t {
	case ProgramTaskCreateViz, ProgramTaskUpdateViz:
		return ProgramTaskUpdateViz, true
	default:
		return ProgramTaskNone, false
	}
}

// setupTaskType returns the SetupTaskType that tears down a task of
// type t, per spec.md §4.5's migration table. ProgramTaskNone has no
// setup task.
func (t ProgramTaskType) setupTaskType() SetupTaskType {
	switch t {
	case ProgramTaskCreateTable, ProgramTaskLoad, ProgramTaskModifyTable:
		return SetupTaskDropTable
	case ProgramTaskCreateView:
		return SetupTaskDropView
	case ProgramTaskCreateViz, ProgramTaskUpdateViz:
		return SetupTaskDropViz
	case ProgramTaskFetch:
		return SetupTaskDropBlob
	case ProgramTaskDeclare:
		return SetupTaskDropInput
	case ProgramTaskSet:
		return SetupTaskUnset
	default:
		return SetupTaskNone
	}
}

// propagatesInvalidation reports whether a task of type t carries data
// that a consumer's reuse would depend on, and therefore propagates
// backward invalidation along depends_on edges (spec.md §4.5's
// rationale: "if a table's contents change, any view derived from it
// must be re-materialized; but a failed viz does not invalidate its
// input table").
func (t ProgramTaskType) propagatesInvalidation() bool {
	switch t {
	case ProgramTaskCreateTable, ProgramTaskCreateView, ProgramTaskModifyTable:
		return true
	default:
		return false
	}
}

// TaskData is the closed set of task-specific payloads (spec.md §4.4).
type TaskData interface{ taskData() }

// SQLTaskData carries the pretty-printed SQL text for CreateTable/
// CreateView tasks.
type SQLTaskData struct{ Script string }

func (SQLTaskData) taskData() {}

// DeclareTaskData carries the input card descriptor for a Declare task.
type DeclareTaskData struct{ Card Card }

func (DeclareTaskData) taskData() {}

// VizTaskData carries the card descriptor a CreateViz/UpdateViz task
// renders (spec.md's supplemented board-card feature feeding §4.4's
// "viz spec built by an external viz composer").
type VizTaskData struct{ Card Card }

func (VizTaskData) taskData() {}

// ProgramTask (re)produces a statement's runtime output (spec.md
// §4.4's "A `ProgramTask` has...").
type ProgramTask struct {
	TaskType        ProgramTaskType
	StatusCode      TaskStatusCode
	DependsOn       []int
	RequiredFor     []int
	OriginStatement int
	ObjectID        int
	ObjectName      *string
	Data            TaskData
}

func (t *ProgramTask) Class() TaskClass       { return TaskClassProgram }
func (t *ProgramTask) Status() TaskStatusCode { return t.StatusCode }

// TaskGraph is the full migratable plan for a program (spec.md §4.4).
type TaskGraph struct {
	NextObjectID           int
	SetupTasks             []SetupTask
	ProgramTasks           []ProgramTask
	ProgramTaskByStatement []*int // statement id -> index into ProgramTasks, nil if none
}
