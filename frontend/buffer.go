package frontend

import (
	"sync"

	"github.com/boardscript/analyzer/analyzer"
	"github.com/boardscript/analyzer/config"
)

// update is the closed set of tagged records an UpdateBuffer can queue, one
// variant per Channel method (spec.md §6.5). deliver replays the record onto
// a concrete Channel.
type update interface {
	deliver(ch Channel)
}

type updateProgram struct {
	sessionID string
	astBytes  []byte
}

func (u updateProgram) deliver(ch Channel) { ch.UpdateProgram(u.sessionID, u.astBytes) }

type updateProgramAnalysis struct {
	sessionID string
	analysis  interface{}
}

func (u updateProgramAnalysis) deliver(ch Channel) {
	ch.UpdateProgramAnalysis(u.sessionID, u.analysis)
}

type updateTaskGraph struct {
	sessionID string
	graphJSON []byte
}

func (u updateTaskGraph) deliver(ch Channel) { ch.UpdateTaskGraph(u.sessionID, u.graphJSON) }

type updateTaskStatus struct {
	sessionID  string
	taskID     int
	status     analyzer.TaskStatusCode
	errMessage string
}

func (u updateTaskStatus) deliver(ch Channel) {
	ch.UpdateTaskStatus(u.sessionID, u.taskID, u.status, u.errMessage)
}

type deleteTaskData struct {
	sessionID string
	dataID    string
}

func (u deleteTaskData) deliver(ch Channel) { ch.DeleteTaskData(u.sessionID, u.dataID) }

type updateInputData struct {
	sessionID string
	dataID    string
}

func (u updateInputData) deliver(ch Channel) { ch.UpdateInputData(u.sessionID, u.dataID) }

type updateImportData struct {
	sessionID string
	dataID    string
}

func (u updateImportData) deliver(ch Channel) { ch.UpdateImportData(u.sessionID, u.dataID) }

type updateTableData struct {
	sessionID string
	dataID    string
}

func (u updateTableData) deliver(ch Channel) { ch.UpdateTableData(u.sessionID, u.dataID) }

type updateVisualizationData struct {
	sessionID string
	dataID    string
}

func (u updateVisualizationData) deliver(ch Channel) {
	ch.UpdateVisualizationData(u.sessionID, u.dataID)
}

type beginBatchUpdate struct{ sessionID string }

func (u beginBatchUpdate) deliver(ch Channel) { ch.BeginBatchUpdate(u.sessionID) }

type endBatchUpdate struct{ sessionID string }

func (u endBatchUpdate) deliver(ch Channel) { ch.EndBatchUpdate(u.sessionID) }

// UpdateBuffer accumulates tagged update records and drains them in order on
// Flush (spec.md §5): append and drain are mutex-protected so a producer
// goroutine can queue updates while a prior Flush is still draining, and the
// buffer provides no back-pressure — it is unbounded.
type UpdateBuffer struct {
	mu      sync.Mutex
	pending []update
	inBatch map[string]bool
}

// NewUpdateBuffer returns an empty UpdateBuffer.
func NewUpdateBuffer() *UpdateBuffer {
	return &UpdateBuffer{inBatch: make(map[string]bool)}
}

// NewUpdateBufferWithConfig returns an empty UpdateBuffer, pre-sizing its
// backing slice from cfg.BufferSize. Per spec.md §5 the buffer itself stays
// unbounded and applies no back-pressure — BufferSize is only a capacity
// hint to avoid early reallocation under steady update volume, not a cap.
func NewUpdateBufferWithConfig(cfg *config.FrontendChannelConfig) *UpdateBuffer {
	b := NewUpdateBuffer()
	if cfg != nil && cfg.BufferSize > 0 {
		b.pending = make([]update, 0, cfg.BufferSize)
	}
	return b
}

func (b *UpdateBuffer) push(sessionID string, u update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, u)
}

func (b *UpdateBuffer) UpdateProgram(sessionID string, astBytes []byte) {
	b.push(sessionID, updateProgram{sessionID, astBytes})
}

func (b *UpdateBuffer) UpdateProgramAnalysis(sessionID string, analysis interface{}) {
	b.push(sessionID, updateProgramAnalysis{sessionID, analysis})
}

func (b *UpdateBuffer) UpdateTaskGraph(sessionID string, graphJSON []byte) {
	b.push(sessionID, updateTaskGraph{sessionID, graphJSON})
}

func (b *UpdateBuffer) UpdateTaskStatus(sessionID string, taskID int, status analyzer.TaskStatusCode, errMessage string) {
	b.push(sessionID, updateTaskStatus{sessionID, taskID, status, errMessage})
}

func (b *UpdateBuffer) DeleteTaskData(sessionID string, dataID string) {
	b.push(sessionID, deleteTaskData{sessionID, dataID})
}

func (b *UpdateBuffer) UpdateInputData(sessionID string, dataID string) {
	b.push(sessionID, updateInputData{sessionID, dataID})
}

func (b *UpdateBuffer) UpdateImportData(sessionID string, dataID string) {
	b.push(sessionID, updateImportData{sessionID, dataID})
}

func (b *UpdateBuffer) UpdateTableData(sessionID string, dataID string) {
	b.push(sessionID, updateTableData{sessionID, dataID})
}

func (b *UpdateBuffer) UpdateVisualizationData(sessionID string, dataID string) {
	b.push(sessionID, updateVisualizationData{sessionID, dataID})
}

// BeginBatchUpdate queues a batch marker and remembers that sessionID owes a
// matching EndBatchUpdate, so Flush can synthesize one if the caller never
// queues it explicitly (spec.md §6.5).
func (b *UpdateBuffer) BeginBatchUpdate(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, beginBatchUpdate{sessionID})
	b.inBatch[sessionID] = true
}

func (b *UpdateBuffer) EndBatchUpdate(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, endBatchUpdate{sessionID})
	b.inBatch[sessionID] = false
}

// Flush drains every queued record and delivers each to ch in order,
// appending a synthetic EndBatchUpdate for any session whose batch was left
// open. The buffer is empty again once Flush returns.
func (b *UpdateBuffer) Flush(ch Channel) {
	b.mu.Lock()
	drained := b.pending
	b.pending = nil
	open := b.inBatch
	b.inBatch = make(map[string]bool)
	b.mu.Unlock()

	for _, u := range drained {
		u.deliver(ch)
	}
	for sessionID, stillOpen := range open {
		if stillOpen {
			ch.EndBatchUpdate(sessionID)
		}
	}
}
