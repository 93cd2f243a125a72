// Package frontend delivers analysis results to a host-supplied update
// channel (spec.md §5/§6.5): a buffered, mutex-protected queue of tagged
// update records drained in order by Flush.
package frontend

import "github.com/boardscript/analyzer/analyzer"

// Channel is the host-supplied delivery boundary (spec.md §6.5): one
// method per update kind. The analyzer never calls these directly —
// every update is queued on an UpdateBuffer and delivered in order by
// Flush, so a Channel implementation need not be safe for concurrent
// calls to the same session id.
type Channel interface {
	UpdateProgram(sessionID string, astBytes []byte)
	UpdateProgramAnalysis(sessionID string, analysis interface{})
	UpdateTaskGraph(sessionID string, graphJSON []byte)
	UpdateTaskStatus(sessionID string, taskID int, status analyzer.TaskStatusCode, errMessage string)
	DeleteTaskData(sessionID string, dataID string)
	UpdateInputData(sessionID string, dataID string)
	UpdateImportData(sessionID string, dataID string)
	UpdateTableData(sessionID string, dataID string)
	UpdateVisualizationData(sessionID string, dataID string)
	BeginBatchUpdate(sessionID string)
	EndBatchUpdate(sessionID string)
}

// NoopChannel discards every update; useful as a default when no host
// runtime is attached.
type NoopChannel struct{}

func (NoopChannel) UpdateProgram(string, []byte)                                    {}
func (NoopChannel) UpdateProgramAnalysis(string, interface{})                        {}
func (NoopChannel) UpdateTaskGraph(string, []byte)                                   {}
func (NoopChannel) UpdateTaskStatus(string, int, analyzer.TaskStatusCode, string)     {}
func (NoopChannel) DeleteTaskData(string, string)                                    {}
func (NoopChannel) UpdateInputData(string, string)                                   {}
func (NoopChannel) UpdateImportData(string, string)                                  {}
func (NoopChannel) UpdateTableData(string, string)                                   {}
func (NoopChannel) UpdateVisualizationData(string, string)                           {}
func (NoopChannel) BeginBatchUpdate(string)                                          {}
func (NoopChannel) EndBatchUpdate(string)                                            {}
