package frontend

import (
	"github.com/boardscript/analyzer/analyzer"
	"github.com/boardscript/analyzer/config"
)

// Session binds an UpdateBuffer to one session id, so callers inside an
// analysis pass don't have to thread the id through every update call.
type Session struct {
	id  string
	buf *UpdateBuffer
}

// NewSession returns a Session backed by a fresh UpdateBuffer.
func NewSession(id string) *Session {
	return &Session{id: id, buf: NewUpdateBuffer()}
}

// NewSessionWithConfig returns a Session whose buffer is pre-sized per cfg.
func NewSessionWithConfig(id string, cfg *config.FrontendChannelConfig) *Session {
	return &Session{id: id, buf: NewUpdateBufferWithConfig(cfg)}
}

// Flush drains the session's buffer to ch, see UpdateBuffer.Flush.
func (s *Session) Flush(ch Channel) { s.buf.Flush(ch) }

func (s *Session) UpdateProgram(astBytes []byte) { s.buf.UpdateProgram(s.id, astBytes) }

func (s *Session) UpdateProgramAnalysis(analysis interface{}) {
	s.buf.UpdateProgramAnalysis(s.id, analysis)
}

func (s *Session) UpdateTaskGraph(graphJSON []byte) { s.buf.UpdateTaskGraph(s.id, graphJSON) }

func (s *Session) UpdateTaskStatus(taskID int, status analyzer.TaskStatusCode, errMessage string) {
	s.buf.UpdateTaskStatus(s.id, taskID, status, errMessage)
}

func (s *Session) DeleteTaskData(dataID string) { s.buf.DeleteTaskData(s.id, dataID) }

func (s *Session) UpdateInputData(dataID string) { s.buf.UpdateInputData(s.id, dataID) }

func (s *Session) UpdateImportData(dataID string) { s.buf.UpdateImportData(s.id, dataID) }

func (s *Session) UpdateTableData(dataID string) { s.buf.UpdateTableData(s.id, dataID) }

func (s *Session) UpdateVisualizationData(dataID string) {
	s.buf.UpdateVisualizationData(s.id, dataID)
}

func (s *Session) BeginBatchUpdate() { s.buf.BeginBatchUpdate(s.id) }

func (s *Session) EndBatchUpdate() { s.buf.EndBatchUpdate(s.id) }
