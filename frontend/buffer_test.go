package frontend

import (
	"testing"

	"github.com/boardscript/analyzer/analyzer"
	"github.com/stretchr/testify/assert"
)

// recordingChannel records the order and arguments of every Channel call it
// receives, so tests can assert on delivery order and batch framing.
type recordingChannel struct {
	calls []string
}

func (c *recordingChannel) UpdateProgram(sessionID string, _ []byte) {
	c.calls = append(c.calls, "UpdateProgram:"+sessionID)
}
func (c *recordingChannel) UpdateProgramAnalysis(sessionID string, _ interface{}) {
	c.calls = append(c.calls, "UpdateProgramAnalysis:"+sessionID)
}
func (c *recordingChannel) UpdateTaskGraph(sessionID string, _ []byte) {
	c.calls = append(c.calls, "UpdateTaskGraph:"+sessionID)
}
func (c *recordingChannel) UpdateTaskStatus(sessionID string, taskID int, status analyzer.TaskStatusCode, _ string) {
	c.calls = append(c.calls, "UpdateTaskStatus:"+sessionID+":"+status.String())
	_ = taskID
}
func (c *recordingChannel) DeleteTaskData(sessionID string, _ string) {
	c.calls = append(c.calls, "DeleteTaskData:"+sessionID)
}
func (c *recordingChannel) UpdateInputData(sessionID string, _ string) {
	c.calls = append(c.calls, "UpdateInputData:"+sessionID)
}
func (c *recordingChannel) UpdateImportData(sessionID string, _ string) {
	c.calls = append(c.calls, "UpdateImportData:"+sessionID)
}
func (c *recordingChannel) UpdateTableData(sessionID string, _ string) {
	c.calls = append(c.calls, "UpdateTableData:"+sessionID)
}
func (c *recordingChannel) UpdateVisualizationData(sessionID string, _ string) {
	c.calls = append(c.calls, "UpdateVisualizationData:"+sessionID)
}
func (c *recordingChannel) BeginBatchUpdate(sessionID string) {
	c.calls = append(c.calls, "BeginBatchUpdate:"+sessionID)
}
func (c *recordingChannel) EndBatchUpdate(sessionID string) {
	c.calls = append(c.calls, "EndBatchUpdate:"+sessionID)
}

func TestUpdateBufferFlushDeliversInOrder(t *testing.T) {
	buf := NewUpdateBuffer()
	buf.UpdateProgram("s1", []byte("ast"))
	buf.UpdateTaskGraph("s1", []byte("graph"))
	buf.UpdateTaskStatus("s1", 0, analyzer.TaskStatusCompleted, "")

	ch := &recordingChannel{}
	buf.Flush(ch)

	assert.Equal(t, []string{
		"UpdateProgram:s1",
		"UpdateTaskGraph:s1",
		"UpdateTaskStatus:s1:Completed",
	}, ch.calls)
}

func TestUpdateBufferFlushIsEmptyAfterDraining(t *testing.T) {
	buf := NewUpdateBuffer()
	buf.UpdateProgram("s1", nil)

	first := &recordingChannel{}
	buf.Flush(first)
	assert.Len(t, first.calls, 1)

	second := &recordingChannel{}
	buf.Flush(second)
	assert.Empty(t, second.calls, "a second flush with nothing queued delivers nothing")
}

// TestUpdateBufferFlushSynthesizesEndBatchUpdate covers spec.md §6.5: a
// flush that began a batch but never closed it still emits a matching
// EndBatchUpdate so the host never observes an unterminated batch.
func TestUpdateBufferFlushSynthesizesEndBatchUpdate(t *testing.T) {
	buf := NewUpdateBuffer()
	buf.BeginBatchUpdate("s1")
	buf.UpdateProgram("s1", nil)

	ch := &recordingChannel{}
	buf.Flush(ch)

	assert.Equal(t, []string{
		"BeginBatchUpdate:s1",
		"UpdateProgram:s1",
		"EndBatchUpdate:s1",
	}, ch.calls)
}

// TestUpdateBufferFlushHonorsExplicitEndBatchUpdate confirms the synthesized
// marker is skipped once the caller already closed the batch itself.
func TestUpdateBufferFlushHonorsExplicitEndBatchUpdate(t *testing.T) {
	buf := NewUpdateBuffer()
	buf.BeginBatchUpdate("s1")
	buf.UpdateProgram("s1", nil)
	buf.EndBatchUpdate("s1")

	ch := &recordingChannel{}
	buf.Flush(ch)

	assert.Equal(t, []string{
		"BeginBatchUpdate:s1",
		"UpdateProgram:s1",
		"EndBatchUpdate:s1",
	}, ch.calls)
}

func TestSessionBindsSessionID(t *testing.T) {
	s := NewSession("abc")
	s.UpdateProgram([]byte("x"))
	s.UpdateTaskStatus(3, analyzer.TaskStatusFailed, "boom")

	ch := &recordingChannel{}
	s.Flush(ch)

	assert.Equal(t, []string{
		"UpdateProgram:abc",
		"UpdateTaskStatus:abc:Failed",
	}, ch.calls)
}
