package frontend

import (
	"github.com/boardscript/analyzer/analyzer"
	"github.com/boardscript/analyzer/logging"
)

// LoggingChannel renders every update as a log line through the package
// logging loggers: info level for most updates, error level for a task
// status carrying an error message, and debug level for batch begin/end
// markers. It is the default
// Channel for CLI use, matching the teacher's habit of logging everything
// the server does rather than silently dropping it.
type LoggingChannel struct{}

func (LoggingChannel) UpdateProgram(sessionID string, astBytes []byte) {
	logging.Infof("[%s] program updated (%d bytes)", sessionID, len(astBytes))
}

func (LoggingChannel) UpdateProgramAnalysis(sessionID string, analysis interface{}) {
	logging.Infof("[%s] program analysis updated", sessionID)
}

func (LoggingChannel) UpdateTaskGraph(sessionID string, graphJSON []byte) {
	logging.Infof("[%s] task graph updated (%d bytes)", sessionID, len(graphJSON))
}

func (LoggingChannel) UpdateTaskStatus(sessionID string, taskID int, status analyzer.TaskStatusCode, errMessage string) {
	if errMessage != "" {
		logging.Errorf("[%s] task %d -> %s: %s", sessionID, taskID, status, errMessage)
		return
	}
	logging.Infof("[%s] task %d -> %s", sessionID, taskID, status)
}

func (LoggingChannel) DeleteTaskData(sessionID string, dataID string) {
	logging.Infof("[%s] task data %s deleted", sessionID, dataID)
}

func (LoggingChannel) UpdateInputData(sessionID string, dataID string) {
	logging.Infof("[%s] input data %s updated", sessionID, dataID)
}

func (LoggingChannel) UpdateImportData(sessionID string, dataID string) {
	logging.Infof("[%s] import data %s updated", sessionID, dataID)
}

func (LoggingChannel) UpdateTableData(sessionID string, dataID string) {
	logging.Infof("[%s] table data %s updated", sessionID, dataID)
}

func (LoggingChannel) UpdateVisualizationData(sessionID string, dataID string) {
	logging.Infof("[%s] visualization data %s updated", sessionID, dataID)
}

func (LoggingChannel) BeginBatchUpdate(sessionID string) {
	logging.Debugf("[%s] batch update begin", sessionID)
}

func (LoggingChannel) EndBatchUpdate(sessionID string) {
	logging.Debugf("[%s] batch update end", sessionID)
}
