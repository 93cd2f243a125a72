package analyzer

import (
	"fmt"

	jerrors "github.com/juju/errors"
)

// SystemErrorKind tags structural errors detected while consuming the
// parser's output (spec.md §7 ¶1). These abort the current
// instance-builder call; name resolution and later passes never observe
// an input that failed here.
type SystemErrorKind int

const (
	SystemErrorMissingAttribute SystemErrorKind = iota
	SystemErrorUnexpectedElement
	SystemErrorUnknownNodeType
	SystemErrorInvalidStatementRoot
)

// SystemError carries the offending node id and attribute key, per
// spec.md §7.
type SystemError struct {
	Kind         SystemErrorKind
	NodeID       int32
	AttributeKey AttributeKey
	Message      string
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("system error at node %d (attr %d): %s", e.NodeID, e.AttributeKey, e.Message)
}

// wrapSystemError traces a SystemError with juju/errors, matching the
// teacher's `errors.Trace` convention at package boundaries.
func wrapSystemError(err *SystemError) error {
	return jerrors.Trace(err)
}

// NodeErrorCode is the closed set of analysis-local semantic issue codes
// (spec.md §7 ¶2).
type NodeErrorCode int

const (
	NodeErrorInvalidInput NodeErrorCode = iota
	NodeErrorInvalidValueType
	NodeErrorExpressionEvaluationFailed
)

func (c NodeErrorCode) String() string {
	switch c {
	case NodeErrorInvalidInput:
		return "InvalidInput"
	case NodeErrorInvalidValueType:
		return "InvalidValueType"
	case NodeErrorExpressionEvaluationFailed:
		return "ExpressionEvaluationFailed"
	default:
		return "Unknown"
	}
}

// NodeError is attached to the program instance; analysis continues past
// it (spec.md §7 ¶2).
type NodeError struct {
	NodeID       *int32
	ErrorCode    NodeErrorCode
	ErrorMessage string
}

// errClass mirrors the teacher's resolver error-class pattern
// (`terror.ClassOptimizer.New(code, message)`), reimplemented against
// juju/errors since the teacher's own `terror` package is not present in
// this corpus (see DESIGN.md).
type errClass struct{ name string }

func (c errClass) New(code NodeErrorCode, message string) error {
	return jerrors.Errorf("[%s:%s] %s", c.name, code, message)
}

var classAnalyzer = errClass{name: "analyzer"}

var errExpressionEvaluationFailed = classAnalyzer.New(NodeErrorExpressionEvaluationFailed, "failed to evaluate expression")
