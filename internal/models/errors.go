package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the resource-admin interfaces when the target of
// a read or corrective action does not exist (no bucket policy, no public
// access block configuration, no matching ingress permission). Remediation
// treats it as "already in the desired state".
var ErrNotFound = errors.New("not found")

// ErrorKind classifies a failure inside a single invocation.
type ErrorKind string

const (
	// KindUnroutable: the envelope matches no known rule. Not a failure.
	KindUnroutable ErrorKind = "UNROUTABLE"
	// KindMalformed: a required envelope field is absent or has the wrong shape.
	KindMalformed ErrorKind = "MALFORMED_PARAMETERS"
	// KindAdminFailure: a resource-admin call failed (network, permission,
	// throttling).
	KindAdminFailure ErrorKind = "RESOURCE_ADMIN_FAILURE"
	// KindEvaluationFailure: a live compliance query could not be completed.
	KindEvaluationFailure ErrorKind = "EVALUATION_FAILURE"
	// KindReportFailure: the compliance sink rejected or failed the submission.
	KindReportFailure ErrorKind = "REPORT_FAILURE"
)

// Error is a classified error. Op names the operation that failed
// (e.g. "delete bucket policy"), Err is the underlying cause.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Malformed returns a KindMalformed error for a missing or ill-shaped field.
func Malformed(op, format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Op: op, Message: fmt.Sprintf(format, args...)}
}

// AdminFailure wraps a resource-admin error.
func AdminFailure(op string, err error) *Error {
	return &Error{Kind: KindAdminFailure, Op: op, Err: err}
}

// EvaluationFailure wraps a failed live compliance query.
func EvaluationFailure(op string, err error) *Error {
	return &Error{Kind: KindEvaluationFailure, Op: op, Err: err}
}

// ReportFailure wraps a failed compliance sink submission.
func ReportFailure(op string, err error) *Error {
	return &Error{Kind: KindReportFailure, Op: op, Err: err}
}

// KindOf returns the ErrorKind of err, or "" when err is not classified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
