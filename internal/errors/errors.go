// Package errors provides centralized error definitions and error handling utilities
// for HiveCouncil. It defines the stream-processing error taxonomy, sentinel errors,
// error constructors with context, and classification helpers.
//
// # Error Types
//
// Fatal errors drive a council session to its terminal error state:
//   - TransportError: the connection failed or dropped before completion
//   - StallError: no event arrived within the inactivity window
//   - RemoteError: the remote source reported an error event
//
// Recoverable errors are handled locally by the pipeline:
//   - ProtocolError: a malformed record, skipped without aborting the stream
//   - ConsistencyAnomaly: an ordering or accounting oddity, logged only
//
// Caller errors:
//   - InvalidConfigurationError: a session configuration violates caller-side limits
//
// # Usage
//
//	err := errors.NewTransportError("start request failed", cause).WithStatusCode(502)
//	if errors.IsRetryable(err) { ... }
//
//	var stall *errors.StallError
//	if errors.As(err, &stall) { ... }
//
// A ProtocolError wrapping ErrRecordTooLarge is the one protocol failure that is
// fatal; see IsFatal.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Stream-related sentinel errors
var (
	// ErrStreamClosed indicates the stream ended before a terminal event arrived.
	ErrStreamClosed = New("stream closed before completion")
	// ErrRecordTooLarge indicates a record exceeded the reassembly buffer limit.
	ErrRecordTooLarge = New("record exceeds maximum size")
	// ErrMalformedRecord indicates a record payload was not valid JSON.
	ErrMalformedRecord = New("malformed record")
	// ErrMissingType indicates a record payload had no event type.
	ErrMissingType = New("record has no event type")
	// ErrStalled indicates no event arrived within the inactivity window.
	ErrStalled = New("stream stalled")
)

// Session-related sentinel errors
var (
	// ErrInvalidConfiguration indicates a session configuration was rejected.
	ErrInvalidConfiguration = New("invalid session configuration")
	// ErrCanceled indicates that a session was cleared by the caller.
	ErrCanceled = New("session canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// CouncilError is the base interface for all HiveCouncil errors.
type CouncilError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and starting
	// the session again may succeed.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// Message returns the message without the cause chain.
func (e *baseError) Message() string {
	return e.message
}

// withContext renders "prefix [k=v, ...]: message: cause".
func (e *baseError) withContext(prefix string, parts []string) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Fatal Stream Errors
// -----------------------------------------------------------------------------

// TransportError represents a connection that failed or dropped before the
// session reached a terminal state.
//
// Example:
//
//	err := errors.NewTransportError("start request rejected", nil).WithStatusCode(503)
//	fmt.Println(err) // "transport error [status=503]: start request rejected"
type TransportError struct {
	baseError
	StatusCode int
	Body       string
}

// NewTransportError creates a new TransportError. Network failures are
// retryable by default.
func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithStatusCode records the HTTP-style status code. Only 5xx and 429
// responses remain retryable.
func (e *TransportError) WithStatusCode(code int) *TransportError {
	e.StatusCode = code
	e.retryable = code >= 500 || code == 429
	return e
}

// WithBody attaches a response body excerpt.
func (e *TransportError) WithBody(body string) *TransportError {
	e.Body = body
	return e
}

// Error returns the formatted error message.
func (e *TransportError) Error() string {
	var parts []string
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	msg := e.withContext("transport error", parts)
	if e.Body != "" {
		msg = fmt.Sprintf("%s\nresponse: %s", msg, e.Body)
	}
	return msg
}

// StallError represents a running session that received no event within
// the inactivity window.
//
// Example:
//
//	err := errors.NewStallError(2 * time.Minute)
//	fmt.Println(err) // "stall error: no event received (idle: 2m0s)"
type StallError struct {
	baseError
	Idle time.Duration
}

// NewStallError creates a new StallError.
func NewStallError(idle time.Duration) *StallError {
	return &StallError{
		baseError: baseError{
			message:    "no event received",
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
		Idle: idle,
	}
}

// Error returns the formatted error message.
func (e *StallError) Error() string {
	return fmt.Sprintf("stall error: %s (idle: %s)", e.message, e.Idle)
}

// Is matches ErrStalled.
func (e *StallError) Is(target error) bool {
	return target == ErrStalled
}

// RemoteError represents an error reported by the remote source itself.
type RemoteError struct {
	baseError
	Code string
}

// NewRemoteError creates a new RemoteError.
func NewRemoteError(message, code string) *RemoteError {
	if message == "" {
		message = "remote reported an error"
	}
	return &RemoteError{
		baseError: baseError{
			message:    message,
			severity:   SeverityError,
			userFacing: true,
		},
		Code: code,
	}
}

// Error returns the formatted error message.
func (e *RemoteError) Error() string {
	var parts []string
	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}
	return e.withContext("remote error", parts)
}

// -----------------------------------------------------------------------------
// Recoverable Errors
// -----------------------------------------------------------------------------

// ProtocolError represents a record that could not be decoded. The pipeline
// drops the record and continues, unless the cause is ErrRecordTooLarge.
//
// Example:
//
//	err := errors.NewProtocolError(errors.ErrMalformedRecord).WithLine(12).WithRecord(`{"type":`)
type ProtocolError struct {
	baseError
	Line   int
	Record string
}

// maxRecordExcerpt bounds how much of a bad record is kept in the error.
const maxRecordExcerpt = 120

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(cause error) *ProtocolError {
	return &ProtocolError{
		baseError: baseError{
			message:    "bad record",
			cause:      cause,
			severity:   SeverityWarning,
			userFacing: false,
		},
	}
}

// WithLine records the line number at which the record ended.
func (e *ProtocolError) WithLine(line int) *ProtocolError {
	e.Line = line
	return e
}

// WithRecord keeps a bounded excerpt of the offending record.
func (e *ProtocolError) WithRecord(record string) *ProtocolError {
	if len(record) > maxRecordExcerpt {
		record = record[:maxRecordExcerpt] + "..."
	}
	e.Record = record
	return e
}

// Error returns the formatted error message.
func (e *ProtocolError) Error() string {
	var parts []string
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line=%d", e.Line))
	}
	return e.withContext("protocol error", parts)
}

// ConsistencyAnomaly records a non-fatal protocol oddity such as an iteration
// regression or an event arriving after the session ended.
type ConsistencyAnomaly struct {
	baseError
	Kind      string
	EventType string
}

// NewConsistencyAnomaly creates a new ConsistencyAnomaly.
func NewConsistencyAnomaly(kind, eventType, detail string) *ConsistencyAnomaly {
	return &ConsistencyAnomaly{
		baseError: baseError{
			message:  detail,
			severity: SeverityWarning,
		},
		Kind:      kind,
		EventType: eventType,
	}
}

// Error returns the formatted error message.
func (e *ConsistencyAnomaly) Error() string {
	parts := []string{fmt.Sprintf("kind=%s", e.Kind)}
	if e.EventType != "" {
		parts = append(parts, fmt.Sprintf("event=%s", e.EventType))
	}
	return e.withContext("consistency anomaly", parts)
}

// -----------------------------------------------------------------------------
// Caller Errors
// -----------------------------------------------------------------------------

// FieldProblem describes one rejected configuration field.
type FieldProblem struct {
	Field   string
	Value   any
	Message string
}

func (p FieldProblem) String() string {
	if p.Value == nil {
		return fmt.Sprintf("%s: %s", p.Field, p.Message)
	}
	return fmt.Sprintf("%s: %s (got: %v)", p.Field, p.Message, p.Value)
}

// InvalidConfigurationError reports every field of a session configuration
// that violates caller-side limits.
//
// Example:
//
//	err := errors.NewInvalidConfigurationError(errors.FieldProblem{Field: "iterations", Value: 0, Message: "must be at least 1"})
type InvalidConfigurationError struct {
	baseError
	Problems []FieldProblem
}

// NewInvalidConfigurationError creates a new InvalidConfigurationError.
func NewInvalidConfigurationError(problems ...FieldProblem) *InvalidConfigurationError {
	return &InvalidConfigurationError{
		baseError: baseError{
			message:    "invalid session configuration",
			cause:      ErrInvalidConfiguration,
			severity:   SeverityWarning,
			userFacing: true,
		},
		Problems: problems,
	}
}

// Error returns the formatted error message.
func (e *InvalidConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", e.message, e.Problems[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d problems:", e.message, len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, p)
	}
	return sb.String()
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed if the session is started again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var councilErr CouncilError
	if As(err, &councilErr) {
		return councilErr.IsRetryable()
	}

	return Is(err, ErrStalled)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var councilErr CouncilError
	if As(err, &councilErr) {
		return councilErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement CouncilError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var councilErr CouncilError
	if As(err, &councilErr) {
		return councilErr.Severity()
	}

	return SeverityError
}

// IsFatal reports whether err must drive a session to the error state.
// Transport, stall and remote errors are fatal, as is an oversized record.
// Other protocol errors and anomalies are recovered locally.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var transport *TransportError
	var stall *StallError
	var remote *RemoteError
	if As(err, &transport) || As(err, &stall) || As(err, &remote) {
		return true
	}

	var protocol *ProtocolError
	if As(err, &protocol) {
		return Is(err, ErrRecordTooLarge)
	}

	var anomaly *ConsistencyAnomaly
	if As(err, &anomaly) {
		return false
	}

	return !Is(err, ErrCanceled)
}

// Code returns a short machine-readable classification for err, used as the
// error code on locally synthesized error events.
func Code(err error) string {
	var transport *TransportError
	var stall *StallError
	var remote *RemoteError
	var protocol *ProtocolError
	switch {
	case err == nil:
		return ""
	case As(err, &remote):
		if remote.Code != "" {
			return remote.Code
		}
		return "remote"
	case As(err, &stall):
		return "stalled"
	case As(err, &transport):
		return "transport"
	case As(err, &protocol):
		return "protocol"
	case Is(err, ErrCanceled):
		return "canceled"
	default:
		return "internal"
	}
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to open stream")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
