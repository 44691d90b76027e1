// Package errors provides the error types used across pcsplit. It defines
// sentinel errors, domain error types that carry the record and field that
// caused them, and classification helpers.
//
// # Error Types
//
// Domain-specific errors:
//   - InputError: a malformed input file (roster, submissions, institutions, listings)
//   - CrossReferenceError: a record points at something that does not exist,
//     such as a declared conflict email missing from the roster
//   - PartitionError: a partition violates a group invariant
//
// Semantic errors:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//
// # Usage
//
//	err := errors.NewCrossReferenceError("declared conflict not on roster", errors.ErrMemberNotFound).
//		WithRecord("paper 17").WithField("pc_conflicts").WithKey("someone@example.org")
//
//	if errors.Is(err, errors.ErrMemberNotFound) { ... }
//
//	var xref *errors.CrossReferenceError
//	if errors.As(err, &xref) { ... }
//
// Names that fail to resolve against the institution registry are not
// errors and never produce one of these types.
package errors

import (
	"errors"
	"fmt"
	"strings"
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
	// SeverityCritical is for errors that invalidate the whole run.
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

// Input sentinel errors
var (
	// ErrMissingColumn indicates a required CSV column is absent.
	ErrMissingColumn = New("missing column")
	// ErrMalformedRecord indicates a record could not be parsed.
	ErrMalformedRecord = New("malformed record")
	// ErrEmptyInput indicates an input file holds no records.
	ErrEmptyInput = New("empty input")
)

// Cross-reference sentinel errors
var (
	// ErrMemberNotFound indicates a committee member could not be found.
	ErrMemberNotFound = New("member not found")
	// ErrPaperNotFound indicates a paper could not be found.
	ErrPaperNotFound = New("paper not found")
)

// Partition sentinel errors
var (
	// ErrTagMismatch indicates a member sits in a group its tags forbid.
	ErrTagMismatch = New("member tag does not allow group")
	// ErrMemberMissing indicates a primary committee member is in neither group.
	ErrMemberMissing = New("member missing from both groups")
	// ErrUnknownStrategy indicates an unsupported partitioning strategy.
	ErrUnknownStrategy = New("unknown partition strategy")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PcsplitError is the base interface for all pcsplit errors.
type PcsplitError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
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

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// InputError represents a problem reading one of the input files.
//
// Example:
//
//	err := errors.NewInputError("roster header", errors.ErrMissingColumn).
//		WithFile("pc.csv").WithField("email")
//	fmt.Println(err) // "input error [file=pc.csv, field=email]: roster header: missing column"
type InputError struct {
	baseError
	File  string
	Line  int // 1-based; 0 when unknown
	Field string
}

// NewInputError creates a new InputError.
func NewInputError(message string, cause error) *InputError {
	return &InputError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithFile adds the file path to the error context.
func (e *InputError) WithFile(path string) *InputError {
	e.File = path
	return e
}

// WithLine adds the line or record number to the error context.
func (e *InputError) WithLine(line int) *InputError {
	e.Line = line
	return e
}

// WithField adds the offending field or column.
func (e *InputError) WithField(field string) *InputError {
	e.Field = field
	return e
}

// Error returns the formatted error message.
func (e *InputError) Error() string {
	var parts []string
	if e.File != "" {
		parts = append(parts, fmt.Sprintf("file=%s", e.File))
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line=%d", e.Line))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	return e.format("input error", parts)
}

// Is checks if this error matches the target.
func (e *InputError) Is(target error) bool {
	if _, ok := target.(*InputError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// CrossReferenceError represents a record that refers to something absent.
// These errors abort the run: continuing would produce conflict data that
// silently disagrees with the inputs.
//
// Example:
//
//	err := errors.NewCrossReferenceError("declared conflict not on roster", errors.ErrMemberNotFound).
//		WithRecord("paper 17").WithField("pc_conflicts").WithKey("x@example.org")
type CrossReferenceError struct {
	baseError
	Record string
	Field  string
	Key    string
}

// NewCrossReferenceError creates a new CrossReferenceError.
func NewCrossReferenceError(message string, cause error) *CrossReferenceError {
	return &CrossReferenceError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			userFacing: true,
		},
	}
}

// WithRecord names the record holding the reference.
func (e *CrossReferenceError) WithRecord(record string) *CrossReferenceError {
	e.Record = record
	return e
}

// WithField names the field holding the reference.
func (e *CrossReferenceError) WithField(field string) *CrossReferenceError {
	e.Field = field
	return e
}

// WithKey records the value that failed to resolve.
func (e *CrossReferenceError) WithKey(key string) *CrossReferenceError {
	e.Key = key
	return e
}

// Error returns the formatted error message.
func (e *CrossReferenceError) Error() string {
	var parts []string
	if e.Record != "" {
		parts = append(parts, fmt.Sprintf("record=%s", e.Record))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}
	return e.format("cross-reference error", parts)
}

// Is checks if this error matches the target.
func (e *CrossReferenceError) Is(target error) bool {
	if _, ok := target.(*CrossReferenceError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PartitionError represents a partition that breaks a group invariant.
//
// Example:
//
//	err := errors.NewPartitionError("verify friday group", errors.ErrTagMismatch).
//		WithDay("friday").WithMember("JANE DOE")
type PartitionError struct {
	baseError
	Day    string
	Member string
}

// NewPartitionError creates a new PartitionError.
func NewPartitionError(message string, cause error) *PartitionError {
	return &PartitionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithDay adds the session day to the error context.
func (e *PartitionError) WithDay(day string) *PartitionError {
	e.Day = day
	return e
}

// WithMember adds the offending member to the error context.
func (e *PartitionError) WithMember(name string) *PartitionError {
	e.Member = name
	return e
}

// Error returns the formatted error message.
func (e *PartitionError) Error() string {
	var parts []string
	if e.Day != "" {
		parts = append(parts, fmt.Sprintf("day=%s", e.Day))
	}
	if e.Member != "" {
		parts = append(parts, fmt.Sprintf("member=%s", e.Member))
	}
	return e.format("partition error", parts)
}

// Is checks if this error matches the target.
func (e *PartitionError) Is(target error) bool {
	if _, ok := target.(*PartitionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("member", "JANE DOE")
//	fmt.Println(err) // "member 'JANE DOE' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("trials must be positive").WithField("partition.member_trials").WithValue(0)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var pcErr PcsplitError
	if As(err, &pcErr) {
		return pcErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PcsplitError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var pcErr PcsplitError
	if As(err, &pcErr) {
		return pcErr.Severity()
	}
	return SeverityError
}

// IsFatal reports whether err must stop the run. Cross-reference failures
// are always fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var xref *CrossReferenceError
	if As(err, &xref) {
		return true
	}
	return GetSeverity(err) >= SeverityCritical
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this preserves the PcsplitError interface.
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
