package generator

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the kind of generation failure. Callers branch on it
// to decide whether a retry makes sense.
type ErrorCode string

const (
	CodeTemplateUnavailable  ErrorCode = "TEMPLATE_UNAVAILABLE"
	CodeUnknownPlaceholder   ErrorCode = "UNKNOWN_PLACEHOLDER"
	CodeMissingBinding       ErrorCode = "MISSING_BINDING"
	CodeBuildToolFailure     ErrorCode = "BUILD_TOOL_FAILURE"
	CodeArtifactWriteFailure ErrorCode = "ARTIFACT_WRITE_FAILURE"
	CodeInvalidOrder         ErrorCode = "INVALID_ORDER"
)

// Error is the single error type produced by the pipeline components.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool

	// ExitCode and Diagnostics are set for CodeBuildToolFailure. ExitCode is
	// -1 when the tool never started or was killed.
	ExitCode    int
	Diagnostics string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, so errors.Is(err, &Error{Code: ...}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Code
	}
	return ""
}

// IsRetryable reports whether err is a generation failure worth retrying.
func IsRetryable(err error) bool {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Retryable
	}
	return false
}

func templateUnavailable(kind Kind, err error) *Error {
	return &Error{
		Code:    CodeTemplateUnavailable,
		Message: fmt.Sprintf("%s template could not be read", kind),
		Err:     err,
	}
}

func unknownPlaceholder(kind Kind, name string) *Error {
	return &Error{
		Code:    CodeUnknownPlaceholder,
		Message: fmt.Sprintf("%s template contains unknown placeholder {{%s}}", kind, name),
	}
}

func missingBinding(kind Kind, token Token) *Error {
	return &Error{
		Code:    CodeMissingBinding,
		Message: fmt.Sprintf("%s template requires {{%s}} but no value is bound", kind, token),
	}
}

func buildToolFailure(tool string, exitCode int, diagnostics string, err error) *Error {
	return &Error{
		Code:        CodeBuildToolFailure,
		Message:     fmt.Sprintf("%s compiler failed with exit code %d", tool, exitCode),
		Retryable:   true,
		ExitCode:    exitCode,
		Diagnostics: diagnostics,
		Err:         err,
	}
}

func artifactWriteFailure(message string, err error) *Error {
	return &Error{
		Code:      CodeArtifactWriteFailure,
		Message:   message,
		Retryable: true,
		Err:       err,
	}
}

// ArtifactWriteFailure wraps a storage error for ArtifactStore implementations
// living outside this package.
func ArtifactWriteFailure(message string, err error) error {
	return artifactWriteFailure(message, err)
}
