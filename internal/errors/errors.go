// Package errors defines the typed ErrorKind taxonomy of spec.md §7:
// recoverable per-file errors (logged and skipped), recoverable
// per-operation errors (returned with a warning attached), and surfaced
// errors (returned to the caller as a stable, typed value).
package errors

import (
	"fmt"
	"time"
)

// ErrorKind is the stable string tag every surfaced error carries.
type ErrorKind string

const (
	// Surfaced errors (spec.md §7).
	KindProjectNotFound    ErrorKind = "project_not_found"
	KindPermissionDenied   ErrorKind = "permission_denied"
	KindCacheCorrupt       ErrorKind = "cache_corrupt"
	KindInvalidQuery       ErrorKind = "invalid_query"
	KindIndexNotReady      ErrorKind = "index_not_ready"
	KindUnknownFile        ErrorKind = "unknown_file"

	// Recoverable, per-file errors (counted, not surfaced as failures).
	KindParseFailure       ErrorKind = "parse_failure"
	KindUnsupportedLang    ErrorKind = "unsupported_language"
	KindFileTooLarge       ErrorKind = "file_too_large"
	KindReadError          ErrorKind = "read_error"
	KindExtractionTimeout  ErrorKind = "extraction_timeout"

	// Recoverable, per-operation errors (result carries a Warning).
	KindCentralityNonConverged ErrorKind = "centrality_non_converged"
	KindEmbeddingModelLoad     ErrorKind = "embedding_model_load_failed"
)

// Error is the core's stable surfaced-error type. It carries the offending
// input and a human-readable message, per spec.md §7's propagation policy.
type Error struct {
	Kind       ErrorKind
	Input      string
	Message    string
	Underlying error
	At         time.Time
}

// New constructs a surfaced Error.
func New(kind ErrorKind, input, message string, underlying error) *Error {
	return &Error{Kind: kind, Input: input, Message: message, Underlying: underlying, At: time.Now()}
}

func (e *Error) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Message, e.Input, e.Underlying)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
}

func (e *Error) Unwrap() error { return e.Underlying }

// Is allows errors.Is(err, errors.New(kind, "", "", nil)) style matching on
// Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// FileFailure records one recoverable per-file failure for an indexing
// summary; it is never returned to the caller as an operation error.
type FileFailure struct {
	FilePath string
	Kind     ErrorKind
	Message  string
}

func (f FileFailure) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.FilePath, f.Message, f.Kind)
}

// Warning is attached to a partial result (spec.md §7 "recoverable,
// per-operation").
type Warning struct {
	Kind    ErrorKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// MultiError aggregates independent failures (e.g. per-language setup
// failures at extractor construction time) into one error value.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(m.Errors), m.Errors)
}

func (m *MultiError) Unwrap() []error { return m.Errors }
