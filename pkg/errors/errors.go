package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an ingestion failure
type Kind string

const (
	// KindNavigationTimeout means a page did not reach readiness within its budget
	KindNavigationTimeout Kind = "navigation_timeout"
	// KindSelectorMiss means no selector in a field's chain matched
	KindSelectorMiss Kind = "selector_miss"
	// KindNetwork represents HTTP or image fetch failures
	KindNetwork Kind = "network"
	// KindParse represents numeric cleaning failures
	KindParse Kind = "parse"
	// KindStorage represents CSV/JSON/DB write failures
	KindStorage Kind = "storage"
	// KindCancelled means the run's cooperative stop flag was raised
	KindCancelled Kind = "cancelled"
	// KindRateLimit means a source told us to back off
	KindRateLimit Kind = "rate_limit"
	// KindConfiguration represents configuration errors
	KindConfiguration Kind = "configuration"
)

// IngestError is the structured error every stage surfaces instead of raw
// driver or I/O errors.
type IngestError struct {
	Kind    Kind
	Source  string
	Op      string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *IngestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s %s: %s - %v", e.Kind, e.Source, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s %s: %s", e.Kind, e.Source, e.Op, e.Message)
}

// Unwrap returns the underlying error
func (e *IngestError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if a retry may succeed
func (e *IngestError) IsRetryable() bool {
	switch e.Kind {
	case KindNetwork, KindNavigationTimeout:
		return true
	default:
		return false
	}
}

// New creates a new IngestError
func New(kind Kind, source, op, message string, err error) *IngestError {
	return &IngestError{
		Kind:    kind,
		Source:  source,
		Op:      op,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigationTimeout creates a navigation timeout error
func NewNavigationTimeout(source, url string, err error) *IngestError {
	return New(KindNavigationTimeout, source, "navigate", url, err)
}

// NewSelectorMiss creates a selector miss error for a field
func NewSelectorMiss(source, field string) *IngestError {
	return New(KindSelectorMiss, source, "extract", field, nil)
}

// NewNetwork creates a network error
func NewNetwork(source, op string, err error) *IngestError {
	return New(KindNetwork, source, op, "request failed", err)
}

// NewParse creates a parse error
func NewParse(source, field, raw string) *IngestError {
	return New(KindParse, source, "clean", fmt.Sprintf("%s: %q", field, raw), nil)
}

// NewStorage creates a storage error
func NewStorage(source, op string, err error) *IngestError {
	return New(KindStorage, source, op, "write failed", err)
}

// NewCancelled creates a cancellation error
func NewCancelled(source, op string) *IngestError {
	return New(KindCancelled, source, op, "run cancelled", nil)
}

// NewRateLimit creates a rate limit error
func NewRateLimit(source string, duration time.Duration) *IngestError {
	return New(KindRateLimit, source, "fetch", fmt.Sprintf("rate limited for %v", duration), nil)
}

// NewConfiguration creates a configuration error
func NewConfiguration(message string, err error) *IngestError {
	return New(KindConfiguration, "", "config", message, err)
}

// KindOf extracts the Kind from err, or "" when err is not an IngestError.
func KindOf(err error) Kind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsCancelled reports whether err carries KindCancelled.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

// IsRetryable reports whether err is a transient ingest failure.
func IsRetryable(err error) bool {
	var ie *IngestError
	return errors.As(err, &ie) && ie.IsRetryable()
}
