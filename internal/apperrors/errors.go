// Package apperrors provides the structured error type used throughout
// routecore.
package apperrors

import (
	"errors"
	"fmt"
)

// Category groups errors by the subsystem that raised them, so a caller can
// route or log on it without string-matching Error().
type Category string

// The categories below are exactly the ones routecore's call sites raise;
// add one here only once something in the tree actually needs it.
const (
	// CategoryConfig covers config validation and cost-table file
	// load/parse failures (internal/config, internal/watchcfg).
	CategoryConfig Category = "config"
	// CategoryRegistry covers handler-registration failures, such as two
	// handlers declaring the same name (internal/registry).
	CategoryRegistry Category = "registry"
	// CategoryCache covers reading or writing the persisted format cache
	// (internal/cachefile).
	CategoryCache Category = "cache"
	// CategoryHandlerInit covers a handler's Init call failing mid-path
	// (internal/executor).
	CategoryHandlerInit Category = "handler_init"
	// CategoryConvert covers a handler's DoConvert call, or the executor's
	// bookkeeping around it, failing (internal/executor, internal/handler/*).
	CategoryConvert Category = "convert"
	// CategoryTransient marks a failure the caller may reasonably retry,
	// independent of which subsystem raised it.
	CategoryTransient Category = "transient"
)

// RoutingError carries a category, the operation that failed, and the
// underlying cause, so logs can group on Category without parsing strings.
type RoutingError struct {
	Category  Category
	Op        string
	Err       error
	Retryable bool
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *RoutingError) Unwrap() error { return e.Err }

// New builds a RoutingError that IsRetryable reports false for.
func New(category Category, op string, err error) *RoutingError {
	return &RoutingError{Category: category, Op: op, Err: err}
}

// Transient builds a RoutingError categorized as CategoryTransient and
// marked retryable, for failures like a flaky network call to S3.
func Transient(op string, err error) *RoutingError {
	return &RoutingError{Category: CategoryTransient, Op: op, Err: err, Retryable: true}
}

// Wrap is New, except it passes nil through unchanged so call sites can
// write `return apperrors.Wrap(cat, op, err)` without an extra nil check.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// IsRetryable reports whether err is a RoutingError marked retryable.
func IsRetryable(err error) bool {
	var re *RoutingError
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// IsCategory reports whether err is a RoutingError in the given category.
func IsCategory(err error, cat Category) bool {
	var re *RoutingError
	if errors.As(err, &re) {
		return re.Category == cat
	}
	return false
}

// Sentinel causes wrapped by the RoutingError raised at their one call site.
var (
	// ErrDuplicateHandler: registry.Build saw two handlers with the same Name().
	ErrDuplicateHandler = errors.New("duplicate handler name")
	// ErrInputFormatMissing: a path hop's handler no longer declares the
	// input format the previous hop produced.
	ErrInputFormatMissing = errors.New("source format not declared by handler")
	// ErrEmptyOutput: a handler's DoConvert returned files with no bytes.
	ErrEmptyOutput = errors.New("handler produced empty output")
	// ErrHandlerPanic: a handler's DoConvert panicked instead of returning
	// an error, and the panic value was not itself an error.
	ErrHandlerPanic = errors.New("handler panicked during doConvert")
)
