// Package cerr implements the compositor's error taxonomy (spec §7): a
// small set of categories, each fatal except Cleanup, with a diagnostic
// message attached. It intentionally stays much smaller than a
// general-purpose structured-error package (compare the web-framework
// example's internal/errors, which carries source locations and doc
// links for a compiler-facing audience) because spec §7 calls for plain
// diagnostic lines on stderr, not actionable multi-line reports: there is
// no "suggestion" or "learn more" audience here, only an operator reading
// a crash log.
package cerr

import "fmt"

// Category names one of the seven error classes from spec §7.
type Category string

const (
	// CategoryConnect covers connection and authentication-handshake failure.
	CategoryConnect Category = "connect"
	// CategoryExtension covers a missing or version-incompatible extension.
	CategoryExtension Category = "extension"
	// CategoryReplyShape covers a reply arriving where an event/error was
	// expected, or vice versa (stream desync).
	CategoryReplyShape Category = "reply_shape"
	// CategoryBufferOverflow covers a reply larger than the read buffer.
	CategoryBufferOverflow Category = "buffer_overflow"
	// CategoryServerError covers a verbatim X protocol error event.
	CategoryServerError Category = "server_error"
	// CategoryModelInconsistency covers an event referencing state the
	// scene model does not have (e.g. configure for an unknown window).
	CategoryModelInconsistency Category = "model_inconsistency"
	// CategoryCleanup covers a failure during best-effort shutdown cleanup;
	// the only category that is logged, not fatal.
	CategoryCleanup Category = "cleanup"
)

// Fatal reports whether an error in this category terminates the process.
// Only Cleanup is non-fatal (spec §7.7: "logged only").
func (c Category) Fatal() bool {
	return c != CategoryCleanup
}

// Error is a categorized compositor error.
type Error struct {
	Category Category
	Message  string
	Err      error // wrapped cause, if any
}

// New creates a categorized error with a formatted message.
func New(cat Category, format string, args ...any) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a categorized error wrapping an underlying cause.
func Wrap(cat Category, err error, format string, args ...any) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for a top-level error. A nil
// error (clean, server-initiated shutdown) exits 0; any categorized or
// uncategorized error exits 1 (spec §7: "non-zero on any unrecovered
// error" — the taxonomy distinguishes categories for diagnostics, not for
// choosing among multiple failure exit codes).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
