package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeAuthentication ErrorType = "Authentication"
	ErrorTypeBackend        ErrorType = "Backend"
	ErrorTypeConfiguration  ErrorType = "Configuration"
	ErrorTypeFileSystem     ErrorType = "FileSystem"
	ErrorTypeNetwork        ErrorType = "Network"
	ErrorTypeRateLimit      ErrorType = "RateLimit"
	ErrorTypeValidation     ErrorType = "Validation"
)

// Fallback messages shown when the backend gives nothing better
const (
	MessageNetwork        = "Network error: please check your connection"
	MessageBackend        = "Something went wrong. Please try again later."
	MessageRateLimited    = "Too many requests. Please wait a moment and try again."
	MessageSessionExpired = "Your session has expired. Please log in again."
	MessageInvalidFile    = "Invalid collection file format"
)

// DriftError represents a user-facing error with actionable guidance
type DriftError struct {
	Type       ErrorType
	Message    string
	Cause      string
	StatusCode int
	Solutions  []string
	Help       string
	Err        error
}

// Error implements the error interface
func (e *DriftError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != "" {
		sb.WriteString(fmt.Sprintf(" (cause: %s)", e.Cause))
	}

	return sb.String()
}

// Unwrap exposes the underlying error to errors.Is and errors.As
func (e *DriftError) Unwrap() error {
	return e.Err
}

// Format implements fmt.Formatter for custom formatting
func (e *DriftError) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprintf(f, "%s", e.Error())
	case 'v':
		if f.Flag('+') {
			if e.StatusCode > 0 {
				fmt.Fprintf(f, "[%s/%d] %s", e.Type, e.StatusCode, e.Error())
			} else {
				fmt.Fprintf(f, "[%s] %s", e.Type, e.Error())
			}
		} else {
			fmt.Fprintf(f, "%s", e.Error())
		}
	case 'q':
		fmt.Fprintf(f, "%q", e.Error())
	}
}

// New creates a new DriftError
func New(errType ErrorType, message string) *DriftError {
	return &DriftError{
		Type:    errType,
		Message: message,
	}
}

// WithCause adds cause information
func (e *DriftError) WithCause(cause string) *DriftError {
	e.Cause = cause
	return e
}

// WithStatus records the HTTP status that produced the error
func (e *DriftError) WithStatus(code int) *DriftError {
	e.StatusCode = code
	return e
}

// WithSolutions adds solution steps
func (e *DriftError) WithSolutions(solutions ...string) *DriftError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithHelp adds help command
func (e *DriftError) WithHelp(help string) *DriftError {
	e.Help = help
	return e
}

// Wrap attaches the underlying error
func (e *DriftError) Wrap(err error) *DriftError {
	e.Err = err
	return e
}

// NetworkError reports a transport-level failure reaching the backend
func NetworkError(err error) *DriftError {
	e := New(ErrorTypeNetwork, MessageNetwork).Wrap(err)
	if err != nil {
		e.WithCause(err.Error())
	}
	return e.WithSolutions(
		"Check that the backend is reachable",
		"Verify api.base_url in your configuration",
	).WithHelp("apidrift health")
}

// AuthenticationError reports a rejected or expired credential
func AuthenticationError() *DriftError {
	return New(ErrorTypeAuthentication, MessageSessionExpired).
		WithStatus(401).
		WithHelp("apidrift auth login")
}

// ValidationError reports input rejected before it reached the backend
func ValidationError(message string) *DriftError {
	return New(ErrorTypeValidation, message)
}

// BackendError reports a non-2xx response. An empty message falls back to
// the static text.
func BackendError(status int, message string) *DriftError {
	if strings.TrimSpace(message) == "" {
		message = MessageBackend
	}
	return New(ErrorTypeBackend, message).WithStatus(status)
}

// RateLimitError reports a 429 that survived the single retry
func RateLimitError() *DriftError {
	return New(ErrorTypeRateLimit, MessageRateLimited).WithStatus(429)
}

// ConfigurationError reports an invalid local setting
func ConfigurationError(message string, err error) *DriftError {
	e := New(ErrorTypeConfiguration, message).Wrap(err)
	if err != nil {
		e.WithCause(err.Error())
	}
	return e.WithHelp("apidrift --help")
}

// FileSystemError reports a local file that could not be read or written
func FileSystemError(path string, err error) *DriftError {
	e := New(ErrorTypeFileSystem, fmt.Sprintf("Cannot access %s", path)).Wrap(err)
	if err != nil {
		e.WithCause(err.Error())
	}
	return e
}

// As returns the DriftError in err's chain, if any
func As(err error) (*DriftError, bool) {
	var de *DriftError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsType reports whether err carries a DriftError of the given type
func IsType(err error, errType ErrorType) bool {
	de, ok := As(err)
	return ok && de.Type == errType
}

// IsUserError checks if error requires user action
func IsUserError(err error) bool {
	_, ok := As(err)
	return ok
}

// UserMessage returns the text a user should see for err. Authentication
// failures are silent apart from sending the user back to login.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	de, ok := As(err)
	if !ok {
		return MessageBackend
	}
	switch de.Type {
	case ErrorTypeNetwork:
		return MessageNetwork
	case ErrorTypeAuthentication:
		return ""
	default:
		return de.Message
	}
}

// GetExitCode returns appropriate exit code for error type
func GetExitCode(err error) int {
	de, ok := As(err)
	if !ok {
		return 1
	}

	switch de.Type {
	case ErrorTypeAuthentication:
		return 77 // EX_NOPERM
	case ErrorTypeConfiguration:
		return 78 // EX_CONFIG
	case ErrorTypeFileSystem:
		return 66 // EX_NOINPUT
	case ErrorTypeNetwork, ErrorTypeRateLimit:
		return 69 // EX_UNAVAILABLE
	case ErrorTypeValidation:
		return 65 // EX_DATAERR
	default:
		return 1
	}
}
