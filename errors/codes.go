package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Contract violations: the request itself is malformed.
const (
	// ErrCodeInvalidInput indicates a value has the wrong type or range.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeNotImplemented indicates an input shape no code path handles.
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
)

// Launch failures: the operating system did not create the process.
const (
	// ErrCodeLaunchFailed indicates process creation was refused.
	ErrCodeLaunchFailed ErrorCode = "LAUNCH_FAILED"
	// ErrCodeResourceExhausted indicates a transient shortage (EAGAIN, ENOMEM).
	ErrCodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"
)

// Lifecycle errors
const (
	// ErrCodeNotFound indicates no registered process has the identifier.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates a wait gave up before the process exited.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeResourceExhausted: true,
	ErrCodeTimeout:           true,
	ErrCodeLaunchFailed:      false,
	ErrCodeInternal:          false,
}

var contractCodes = map[ErrorCode]bool{
	ErrCodeInvalidInput:   true,
	ErrCodeMissingField:   true,
	ErrCodeNotImplemented: true,
}

var launchCodes = map[ErrorCode]bool{
	ErrCodeLaunchFailed:      true,
	ErrCodeResourceExhausted: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
