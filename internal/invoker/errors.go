package invoker

import "errors"

var (
	// ErrTimeout means the model process outlived its wall-clock budget
	// and was killed.
	ErrTimeout = errors.New("model invocation timed out")

	// ErrExecutionFailed means the model process could not be started or
	// exited with a non-zero status.
	ErrExecutionFailed = errors.New("model invocation failed")
)
