package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidSpan         = errors.New("invalid span")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrPipelineFailure     = errors.New("pipeline execution failed")
	ErrCancelled           = errors.New("execution cancelled")
)
