package renderer

import "errors"

var (
	ErrInvalidSamples    = errors.New("renderer: samples per pixel must be at least 1")
	ErrInvalidThreads    = errors.New("renderer: thread count must not be negative")
	ErrInvalidOutput     = errors.New("renderer: output buffer has no pixels")
	ErrSizeMismatch      = errors.New("renderer: buffer sizes differ")
	ErrTaskFailed        = errors.New("renderer: frame task failed")
	ErrUnsupportedFormat = errors.New("renderer: unsupported image format")
)
