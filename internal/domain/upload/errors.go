package upload

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("file type is not allowed")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile            = errors.New("file is empty")
	ErrTooManyFiles         = errors.New("too many files in one request")
)
