package usecase

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrInternal           = errors.New("internal error")
)
