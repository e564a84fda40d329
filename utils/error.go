package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")

	ErrMissingTable  = errors.New("reference table missing")
	ErrEmptyTable    = errors.New("reference table empty")
	ErrMissingColumn = errors.New("reference table missing required column")
	ErrRejectedRow   = errors.New("input row rejected")
	ErrLockNotHeld   = errors.New("run lock held by another process")
)
