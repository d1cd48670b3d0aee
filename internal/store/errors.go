package store

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrCreationFailed = errors.New("creation failed")
	ErrUpdateFailed   = errors.New("update failed")
	ErrDeleteFailed   = errors.New("delete failed")
	ErrIO             = errors.New("storage engine failure")
)
