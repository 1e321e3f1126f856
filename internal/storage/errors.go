package storage

import "errors"

var (
	ErrInvalidName   = errors.New("invalid object name")
	ErrObjectExists  = errors.New("object already exists")
	ErrAccessDenied  = errors.New("access denied")
	ErrBucketMissing = errors.New("bucket not found")
	ErrWrongBackend  = errors.New("key belongs to another backend")
)
