package service

import "errors"

var (
	// ErrDuplicateUID is returned only by the strict create path; FindOrCreate never fails.
	ErrDuplicateUID = errors.New("device with this uid already exists")
	// ErrDeviceNotFound is returned by the aggregate queries for an unknown uid.
	ErrDeviceNotFound = errors.New("device not found")
)
