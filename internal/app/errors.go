package app

import "errors"

var (
	ErrAppStartup           = errors.New("app startup error")
	ErrAppShutdownNormal    = errors.New("app shutdown normal")
	ErrAppShutdownWithError = errors.New("app shutdown with error")
	// ErrExportSink wraps failures to open or migrate the aggregate export sink.
	ErrExportSink = errors.New("aggregate export sink")
)
