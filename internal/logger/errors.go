package logger

import "errors"

var (
	// ErrServiceNameIsEmpty is returned when the log config has no service name.
	ErrServiceNameIsEmpty = errors.New("log config serviceName can not be empty")

	// ErrAppNameIsEmpty is returned when the log config has no app name.
	ErrAppNameIsEmpty = errors.New("log config appName can not be empty")
)
