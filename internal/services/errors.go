package services

import "errors"

// Forecast service errors
var (
	ErrHorizonOutOfRange = errors.New("horizon out of range")
	ErrNoHistory         = errors.New("no usable history")
	ErrNoInput           = errors.New("run needs csv text or data points")
)
