package readings

import "errors"

var (
	// ErrStorageUnavailable is returned when the reading store cannot be
	// reached. No partial result accompanies it.
	ErrStorageUnavailable = errors.New("readings: storage unavailable")
	// ErrInvalidRange is returned when end is not after start.
	ErrInvalidRange = errors.New("readings: invalid time range")
	// ErrNoDevices is returned when a query names no inverters.
	ErrNoDevices = errors.New("readings: no devices selected")
)
