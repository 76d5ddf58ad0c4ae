package masterdata

import "errors"

var (
	// ErrInvalidPlantID is returned when a plant id is not positive.
	ErrInvalidPlantID = errors.New("masterdata: invalid plant id")
	// ErrEmptyPlantName is returned when a plant has no display name.
	ErrEmptyPlantName = errors.New("masterdata: empty plant name")
	// ErrNegativeCapacity is returned when installed capacity is negative.
	ErrNegativeCapacity = errors.New("masterdata: negative capacity")
	// ErrStorageUnavailable is returned when the master data store cannot
	// be reached.
	ErrStorageUnavailable = errors.New("masterdata: storage unavailable")
)
