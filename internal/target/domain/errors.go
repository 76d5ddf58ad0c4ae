package target

import "errors"

var (
	// ErrNilResolver is returned when the period service is built without a resolver.
	ErrNilResolver = errors.New("target: nil profile resolver")
	// ErrNilSource is returned when the period service is built without a source.
	ErrNilSource = errors.New("target: nil target source")
	// ErrInvalidRange is returned when end is before start.
	ErrInvalidRange = errors.New("target: invalid date range")
	// ErrNilLocation is returned when no civil timezone is provided.
	ErrNilLocation = errors.New("target: nil location")
	// ErrNoRules is returned when a resolver is configured without any
	// inference rule and without a capacity default.
	ErrNoRules = errors.New("target: resolver has no rules")
	// ErrNegativeBand is returned when a target table carries negative energy.
	ErrNegativeBand = errors.New("target: negative band value")
	// ErrStorageUnavailable is returned when the target table store cannot
	// be reached.
	ErrStorageUnavailable = errors.New("target: storage unavailable")
)
