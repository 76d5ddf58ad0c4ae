package series

import "errors"

var (
	// ErrInvalidGranularity is returned when granularity is unsupported.
	ErrInvalidGranularity = errors.New("series: invalid granularity")
	// ErrInvalidRange is returned when the date range is empty or reversed.
	ErrInvalidRange = errors.New("series: invalid date range")
	// ErrNilLocation is returned when no civil timezone is provided.
	ErrNilLocation = errors.New("series: nil location")
	// ErrNilIndex is returned when a bucket index is required but missing.
	ErrNilIndex = errors.New("series: nil bucket index")
	// ErrInvalidGroupBy is returned when the grouping mode is unsupported.
	ErrInvalidGroupBy = errors.New("series: invalid group by")
)
