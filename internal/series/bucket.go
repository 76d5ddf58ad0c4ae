package series

import (
	"time"
)

// Granularity is the calendar resolution of a bucketed series.
type Granularity string

const (
	GranularityDay   Granularity = "DAY"
	GranularityMonth Granularity = "MONTH"
	GranularityYear  Granularity = "YEAR"
)

// IsValid checks if the granularity is one of the supported values.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityMonth, GranularityYear:
		return true
	default:
		return false
	}
}

func (g Granularity) labelLayout() string {
	switch g {
	case GranularityDay:
		return "02/01/2006"
	case GranularityMonth:
		return "01/2006"
	default:
		return "2006"
	}
}

// BucketIndex is the shared calendar grid for one query. Both the energy
// table and the target band are derived from the same index so their labels
// correspond position-for-position without a join.
type BucketIndex struct {
	granularity Granularity
	loc         *time.Location
	starts      []time.Time
	positions   map[time.Time]int
}

// NewBucketIndex builds the ordered bucket grid covering the civil dates
// [start, end] (end day inclusive) in the given location.
func NewBucketIndex(start, end time.Time, granularity Granularity, loc *time.Location) (*BucketIndex, error) {
	if !granularity.IsValid() {
		return nil, ErrInvalidGranularity
	}
	if loc == nil {
		return nil, ErrNilLocation
	}
	if start.IsZero() || end.IsZero() {
		return nil, ErrInvalidRange
	}

	first := bucketStart(start.In(loc), granularity, loc)
	last := bucketStart(end.In(loc), granularity, loc)
	if last.Before(first) {
		return nil, ErrInvalidRange
	}

	index := &BucketIndex{
		granularity: granularity,
		loc:         loc,
		positions:   make(map[time.Time]int),
	}
	for cursor := first; !cursor.After(last); cursor = nextBucket(cursor, granularity) {
		index.positions[cursor] = len(index.starts)
		index.starts = append(index.starts, cursor)
	}
	return index, nil
}

// Len returns the number of buckets in the index.
func (ix *BucketIndex) Len() int { return len(ix.starts) }

// Granularity returns the calendar rule of the index.
func (ix *BucketIndex) Granularity() Granularity { return ix.granularity }

// Location returns the civil timezone the index buckets in.
func (ix *BucketIndex) Location() *time.Location { return ix.loc }

// Labels returns the formatted bucket labels in order.
func (ix *BucketIndex) Labels() []string {
	layout := ix.granularity.labelLayout()
	labels := make([]string, len(ix.starts))
	for i, start := range ix.starts {
		labels[i] = start.Format(layout)
	}
	return labels
}

// Starts returns the bucket start instants in order.
func (ix *BucketIndex) Starts() []time.Time {
	out := make([]time.Time, len(ix.starts))
	copy(out, ix.starts)
	return out
}

// BucketOf maps an instant to its bucket position. The instant is converted
// to the index's civil timezone first, so a day boundary falls at local
// midnight regardless of the storage timezone.
func (ix *BucketIndex) BucketOf(t time.Time) (int, bool) {
	pos, ok := ix.positions[bucketStart(t.In(ix.loc), ix.granularity, ix.loc)]
	return pos, ok
}

func bucketStart(t time.Time, granularity Granularity, loc *time.Location) time.Time {
	switch granularity {
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, loc)
	}
}

func nextBucket(t time.Time, granularity Granularity) time.Time {
	switch granularity {
	case GranularityDay:
		return t.AddDate(0, 0, 1)
	case GranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(1, 0, 0)
	}
}
