package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestNewBucketIndexDaily(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2024, 3, 30, 0, 0, 0, 0, loc)
	end := time.Date(2024, 4, 2, 0, 0, 0, 0, loc)

	index, err := NewBucketIndex(start, end, GranularityDay, loc)
	require.NoError(t, err)

	assert.Equal(t, 4, index.Len())
	assert.Equal(t, []string{"30/03/2024", "31/03/2024", "01/04/2024", "02/04/2024"}, index.Labels())
}

func TestNewBucketIndexMonthly(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, loc)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, loc)

	index, err := NewBucketIndex(start, end, GranularityMonth, loc)
	require.NoError(t, err)

	assert.Equal(t, []string{"01/2024", "02/2024", "03/2024"}, index.Labels())
}

func TestNewBucketIndexYearly(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, loc)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, loc)

	index, err := NewBucketIndex(start, end, GranularityYear, loc)
	require.NoError(t, err)

	assert.Equal(t, []string{"2023", "2024"}, index.Labels())
}

func TestNewBucketIndexRejectsReversedRange(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2024, 4, 2, 0, 0, 0, 0, loc)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)

	_, err := NewBucketIndex(start, end, GranularityDay, loc)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestNewBucketIndexRejectsBadGranularity(t *testing.T) {
	loc := saoPaulo(t)
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)

	_, err := NewBucketIndex(now, now, Granularity("WEEK"), loc)
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestBucketOfUsesLocalMidnight(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, loc)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	index, err := NewBucketIndex(start, end, GranularityDay, loc)
	require.NoError(t, err)

	// 02:30 UTC is 23:30 of the previous civil day in Sao Paulo.
	pos, ok := index.BucketOf(time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 0, pos)

	pos, ok = index.BucketOf(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestBucketOfOutsideRange(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, loc)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	index, err := NewBucketIndex(start, end, GranularityDay, loc)
	require.NoError(t, err)

	_, ok := index.BucketOf(time.Date(2024, 3, 11, 12, 0, 0, 0, loc))
	assert.False(t, ok)
}
