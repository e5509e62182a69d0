package models

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the calendar date format used by the quote provider and by
// every date exposed in query results.
const DateLayout = "2006-01-02"

// Observation represents one trading day of a daily time series.
//
// Fields:
//   - Date: calendar date of the session, truncated to midnight UTC.
//   - Open, High, Low, Close: session prices.
//   - Volume: number of shares traded (never negative).
type Observation struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Series is the daily history of one symbol, most recent observation first.
//
// A Series is built once by NewSeries and never mutated afterwards; callers
// receive it by value and must not modify the Observations slice.
type Series struct {
	Symbol       string
	Observations []Observation
}

// DuplicateDateError reports two observations sharing the same date.
type DuplicateDateError struct {
	Date time.Time
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("duplicate observation for %s", e.Date.Format(DateLayout))
}

// NewSeries sorts obs by date descending and checks that dates are unique.
// The input slice is copied.
func NewSeries(symbol string, obs []Observation) (Series, error) {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return Series{}, &DuplicateDateError{Date: sorted[i].Date}
		}
	}
	return Series{Symbol: symbol, Observations: sorted}, nil
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Observations) }

// Find returns the observation recorded exactly on day.
func (s Series) Find(day time.Time) (Observation, bool) {
	day = TruncateDate(day)
	// descending order: first index whose date is not after day
	i := sort.Search(len(s.Observations), func(i int) bool {
		return !s.Observations[i].Date.After(day)
	})
	if i < len(s.Observations) && s.Observations[i].Date.Equal(day) {
		return s.Observations[i], true
	}
	return Observation{}, false
}

// Window returns the n most recent observations, or all of them when the
// series is shorter than n. n <= 0 yields an empty window.
func (s Series) Window(n int) []Observation {
	if n <= 0 {
		return nil
	}
	if n > len(s.Observations) {
		n = len(s.Observations)
	}
	return s.Observations[:n]
}

// TruncateDate reduces t to its calendar date at midnight UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
