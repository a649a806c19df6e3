package types

import (
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// LookupStatus distinguishes the outcomes of a single-row lookup.
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
	LookupMultiple
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupMultiple:
		return "multiple"
	default:
		return "not_found"
	}
}

// Lookup is the result of searching for exactly one reference value.
type Lookup[T any] struct {
	Status LookupStatus
	Count  int
	value  T
	what   string
}

// LookupOne classifies matches: one match is Found, zero is NotFound, more is Multiple.
// what describes the searched value in error messages.
func LookupOne[T any](matches []T, what string) Lookup[T] {
	switch len(matches) {
	case 0:
		return NotFound[T](what)
	case 1:
		return Found(matches[0])
	default:
		return Lookup[T]{Status: LookupMultiple, Count: len(matches), what: what}
	}
}

// Found returns a Found lookup holding v.
func Found[T any](v T) Lookup[T] {
	return Lookup[T]{Status: LookupFound, Count: 1, value: v}
}

// NotFound returns an empty lookup.
func NotFound[T any](what string) Lookup[T] {
	return Lookup[T]{Status: LookupNotFound, what: what}
}

// Get returns the value when exactly one match was found.
func (l Lookup[T]) Get() (T, error) {
	var zero T

	switch l.Status {
	case LookupFound:
		return l.value, nil
	case LookupMultiple:
		return zero, errors.Newf(errors.ErrCodeAmbiguousReferenceRow, "expected exactly one %s, found %d", l.describe(), l.Count)
	default:
		return zero, errors.Newf(errors.ErrCodeMissingReferenceRow, "no %s found", l.describe())
	}
}

// IsFound reports whether exactly one match was found.
func (l Lookup[T]) IsFound() bool {
	return l.Status == LookupFound
}

func (l Lookup[T]) describe() string {
	if l.what == "" {
		return "reference row"
	}

	return l.what
}

// LookupRow finds the single row of ticker in table.
func (t PriceTable) LookupRow(ticker string) Lookup[PriceRow] {
	return LookupOne(t.ForTicker(ticker), "row for "+ticker)
}
