package proration

import "errors"

var (
	// ErrInvalidRoster is returned when a listing has no roster entries, making
	// the per-unit division undefined.
	ErrInvalidRoster = errors.New("Listing has no members")
	// ErrInvalidBid is returned when the current bid exceeds the pool price or
	// is not a finite number. Accepting either would credit negative or NaN
	// shares to every member on the roster.
	ErrInvalidBid = errors.New("Invalid current bid")
)
