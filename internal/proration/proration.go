// Package proration computes each member's share of a listing's outstanding
// pool (price minus the latest auction bid). It is pure: no storage, no clock.
package proration

import "math"

// RosterEntry identifies one roster unit by the member's (name, phone) pair.
// A member enrolled twice appears as two entries and carries two units.
type RosterEntry struct {
	Name  string
	Phone int64
}

// Outstanding returns the amount still to be collected across the roster:
// price - currentBid. A zero currentBid means no auction has settled yet, so
// the full price is outstanding.
func Outstanding(price, currentBid float64) (float64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, ErrInvalidBid
	}
	if math.IsNaN(currentBid) || math.IsInf(currentBid, 0) || currentBid < 0 {
		return 0, ErrInvalidBid
	}
	if currentBid > price {
		return 0, ErrInvalidBid
	}
	return price - currentBid, nil
}

// PerUnit returns the outstanding amount divided by the roster size, where
// size counts entries, not distinct members.
func PerUnit(price, currentBid float64, rosterSize int) (float64, error) {
	if rosterSize <= 0 {
		return 0, ErrInvalidRoster
	}
	outstanding, err := Outstanding(price, currentBid)
	if err != nil {
		return 0, err
	}
	return outstanding / float64(rosterSize), nil
}

// Occurrences counts how many roster entries match the given (name, phone).
func Occurrences(roster []RosterEntry, name string, phone int64) int {
	n := 0
	for _, e := range roster {
		if e.Name == name && e.Phone == phone {
			n++
		}
	}
	return n
}

// ShareFor returns the member's full-precision share of the outstanding pool:
// perUnit × occurrences. Round with Round2 only at the presentation boundary;
// rounding earlier compounds error across members.
func ShareFor(price, currentBid float64, roster []RosterEntry, name string, phone int64) (float64, error) {
	perUnit, err := PerUnit(price, currentBid, len(roster))
	if err != nil {
		return 0, err
	}
	return perUnit * float64(Occurrences(roster, name, phone)), nil
}

// Round2 rounds a monetary amount to 2 decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
