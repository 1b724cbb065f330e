package listings

import "errors"

var (
	ErrListingNotFound = errors.New("Listing not found")
	ErrListingExpired  = errors.New("Listing has expired and cannot be updated")
)
