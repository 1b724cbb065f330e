package validation

import "regexp"

// Name: letters, spaces, hyphens, apostrophes only.
var nameRe = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

func IsValidName(name string) bool {
	return name != "" && nameRe.MatchString(name)
}

// IsValidPhone accepts positive subscriber numbers up to 15 digits (E.164).
func IsValidPhone(phone int64) bool {
	return phone > 0 && phone < 1e15
}
