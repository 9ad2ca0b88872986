package common

import "strconv"

// AtoiDefault converts value to an integer, falling back to def when the
// string is empty or unparseable.
func AtoiDefault(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}
