package gate

import (
	"strconv"
	"strings"
)

// IsVersionLower reports whether current is strictly older than required.
// Versions are compared component by component as integers, so "1.10" is newer
// than "1.9" and "1.2" equals "1.2.0". A component that is not a number counts
// as 0.
func IsVersionLower(current, required string) bool {
	cur := strings.Split(current, ".")
	req := strings.Split(required, ".")

	n := len(cur)
	if len(req) > n {
		n = len(req)
	}

	for i := 0; i < n; i++ {
		c, r := component(cur, i), component(req, i)
		switch {
		case c < r:
			return true
		case c > r:
			return false
		}
	}

	return false
}

func component(parts []string, i int) int64 {
	if i >= len(parts) {
		return 0
	}

	n, err := strconv.ParseInt(strings.TrimSpace(parts[i]), 10, 64)
	if err != nil {
		return 0
	}

	return n
}
