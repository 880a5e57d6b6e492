package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reProductID = regexp.MustCompile(`^[0-9]{1,18}$`)
	reBearer    = regexp.MustCompile(`^Bearer ([A-Za-z0-9._~+/=-]{8,128})$`)
)

// ProductID parses a path segment into a positive product id.
func ProductID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reProductID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Quantity reports whether q is present and non-negative.
func Quantity(q *int) bool {
	return q != nil && *q >= 0
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	m := reBearer.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return "", false
	}
	return m[1], true
}
