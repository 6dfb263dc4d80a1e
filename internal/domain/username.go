package domain

import "strings"

const (
	minUsernameLen = 3
	maxUsernameLen = 16
)

// IsValidUsername reports whether u, ignoring surrounding whitespace, is 3 to
// 16 ASCII letters or digits. It does not check that the account exists.
func IsValidUsername(u string) bool {
	u = strings.TrimSpace(u)
	if len(u) < minUsernameLen || len(u) > maxUsernameLen {
		return false
	}
	for i := 0; i < len(u); i++ {
		c := u[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
