package location

import (
	"strconv"
	"strings"
)

const (
	MinChance = 0
	MaxChance = 100
)

// CoerceChance turns free-form input into a chance string. Integers are
// clamped to [MinChance, MaxChance]; anything unparseable becomes DefaultChance.
func CoerceChance(s string) string {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultChance
	}
	if n < MinChance {
		n = MinChance
	}
	if n > MaxChance {
		n = MaxChance
	}
	return strconv.Itoa(n)
}

// ValidChance reports whether s is already a canonical chance string.
func ValidChance(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= MinChance && n <= MaxChance && strconv.Itoa(n) == s
}
