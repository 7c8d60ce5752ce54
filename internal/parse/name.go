package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxGuestNameLength mirrors the width of the guest_name column.
const MaxGuestNameLength = 200

var (
	ErrEmptyName   = errors.New("name is required")
	ErrNameTooLong = fmt.Errorf("name must be at most %d characters", MaxGuestNameLength)

	spaceRe = regexp.MustCompile(`\s+`)
)

// GuestName normalizes the free-text name a reservation is held under.
// Runs of whitespace collapse to a single space.
func GuestName(raw string) (string, error) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	if s == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(s) > MaxGuestNameLength {
		return "", ErrNameTooLong
	}
	return s, nil
}
