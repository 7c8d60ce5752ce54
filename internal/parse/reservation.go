package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"littlelemon-backend/internal/model"
)

var (
	ErrMissingDate = errors.New("date is required")
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidSlot = errors.New("slot must be a whole hour")

	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// Accepts "18", "18:00" and "18h".
	slotRe = regexp.MustCompile(`(?i)^(\d{1,2})\s*(?::00|h)?$`)
)

// ReservationDate parses a calendar date in YYYY-MM-DD form.
func ReservationDate(raw string) (model.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Date{}, ErrMissingDate
	}
	if !dateRe.MatchString(s) {
		return model.Date{}, ErrInvalidDate
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// ReservationSlot parses an hour-of-day slot. An empty value yields def.
// The result is always within 0-23.
func ReservationSlot(raw string, def int) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	m := slotRe.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidSlot
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	return n, nil
}
