package booking

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"littlelemon-backend/config"
	"littlelemon-backend/internal/metrics"
	"littlelemon-backend/internal/model"
	"littlelemon-backend/internal/parse"
	"littlelemon-backend/internal/store"
)

// Form field names, shared with the HTML form and the validation errors.
const (
	FieldGuestName = "first_name"
	FieldDate      = "reservation_date"
	FieldSlot      = "reservation_slot"
)

// Notifier is told about every booking that was created.
// Dispatch must not block.
type Notifier interface {
	Dispatch(bookingID int64)
}

// Request is a booking submission as entered by the user.
type Request struct {
	GuestName string
	Date      string
	Slot      string
}

// Summary is a snapshot of booking counts.
type Summary struct {
	TotalBookings int64
	TodayBookings int64
	Today         model.Date
}

// Service validates booking requests and answers availability queries.
type Service struct {
	cfg      config.BookingConfig
	store    store.Store
	notifier Notifier
	// availability holds per-date booking snapshots; nil disables caching.
	availability *cache.Cache

	// mu guards generations. A date's generation is bumped after every
	// booking on it; a snapshot read under an older generation is not cached.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewService creates a booking service. notifier may be nil.
func NewService(cfg config.BookingConfig, s store.Store, notifier Notifier) *Service {
	svc := &Service{
		cfg:      cfg,
		store:    s,
		notifier: notifier,
	}
	if cfg.AvailabilityCacheTTL > 0 {
		svc.availability = cache.New(cfg.AvailabilityCacheTTL, 2*cfg.AvailabilityCacheTTL)
		svc.generations = make(map[string]uint64)
	}
	return svc
}

// CheckAvailability returns the bookings holding slots on the given
// YYYY-MM-DD date, ordered by slot. It never touches storage when the
// date is missing or malformed.
func (s *Service) CheckAvailability(ctx context.Context, rawDate string) ([]model.Booking, error) {
	date, err := parse.ReservationDate(rawDate)
	if err != nil {
		verr := &ValidationError{}
		verr.add("date", err)
		return nil, verr
	}
	return s.BookingsOn(ctx, date)
}

// BookingsOn returns the bookings on date, ordered by slot.
func (s *Service) BookingsOn(ctx context.Context, date model.Date) ([]model.Booking, error) {
	if s.availability == nil {
		return s.store.BookingsByDate(ctx, date)
	}

	key := date.String()
	if cached, found := s.availability.Get(key); found {
		metrics.IncAvailabilityLookup("hit")
		return slices.Clone(cached.([]model.Booking)), nil
	}
	metrics.IncAvailabilityLookup("miss")

	s.mu.Lock()
	gen := s.generations[key]
	s.mu.Unlock()

	bookings, err := s.store.BookingsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generations[key] == gen {
		s.availability.SetDefault(key, slices.Clone(bookings))
	}
	s.mu.Unlock()
	return bookings, nil
}

// invalidate drops the cached snapshot of date after a booking on it.
func (s *Service) invalidate(date model.Date) {
	if s.availability == nil {
		return
	}
	key := date.String()
	s.mu.Lock()
	s.generations[key]++
	s.availability.Delete(key)
	s.mu.Unlock()
}

// CreateBooking validates req and books it for owner. A taken (date, slot)
// yields ErrConflict and leaves storage unchanged.
func (s *Service) CreateBooking(ctx context.Context, owner *model.User, req Request) (*model.Booking, error) {
	if owner == nil {
		return nil, ErrUnauthenticated
	}

	b, err := s.validate(req)
	if err != nil {
		metrics.IncBookingAttempt("invalid")
		return nil, err
	}
	b.UserID = &owner.ID

	result, err := s.store.InsertBooking(ctx, b)
	switch result {
	case store.InsertCreated:
	case store.InsertConflict:
		metrics.IncBookingAttempt("conflict")
		log.Printf("Booking rejected, %s slot %d is taken (user %d)", b.ReservationDate, b.ReservationSlot, owner.ID)
		return nil, fmt.Errorf("%w: %s at %d:00", ErrConflict, b.ReservationDate, b.ReservationSlot)
	default:
		metrics.IncBookingAttempt("error")
		return nil, fmt.Errorf("create booking: %w", err)
	}

	b.User = owner
	s.invalidate(b.ReservationDate)
	metrics.IncBookingAttempt("created")
	log.Printf("Booking %d created: %s (user %d)", b.ID, b, owner.ID)

	if s.notifier != nil {
		s.notifier.Dispatch(b.ID)
	}
	return b, nil
}

func (s *Service) validate(req Request) (*model.Booking, error) {
	verr := &ValidationError{}

	name, err := parse.GuestName(req.GuestName)
	if err != nil {
		verr.add(FieldGuestName, err)
	}

	date, err := parse.ReservationDate(req.Date)
	if err != nil {
		verr.add(FieldDate, err)
	}

	slot, err := parse.ReservationSlot(req.Slot, s.cfg.DefaultSlot)
	if err != nil {
		verr.add(FieldSlot, err)
	} else if slot < s.cfg.FirstSlot || slot > s.cfg.LastSlot {
		verr.add(FieldSlot, fmt.Errorf("%w: we take bookings from %s to %s",
			parse.ErrInvalidSlot, hourLabel(s.cfg.FirstSlot), hourLabel(s.cfg.LastSlot)))
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &model.Booking{
		GuestName:       name,
		ReservationDate: date,
		ReservationSlot: int16(slot),
	}, nil
}

// ListMyBookings returns the owner's bookings, newest first.
func (s *Service) ListMyBookings(ctx context.Context, owner *model.User) ([]model.Booking, error) {
	if owner == nil {
		return nil, ErrUnauthenticated
	}
	return s.store.BookingsByOwner(ctx, owner.ID)
}

// ListAllBookings returns every booking with its owner, oldest first.
func (s *Service) ListAllBookings(ctx context.Context) ([]model.Booking, error) {
	return s.store.AllBookings(ctx)
}

// Summary counts all bookings and those on the date of now.
func (s *Service) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	today := model.DateOf(now)
	total, err := s.store.CountBookings(ctx)
	if err != nil {
		return nil, err
	}
	onToday, err := s.store.CountBookingsOn(ctx, today)
	if err != nil {
		return nil, err
	}
	return &Summary{TotalBookings: total, TodayBookings: onToday, Today: today}, nil
}

// Slots returns the bookable slots in order.
func (s *Service) Slots() []int {
	slots := make([]int, 0, s.cfg.LastSlot-s.cfg.FirstSlot+1)
	for h := s.cfg.FirstSlot; h <= s.cfg.LastSlot; h++ {
		slots = append(slots, h)
	}
	return slots
}

// DefaultSlot is the slot preselected on a fresh form.
func (s *Service) DefaultSlot() int {
	return s.cfg.DefaultSlot
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
