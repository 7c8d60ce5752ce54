package api

import "littlelemon-backend/internal/model"

// AvailabilityEntry is one taken slot in an availability listing.
type AvailabilityEntry struct {
	FirstName       string     `json:"first_name"`
	ReservationDate model.Date `json:"reservation_date"`
	ReservationSlot int16      `json:"reservation_slot"`
}

// BookingEntry is a booking in the JSON bookings listing.
type BookingEntry struct {
	AvailabilityEntry
	User string `json:"user"`
}

// SummaryResponse is returned by the availability diagnostic endpoint.
type SummaryResponse struct {
	Message       string     `json:"message"`
	TotalBookings int64      `json:"total_bookings"`
	TodayBookings int64      `json:"today_bookings"`
	TodayDate     model.Date `json:"today_date"`
}

func availabilityEntries(bookings []model.Booking) []AvailabilityEntry {
	out := make([]AvailabilityEntry, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, availabilityEntry(b))
	}
	return out
}

func availabilityEntry(b model.Booking) AvailabilityEntry {
	return AvailabilityEntry{
		FirstName:       b.GuestName,
		ReservationDate: b.ReservationDate,
		ReservationSlot: b.ReservationSlot,
	}
}

func bookingEntries(bookings []model.Booking) []BookingEntry {
	out := make([]BookingEntry, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingEntry{AvailabilityEntry: availabilityEntry(b), User: b.OwnerName()})
	}
	return out
}
