package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"littlelemon-backend/internal/booking"
	"littlelemon-backend/internal/model"
	"littlelemon-backend/internal/mw"
	"littlelemon-backend/internal/parse"
)

const (
	msgBooked        = "Booking confirmed successfully!"
	msgSlotTaken     = "This time slot is already booked. Please choose another time."
	msgFixErrors     = "Please correct the errors below."
	msgDateRequired  = "Date parameter required"
	msgDateMalformed = "Invalid date, expected YYYY-MM-DD"
)

type slotOption struct {
	Value    int
	Selected bool
}

// bookingForm is the view model of book.html.
type bookingForm struct {
	Page   pageData
	Values booking.Request
	Errors map[string]string
	Slots  []slotOption
}

// bookingsPage is the view model of bookings.html.
type bookingsPage struct {
	Page     pageData
	Bookings []model.Booking
}

func (h *Handler) renderForm(c *gin.Context, status int, values booking.Request, fieldErrors map[string]string, message string) {
	selected, err := parse.ReservationSlot(values.Slot, h.bookings.DefaultSlot())
	if err != nil {
		selected = h.bookings.DefaultSlot()
	}
	slots := make([]slotOption, 0)
	for _, s := range h.bookings.Slots() {
		slots = append(slots, slotOption{Value: s, Selected: s == selected})
	}
	c.HTML(status, "book.html", bookingForm{
		Page:   pageData{Title: "Book a table", User: mw.CurrentUser(c), Message: message},
		Values: values,
		Errors: fieldErrors,
		Slots:  slots,
	})
}

// BookForm renders an empty booking form.
func (h *Handler) BookForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, booking.Request{Date: c.Query("date")}, nil, "")
}

// Book creates a booking from the submitted form for the current user.
func (h *Handler) Book(c *gin.Context) {
	req := booking.Request{
		GuestName: c.PostForm(booking.FieldGuestName),
		Date:      c.PostForm(booking.FieldDate),
		Slot:      c.PostForm(booking.FieldSlot),
	}
	asJSON := mw.WantsJSON(c)

	b, err := h.bookings.CreateBooking(c.Request.Context(), mw.CurrentUser(c), req)
	var verr *booking.ValidationError
	switch {
	case err == nil:
		if asJSON {
			c.JSON(http.StatusCreated, bookingEntries([]model.Booking{*b})[0])
			return
		}
		c.Redirect(http.StatusFound, "/bookings/?notice=booked")
	case errors.As(err, &verr):
		if asJSON {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgFixErrors, "fields": verr.FieldMessages()})
			return
		}
		h.renderForm(c, http.StatusBadRequest, req, verr.FieldMessages(), msgFixErrors)
	case errors.Is(err, booking.ErrConflict):
		if asJSON {
			c.JSON(http.StatusConflict, gin.H{"error": msgSlotTaken})
			return
		}
		h.renderForm(c, http.StatusOK, req, nil, msgSlotTaken)
	case errors.Is(err, booking.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	default:
		h.serverError(c, err, asJSON)
	}
}

// Bookings serves /bookings/ and /reservations/. JSON clients get the
// bookings listing, a date filter answers like CheckAvailability, and
// browsers get the caller's own bookings.
func (h *Handler) Bookings(c *gin.Context) {
	ctx := c.Request.Context()
	user := mw.CurrentUser(c)

	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" || c.Query("format") == "json" {
		var (
			bookings []model.Booking
			err      error
		)
		if h.exposeAllBookings {
			bookings, err = h.bookings.ListAllBookings(ctx)
		} else {
			bookings, err = h.bookings.ListMyBookings(ctx, user)
			for i := range bookings {
				bookings[i].User = user
			}
		}
		if err != nil {
			h.serverError(c, err, true)
			return
		}
		c.JSON(http.StatusOK, bookingEntries(bookings))
		return
	}

	if date := c.Query("date"); date != "" {
		h.availability(c, date)
		return
	}

	bookings, err := h.bookings.ListMyBookings(ctx, user)
	if err != nil {
		h.serverError(c, err, false)
		return
	}
	page := pageData{Title: "My bookings", User: user}
	if c.Query("notice") == "booked" {
		page.Notice = msgBooked
	}
	c.HTML(http.StatusOK, "bookings.html", bookingsPage{Page: page, Bookings: bookings})
}

// CheckAvailability lists the taken slots of the date query parameter.
func (h *Handler) CheckAvailability(c *gin.Context) {
	h.availability(c, c.Query("date"))
}

func (h *Handler) availability(c *gin.Context, date string) {
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgDateRequired})
		return
	}

	bookings, err := h.bookings.CheckAvailability(c.Request.Context(), date)
	if errors.Is(err, booking.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgDateMalformed})
		return
	}
	if err != nil {
		h.serverError(c, err, true)
		return
	}

	log.Printf("Availability check for %s: %d bookings found", date, len(bookings))
	c.JSON(http.StatusOK, availabilityEntries(bookings))
}

// TestAvailability reports booking counts so operators can check the
// availability endpoint end to end.
func (h *Handler) TestAvailability(c *gin.Context) {
	summary, err := h.bookings.Summary(c.Request.Context(), h.now())
	if err != nil {
		h.serverError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, SummaryResponse{
		Message:       "Availability endpoint is working",
		TotalBookings: summary.TotalBookings,
		TodayBookings: summary.TodayBookings,
		TodayDate:     summary.Today,
	})
}
