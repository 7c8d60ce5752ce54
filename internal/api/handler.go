package api

import (
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"littlelemon-backend/internal/booking"
	"littlelemon-backend/internal/mw"
	"littlelemon-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	bookings          *booking.Service
	store             store.Store
	webpush           *webpush.Options
	exposeAllBookings bool
	now               func() time.Time
}

// NewHandler creates a new API handler. webpushOptions is nil when push
// notifications are disabled.
func NewHandler(svc *booking.Service, s store.Store, webpushOptions *webpush.Options, exposeAllBookings bool) *Handler {
	return &Handler{
		bookings:          svc,
		store:             s,
		webpush:           webpushOptions,
		exposeAllBookings: exposeAllBookings,
		now:               time.Now,
	}
}

// serverError logs err with the request ID and answers with a generic
// message, as JSON or as an HTML page.
func (h *Handler) serverError(c *gin.Context, err error, asJSON bool) {
	log.Printf("[%s] %s %s failed: %v", mw.RequestID(c), c.Request.Method, c.Request.URL.Path, err)
	if asJSON {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.HTML(http.StatusInternalServerError, "error.html", pageData{
		Title:   "Something went wrong",
		User:    mw.CurrentUser(c),
		Message: "We could not process your request. Please try again later.",
	})
}
