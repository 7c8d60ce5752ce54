package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "littlelemon",
			Name:      "booking_attempts_total",
			Help:      "Count of booking attempts by outcome (created, conflict, invalid, error).",
		},
		[]string{"outcome"},
	)

	availabilityLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "littlelemon",
			Name:      "availability_lookups_total",
			Help:      "Count of availability lookups by cache result (hit, miss).",
		},
		[]string{"cache"},
	)

	pushNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "littlelemon",
			Name:      "push_notifications_total",
			Help:      "Count of booking confirmation pushes by result (sent, failed, expired, dropped).",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingAttempts, availabilityLookups, pushNotifications)
	})
}

func IncBookingAttempt(outcome string) {
	bookingAttempts.WithLabelValues(outcome).Inc()
}

func IncAvailabilityLookup(cacheResult string) {
	availabilityLookups.WithLabelValues(cacheResult).Inc()
}

func IncPushNotification(result string) {
	pushNotifications.WithLabelValues(result).Inc()
}
