package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"littlelemon-backend/internal/metrics"
	"littlelemon-backend/internal/model"
	"littlelemon-backend/internal/store"
)

// jobsPerWorker bounds the queue; bookings beyond it are not confirmed.
const jobsPerWorker = 32

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Message is the push payload shown by the service worker.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// WorkerPool sends booking confirmations to the owners' browsers.
type WorkerPool struct {
	size    int
	jobs    chan int64
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size*jobsPerWorker),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case bookingID := <-wp.jobs:
			wp.confirmBooking(ctx, bookingID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a confirmation for bookingID. It never blocks; when the
// queue is full the confirmation is dropped.
func (wp *WorkerPool) Dispatch(bookingID int64) {
	select {
	case wp.jobs <- bookingID:
	default:
		metrics.IncPushNotification("dropped")
		log.Printf("Notification queue full, dropping confirmation for booking %d", bookingID)
	}
}

func (wp *WorkerPool) confirmBooking(ctx context.Context, bookingID int64) {
	b, err := wp.store.BookingByID(ctx, bookingID)
	if err != nil {
		log.Printf("Error fetching booking %d: %v", bookingID, err)
		return
	}
	if b.UserID == nil {
		return
	}

	subscriptions, err := wp.store.SubscriptionsForUser(ctx, *b.UserID)
	if err != nil {
		log.Printf("Error fetching subscriptions for user %d: %v", *b.UserID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(ConfirmationMessage(b))
	if err != nil {
		log.Printf("Error encoding confirmation for booking %d: %v", bookingID, err)
		return
	}

	log.Printf("Sending %d confirmations for booking %d", len(subscriptions), bookingID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// ConfirmationMessage builds the push message for a new booking.
func ConfirmationMessage(b *model.Booking) Message {
	return Message{
		Title: "Little Lemon: table booked",
		Body:  b.String(),
		URL:   "/bookings/",
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		metrics.IncPushNotification("error")
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		metrics.IncPushNotification("expired")
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.UserID, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	case resp.StatusCode >= 300:
		metrics.IncPushNotification("error")
		log.Printf("Push service rejected notification to %s with status %d", sub.Endpoint, resp.StatusCode)
	default:
		metrics.IncPushNotification("sent")
	}
}
