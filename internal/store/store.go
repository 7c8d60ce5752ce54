package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"littlelemon-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// InsertBooking stores b and reports whether the (date, slot) was free.
	// Only unexpected storage failures return a non-nil error.
	InsertBooking(ctx context.Context, b *model.Booking) (InsertResult, error)
	BookingsByDate(ctx context.Context, date model.Date) ([]model.Booking, error)
	BookingsByOwner(ctx context.Context, userID int64) ([]model.Booking, error)
	AllBookings(ctx context.Context) ([]model.Booking, error)
	BookingByID(ctx context.Context, id int64) (*model.Booking, error)
	CountBookings(ctx context.Context) (int64, error)
	CountBookingsOn(ctx context.Context, date model.Date) (int64, error)

	EnsureUser(ctx context.Context, subject, username string) (*model.User, error)

	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	Subscription(ctx context.Context, userID int64, endpoint string) (*model.PushSubscription, error)
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, userID int64, endpoint string) error

	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// InsertBooking relies on the unique (reservation_date, reservation_slot)
// index. There is no read before the write: concurrent inserts for the
// same pair are decided by the database.
func (s *gormStore) InsertBooking(ctx context.Context, b *model.Booking) (InsertResult, error) {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
	if err == nil {
		return InsertCreated, nil
	}
	b.ID = 0
	if isUniqueViolation(err) {
		return InsertConflict, nil
	}
	return InsertFailed, fmt.Errorf("failed to insert booking for %s slot %d: %w", b.ReservationDate, b.ReservationSlot, err)
}

func (s *gormStore) BookingsByDate(ctx context.Context, date model.Date) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Where("reservation_date = ?", date).
		Order("reservation_slot ASC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to query bookings on %s: %w", date, err)
	}
	return bookings, nil
}

func (s *gormStore) BookingsByOwner(ctx context.Context, userID int64) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("reservation_date DESC").
		Order("reservation_slot DESC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to query bookings of user %d: %w", userID, err)
	}
	return bookings, nil
}

func (s *gormStore) AllBookings(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Preload("User").
		Order("reservation_date ASC").
		Order("reservation_slot ASC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to query all bookings: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) BookingByID(ctx context.Context, id int64) (*model.Booking, error) {
	var booking model.Booking
	err := s.db.WithContext(ctx).Preload("User").First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %d: %w", id, err)
	}
	return &booking, nil
}

func (s *gormStore) CountBookings(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Booking{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func (s *gormStore) CountBookingsOn(ctx context.Context, date model.Date) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Booking{}).
		Where("reservation_date = ?", date).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings on %s: %w", date, err)
	}
	return n, nil
}

// EnsureUser upserts the user identified by subject, refreshing the
// username, and returns the stored row.
func (s *gormStore) EnsureUser(ctx context.Context, subject, username string) (*model.User, error) {
	user := model.User{Subject: subject, Username: username}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("upsert user %q failed: %w", subject, err)
	}

	// The upsert does not report the ID of an existing row on every dialect.
	var stored model.User
	if err := s.db.WithContext(ctx).Where("subject = ?", subject).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve user %q after upsert: %w", subject, err)
	}
	return &stored, nil
}

// SaveSubscription creates or replaces the subscription for its endpoint.
func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
	}).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (s *gormStore) Subscription(ctx context.Context, userID int64, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).
		Where("endpoint = ? AND user_id = ?", endpoint, userID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions of user %d: %w", userID, err)
	}
	return subs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, userID int64, endpoint string) error {
	res := s.db.WithContext(ctx).
		Where("endpoint = ? AND user_id = ?", endpoint, userID).
		Delete(&model.PushSubscription{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("No subscription %s for user %d to delete", endpoint, userID)
	}
	return nil
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
