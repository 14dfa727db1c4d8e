package bookings

import (
	"context"
	"errors"

	"skybook/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the booking ledger. It never touches flight capacity; the
// reservation engine pairs these writes with the flight repository's locked
// capacity operations.
type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	Update(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error)
	GetAll(ctx context.Context, limit, offset int) ([]Booking, int64, error)
	CountActiveByFlight(ctx context.Context, flightID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return apperrors.Storagef("create booking", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking")
		}
		return nil, apperrors.Storagef("get booking", err)
	}
	return &booking, nil
}

func (r *repository) Update(ctx context.Context, booking *Booking) error {
	result := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
		"quantity":     booking.Quantity,
		"seat_numbers": booking.SeatNumbers,
		"total_price":  booking.TotalPrice,
	})
	if result.Error != nil {
		return apperrors.Storagef("update booking", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("booking")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Booking{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.Storagef("delete booking", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("booking")
	}
	return nil
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	var bookings []Booking
	var total int64

	base := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storagef("count user bookings", err)
	}

	err := base.Order("booking_date DESC").Limit(limit).Offset(offset).Find(&bookings).Error
	if err != nil {
		return nil, 0, apperrors.Storagef("list user bookings", err)
	}
	return bookings, total, nil
}

func (r *repository) GetAll(ctx context.Context, limit, offset int) ([]Booking, int64, error) {
	var bookings []Booking
	var total int64

	if err := r.db.WithContext(ctx).Model(&Booking{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storagef("count bookings", err)
	}

	err := r.db.WithContext(ctx).Order("booking_date DESC").Limit(limit).Offset(offset).Find(&bookings).Error
	if err != nil {
		return nil, 0, apperrors.Storagef("list bookings", err)
	}
	return bookings, total, nil
}

func (r *repository) CountActiveByFlight(ctx context.Context, flightID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).Where("flight_id = ?", flightID).Count(&count).Error
	if err != nil {
		return 0, apperrors.Storagef("count flight bookings", err)
	}
	return count, nil
}
