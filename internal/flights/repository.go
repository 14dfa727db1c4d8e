package flights

import (
	"context"
	"errors"
	"strings"
	"time"

	"skybook/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, flight *Flight) error
	GetByID(ctx context.Context, id uuid.UUID) (*Flight, error)
	GetByFlightNumber(ctx context.Context, number string) (*Flight, error)
	GetAll(ctx context.Context, query FlightListQuery) ([]Flight, int64, error)
	Update(ctx context.Context, id uuid.UUID, apply func(*Flight) error) (*Flight, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Capacity operations. Each runs inside a flight-scoped serializing
	// transaction (SELECT ... FOR UPDATE) so concurrent claims against the
	// same flight cannot both pass a stale availability check.
	ClaimCapacity(ctx context.Context, flightID uuid.UUID, quantity int, seatLabels []string) (*Flight, error)
	ReleaseCapacity(ctx context.Context, flightID uuid.UUID, quantity int, seatLabels []string) (*Flight, error)
	AmendCapacity(ctx context.Context, flightID uuid.UUID, oldQuantity, newQuantity int, oldSeatLabels, newSeatLabels []string) (*Flight, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, flight *Flight) error {
	if err := r.db.WithContext(ctx).Create(flight).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Validationf("flight number %s already exists", flight.FlightNumber)
		}
		return apperrors.Storagef("create flight", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Flight, error) {
	var flight Flight
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&flight).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("flight")
		}
		return nil, apperrors.Storagef("get flight", err)
	}
	return &flight, nil
}

func (r *repository) GetByFlightNumber(ctx context.Context, number string) (*Flight, error) {
	var flight Flight
	err := r.db.WithContext(ctx).Where("flight_number = ?", strings.ToUpper(number)).First(&flight).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("flight")
		}
		return nil, apperrors.Storagef("get flight by number", err)
	}
	return &flight, nil
}

func (r *repository) GetAll(ctx context.Context, query FlightListQuery) ([]Flight, int64, error) {
	var list []Flight
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Flight{})

	if query.Departure != "" {
		db = db.Where("LOWER(departure) LIKE ?", "%"+strings.ToLower(query.Departure)+"%")
	}
	if query.Destination != "" {
		db = db.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(query.Destination)+"%")
	}
	if query.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("departs_at >= ?", dateFrom)
		}
	}
	if query.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			dateTo = dateTo.Add(24 * time.Hour)
			db = db.Where("departs_at < ?", dateTo)
		}
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, apperrors.Storagef("count flights", err)
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}
	offset := (query.Page - 1) * query.Limit

	err := db.Order("departs_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, apperrors.Storagef("list flights", err)
	}

	return list, totalCount, nil
}

// Update locks the flight row, applies the mutator, and persists the result.
// The mutator sees the current committed state, so capacity rules checked
// inside it cannot race with in-flight reservations.
func (r *repository) Update(ctx context.Context, id uuid.UUID, apply func(*Flight) error) (*Flight, error) {
	var updated *Flight
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flight, err := lockFlight(tx, id)
		if err != nil {
			return err
		}
		if err := apply(flight); err != nil {
			return err
		}
		if err := tx.Save(flight).Error; err != nil {
			return apperrors.Storagef("update flight", err)
		}
		updated = flight
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Flight{})
	if result.Error != nil {
		return apperrors.Storagef("delete flight", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("flight")
	}
	return nil
}

func (r *repository) ClaimCapacity(ctx context.Context, flightID uuid.UUID, quantity int, seatLabels []string) (*Flight, error) {
	var claimed *Flight
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flight, err := lockFlight(tx, flightID)
		if err != nil {
			return err
		}

		if flight.HasSeatMap() {
			if overlap := OverlappingSeats(flight.BookedSeats, seatLabels); len(overlap) > 0 {
				return apperrors.Conflictf("seat(s) %s already booked", strings.Join(overlap, ", "))
			}
		}
		if flight.AvailableTickets < quantity {
			return apperrors.Conflictf("only %d tickets available", flight.AvailableTickets)
		}

		flight.AvailableTickets -= quantity
		if flight.HasSeatMap() {
			flight.BookedSeats = append(flight.BookedSeats, seatLabels...)
		}

		if err := tx.Save(flight).Error; err != nil {
			return apperrors.Storagef("claim capacity", err)
		}
		claimed = flight
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *repository) ReleaseCapacity(ctx context.Context, flightID uuid.UUID, quantity int, seatLabels []string) (*Flight, error) {
	var released *Flight
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flight, err := lockFlight(tx, flightID)
		if err != nil {
			return err
		}

		flight.AvailableTickets += quantity
		if flight.AvailableTickets > flight.MaxTickets {
			flight.AvailableTickets = flight.MaxTickets
		}
		if flight.HasSeatMap() && len(seatLabels) > 0 {
			flight.BookedSeats = removeSeats(flight.BookedSeats, seatLabels)
		}

		if err := tx.Save(flight).Error; err != nil {
			return apperrors.Storagef("release capacity", err)
		}
		released = flight
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// AmendCapacity gives back the old claim and takes the new one under a single
// lock, so availability is checked against the restored value and the
// booking's own seats never count as collisions.
func (r *repository) AmendCapacity(ctx context.Context, flightID uuid.UUID, oldQuantity, newQuantity int, oldSeatLabels, newSeatLabels []string) (*Flight, error) {
	var amended *Flight
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flight, err := lockFlight(tx, flightID)
		if err != nil {
			return err
		}

		restored := flight.AvailableTickets + oldQuantity
		if newQuantity > restored {
			return apperrors.Conflictf("only %d tickets available", restored)
		}

		if flight.HasSeatMap() {
			remaining := removeSeats(flight.BookedSeats, oldSeatLabels)
			if overlap := OverlappingSeats(remaining, newSeatLabels); len(overlap) > 0 {
				return apperrors.Conflictf("seat(s) %s already booked", strings.Join(overlap, ", "))
			}
			flight.BookedSeats = append(remaining, newSeatLabels...)
		}
		flight.AvailableTickets = restored - newQuantity

		if err := tx.Save(flight).Error; err != nil {
			return apperrors.Storagef("amend capacity", err)
		}
		amended = flight
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amended, nil
}

// lockFlight reads the flight row FOR UPDATE inside tx.
func lockFlight(tx *gorm.DB, id uuid.UUID) (*Flight, error) {
	var flight Flight
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&flight).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("flight")
		}
		return nil, apperrors.Storagef("lock flight", err)
	}
	return &flight, nil
}
