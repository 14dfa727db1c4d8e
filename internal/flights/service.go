package flights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"skybook/internal/shared/apperrors"
	"skybook/pkg/cache"
	"skybook/pkg/logger"

	"github.com/google/uuid"
)

// BookingCounter reports how many active bookings reference a flight. The
// bookings package provides the implementation; the indirection avoids an
// import cycle between the two domains.
type BookingCounter interface {
	CountActiveByFlight(ctx context.Context, flightID uuid.UUID) (int64, error)
}

type Service interface {
	CreateFlight(ctx context.Context, req CreateFlightRequest) (*FlightResponse, error)
	GetFlight(ctx context.Context, id uuid.UUID) (*FlightResponse, error)
	GetAllFlights(ctx context.Context, query FlightListQuery) (*PaginatedFlights, error)
	UpdateFlight(ctx context.Context, id uuid.UUID, req UpdateFlightRequest) (*FlightResponse, error)
	DeleteFlight(ctx context.Context, id uuid.UUID) error
	SetBookingCounter(counter BookingCounter)
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
	counter  BookingCounter
	log      *logger.Logger
}

// NewService creates a flight service. cacheSvc may be nil, in which case
// list reads always hit the database.
func NewService(repo Repository, cacheSvc cache.Service, cacheTTL time.Duration) Service {
	return &service{
		repo:     repo,
		cache:    cacheSvc,
		cacheTTL: cacheTTL,
		log:      logger.GetDefault(),
	}
}

func (s *service) SetBookingCounter(counter BookingCounter) {
	s.counter = counter
}

func (s *service) CreateFlight(ctx context.Context, req CreateFlightRequest) (*FlightResponse, error) {
	number := strings.ToUpper(req.FlightNumber)
	if !IsValidFlightNumber(number) {
		return nil, apperrors.Validationf("flight number %q must be 2-6 alphanumeric characters", req.FlightNumber)
	}
	if req.MaxTickets < 1 {
		return nil, apperrors.Validationf("max_tickets must be at least 1")
	}
	if req.Price < 0 {
		return nil, apperrors.Validationf("price must not be negative")
	}

	if _, err := s.repo.GetByFlightNumber(ctx, number); err == nil {
		return nil, apperrors.Validationf("flight number %s already exists", number)
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	flight := &Flight{
		FlightNumber:     number,
		Departure:        req.Departure,
		Destination:      req.Destination,
		DepartsAt:        req.DepartsAt,
		MaxTickets:       req.MaxTickets,
		AvailableTickets: req.MaxTickets,
		Price:            req.Price,
	}
	if req.WithSeatMap {
		flight.Seats = GenerateSeatMap(req.MaxTickets)
		flight.BookedSeats = []string{}
	}

	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.log.LogFlightCreated(ctx, flight.ID.String(), flight.FlightNumber)

	resp := flight.ToResponse()
	return &resp, nil
}

func (s *service) GetFlight(ctx context.Context, id uuid.UUID) (*FlightResponse, error) {
	fetch := func() (interface{}, error) {
		flight, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return flight.ToResponse(), nil
	}

	if s.cache == nil {
		result, err := fetch()
		if err != nil {
			return nil, err
		}
		resp := result.(FlightResponse)
		return &resp, nil
	}

	var resp FlightResponse
	if err := s.cache.GetOrSet(ctx, s.flightCacheKey(id), s.cacheTTL, fetch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) GetAllFlights(ctx context.Context, query FlightListQuery) (*PaginatedFlights, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	fetch := func() (interface{}, error) {
		list, total, err := s.repo.GetAll(ctx, query)
		if err != nil {
			return nil, err
		}

		responses := make([]FlightResponse, 0, len(list))
		for i := range list {
			responses = append(responses, list[i].ToResponse())
		}

		return &PaginatedFlights{
			Flights:    responses,
			TotalCount: total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: int((total + int64(query.Limit) - 1) / int64(query.Limit)),
		}, nil
	}

	if s.cache == nil {
		result, err := fetch()
		if err != nil {
			return nil, err
		}
		return result.(*PaginatedFlights), nil
	}

	var cached PaginatedFlights
	if err := s.cache.GetOrSet(ctx, s.listCacheKey(query), s.cacheTTL, fetch, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *service) UpdateFlight(ctx context.Context, id uuid.UUID, req UpdateFlightRequest) (*FlightResponse, error) {
	flight, err := s.repo.Update(ctx, id, func(f *Flight) error {
		if req.Departure != nil {
			f.Departure = *req.Departure
		}
		if req.Destination != nil {
			f.Destination = *req.Destination
		}
		if req.DepartsAt != nil {
			f.DepartsAt = *req.DepartsAt
		}
		if req.Price != nil {
			if *req.Price < 0 {
				return apperrors.Validationf("price must not be negative")
			}
			f.Price = *req.Price
		}
		if req.MaxTickets != nil {
			return applyCapacityChange(f, *req.MaxTickets)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.dropFlightKey(ctx, id)

	resp := flight.ToResponse()
	return &resp, nil
}

// applyCapacityChange resizes a flight's capacity. Lowering below the booked
// count is rejected; otherwise availability moves by the same delta and a
// seat map is regrown (or shrunk, as long as no booked label falls off).
func applyCapacityChange(f *Flight, newMax int) error {
	if newMax < 1 {
		return apperrors.Validationf("max_tickets must be at least 1")
	}
	booked := f.BookedCount()
	if newMax < booked {
		return apperrors.Validationf("max_tickets %d is below the %d tickets already booked", newMax, booked)
	}

	if f.HasSeatMap() {
		newSeats := GenerateSeatMap(newMax)
		if missing := MissingSeats(newSeats, f.BookedSeats); len(missing) > 0 {
			return apperrors.Validationf("cannot shrink seat map: seat(s) %s are booked", strings.Join(missing, ", "))
		}
		f.Seats = newSeats
	}

	f.AvailableTickets += newMax - f.MaxTickets
	f.MaxTickets = newMax
	return nil
}

func (s *service) DeleteFlight(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if s.counter != nil {
		count, err := s.counter.CountActiveByFlight(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflictf("flight has %d active booking(s)", count)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.dropFlightKey(ctx, id)
	s.log.Info("flight deleted", slog.String("flight_id", id.String()))
	return nil
}

const flightCachePrefix = "skybook:flights:"

func (s *service) flightCacheKey(id uuid.UUID) string {
	return flightCachePrefix + "id:" + id.String()
}

func (s *service) listCacheKey(query FlightListQuery) string {
	return fmt.Sprintf("%slist:%d:%d:%s:%s:%s:%s", flightCachePrefix,
		query.Page, query.Limit, query.Departure, query.Destination, query.DateFrom, query.DateTo)
}

// invalidateCache drops every cached flight listing. Detail keys are dropped
// individually by dropFlightKey when a single flight changes.
func (s *service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, flightCachePrefix+"list:*"); err != nil {
		s.log.Warn("flight cache invalidation failed", slog.Any("error", err))
	}
}

func (s *service) dropFlightKey(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.flightCacheKey(id)); err != nil {
		s.log.Warn("flight cache invalidation failed",
			slog.String("flight_id", id.String()), slog.Any("error", err))
	}
}
