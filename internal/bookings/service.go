package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"skybook/internal/flights"
	"skybook/internal/shared/apperrors"
	"skybook/internal/users"
	"skybook/pkg/logger"

	"github.com/google/uuid"
)

// Actor identifies who is performing a booking operation. Admins may act on
// any booking; regular users only on their own.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == string(users.RoleAdmin)
}

// Publisher emits booking lifecycle events. Implementations must not block
// the booking path; failures are logged and swallowed by the engine.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

// Booking lifecycle event types.
const (
	EventBookingCreated   = "booking.created"
	EventBookingAmended   = "booking.amended"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload published on the booking lifecycle topic.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	FlightID   string    `json:"flight_id"`
	UserID     string    `json:"user_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Service is the reservation engine. Every mutation pairs a locked capacity
// operation on the flight row with a ledger write, compensating the capacity
// side when the ledger write fails so availableTickets never drifts from
// maxTickets minus the sum of active booking quantities.
type Service interface {
	Reserve(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingResponse, error)
	Amend(ctx context.Context, actor Actor, bookingID uuid.UUID, req AmendBookingRequest) (*BookingResponse, error)
	Release(ctx context.Context, actor Actor, bookingID uuid.UUID) error
	GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingWithFlight, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*PaginatedBookings, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error)
	CountActiveByFlight(ctx context.Context, flightID uuid.UUID) (int64, error)
}

type service struct {
	repo      Repository
	flights   flights.Repository
	publisher Publisher
	log       *logger.Logger
}

// NewService creates a reservation engine. publisher may be nil, in which
// case lifecycle events are skipped.
func NewService(repo Repository, flightRepo flights.Repository, publisher Publisher) Service {
	return &service{
		repo:      repo,
		flights:   flightRepo,
		publisher: publisher,
		log:       logger.GetDefault(),
	}
}

func (s *service) Reserve(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingResponse, error) {
	flightID, err := uuid.Parse(req.FlightID)
	if err != nil {
		return nil, apperrors.Validationf("invalid flight ID %q", req.FlightID)
	}

	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if err := validateSeatSelection(flight, req.Quantity, req.SeatNumbers); err != nil {
		return nil, err
	}

	flight, err = s.claimWithRetry(ctx, flightID, req.Quantity, req.SeatNumbers)
	if err != nil {
		return nil, err
	}

	ref, err := generateBookingRef()
	if err != nil {
		s.compensateClaim(ctx, flightID, req.Quantity, req.SeatNumbers)
		return nil, apperrors.Storagef("generate booking reference", err)
	}

	booking := &Booking{
		UserID:      actor.UserID,
		FlightID:    flightID,
		Quantity:    req.Quantity,
		SeatNumbers: req.SeatNumbers,
		TotalPrice:  flight.Price * float64(req.Quantity),
		BookingRef:  ref,
		BookingDate: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		s.compensateClaim(ctx, flightID, req.Quantity, req.SeatNumbers)
		return nil, err
	}

	s.publish(ctx, EventBookingCreated, booking)
	s.log.LogBookingCreated(ctx, booking.ID.String(), flightID.String(), actor.UserID.String())

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) Amend(ctx context.Context, actor Actor, bookingID uuid.UUID, req AmendBookingRequest) (*BookingResponse, error) {
	booking, err := s.authorizedBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err != nil {
		return nil, err
	}
	if err := validateSeatSelection(flight, req.Quantity, req.SeatNumbers); err != nil {
		return nil, err
	}

	oldQuantity, oldSeats := booking.Quantity, booking.SeatNumbers
	flight, err = s.amendWithRetry(ctx, booking.FlightID, oldQuantity, req.Quantity, oldSeats, req.SeatNumbers)
	if err != nil {
		return nil, err
	}

	booking.Quantity = req.Quantity
	booking.SeatNumbers = req.SeatNumbers
	booking.TotalPrice = flight.Price * float64(req.Quantity)

	if err := s.repo.Update(ctx, booking); err != nil {
		// Put capacity back the way it was; the ledger row never changed.
		if _, undoErr := s.flights.AmendCapacity(ctx, booking.FlightID, req.Quantity, oldQuantity, req.SeatNumbers, oldSeats); undoErr != nil {
			s.log.Error("capacity rollback failed after amend",
				slog.String("booking_id", bookingID.String()),
				slog.Any("error", undoErr),
			)
		}
		return nil, err
	}

	s.publish(ctx, EventBookingAmended, booking)

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) Release(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	booking, err := s.authorizedBooking(ctx, actor, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return err
	}

	// Give the claimed capacity back. A missing flight means the schedule
	// entry was already removed; nothing left to restore.
	if _, err := s.flights.ReleaseCapacity(ctx, booking.FlightID, booking.Quantity, booking.SeatNumbers); err != nil && !apperrors.IsNotFound(err) {
		// Reinsert the ledger row so the deduction never outlives its
		// booking.
		if undoErr := s.repo.Create(ctx, booking); undoErr != nil {
			s.log.Error("ledger rollback failed after release",
				slog.String("booking_id", bookingID.String()),
				slog.String("flight_id", booking.FlightID.String()),
				slog.Any("error", undoErr),
			)
		}
		return err
	}

	s.publish(ctx, EventBookingCancelled, booking)
	s.log.LogBookingCancelled(ctx, bookingID.String(), booking.FlightID.String(), booking.UserID.String())
	return nil
}

func (s *service) GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingWithFlight, error) {
	booking, err := s.authorizedBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	summaries := map[uuid.UUID]FlightSummary{}
	result := s.withFlightSummary(ctx, *booking, summaries)
	return &result, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*PaginatedBookings, error) {
	normalizeQuery(&query)
	list, total, err := s.repo.GetByUserID(ctx, userID, query.Limit, (query.Page-1)*query.Limit)
	if err != nil {
		return nil, err
	}
	return s.paginate(ctx, list, total, query), nil
}

func (s *service) GetAllBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error) {
	normalizeQuery(&query)
	list, total, err := s.repo.GetAll(ctx, query.Limit, (query.Page-1)*query.Limit)
	if err != nil {
		return nil, err
	}
	return s.paginate(ctx, list, total, query), nil
}

func (s *service) CountActiveByFlight(ctx context.Context, flightID uuid.UUID) (int64, error) {
	return s.repo.CountActiveByFlight(ctx, flightID)
}

// claimWithRetry attempts a capacity claim twice. A conflict on the first
// attempt may be a race that freed up on release; the second answer is final.
func (s *service) claimWithRetry(ctx context.Context, flightID uuid.UUID, quantity int, seats []string) (*flights.Flight, error) {
	flight, err := s.flights.ClaimCapacity(ctx, flightID, quantity, seats)
	if apperrors.IsCapacityConflict(err) {
		flight, err = s.flights.ClaimCapacity(ctx, flightID, quantity, seats)
	}
	return flight, err
}

func (s *service) amendWithRetry(ctx context.Context, flightID uuid.UUID, oldQuantity, newQuantity int, oldSeats, newSeats []string) (*flights.Flight, error) {
	flight, err := s.flights.AmendCapacity(ctx, flightID, oldQuantity, newQuantity, oldSeats, newSeats)
	if apperrors.IsCapacityConflict(err) {
		flight, err = s.flights.AmendCapacity(ctx, flightID, oldQuantity, newQuantity, oldSeats, newSeats)
	}
	return flight, err
}

func (s *service) compensateClaim(ctx context.Context, flightID uuid.UUID, quantity int, seats []string) {
	if _, err := s.flights.ReleaseCapacity(ctx, flightID, quantity, seats); err != nil {
		s.log.Error("capacity rollback failed after claim",
			slog.String("flight_id", flightID.String()),
			slog.Int("quantity", quantity),
			slog.Any("error", err),
		)
	}
}

func (s *service) authorizedBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.Authorizationf("booking %s does not belong to user", bookingID)
	}
	return booking, nil
}

// validateSeatSelection checks the request shape against the flight's
// booking mode. Seat availability itself is checked later under the row lock.
func validateSeatSelection(flight *flights.Flight, quantity int, seats []string) error {
	if quantity < 1 {
		return apperrors.Validationf("quantity must be at least 1")
	}
	if !flight.HasSeatMap() {
		if len(seats) > 0 {
			return apperrors.Validationf("flight %s does not have assigned seating", flight.FlightNumber)
		}
		return nil
	}
	if len(seats) != quantity {
		return apperrors.Validationf("expected %d seat number(s), got %d", quantity, len(seats))
	}
	if flights.HasDuplicateSeats(seats) {
		return apperrors.Validationf("seat numbers must be unique")
	}
	if missing := flights.MissingSeats(flight.Seats, seats); len(missing) > 0 {
		return apperrors.Validationf("seat(s) %s do not exist on flight %s", strings.Join(missing, ", "), flight.FlightNumber)
	}
	return nil
}

func (s *service) paginate(ctx context.Context, list []Booking, total int64, query BookingListQuery) *PaginatedBookings {
	summaries := map[uuid.UUID]FlightSummary{}
	results := make([]BookingWithFlight, 0, len(list))
	for i := range list {
		results = append(results, s.withFlightSummary(ctx, list[i], summaries))
	}
	return &PaginatedBookings{
		Bookings:   results,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int((total + int64(query.Limit) - 1) / int64(query.Limit)),
	}
}

const unknownFlightDetail = "Unknown"

// withFlightSummary joins a booking with its flight. A booking whose flight
// was deleted still lists, with every detail field set to "Unknown".
func (s *service) withFlightSummary(ctx context.Context, booking Booking, cache map[uuid.UUID]FlightSummary) BookingWithFlight {
	summary, ok := cache[booking.FlightID]
	if !ok {
		flight, err := s.flights.GetByID(ctx, booking.FlightID)
		if err != nil {
			summary = FlightSummary{
				FlightNumber: unknownFlightDetail,
				Departure:    unknownFlightDetail,
				Destination:  unknownFlightDetail,
				DepartsAt:    unknownFlightDetail,
			}
		} else {
			summary = FlightSummary{
				FlightNumber: flight.FlightNumber,
				Departure:    flight.Departure,
				Destination:  flight.Destination,
				DepartsAt:    flight.DepartsAt.Format(time.RFC3339),
			}
		}
		cache[booking.FlightID] = summary
	}
	return BookingWithFlight{BookingResponse: booking.ToResponse(), Flight: summary}
}

func (s *service) publish(ctx context.Context, eventType string, booking *Booking) {
	if s.publisher == nil {
		return
	}
	event := BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID.String(),
		FlightID:   booking.FlightID.String(),
		UserID:     booking.UserID.String(),
		Quantity:   booking.Quantity,
		TotalPrice: booking.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("booking event publish failed",
			slog.String("type", eventType),
			slog.String("booking_id", event.BookingID),
			slog.Any("error", err),
		)
	}
}

func normalizeQuery(query *BookingListQuery) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 10
	}
}

// generateBookingRef generates a unique booking reference
func generateBookingRef() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("SKY-%s-%s", timestamp, string(randomPart)), nil
}
