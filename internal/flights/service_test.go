package flights

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"skybook/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory Repository with the same locked-section
// semantics as the Postgres implementation.
type memoryRepo struct {
	mu      sync.Mutex
	flights map[uuid.UUID]*Flight
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{flights: make(map[uuid.UUID]*Flight)}
}

func (m *memoryRepo) Create(ctx context.Context, flight *Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if flight.ID == uuid.Nil {
		flight.ID = uuid.New()
	}
	copied := *flight
	m.flights[flight.ID] = &copied
	return nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flight, ok := m.flights[id]
	if !ok {
		return nil, apperrors.NotFound("flight")
	}
	copied := *flight
	return &copied, nil
}

func (m *memoryRepo) GetByFlightNumber(ctx context.Context, number string) (*Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, flight := range m.flights {
		if flight.FlightNumber == number {
			copied := *flight
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("flight")
}

func (m *memoryRepo) GetAll(ctx context.Context, query FlightListQuery) ([]Flight, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Flight
	for _, flight := range m.flights {
		list = append(list, *flight)
	}
	return list, int64(len(list)), nil
}

func (m *memoryRepo) Update(ctx context.Context, id uuid.UUID, apply func(*Flight) error) (*Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flight, ok := m.flights[id]
	if !ok {
		return nil, apperrors.NotFound("flight")
	}
	working := *flight
	if err := apply(&working); err != nil {
		return nil, err
	}
	m.flights[id] = &working
	copied := working
	return &copied, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flights[id]; !ok {
		return apperrors.NotFound("flight")
	}
	delete(m.flights, id)
	return nil
}

func (m *memoryRepo) ClaimCapacity(ctx context.Context, flightID uuid.UUID, quantity int, seatLabels []string) (*Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flight, ok := m.flights[flightID]
	if !ok {
		return nil, apperrors.NotFound("flight")
	}
	if flight.HasSeatMap() {
		if overlap := OverlappingSeats(flight.BookedSeats, seatLabels); len(overlap) > 0 {
			return nil, apperrors.Conflictf("seat(s) %s already booked", strings.Join(overlap, ", "))
		}
	}
	if flight.AvailableTickets < quantity {
		return nil, apperrors.Conflictf("only %d tickets available", flight.AvailableTickets)
	}
	flight.AvailableTickets -= quantity
	if flight.HasSeatMap() {
		flight.BookedSeats = append(flight.BookedSeats, seatLabels...)
	}
	copied := *flight
	return &copied, nil
}

func (m *memoryRepo) ReleaseCapacity(ctx context.Context, flightID uuid.UUID, quantity int, seatLabels []string) (*Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flight, ok := m.flights[flightID]
	if !ok {
		return nil, apperrors.NotFound("flight")
	}
	flight.AvailableTickets += quantity
	if flight.AvailableTickets > flight.MaxTickets {
		flight.AvailableTickets = flight.MaxTickets
	}
	if flight.HasSeatMap() && len(seatLabels) > 0 {
		flight.BookedSeats = removeSeats(flight.BookedSeats, seatLabels)
	}
	copied := *flight
	return &copied, nil
}

func (m *memoryRepo) AmendCapacity(ctx context.Context, flightID uuid.UUID, oldQuantity, newQuantity int, oldSeatLabels, newSeatLabels []string) (*Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flight, ok := m.flights[flightID]
	if !ok {
		return nil, apperrors.NotFound("flight")
	}
	restored := flight.AvailableTickets + oldQuantity
	if newQuantity > restored {
		return nil, apperrors.Conflictf("only %d tickets available", restored)
	}
	if flight.HasSeatMap() {
		remaining := removeSeats(flight.BookedSeats, oldSeatLabels)
		if overlap := OverlappingSeats(remaining, newSeatLabels); len(overlap) > 0 {
			return nil, apperrors.Conflictf("seat(s) %s already booked", strings.Join(overlap, ", "))
		}
		flight.BookedSeats = append(remaining, newSeatLabels...)
	}
	flight.AvailableTickets = restored - newQuantity
	copied := *flight
	return &copied, nil
}

type stubCounter struct {
	count int64
}

func (s *stubCounter) CountActiveByFlight(ctx context.Context, flightID uuid.UUID) (int64, error) {
	return s.count, nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, nil, time.Minute)
}

func createRequest() CreateFlightRequest {
	return CreateFlightRequest{
		FlightNumber: "SB101",
		Departure:    "Amsterdam",
		Destination:  "Lisbon",
		DepartsAt:    time.Now().Add(48 * time.Hour),
		MaxTickets:   12,
		Price:        99.50,
	}
}

func TestCreateFlight(t *testing.T) {
	ctx := context.Background()

	t.Run("creates flight without seat map", func(t *testing.T) {
		svc := newTestService(newMemoryRepo())

		flight, err := svc.CreateFlight(ctx, createRequest())

		require.NoError(t, err)
		assert.Equal(t, "SB101", flight.FlightNumber)
		assert.Equal(t, 12, flight.AvailableTickets)
		assert.Empty(t, flight.Seats)
	})

	t.Run("creates seat map matching capacity", func(t *testing.T) {
		svc := newTestService(newMemoryRepo())
		req := createRequest()
		req.WithSeatMap = true

		flight, err := svc.CreateFlight(ctx, req)

		require.NoError(t, err)
		assert.Len(t, flight.Seats, 12)
		assert.Equal(t, "1A", flight.Seats[0])
		assert.Equal(t, "2F", flight.Seats[11])
	})

	t.Run("uppercases flight number", func(t *testing.T) {
		svc := newTestService(newMemoryRepo())
		req := createRequest()
		req.FlightNumber = "sb101"

		flight, err := svc.CreateFlight(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "SB101", flight.FlightNumber)
	})

	t.Run("rejects invalid flight number", func(t *testing.T) {
		svc := newTestService(newMemoryRepo())
		req := createRequest()
		req.FlightNumber = "SB-101"

		_, err := svc.CreateFlight(ctx, req)

		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects duplicate flight number", func(t *testing.T) {
		svc := newTestService(newMemoryRepo())

		_, err := svc.CreateFlight(ctx, createRequest())
		require.NoError(t, err)

		_, err = svc.CreateFlight(ctx, createRequest())
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestUpdateFlightCapacity(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, withSeatMap bool) (Service, *memoryRepo, uuid.UUID) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		req := createRequest()
		req.WithSeatMap = withSeatMap
		flight, err := svc.CreateFlight(ctx, req)
		require.NoError(t, err)
		id, err := uuid.Parse(flight.ID)
		require.NoError(t, err)
		return svc, repo, id
	}

	t.Run("raising capacity adds availability", func(t *testing.T) {
		svc, _, id := setup(t, false)
		newMax := 20

		flight, err := svc.UpdateFlight(ctx, id, UpdateFlightRequest{MaxTickets: &newMax})

		require.NoError(t, err)
		assert.Equal(t, 20, flight.MaxTickets)
		assert.Equal(t, 20, flight.AvailableTickets)
	})

	t.Run("lowering below booked count fails", func(t *testing.T) {
		svc, repo, id := setup(t, false)
		_, err := repo.ClaimCapacity(ctx, id, 5, nil)
		require.NoError(t, err)

		newMax := 4
		_, err = svc.UpdateFlight(ctx, id, UpdateFlightRequest{MaxTickets: &newMax})

		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("lowering to booked count leaves zero availability", func(t *testing.T) {
		svc, repo, id := setup(t, false)
		_, err := repo.ClaimCapacity(ctx, id, 5, nil)
		require.NoError(t, err)

		newMax := 5
		flight, err := svc.UpdateFlight(ctx, id, UpdateFlightRequest{MaxTickets: &newMax})

		require.NoError(t, err)
		assert.Equal(t, 0, flight.AvailableTickets)
	})

	t.Run("resizing regrows seat map", func(t *testing.T) {
		svc, _, id := setup(t, true)
		newMax := 18

		flight, err := svc.UpdateFlight(ctx, id, UpdateFlightRequest{MaxTickets: &newMax})

		require.NoError(t, err)
		assert.Len(t, flight.Seats, 18)
	})

	t.Run("shrinking seat map keeps booked seats", func(t *testing.T) {
		svc, repo, id := setup(t, true)
		// Seat 2F exists only while capacity is at least 12.
		_, err := repo.ClaimCapacity(ctx, id, 1, []string{"2F"})
		require.NoError(t, err)

		newMax := 6
		_, err = svc.UpdateFlight(ctx, id, UpdateFlightRequest{MaxTickets: &newMax})

		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestDeleteFlight(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, counter BookingCounter) (Service, uuid.UUID) {
		svc := newTestService(newMemoryRepo())
		svc.SetBookingCounter(counter)
		flight, err := svc.CreateFlight(ctx, createRequest())
		require.NoError(t, err)
		id, err := uuid.Parse(flight.ID)
		require.NoError(t, err)
		return svc, id
	}

	t.Run("deletes flight without bookings", func(t *testing.T) {
		svc, id := setup(t, &stubCounter{count: 0})

		require.NoError(t, svc.DeleteFlight(ctx, id))

		_, err := svc.GetFlight(ctx, id)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("refuses to delete with active bookings", func(t *testing.T) {
		svc, id := setup(t, &stubCounter{count: 3})

		err := svc.DeleteFlight(ctx, id)

		assert.True(t, apperrors.IsCapacityConflict(err))
	})

	t.Run("missing flight", func(t *testing.T) {
		svc := newTestService(newMemoryRepo())

		err := svc.DeleteFlight(ctx, uuid.New())

		assert.True(t, apperrors.IsNotFound(err))
	})
}
