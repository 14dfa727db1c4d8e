package flights

import (
	"time"

	"github.com/google/uuid"
)

// Flight is the inventory record for a single flight. AvailableTickets is the
// live counter the reservation engine claims against; for seat-mapped flights
// BookedSeats mirrors the labels held by active bookings. Both are kept in
// lockstep with the booking ledger by flight-scoped transactions.
type Flight struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	FlightNumber     string    `json:"flight_number" gorm:"uniqueIndex;not null;size:6"`
	Departure        string    `json:"departure" gorm:"not null;size:255"`
	Destination      string    `json:"destination" gorm:"not null;size:255"`
	DepartsAt        time.Time `json:"departs_at" gorm:"not null"`
	MaxTickets       int       `json:"max_tickets" gorm:"not null;check:max_tickets > 0"`
	AvailableTickets int       `json:"available_tickets" gorm:"not null;check:available_tickets >= 0"`
	Price            float64   `json:"price" gorm:"not null;check:price >= 0"`
	Seats            []string  `json:"seats,omitempty" gorm:"serializer:json"`
	BookedSeats      []string  `json:"booked_seats,omitempty" gorm:"serializer:json"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Flight) TableName() string {
	return "flights"
}

// HasSeatMap reports whether bookings on this flight claim explicit seat labels.
func (f *Flight) HasSeatMap() bool {
	return len(f.Seats) > 0
}

// BookedCount is the number of tickets currently claimed by active bookings.
func (f *Flight) BookedCount() int {
	return f.MaxTickets - f.AvailableTickets
}

type CreateFlightRequest struct {
	FlightNumber string    `json:"flight_number" binding:"required,flightnum"`
	Departure    string    `json:"departure" binding:"required,min=2,max=255"`
	Destination  string    `json:"destination" binding:"required,min=2,max=255"`
	DepartsAt    time.Time `json:"departs_at" binding:"required"`
	MaxTickets   int       `json:"max_tickets" binding:"required,min=1,max=1000"`
	Price        float64   `json:"price" binding:"min=0"`
	WithSeatMap  bool      `json:"with_seat_map"`
}

type UpdateFlightRequest struct {
	Departure   *string    `json:"departure" binding:"omitempty,min=2,max=255"`
	Destination *string    `json:"destination" binding:"omitempty,min=2,max=255"`
	DepartsAt   *time.Time `json:"departs_at"`
	MaxTickets  *int       `json:"max_tickets" binding:"omitempty,min=1,max=1000"`
	Price       *float64   `json:"price" binding:"omitempty,min=0"`
}

type FlightListQuery struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Departure   string `form:"departure"`
	Destination string `form:"destination"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
}

type FlightResponse struct {
	ID               string    `json:"id"`
	FlightNumber     string    `json:"flight_number"`
	Departure        string    `json:"departure"`
	Destination      string    `json:"destination"`
	DepartsAt        time.Time `json:"departs_at"`
	MaxTickets       int       `json:"max_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	Price            float64   `json:"price"`
	Seats            []string  `json:"seats,omitempty"`
	BookedSeats      []string  `json:"booked_seats,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type PaginatedFlights struct {
	Flights    []FlightResponse `json:"flights"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

func (f *Flight) ToResponse() FlightResponse {
	return FlightResponse{
		ID:               f.ID.String(),
		FlightNumber:     f.FlightNumber,
		Departure:        f.Departure,
		Destination:      f.Destination,
		DepartsAt:        f.DepartsAt,
		MaxTickets:       f.MaxTickets,
		AvailableTickets: f.AvailableTickets,
		Price:            f.Price,
		Seats:            f.Seats,
		BookedSeats:      f.BookedSeats,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}
