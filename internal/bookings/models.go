package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one row of the booking ledger. Capacity itself lives on the
// flight row; a booking only records what was claimed and at what price.
type Booking struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	FlightID    uuid.UUID `gorm:"type:uuid;index;not null" json:"flight_id"`
	Quantity    int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	SeatNumbers []string  `gorm:"serializer:json" json:"seat_numbers,omitempty"`
	TotalPrice  float64   `gorm:"not null" json:"total_price"`
	BookingRef  string    `gorm:"unique;not null" json:"booking_ref"`
	BookingDate time.Time `gorm:"not null" json:"booking_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// CreateBookingRequest is the payload for reserving tickets on a flight.
// SeatNumbers is required for seat-mapped flights and must be empty otherwise.
type CreateBookingRequest struct {
	FlightID    string   `json:"flight_id" binding:"required,uuid"`
	Quantity    int      `json:"quantity" binding:"required,min=1"`
	SeatNumbers []string `json:"seat_numbers,omitempty"`
}

// AmendBookingRequest replaces a booking's quantity and seat selection.
type AmendBookingRequest struct {
	Quantity    int      `json:"quantity" binding:"required,min=1"`
	SeatNumbers []string `json:"seat_numbers,omitempty"`
}

// BookingListQuery carries pagination for booking listings.
type BookingListQuery struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
}

// BookingResponse is the outward shape of a ledger row.
type BookingResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FlightID    string    `json:"flight_id"`
	Quantity    int       `json:"quantity"`
	SeatNumbers []string  `json:"seat_numbers,omitempty"`
	TotalPrice  float64   `json:"total_price"`
	BookingRef  string    `json:"booking_ref"`
	BookingDate time.Time `json:"booking_date"`
}

// FlightSummary is the flight detail embedded in booking listings. When the
// referenced flight no longer exists every field reads "Unknown" instead of
// failing the whole listing.
type FlightSummary struct {
	FlightNumber string `json:"flight_number"`
	Departure    string `json:"departure"`
	Destination  string `json:"destination"`
	DepartsAt    string `json:"departs_at"`
}

// BookingWithFlight pairs a ledger row with its flight summary.
type BookingWithFlight struct {
	BookingResponse
	Flight FlightSummary `json:"flight"`
}

// PaginatedBookings wraps a page of booking listings.
type PaginatedBookings struct {
	Bookings   []BookingWithFlight `json:"bookings"`
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// ToResponse converts a Booking to its response representation
func (b *Booking) ToResponse() BookingResponse {
	return BookingResponse{
		ID:          b.ID.String(),
		UserID:      b.UserID.String(),
		FlightID:    b.FlightID.String(),
		Quantity:    b.Quantity,
		SeatNumbers: b.SeatNumbers,
		TotalPrice:  b.TotalPrice,
		BookingRef:  b.BookingRef,
		BookingDate: b.BookingDate,
	}
}
