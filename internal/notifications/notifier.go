package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"skybook/internal/bookings"
	"skybook/pkg/logger"
)

// Notifier turns booking lifecycle events into passenger-facing messages.
// Delivery is log-only; swapping in an email or push backend means replacing
// the send step, not the formatting.
type Notifier struct {
	log *logger.Logger
}

func NewNotifier() *Notifier {
	return &Notifier{log: logger.GetDefault()}
}

// Notify formats and delivers the message for one booking event.
func (n *Notifier) Notify(ctx context.Context, event bookings.BookingEvent) error {
	message, err := formatMessage(event)
	if err != nil {
		return err
	}

	n.log.Info("booking notification",
		slog.String("type", event.Type),
		slog.String("user_id", event.UserID),
		slog.String("booking_id", event.BookingID),
		slog.String("message", message),
	)
	return nil
}

func formatMessage(event bookings.BookingEvent) (string, error) {
	switch event.Type {
	case bookings.EventBookingCreated:
		return fmt.Sprintf("Your booking for %d ticket(s) is confirmed. Total charged: %.2f.", event.Quantity, event.TotalPrice), nil
	case bookings.EventBookingAmended:
		return fmt.Sprintf("Your booking was updated to %d ticket(s). New total: %.2f.", event.Quantity, event.TotalPrice), nil
	case bookings.EventBookingCancelled:
		return fmt.Sprintf("Your booking for %d ticket(s) was cancelled. %.2f will be refunded.", event.Quantity, event.TotalPrice), nil
	default:
		return "", fmt.Errorf("unknown booking event type %q", event.Type)
	}
}
