package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capturedLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{Logger: slog.New(handler)}, &buf
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
	assert.Equal(t, slog.LevelInfo, getLogLevel("garbage"))
}

func TestBusinessEventHelpers(t *testing.T) {
	ctx := context.Background()

	t.Run("flight created", func(t *testing.T) {
		log, buf := capturedLogger()
		log.LogFlightCreated(ctx, "flight-1", "SB101")

		out := buf.String()
		assert.Contains(t, out, "Flight Created")
		assert.Contains(t, out, "SB101")
		assert.Contains(t, out, "flight-1")
	})

	t.Run("booking lifecycle", func(t *testing.T) {
		log, buf := capturedLogger()
		log.LogBookingCreated(ctx, "booking-1", "flight-1", "user-1")
		log.LogBookingCancelled(ctx, "booking-1", "flight-1", "user-1")

		out := buf.String()
		assert.Contains(t, out, "Booking Created")
		assert.Contains(t, out, "Booking Cancelled")
		assert.Contains(t, out, "booking-1")
	})

	t.Run("auth and rate limit", func(t *testing.T) {
		log, buf := capturedLogger()
		log.LogAuthSuccess(ctx, "user-1", "password")
		log.LogAuthFailure(ctx, "invalid credentials", "10.0.0.1")
		log.LogRateLimitExceeded(ctx, "10.0.0.1", "/api/v1/bookings")

		out := buf.String()
		assert.Contains(t, out, "Authentication Success")
		assert.Contains(t, out, "Authentication Failure")
		assert.Contains(t, out, "Rate Limit Exceeded")
		assert.Contains(t, out, "/api/v1/bookings")
	})
}
