package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"skybook/internal/shared/apperrors"
	"skybook/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService records calls and returns canned results.
type stubService struct {
	reserveResult *BookingResponse
	reserveErr    error
	amendResult   *BookingResponse
	amendErr      error
	releaseErr    error
	getResult     *BookingWithFlight
	getErr        error
	listResult    *PaginatedBookings
	listErr       error

	lastActor Actor
}

func (s *stubService) Reserve(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingResponse, error) {
	s.lastActor = actor
	return s.reserveResult, s.reserveErr
}

func (s *stubService) Amend(ctx context.Context, actor Actor, bookingID uuid.UUID, req AmendBookingRequest) (*BookingResponse, error) {
	s.lastActor = actor
	return s.amendResult, s.amendErr
}

func (s *stubService) Release(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	s.lastActor = actor
	return s.releaseErr
}

func (s *stubService) GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingWithFlight, error) {
	s.lastActor = actor
	return s.getResult, s.getErr
}

func (s *stubService) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*PaginatedBookings, error) {
	return s.listResult, s.listErr
}

func (s *stubService) GetAllBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error) {
	return s.listResult, s.listErr
}

func (s *stubService) CountActiveByFlight(ctx context.Context, flightID uuid.UUID) (int64, error) {
	return 0, nil
}

func setupTestRouter(svc Service, userID uuid.UUID, role users.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Set("user_role", string(role))
		c.Next()
	})

	controller := NewController(svc)
	group := engine.Group("/api/v1")
	{
		group.POST("/bookings", controller.CreateBooking)
		group.GET("/bookings", controller.GetUserBookings)
		group.GET("/bookings/:id", controller.GetBooking)
		group.GET("/bookings/user/:id", controller.GetBookingsForUser)
		group.PUT("/bookings/:id", controller.UpdateBooking)
		group.DELETE("/bookings/:id", controller.DeleteBooking)
		group.GET("/admin/bookings", controller.GetAllBookings)
	}
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestCreateBookingEndpoint(t *testing.T) {
	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := &stubService{reserveResult: &BookingResponse{ID: uuid.New().String(), Quantity: 2}}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodPost, "/api/v1/bookings", CreateBookingRequest{
			FlightID: uuid.New().String(),
			Quantity: 2,
		})

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, userID, svc.lastActor.UserID)
	})

	t.Run("capacity conflict maps to 409", func(t *testing.T) {
		svc := &stubService{reserveErr: apperrors.Conflictf("only 1 tickets available")}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodPost, "/api/v1/bookings", CreateBookingRequest{
			FlightID: uuid.New().String(),
			Quantity: 2,
		})

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		svc := &stubService{}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
			"flight_id": "not-a-uuid",
			"quantity":  1,
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		svc := &stubService{reserveErr: apperrors.Validationf("seat numbers must be unique")}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodPost, "/api/v1/bookings", CreateBookingRequest{
			FlightID: uuid.New().String(),
			Quantity: 1,
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestBookingEndpointStatusMapping(t *testing.T) {
	userID := uuid.New()
	bookingPath := "/api/v1/bookings/" + uuid.New().String()

	t.Run("get not found maps to 404", func(t *testing.T) {
		svc := &stubService{getErr: apperrors.NotFound("booking")}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodGet, bookingPath, nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("authorization maps to 403", func(t *testing.T) {
		svc := &stubService{getErr: apperrors.Authorizationf("booking does not belong to user")}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodGet, bookingPath, nil)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("storage failure maps to 500", func(t *testing.T) {
		svc := &stubService{getErr: apperrors.Storagef("get booking", assert.AnError)}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodGet, bookingPath, nil)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})

	t.Run("invalid id maps to 400", func(t *testing.T) {
		svc := &stubService{}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodGet, "/api/v1/bookings/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("amend success maps to 200", func(t *testing.T) {
		svc := &stubService{amendResult: &BookingResponse{Quantity: 3}}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodPut, bookingPath, AmendBookingRequest{Quantity: 3})

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("release success maps to 204", func(t *testing.T) {
		svc := &stubService{}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodDelete, bookingPath, nil)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})

	t.Run("release of released booking maps to 404", func(t *testing.T) {
		svc := &stubService{releaseErr: apperrors.NotFound("booking")}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodDelete, bookingPath, nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestListBookingEndpoints(t *testing.T) {
	userID := uuid.New()
	page := &PaginatedBookings{
		Bookings:   []BookingWithFlight{},
		TotalCount: 0,
		Page:       1,
		Limit:      10,
	}

	t.Run("user listing", func(t *testing.T) {
		svc := &stubService{listResult: page}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodGet, "/api/v1/bookings", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("admin listing", func(t *testing.T) {
		svc := &stubService{listResult: page}
		engine := setupTestRouter(svc, userID, users.RoleAdmin)

		recorder := doJSON(t, engine, http.MethodGet, "/api/v1/admin/bookings", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("own bookings by user id", func(t *testing.T) {
		svc := &stubService{listResult: page}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodGet, "/api/v1/bookings/user/"+userID.String(), nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("another user's bookings require admin", func(t *testing.T) {
		svc := &stubService{listResult: page}
		engine := setupTestRouter(svc, userID, users.RoleUser)

		recorder := doJSON(t, engine, http.MethodGet, "/api/v1/bookings/user/"+uuid.New().String(), nil)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("admin can list any user's bookings", func(t *testing.T) {
		svc := &stubService{listResult: page}
		engine := setupTestRouter(svc, userID, users.RoleAdmin)

		recorder := doJSON(t, engine, http.MethodGet, "/api/v1/bookings/user/"+uuid.New().String(), nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}
