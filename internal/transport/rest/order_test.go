package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/service"
	"github.com/dkoval/shoply/pkg/web"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type mockOrderService struct {
	order *service.OrderDto
	page  *service.OrderPageDto
	error error
}

func (m *mockOrderService) Place(_ context.Context, _ uuid.UUID, _ service.OrderCreateDto) (*service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderService) FindByID(_ context.Context, _, _ uuid.UUID) (*service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderService) List(_ context.Context, _ uuid.UUID, _ service.OrderQuery) (*service.OrderPageDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockOrderService) Cancel(_ context.Context, _, _ uuid.UUID) (*service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), web.UserIDKey, userID.String())
	return req.WithContext(ctx)
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(data)
}

func validPlaceBody() string {
	return `{
		"items": [
			{"product_id": "0d1f7f2e-8a66-4f27-9a3c-0b5f8d2f9e11", "quantity": 2}
		],
		"shipping_address": {
			"full_name": "Test Buyer",
			"line1": "1 Main St",
			"city": "Springfield",
			"postal_code": "62701",
			"country": "US"
		},
		"payment_method": "card"
	}`
}

func Test_OrderHandler_Place(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	created := &service.OrderDto{
		ID: orderID, UserID: userID, Status: "pending", TotalAmount: 20_000,
		PaymentMethod: "card", CreatedAt: time.Unix(0, 0).UTC(),
	}

	testCases := []struct {
		name         string
		mockService  mockOrderService
		body         string
		authed       bool
		expectedCode int
	}{
		{
			name:         "Success - order placed",
			mockService:  mockOrderService{order: created},
			body:         validPlaceBody(),
			authed:       true,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - nothing to order",
			mockService:  mockOrderService{error: apperrors.ErrEmptyOrder},
			body:         validPlaceBody(),
			authed:       true,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - no items in body",
			mockService:  mockOrderService{order: created},
			body:         strings.Replace(validPlaceBody(), `{"product_id": "0d1f7f2e-8a66-4f27-9a3c-0b5f8d2f9e11", "quantity": 2}`, "", 1),
			authed:       true,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - zero quantity",
			mockService:  mockOrderService{order: created},
			body:         strings.Replace(validPlaceBody(), `"quantity": 2`, `"quantity": 0`, 1),
			authed:       true,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - insufficient stock maps to 400",
			mockService:  mockOrderService{error: apperrors.ErrInsufficientStock},
			body:         validPlaceBody(),
			authed:       true,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - missing shipping address",
			mockService:  mockOrderService{order: created},
			body:         `{"payment_method": "card"}`,
			authed:       true,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - invalid payment method",
			mockService:  mockOrderService{order: created},
			body:         strings.Replace(validPlaceBody(), "card", "bitcoin", 1),
			authed:       true,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - unauthenticated",
			mockService:  mockOrderService{order: created},
			body:         validPlaceBody(),
			authed:       false,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Error - service failure",
			mockService:  mockOrderService{error: errors.New("db down")},
			body:         validPlaceBody(),
			authed:       true,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := NewOrderHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(tc.body))
			if tc.authed {
				req = withUser(req, userID)
			}
			rr := httptest.NewRecorder()

			api.Place(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusCreated {
				assert.JSONEq(t, toJSON(t, created), rr.Body.String())
			}
		})
	}
}

func Test_OrderHandler_FindByID(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	testCases := []struct {
		name         string
		mockService  mockOrderService
		orderID      string
		expectedCode int
	}{
		{
			name: "Success - order found",
			mockService: mockOrderService{order: &service.OrderDto{
				ID: orderID, UserID: userID, Status: "pending",
			}},
			orderID:      orderID.String(),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - not found",
			mockService:  mockOrderService{error: apperrors.ErrOrderNotFound},
			orderID:      orderID.String(),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - access denied",
			mockService:  mockOrderService{error: apperrors.ErrAccessDenied},
			orderID:      orderID.String(),
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "Error - invalid id",
			mockService:  mockOrderService{},
			orderID:      "not-a-uuid",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := NewOrderHandler(&tc.mockService, testLogger())
			req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+tc.orderID, nil), userID)
			req.SetPathValue("id", tc.orderID)
			rr := httptest.NewRecorder()

			api.FindByID(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func Test_OrderHandler_Cancel(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	testCases := []struct {
		name         string
		mockService  mockOrderService
		expectedCode int
	}{
		{
			name: "Success - cancelled",
			mockService: mockOrderService{order: &service.OrderDto{
				ID: orderID, UserID: userID, Status: "cancelled",
			}},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - not cancellable maps to 409",
			mockService:  mockOrderService{error: apperrors.ErrOrderNotCancellable},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - not found",
			mockService:  mockOrderService{error: apperrors.ErrOrderNotFound},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := NewOrderHandler(&tc.mockService, testLogger())
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil), userID)
			req.SetPathValue("id", orderID.String())
			rr := httptest.NewRecorder()

			api.Cancel(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func Test_OrderHandler_List(t *testing.T) {
	userID := uuid.New()
	api := NewOrderHandler(&mockOrderService{page: &service.OrderPageDto{
		Orders:     []service.OrderDto{{ID: uuid.New(), UserID: userID, Status: "pending"}},
		Pagination: service.PaginationDto{Page: 1, Limit: 10, TotalItems: 1, TotalPages: 1},
	}}, testLogger())

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=1&limit=10", nil), userID)
	rr := httptest.NewRecorder()

	api.List(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var page service.OrderPageDto
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Pagination.TotalItems)
	assert.Len(t, page.Orders, 1)
}
