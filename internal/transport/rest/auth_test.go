package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/service"
	"github.com/stretchr/testify/assert"
)

type mockAuthService struct {
	result *service.AuthResultDto
	error  error
}

func (m *mockAuthService) Register(_ context.Context, _ service.RegisterDto) (*service.AuthResultDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.result, nil
}

func (m *mockAuthService) Login(_ context.Context, _ service.LoginDto) (*service.AuthResultDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.result, nil
}

func Test_AuthHandler_Register(t *testing.T) {
	result := &service.AuthResultDto{AccessToken: "token", TokenType: "Bearer", ExpiresIn: 3600}

	testCases := []struct {
		name         string
		mockService  mockAuthService
		body         string
		expectedCode int
	}{
		{
			name:         "Success",
			mockService:  mockAuthService{result: result},
			body:         `{"email": "new@example.com", "password": "s3cret-pass", "full_name": "New User"}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - email taken maps to 409",
			mockService:  mockAuthService{error: apperrors.ErrEmailTaken},
			body:         `{"email": "taken@example.com", "password": "s3cret-pass", "full_name": "New User"}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - invalid email",
			mockService:  mockAuthService{result: result},
			body:         `{"email": "not-an-email", "password": "s3cret-pass", "full_name": "New User"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - short password",
			mockService:  mockAuthService{result: result},
			body:         `{"email": "new@example.com", "password": "short", "full_name": "New User"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - malformed body",
			mockService:  mockAuthService{result: result},
			body:         `{"email": `,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := NewAuthHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			api.Register(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func Test_AuthHandler_Login(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockAuthService
		body         string
		expectedCode int
	}{
		{
			name:         "Success",
			mockService:  mockAuthService{result: &service.AuthResultDto{AccessToken: "token", TokenType: "Bearer"}},
			body:         `{"email": "user@example.com", "password": "s3cret-pass"}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - invalid credentials map to 401",
			mockService:  mockAuthService{error: apperrors.ErrInvalidCredentials},
			body:         `{"email": "user@example.com", "password": "wrong"}`,
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := NewAuthHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			api.Login(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}
