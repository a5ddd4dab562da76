package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/store"
	"github.com/dkoval/shoply/pkg/auth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users and authenticates credentials.
type AuthService interface {
	// Register creates a user account and issues an access token.
	// Returns ErrEmailTaken when the email is already registered.
	Register(ctx context.Context, req RegisterDto) (*AuthResultDto, error)

	// Login verifies credentials and issues an access token.
	// Returns ErrInvalidCredentials on any mismatch, without revealing
	// whether the email exists.
	Login(ctx context.Context, req LoginDto) (*AuthResultDto, error)
}

type authService struct {
	users  store.UserStore
	tokens *auth.TokenManager
}

func NewAuthService(users store.UserStore, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

// RegisterDto is the payload for account creation.
type RegisterDto struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,min=1,max=200"`
}

// LoginDto is the payload for authentication.
type LoginDto struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserDto struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResultDto struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int64   `json:"expires_in"`
	User        UserDto `json:"user"`
}

func toUserDto(u *store.User) UserDto {
	return UserDto{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func (s *authService) issue(user *store.User) (*AuthResultDto, error) {
	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResultDto{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        toUserDto(user),
	}, nil
}

func (s *authService) Register(ctx context.Context, req RegisterDto) (*AuthResultDto, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, string(hash), req.FullName)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req LoginDto) (*AuthResultDto, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.issue(user)
}
