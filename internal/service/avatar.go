package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/dkoval/shoply/internal/imaging"
	"github.com/dkoval/shoply/internal/storage"
	"github.com/dkoval/shoply/internal/store"
	"github.com/google/uuid"
)

const avatarPrefix = "avatars/"

// AvatarService ingests profile pictures into the blob store.
type AvatarService interface {
	// Upload validates and processes the image, stores it under a fresh
	// key, removes the user's previous avatars and persists the new URL.
	Upload(ctx context.Context, userID uuid.UUID, data []byte) (*UserDto, error)

	// Remove deletes the user's avatar objects and clears the URL.
	Remove(ctx context.Context, userID uuid.UUID) error
}

type avatarService struct {
	users store.UserStore
	blobs storage.BlobStore
}

func NewAvatarService(users store.UserStore, blobs storage.BlobStore) AvatarService {
	return &avatarService{users: users, blobs: blobs}
}

func avatarKey(userID uuid.UUID) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate avatar suffix: %w", err)
	}
	return fmt.Sprintf("%s%s_%s.jpg", avatarPrefix, userID, hex.EncodeToString(suffix)), nil
}

func (s *avatarService) Upload(ctx context.Context, userID uuid.UUID, data []byte) (*UserDto, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	processed, err := imaging.ProcessAvatar(data)
	if err != nil {
		return nil, err
	}

	key, err := avatarKey(userID)
	if err != nil {
		return nil, err
	}
	if err := s.blobs.Upload(ctx, key, processed, "image/jpeg"); err != nil {
		return nil, err
	}

	// The new object is live before the old ones go away, so a crash
	// between the two steps never leaves the profile without an avatar.
	s.removeExisting(ctx, userID, key)

	url := s.blobs.PublicURL(key)
	if err := s.users.UpdateAvatar(ctx, userID, &url); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDto(user)
	return &dto, nil
}

func (s *avatarService) Remove(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	s.removeExisting(ctx, userID, "")
	return s.users.UpdateAvatar(ctx, userID, nil)
}

// removeExisting deletes every avatar object of the user except keep.
// Failures are logged, not returned: stale objects cost storage, not
// correctness.
func (s *avatarService) removeExisting(ctx context.Context, userID uuid.UUID, keep string) {
	keys, err := s.blobs.List(ctx, avatarPrefix+userID.String()+"_")
	if err != nil {
		slog.WarnContext(ctx, "failed to list old avatars", "user_id", userID, "error", err)
		return
	}
	stale := keys[:0]
	for _, key := range keys {
		if key != keep {
			stale = append(stale, key)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := s.blobs.Remove(ctx, stale); err != nil {
		slog.WarnContext(ctx, "failed to remove old avatars", "user_id", userID, "error", err)
	}
}
