package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/imaging"
	"github.com/dkoval/shoply/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func avatarTestUser() *store.User {
	return &store.User{ID: uuid.New(), Email: "user@example.com", FullName: "User", IsActive: true}
}

func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 400, 400))))
	return buf.Bytes()
}

func TestAvatarService_Upload(t *testing.T) {
	t.Run("stores the processed image and persists its URL", func(t *testing.T) {
		user := avatarTestUser()
		users := &mockUserStore{user: user}
		blobs := newMockBlobStore()
		svc := NewAvatarService(users, blobs)

		updated, err := svc.Upload(context.Background(), user.ID, testImage(t))

		require.NoError(t, err)
		require.NotNil(t, users.avatarURL)
		assert.True(t, strings.HasPrefix(*users.avatarURL, "https://cdn.example.com/avatars/"+user.ID.String()+"_"))
		assert.True(t, strings.HasSuffix(*users.avatarURL, ".jpg"))
		assert.Equal(t, users.avatarURL, updated.AvatarURL)
		assert.Len(t, blobs.objects, 1)
	})

	t.Run("replacing an avatar leaves exactly one object", func(t *testing.T) {
		user := avatarTestUser()
		users := &mockUserStore{user: user}
		blobs := newMockBlobStore()
		svc := NewAvatarService(users, blobs)

		_, err := svc.Upload(context.Background(), user.ID, testImage(t))
		require.NoError(t, err)
		firstURL := *users.avatarURL

		_, err = svc.Upload(context.Background(), user.ID, testImage(t))
		require.NoError(t, err)

		assert.Len(t, blobs.objects, 1, "old avatar object must be removed")
		assert.NotEqual(t, firstURL, *users.avatarURL, "each upload gets a fresh key")
	})

	t.Run("rejects an oversized upload before touching storage", func(t *testing.T) {
		user := avatarTestUser()
		blobs := newMockBlobStore()
		svc := NewAvatarService(&mockUserStore{user: user}, blobs)

		_, err := svc.Upload(context.Background(), user.ID, make([]byte, imaging.MaxUploadBytes+1))

		require.ErrorIs(t, err, apperrors.ErrFileTooLarge)
		assert.Empty(t, blobs.objects)
	})

	t.Run("rejects a non-image upload", func(t *testing.T) {
		user := avatarTestUser()
		svc := NewAvatarService(&mockUserStore{user: user}, newMockBlobStore())

		_, err := svc.Upload(context.Background(), user.ID, []byte("<html>not an image</html>"))

		require.ErrorIs(t, err, apperrors.ErrInvalidFileType)
	})

	t.Run("upload failure keeps the old URL", func(t *testing.T) {
		user := avatarTestUser()
		oldURL := "https://cdn.example.com/avatars/old.jpg"
		user.AvatarURL = &oldURL
		users := &mockUserStore{user: user, avatarURL: &oldURL}
		blobs := newMockBlobStore()
		blobs.uploadErr = assert.AnError
		svc := NewAvatarService(users, blobs)

		_, err := svc.Upload(context.Background(), user.ID, testImage(t))

		require.Error(t, err)
		assert.Equal(t, &oldURL, users.avatarURL)
	})
}

func TestAvatarService_Remove(t *testing.T) {
	user := avatarTestUser()
	users := &mockUserStore{user: user}
	blobs := newMockBlobStore()
	blobs.objects["avatars/"+user.ID.String()+"_abc.jpg"] = []byte("jpeg")
	svc := NewAvatarService(users, blobs)

	require.NoError(t, svc.Remove(context.Background(), user.ID))

	assert.Empty(t, blobs.objects)
	assert.True(t, users.avatarCleared)
}
