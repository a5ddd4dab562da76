package rest

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dkoval/shoply/internal/imaging"
	"github.com/dkoval/shoply/internal/service"
	"github.com/dkoval/shoply/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// UserHandler serves profile, password, address, wishlist and avatar
// endpoints for the authenticated user.
type UserHandler struct {
	users    service.UserService
	avatars  service.AvatarService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewUserHandler(users service.UserService, avatars service.AvatarService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		avatars:  avatars,
		validate: validator.New(),
		logger:   logger.With("component", "rest.users"),
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/me", func(r chi.Router) {
		r.Get("/", h.Profile)
		r.Put("/", h.UpdateProfile)
		r.Put("/password", h.ChangePassword)
		r.Post("/avatar", h.UploadAvatar)
		r.Post("/avatar/base64", h.UploadAvatarBase64)
		r.Delete("/avatar", h.RemoveAvatar)

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.Addresses)
			r.Post("/", h.AddAddress)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", h.UpdateAddress)
				r.Delete("/", h.DeleteAddress)
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.Wishlist)
			r.Post("/{productID}", h.AddToWishlist)
			r.Delete("/{productID}", h.RemoveFromWishlist)
		})
	})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	profile, err := h.users.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var req service.ProfileUpdateDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	profile, err := h.users.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, profile)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var req service.PasswordChangeDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req); err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "password changed", "user_id", userID)
	web.RespondSuccess(w, mLogger, http.StatusOK, "Password updated", nil)
}

// UploadAvatar accepts the image either as a multipart "file" part or
// as the raw request body.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	data, ok := readUpload(w, r, mLogger)
	if !ok {
		return
	}

	profile, err := h.avatars.Upload(r.Context(), userID, data)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "avatar uploaded", "user_id", userID)
	web.RespondJSON(w, mLogger, http.StatusOK, profile)
}

// UploadAvatarBase64 accepts the image as a base64 form field, with or
// without a data-URL prefix.
func (h *UserHandler) UploadAvatarBase64(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	// Base64 inflates the payload by a third, leave room for that.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes*2)
	if err := r.ParseForm(); err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Failed to read upload")
		return
	}
	encoded := r.PostFormValue("file_data")
	if encoded == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Missing file_data field")
		return
	}
	// Strip a data URL prefix such as "data:image/png;base64,".
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid base64 image data")
		return
	}

	profile, err := h.avatars.Upload(r.Context(), userID, data)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "avatar uploaded", "user_id", userID)
	web.RespondJSON(w, mLogger, http.StatusOK, profile)
}

func (h *UserHandler) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.avatars.Remove(r.Context(), userID); err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondSuccess(w, mLogger, http.StatusOK, "Avatar removed", nil)
}

func readUpload(w http.ResponseWriter, r *http.Request, logger *slog.Logger) ([]byte, bool) {
	// One byte over the limit is enough for validation to reject the
	// upload as too large without buffering the rest.
	if file, _, err := r.FormFile("file"); err == nil {
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(io.LimitReader(file, imaging.MaxUploadBytes+1))
		if err != nil {
			web.RespondError(w, logger, http.StatusBadRequest, "Failed to read upload")
			return nil, false
		}
		return data, true
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, imaging.MaxUploadBytes+1))
	if err != nil {
		web.RespondError(w, logger, http.StatusBadRequest, "Failed to read upload")
		return nil, false
	}
	return data, true
}

func (h *UserHandler) Addresses(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	addresses, err := h.users.Addresses(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, addresses)
}

func (h *UserHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var req service.AddressCreateDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	address, err := h.users.AddAddress(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusCreated, address)
}

func (h *UserHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	addressID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var req service.AddressUpdateDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	address, err := h.users.UpdateAddress(r.Context(), userID, addressID, req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, address)
}

func (h *UserHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	addressID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.users.DeleteAddress(r.Context(), userID, addressID); err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondSuccess(w, mLogger, http.StatusOK, "Address deleted", nil)
}

func (h *UserHandler) Wishlist(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	entries, err := h.users.Wishlist(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, entries)
}

func (h *UserHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	productID, ok := web.ParsePathID(w, r, mLogger, "productID")
	if !ok {
		return
	}

	entry, err := h.users.AddToWishlist(r.Context(), userID, productID)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusCreated, entry)
}

func (h *UserHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	productID, ok := web.ParsePathID(w, r, mLogger, "productID")
	if !ok {
		return
	}

	if err := h.users.RemoveFromWishlist(r.Context(), userID, productID); err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondSuccess(w, mLogger, http.StatusOK, "Removed from wishlist", nil)
}
