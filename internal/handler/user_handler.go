package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/user"
)

type UpdateProfileRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
}

type SetUserStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type UserHandler struct {
	users    user.Service
	validate *validator.Validate
}

func NewUserHandler(users user.Service) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: validator.New(),
	}
}

func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	u, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", identity.UserID).Msg("handler: failed to load profile")
		respondDomainError(w, err, "failed to load profile")
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req UpdateProfileRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	u := &user.User{
		ID:             identity.UserID,
		Email:          req.Email,
		Name:           req.Name,
		Address:        req.Address,
		Phone:          req.Phone,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	}

	if err := h.users.UpdateProfile(r.Context(), u); err != nil {
		log.Warn().Err(err).Int64("user_id", identity.UserID).Msg("handler: failed to update profile")
		respondDomainError(w, err, "failed to update profile")
		return
	}

	updated, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		respondDomainError(w, err, "failed to reload profile")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list users")
		respondDomainError(w, err, "failed to list users")
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) HandleSetUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var req SetUserStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.users.SetActive(r.Context(), id, *req.Active); err != nil {
		log.Warn().Err(err).Int64("user_id", id).Msg("handler: failed to set user status")
		respondDomainError(w, err, "failed to set user status")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"id": id, "active": *req.Active})
}
