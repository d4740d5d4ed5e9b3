package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devlink/backend/internal/logger"
	"github.com/devlink/backend/internal/models"
	"github.com/devlink/backend/internal/services"
)

const (
	msgNoProfile          = "There is no profile for this user"
	msgServerError        = "Server error"
	msgUserDeleted        = "User deleted"
	msgExperienceNotFound = "Experience not found"
	msgEducationNotFound  = "Education not found"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	log      logger.Logger
	timeout  time.Duration
}

func NewProfileHandler(profiles *services.ProfileService, log logger.Logger, timeout time.Duration) *ProfileHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ProfileHandler{profiles: profiles, log: log, timeout: timeout}
}

// Routes mounts the profile endpoints under /profile. auth guards the
// endpoints that act on the caller's own profile.
func (h *ProfileHandler) Routes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.ListProfiles)
		r.Get("/user/{userId}", h.GetProfileByUserID)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/me", h.GetMyProfile)
			r.Post("/", h.UpsertProfile)
			r.Delete("/", h.DeleteAccount)
			r.Put("/experience", h.AddExperience)
			r.Delete("/experience/{expId}", h.RemoveExperience)
			r.Put("/education", h.AddEducation)
			r.Delete("/education/{eduId}", h.RemoveEducation)
		})
	})
}

func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.profiles.GetByOwner(ctx, owner)
	if err != nil {
		h.fail(w, "GetMyProfile", owner.Hex(), err, msgNoProfile)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProfileHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req models.UpsertProfileRequest
	if !decodeJSON(w, r, &req) || !validated(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.profiles.Upsert(ctx, owner, req.ToUpdate())
	if err != nil {
		h.fail(w, "UpsertProfile", owner.Hex(), err, msgNoProfile)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	views, err := h.profiles.ListAll(ctx)
	if err != nil {
		h.log.Error("list profiles failed", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(msgServerError))
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GetProfileByUserID is public. A malformed id is reported the same way as a
// missing profile.
func (h *ProfileHandler) GetProfileByUserID(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.profiles.GetByOwnerRaw(ctx, userID)
	if err != nil {
		h.fail(w, "GetProfileByUserID", userID, err, msgNoProfile)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteAccount removes the profile and the user. A missing profile or user is
// not an error here; only store failures are.
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.profiles.Delete(ctx, owner); err != nil && services.IsStoreFailure(err) {
		h.log.Error("delete account failed", err, zap.String("user_id", owner.Hex()))
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(msgServerError))
		return
	}
	writeJSON(w, http.StatusOK, models.NewMessageResponse(msgUserDeleted))
}

func (h *ProfileHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req models.AddExperienceRequest
	if !decodeJSON(w, r, &req) || !validated(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.profiles.AddExperience(ctx, owner, req.ToExperience())
	if err != nil {
		h.fail(w, "AddExperience", owner.Hex(), err, msgNoProfile)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProfileHandler) RemoveExperience(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.profiles.RemoveExperience(ctx, owner, chi.URLParam(r, "expId"))
	if err != nil {
		h.fail(w, "RemoveExperience", owner.Hex(), err, msgExperienceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProfileHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req models.AddEducationRequest
	if !decodeJSON(w, r, &req) || !validated(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.profiles.AddEducation(ctx, owner, req.ToEducation())
	if err != nil {
		h.fail(w, "AddEducation", owner.Hex(), err, msgNoProfile)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProfileHandler) RemoveEducation(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.profiles.RemoveEducation(ctx, owner, chi.URLParam(r, "eduId"))
	if err != nil {
		h.fail(w, "RemoveEducation", owner.Hex(), err, msgEducationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// fail maps a service error to a response. recordMsg is used for
// ErrRecordNotFound; missing profiles always get the no-profile message.
func (h *ProfileHandler) fail(w http.ResponseWriter, op, userID string, err error, recordMsg string) {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(recordMsg))
	case errors.Is(err, services.ErrProfileNotFound), errors.Is(err, services.ErrInvalidReference):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(msgNoProfile))
	default:
		h.log.Error("profile request failed", err, zap.String("op", op), zap.String("user_id", userID))
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(msgServerError))
	}
}
