package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink/backend/internal/middleware"
	"github.com/devlink/backend/internal/models"
	"github.com/devlink/backend/internal/services"
)

const defaultTimeout = 10 * time.Second

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON reads the body into dst, answering 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return false
	}
	return true
}

// validated answers 400 with the field errors when there are any.
func validated(w http.ResponseWriter, errs []models.FieldError) bool {
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return false
	}
	return true
}

// ownerID returns the authenticated user's id. Auth middleware has already
// run, so a missing or malformed id means the token carried garbage.
func ownerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := services.ParseOwnerID(middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Token is not valid"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func contextWithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(parent, d)
}
