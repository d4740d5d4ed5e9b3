package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink/backend/internal/models"
)

// ProfileRepository persists whole profile documents keyed by owner.
// Implementations return ErrProfileNotFound for a missing owner and must be
// safe for concurrent use.
type ProfileRepository interface {
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.Profile, error)
	FindViewByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.ProfileView, error)
	ListViews(ctx context.Context) ([]*models.ProfileView, error)
	// Save inserts or replaces the profile for p.OwnerID.
	Save(ctx context.Context, p *models.Profile) error
	DeleteByOwner(ctx context.Context, ownerID primitive.ObjectID) error
}

// UserRepository is the slice of the user account store this service needs.
type UserRepository interface {
	DeleteUser(ctx context.Context, userID primitive.ObjectID) error
}
