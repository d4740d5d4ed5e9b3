package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink/backend/internal/models"
	"github.com/devlink/backend/internal/storage"
)

type memorySnapshot struct {
	Profiles []*models.Profile `json:"profiles"`
	Users    []models.UserRef  `json:"users"`
}

// MemoryProfileRepository keeps profiles and user references in process,
// optionally mirrored to a JSON snapshot on disk. Every read and write copies,
// so callers get the same read-modify-write semantics as with MongoDB.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[primitive.ObjectID]*models.Profile
	users    map[primitive.ObjectID]models.UserRef
	snapshot *storage.Snapshot[memorySnapshot]
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{
		profiles: make(map[primitive.ObjectID]*models.Profile),
		users:    make(map[primitive.ObjectID]models.UserRef),
	}
}

// NewPersistentMemoryProfileRepository loads dataDir/profiles.json (if any) and
// rewrites it after every mutation.
func NewPersistentMemoryProfileRepository(dataDir string) (*MemoryProfileRepository, error) {
	snap, err := storage.NewSnapshot[memorySnapshot](dataDir, "profiles.json")
	if err != nil {
		return nil, err
	}
	state, err := snap.Load()
	if err != nil {
		return nil, err
	}

	r := NewMemoryProfileRepository()
	r.snapshot = snap
	for _, p := range state.Profiles {
		r.profiles[p.OwnerID] = p.Clone()
	}
	for _, u := range state.Users {
		r.users[u.ID] = u
	}
	return r, nil
}

// PutUser registers a user reference. Accounts are created elsewhere; this
// stands in for that service in development and tests.
func (r *MemoryProfileRepository) PutUser(u models.UserRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[u.ID] = u
	return r.persistLocked()
}

func (r *MemoryProfileRepository) FindByOwner(_ context.Context, ownerID primitive.ObjectID) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[ownerID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryProfileRepository) FindViewByOwner(_ context.Context, ownerID primitive.ObjectID) (*models.ProfileView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[ownerID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return r.viewLocked(p), nil
}

func (r *MemoryProfileRepository) ListViews(_ context.Context) ([]*models.ProfileView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.ProfileView, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, r.viewLocked(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *MemoryProfileRepository) Save(_ context.Context, p *models.Profile) error {
	if p.OwnerID.IsZero() {
		return fmt.Errorf("save profile: missing owner")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[p.OwnerID] = p.Clone()
	return r.persistLocked()
}

func (r *MemoryProfileRepository) DeleteByOwner(_ context.Context, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[ownerID]; !ok {
		return ErrProfileNotFound
	}
	delete(r.profiles, ownerID)
	return r.persistLocked()
}

func (r *MemoryProfileRepository) DeleteUser(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, userID)
	return r.persistLocked()
}

func (r *MemoryProfileRepository) viewLocked(p *models.Profile) *models.ProfileView {
	user, ok := r.users[p.OwnerID]
	if !ok {
		user = models.UserRef{ID: p.OwnerID}
	}
	return &models.ProfileView{Profile: *p.Clone(), User: user}
}

func (r *MemoryProfileRepository) persistLocked() error {
	if r.snapshot == nil {
		return nil
	}

	state := memorySnapshot{
		Profiles: make([]*models.Profile, 0, len(r.profiles)),
		Users:    make([]models.UserRef, 0, len(r.users)),
	}
	for _, p := range r.profiles {
		state.Profiles = append(state.Profiles, p)
	}
	for _, u := range r.users {
		state.Users = append(state.Users, u)
	}
	if err := r.snapshot.Save(state); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
