package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/devlink/backend/internal/logger"
	"github.com/devlink/backend/internal/metrics"
	"github.com/devlink/backend/internal/models"
)

// ProfileService owns every read and mutation of profiles. Mutations are
// read-modify-write cycles run under the per-owner Locker.
type ProfileService struct {
	repo    ProfileRepository
	users   UserRepository
	locker  Locker
	events  EventPublisher
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

type ProfileServiceOption func(*ProfileService)

func WithLocker(l Locker) ProfileServiceOption {
	return func(s *ProfileService) { s.locker = l }
}

func WithEventPublisher(p EventPublisher) ProfileServiceOption {
	return func(s *ProfileService) { s.events = p }
}

func WithMetrics(m *metrics.Metrics) ProfileServiceOption {
	return func(s *ProfileService) { s.metrics = m }
}

func WithLogger(l logger.Logger) ProfileServiceOption {
	return func(s *ProfileService) { s.log = l }
}

func WithClock(now func() time.Time) ProfileServiceOption {
	return func(s *ProfileService) { s.now = now }
}

// NewProfileService defaults to in-process per-owner locking, no events and a
// private metrics registry.
func NewProfileService(repo ProfileRepository, users UserRepository, opts ...ProfileServiceOption) *ProfileService {
	s := &ProfileService{
		repo:    repo,
		users:   users,
		locker:  NewKeyedMutex(),
		events:  NoopPublisher{},
		metrics: metrics.New(),
		log:     logger.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseOwnerID validates an externally supplied user id.
func ParseOwnerID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%q: %w", raw, ErrInvalidReference)
	}
	return id, nil
}

// SplitSkills splits a comma separated list and trims each piece. Order is
// kept and empty pieces are not dropped.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func (s *ProfileService) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.ProfileView, error) {
	view, err := s.repo.FindViewByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.storeErr("get_profile", err)
	}
	return view, nil
}

// GetByOwnerRaw is GetByOwner for an id taken from the outside world. A
// malformed id yields ErrInvalidReference rather than ErrProfileNotFound.
func (s *ProfileService) GetByOwnerRaw(ctx context.Context, rawID string) (*models.ProfileView, error) {
	ownerID, err := ParseOwnerID(rawID)
	if err != nil {
		return nil, err
	}
	return s.GetByOwner(ctx, ownerID)
}

func (s *ProfileService) ListAll(ctx context.Context) ([]*models.ProfileView, error) {
	views, err := s.repo.ListViews(ctx)
	if err != nil {
		return nil, s.storeErr("list_profiles", err)
	}
	return views, nil
}

// Upsert creates the owner's profile or merges upd into the existing one.
// Only supplied fields change; social links merge key by key and the
// experience and education ledgers are never touched.
func (s *ProfileService) Upsert(ctx context.Context, ownerID primitive.ObjectID, upd models.ProfileUpdate) (*models.ProfileView, error) {
	return s.mutate(ctx, "upsert_profile", EventProfileUpserted, ownerID, true, func(p *models.Profile) (string, error) {
		applyUpdate(p, upd)
		return "", nil
	})
}

func applyUpdate(p *models.Profile, upd models.ProfileUpdate) {
	if upd.Website != nil {
		p.Website = *upd.Website
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Skills != nil {
		p.Skills = SplitSkills(*upd.Skills)
	}
	for _, platform := range models.SocialPlatforms {
		if url, ok := upd.Social[platform]; ok {
			p.Social[platform] = url
		}
	}
}

func (s *ProfileService) AddExperience(ctx context.Context, ownerID primitive.ObjectID, exp models.Experience) (*models.ProfileView, error) {
	return s.mutate(ctx, "add_experience", EventExperienceAdded, ownerID, false, func(p *models.Profile) (string, error) {
		var stored models.Experience
		p.Experience, stored = PrependEntry(p.Experience, exp)
		return stored.ID, nil
	})
}

func (s *ProfileService) RemoveExperience(ctx context.Context, ownerID primitive.ObjectID, expID string) (*models.ProfileView, error) {
	return s.mutate(ctx, "remove_experience", EventExperienceRemoved, ownerID, false, func(p *models.Profile) (string, error) {
		var err error
		p.Experience, err = RemoveEntry(p.Experience, expID)
		return expID, err
	})
}

func (s *ProfileService) AddEducation(ctx context.Context, ownerID primitive.ObjectID, edu models.Education) (*models.ProfileView, error) {
	return s.mutate(ctx, "add_education", EventEducationAdded, ownerID, false, func(p *models.Profile) (string, error) {
		var stored models.Education
		p.Education, stored = PrependEntry(p.Education, edu)
		return stored.ID, nil
	})
}

func (s *ProfileService) RemoveEducation(ctx context.Context, ownerID primitive.ObjectID, eduID string) (*models.ProfileView, error) {
	return s.mutate(ctx, "remove_education", EventEducationRemoved, ownerID, false, func(p *models.Profile) (string, error) {
		var err error
		p.Education, err = RemoveEntry(p.Education, eduID)
		return eduID, err
	})
}

// Delete removes the owner's profile and then, regardless of the outcome,
// the owner's user account. Both results are joined: a missing profile shows
// up as ErrProfileNotFound next to whatever happened to the account.
// The owner's posts are not touched; account.deleted is published for that.
func (s *ProfileService) Delete(ctx context.Context, ownerID primitive.ObjectID) error {
	unlock, err := s.lock(ctx, ownerID)
	if err != nil {
		return err
	}

	profErr := s.repo.DeleteByOwner(ctx, ownerID)
	if profErr != nil {
		profErr = s.storeErr("delete_profile", profErr)
	}
	userErr := s.users.DeleteUser(ctx, ownerID)
	if userErr != nil && !errors.Is(userErr, ErrUserNotFound) {
		userErr = s.storeErr("delete_user", userErr)
	}
	s.unlock(unlock, ownerID)

	if profErr == nil || userErr == nil {
		s.metrics.IncMutation("delete_account")
		s.publish(ctx, Event{Type: EventAccountDeleted, OwnerID: ownerID.Hex(), OccurredAt: s.now()})
	}
	return errors.Join(profErr, userErr)
}

// mutate loads the owner's profile (creating an empty one when create is set),
// applies fn, persists and returns the joined view.
func (s *ProfileService) mutate(
	ctx context.Context,
	op, eventType string,
	ownerID primitive.ObjectID,
	create bool,
	fn func(p *models.Profile) (recordID string, err error),
) (*models.ProfileView, error) {
	unlock, err := s.lock(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	view, recordID, err := s.mutateLocked(ctx, op, ownerID, create, fn)
	s.unlock(unlock, ownerID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncMutation(op)
	s.publish(ctx, Event{
		Type:       eventType,
		OwnerID:    ownerID.Hex(),
		RecordID:   recordID,
		OccurredAt: s.now(),
	})
	return view, nil
}

func (s *ProfileService) mutateLocked(
	ctx context.Context,
	op string,
	ownerID primitive.ObjectID,
	create bool,
	fn func(p *models.Profile) (string, error),
) (*models.ProfileView, string, error) {
	p, err := s.repo.FindByOwner(ctx, ownerID)
	switch {
	case errors.Is(err, ErrProfileNotFound) && create:
		p = s.newProfile(ownerID)
	case err != nil:
		return nil, "", s.storeErr(op, err)
	}

	recordID, err := fn(p)
	if err != nil {
		return nil, "", err
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, "", s.storeErr(op, err)
	}

	view, err := s.repo.FindViewByOwner(ctx, ownerID)
	if err != nil {
		return nil, "", s.storeErr(op, err)
	}
	return view, recordID, nil
}

func (s *ProfileService) newProfile(ownerID primitive.ObjectID) *models.Profile {
	now := s.now()
	return &models.Profile{
		ID:         primitive.NewObjectID(),
		OwnerID:    ownerID,
		Skills:     []string{},
		Social:     map[string]string{},
		Experience: []models.Experience{},
		Education:  []models.Education{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *ProfileService) lock(ctx context.Context, ownerID primitive.ObjectID) (Unlock, error) {
	start := time.Now()
	unlock, err := s.locker.Lock(ctx, "profile:"+ownerID.Hex())
	s.metrics.LockWaits.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, s.storeErr("lock", err)
	}
	return unlock, nil
}

func (s *ProfileService) unlock(unlock Unlock, ownerID primitive.ObjectID) {
	if err := unlock(); err != nil {
		s.log.Warn("profile lock release failed", zap.String("owner_id", ownerID.Hex()), zap.Error(err))
	}
}

func (s *ProfileService) publish(ctx context.Context, ev Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("profile event not published",
			zap.String("type", ev.Type),
			zap.String("owner_id", ev.OwnerID),
			zap.Error(err),
		)
	}
}

// storeErr passes domain outcomes through and wraps everything else as a StoreError.
func (s *ProfileService) storeErr(op string, err error) error {
	if errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrUserNotFound) {
		return err
	}
	s.metrics.IncStoreFailure(op)
	return &StoreError{Op: op, Err: err}
}
