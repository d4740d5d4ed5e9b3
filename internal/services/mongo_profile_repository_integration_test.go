//go:build integration

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink/backend/internal/models"
)

type MongoProfileRepositorySuite struct {
	suite.Suite
	container *mongodb.MongoDBContainer
	repo      *MongoProfileRepository
	svc       *ProfileService
}

func TestMongoProfileRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoProfileRepositorySuite))
}

func (s *MongoProfileRepositorySuite) SetupSuite() {
	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	client, err := NewMongoClient(ctx, uri, false)
	s.Require().NoError(err)

	s.repo, err = NewMongoProfileRepository(ctx, client, "devlink_test")
	s.Require().NoError(err)
	s.svc = NewProfileService(s.repo, s.repo)
}

func (s *MongoProfileRepositorySuite) TearDownSuite() {
	ctx := context.Background()
	if s.repo != nil {
		_ = s.repo.Close(ctx)
	}
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *MongoProfileRepositorySuite) SetupTest() {
	ctx := context.Background()
	_, err := s.repo.profilesCol.DeleteMany(ctx, bson.M{})
	s.Require().NoError(err)
	_, err = s.repo.usersCol.DeleteMany(ctx, bson.M{})
	s.Require().NoError(err)
}

func (s *MongoProfileRepositorySuite) insertUser(name string) primitive.ObjectID {
	id := primitive.NewObjectID()
	_, err := s.repo.usersCol.InsertOne(context.Background(), bson.M{
		"_id":      id,
		"name":     name,
		"avatar":   "//gravatar/" + name,
		"email":    name + "@example.com",
		"password": "hash",
	})
	s.Require().NoError(err)
	return id
}

func (s *MongoProfileRepositorySuite) TestUpsertMergeAndJoin() {
	ctx := context.Background()
	owner := s.insertUser("ada")
	website, skills := "a.com", "go, rust"

	_, err := s.svc.Upsert(ctx, owner, models.ProfileUpdate{
		Website: &website,
		Social:  map[string]string{models.PlatformYouTube: "yt"},
	})
	s.Require().NoError(err)
	view, err := s.svc.Upsert(ctx, owner, models.ProfileUpdate{
		Skills: &skills,
		Social: map[string]string{models.PlatformTwitter: "tw"},
	})
	s.Require().NoError(err)

	s.Equal("a.com", view.Website)
	s.Equal([]string{"go", "rust"}, view.Skills)
	s.Equal(map[string]string{models.PlatformYouTube: "yt", models.PlatformTwitter: "tw"}, view.Social)
	s.Equal("ada", view.User.Name)
	s.Equal(owner, view.User.ID)

	n, err := s.repo.profilesCol.CountDocuments(ctx, bson.M{"user": owner})
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *MongoProfileRepositorySuite) TestLedgerRoundTrip() {
	ctx := context.Background()
	owner := s.insertUser("grace")
	status := "dev"
	_, err := s.svc.Upsert(ctx, owner, models.ProfileUpdate{Status: &status})
	s.Require().NoError(err)

	_, err = s.svc.AddEducation(ctx, owner, models.Education{School: "E2"})
	s.Require().NoError(err)
	view, err := s.svc.AddEducation(ctx, owner, models.Education{School: "E1"})
	s.Require().NoError(err)
	s.Equal("E1", view.Education[0].School)

	_, err = s.svc.RemoveEducation(ctx, owner, "nonexistent-id")
	s.ErrorIs(err, ErrRecordNotFound)

	view, err = s.svc.RemoveEducation(ctx, owner, view.Education[1].ID)
	s.Require().NoError(err)
	s.Require().Len(view.Education, 1)
	s.Equal("E1", view.Education[0].School)
}

func (s *MongoProfileRepositorySuite) TestListViewsWithoutUser() {
	ctx := context.Background()
	owner := primitive.NewObjectID()
	status := "dev"
	_, err := s.svc.Upsert(ctx, owner, models.ProfileUpdate{Status: &status})
	s.Require().NoError(err)

	views, err := s.svc.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal(owner, views[0].User.ID)
	s.Empty(views[0].User.Name)
}

func (s *MongoProfileRepositorySuite) TestDeleteRemovesProfileAndUser() {
	ctx := context.Background()
	owner := s.insertUser("linus")
	status := "dev"
	_, err := s.svc.Upsert(ctx, owner, models.ProfileUpdate{Status: &status})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(ctx, owner))

	_, err = s.svc.GetByOwner(ctx, owner)
	s.ErrorIs(err, ErrProfileNotFound)
	n, err := s.repo.usersCol.CountDocuments(ctx, bson.M{"_id": owner})
	s.Require().NoError(err)
	s.Zero(n)
}
