package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devlink/backend/internal/models"
)

// NewMongoClient connects and pings. Atlas occasionally fails TLS negotiation
// in some environments unless TLS 1.2 is forced, hence forceTLS12.
func NewMongoClient(ctx context.Context, mongoURI string, forceTLS12 bool) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(mongoURI)
	if forceTLS12 {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

type MongoProfileRepository struct {
	client      *mongo.Client
	db          *mongo.Database
	profilesCol *mongo.Collection
	usersCol    *mongo.Collection
}

func NewMongoProfileRepository(ctx context.Context, client *mongo.Client, dbName string) (*MongoProfileRepository, error) {
	db := client.Database(dbName)
	profiles := db.Collection("profiles")

	// One profile per owner.
	if _, err := profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, fmt.Errorf("create profiles.user index: %w", err)
	}

	return &MongoProfileRepository{
		client:      client,
		db:          db,
		profilesCol: profiles,
		usersCol:    db.Collection("users"),
	}, nil
}

func (r *MongoProfileRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoProfileRepository) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.Profile, error) {
	var prof models.Profile
	if err := r.profilesCol.FindOne(ctx, bson.M{"user": ownerID}).Decode(&prof); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	normalize(&prof)
	return &prof, nil
}

func (r *MongoProfileRepository) FindViewByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.ProfileView, error) {
	views, err := r.aggregateViews(ctx, bson.M{"user": ownerID})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrProfileNotFound
	}
	return views[0], nil
}

func (r *MongoProfileRepository) ListViews(ctx context.Context) ([]*models.ProfileView, error) {
	return r.aggregateViews(ctx, nil)
}

// aggregateViews joins profiles with their owner's user document, the way
// populate('user', ['name', 'avatar']) would.
func (r *MongoProfileRepository) aggregateViews(ctx context.Context, match bson.M) ([]*models.ProfileView, error) {
	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$owner",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"owner.password": 0,
			"owner.email":    0,
		}}},
	)

	cur, err := r.profilesCol.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	views := make([]*models.ProfileView, 0)
	for cur.Next(ctx) {
		var v models.ProfileView
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		normalize(&v.Profile)
		if v.User.ID.IsZero() {
			v.User.ID = v.OwnerID
		}
		views = append(views, &v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *MongoProfileRepository) Save(ctx context.Context, p *models.Profile) error {
	_, err := r.profilesCol.ReplaceOne(
		ctx,
		bson.M{"user": p.OwnerID},
		p,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *MongoProfileRepository) DeleteByOwner(ctx context.Context, ownerID primitive.ObjectID) error {
	res, err := r.profilesCol.DeleteOne(ctx, bson.M{"user": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *MongoProfileRepository) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	res, err := r.usersCol.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// normalize replaces nil collections from older documents with empty ones.
func normalize(p *models.Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Social == nil {
		p.Social = map[string]string{}
	}
	if p.Experience == nil {
		p.Experience = []models.Experience{}
	}
	if p.Education == nil {
		p.Education = []models.Education{}
	}
}
