// Package mongodb implements the repository interfaces on the MongoDB driver.
//
// Each repository wraps one collection and translates driver errors into the
// shared sentinel errors: mongo.ErrNoDocuments becomes ErrNotFound and
// duplicate-key errors become ErrAlreadyExists, so callers never see driver
// types.
package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"eventdesk.io/eventdesk/internal/config"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/pkg/logger"
)

const (
	collEvents        = "events"
	collRegistrations = "registrations"
	collUsers         = "users"
	collActivity      = "activitylogs"
)

// Store bundles the MongoDB-backed repositories over a single client.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Events        *EventRepository
	Registrations *RegistrationRepository
	Users         *UserRepository
	Activity      *ActivityRepository
}

// Connect dials MongoDB, verifies the connection and prepares the
// repositories and indexes.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:        client,
		db:            db,
		Events:        &EventRepository{coll: db.Collection(collEvents)},
		Registrations: &RegistrationRepository{coll: db.Collection(collRegistrations)},
		Users:         &UserRepository{coll: db.Collection(collUsers)},
		Activity:      &ActivityRepository{coll: db.Collection(collActivity)},
	}
	if err := s.ensureIndexes(dialCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("connected to mongodb", zap.String("database", cfg.Database))
	return s, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks connectivity for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// ensureIndexes creates the uniqueness and query indexes the domain relies
// on. The (event, email) index is partial: it only covers registrations with
// a non-empty email that are not cancelled, so anonymous and cancelled
// registrations never collide.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(collEvents).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "eventDate", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isPublic", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(collRegistrations).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "confirmationNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "event", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
				"email":  bson.M{"$gt": ""},
				"status": bson.M{"$in": []string{"pending", "confirmed", "waitlisted"}},
			}),
		},
		{Keys: bson.D{{Key: "event", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "registeredAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(collActivity).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

func translate(err error, kind, id string) error {
	switch {
	case err == nil:
		return nil
	case err == mongo.ErrNoDocuments:
		return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrAlreadyExists)
	}
	return err
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
}

// searchRegex builds a case-insensitive substring match with the user input
// escaped, so search terms are never interpreted as patterns.
func searchRegex(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}
