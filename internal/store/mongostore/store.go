package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection         = "users"
	sessionsCollection      = "sessions"
	loginAttemptsCollection = "login_attempts"
	verificationCollection  = "verification_tokens"
	refreshCollection       = "refresh_tokens"
	auditCollection         = "audit_events"
)

// DefaultGrace is how long expired tokens are kept before the TTL monitor removes them.
const DefaultGrace = 24 * time.Hour

// Store implements every persistence contract on one database.
type Store struct {
	users         *mongo.Collection
	sessions      *mongo.Collection
	loginAttempts *mongo.Collection
	verifications *mongo.Collection
	refreshes     *mongo.Collection
	auditEvents   *mongo.Collection
	grace         time.Duration
}

// New creates a Store on db. Call EnsureIndexes once at startup.
func New(db *mongo.Database) *Store {
	if db == nil {
		panic("mongostore: database is required")
	}
	return &Store{
		users:         db.Collection(usersCollection),
		sessions:      db.Collection(sessionsCollection),
		loginAttempts: db.Collection(loginAttemptsCollection),
		verifications: db.Collection(verificationCollection),
		refreshes:     db.Collection(refreshCollection),
		auditEvents:   db.Collection(auditCollection),
		grace:         DefaultGrace,
	}
}

// EnsureIndexes creates the unique, lookup and TTL indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ttl := int32(s.grace / time.Second)

	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{s.sessions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "expires_at", Value: 1}}},
		}},
		{s.loginAttempts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		}},
		{s.verifications, []mongo.IndexModel{
			{Keys: bson.D{{Key: "identifier", Value: 1}}},
			{Keys: bson.D{{Key: "expires", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(ttl)},
		}},
		{s.refreshes, []mongo.IndexModel{
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "expires", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(ttl)},
		}},
		{s.auditEvents, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.models); err != nil {
			return errors.Join(ErrFailedToCreateIndexes, err)
		}
	}
	return nil
}
