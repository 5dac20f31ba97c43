package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrEmailTaken is returned by CreateUser for a duplicate email.
var ErrEmailTaken = errors.New("mongostore: email already registered")

// NewUser is the input of CreateUser.
type NewUser struct {
	Email         string
	EmailVerified bool
	Phone         string
	PhoneVerified bool
	PasswordHash  string
}

// CreateUser inserts a user and returns its id.
func (s *Store) CreateUser(ctx context.Context, u NewUser) (string, error) {
	now := time.Now().UTC()
	doc := userDoc{
		ID:            uuid.NewString(),
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Phone:         u.Phone,
		PhoneVerified: u.PhoneVerified,
		PasswordHash:  u.PasswordHash,
		TwoFactor:     twoFactorDoc{BackupCodes: []string{}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if u.PasswordHash != "" {
		doc.PasswordChangedAt = &now
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return doc.ID, nil
}

type sessionDoc struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"user_id"`
	ExpiresAt time.Time  `bson:"expires_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
}

// CreateSession records a session for userID that lasts until expiresAt.
func (s *Store) CreateSession(ctx context.Context, userID string, expiresAt time.Time) (string, error) {
	doc := sessionDoc{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.sessions.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// RevokeSession marks a session revoked. Revoking twice is a no-op.
func (s *Store) RevokeSession(ctx context.Context, id string) error {
	_, err := s.sessions.UpdateOne(ctx,
		bson.M{"_id": id, "revoked_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}},
	)
	return err
}

// RecordLoginAttempt stores the outcome of one sign-in attempt.
func (s *Store) RecordLoginAttempt(ctx context.Context, userID string, succeeded bool, at time.Time) error {
	_, err := s.loginAttempts.InsertOne(ctx, bson.M{
		"user_id":    userID,
		"succeeded":  succeeded,
		"created_at": at,
	})
	return err
}
