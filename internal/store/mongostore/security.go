package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/authkit/svc/security"
)

var _ security.StatusSource = (*Store)(nil)

func (s *Store) FindAccountProfile(ctx context.Context, userID string) (*security.AccountProfile, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, security.ErrUserNotFound
		}
		return nil, err
	}
	return &security.AccountProfile{
		UserID:            doc.ID,
		Email:             doc.Email,
		EmailVerified:     doc.EmailVerified,
		PhoneVerified:     doc.PhoneVerified,
		HasPassword:       doc.PasswordHash != "",
		PasswordHash:      doc.PasswordHash,
		PasswordChangedAt: doc.PasswordChangedAt,
		TwoFactorEnabled:  doc.TwoFactor.Enabled,
	}, nil
}

func (s *Store) CountActiveSessions(ctx context.Context, userID string, now time.Time) (int, error) {
	n, err := s.sessions.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"revoked_at": bson.M{"$exists": false},
		"expires_at": bson.M{"$gt": now},
	})
	return int(n), err
}

func (s *Store) CountRecentLoginAttempts(ctx context.Context, userID string, since time.Time) (int, error) {
	n, err := s.loginAttempts.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": since},
	})
	return int(n), err
}
