package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/authkit/svc/token"
)

var (
	_ token.VerificationStore = (*Store)(nil)
	_ token.RefreshStore      = (*Store)(nil)
)

type verificationDoc struct {
	Token      string    `bson:"_id"`
	Identifier string    `bson:"identifier"`
	Expires    time.Time `bson:"expires"`
}

type refreshDoc struct {
	ID        string    `bson:"_id"`
	Token     string    `bson:"token"`
	UserID    string    `bson:"user_id"`
	Expires   time.Time `bson:"expires"`
	CreatedAt time.Time `bson:"created_at"`
}

func (s *Store) FindVerificationToken(ctx context.Context, value string) (*token.VerificationToken, error) {
	var doc verificationDoc
	if err := s.verifications.FindOne(ctx, bson.M{"_id": value}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, token.ErrTokenNotFound
		}
		return nil, err
	}
	return &token.VerificationToken{
		Identifier: doc.Identifier,
		Token:      doc.Token,
		Expires:    doc.Expires,
	}, nil
}

func (s *Store) DeleteVerificationToken(ctx context.Context, value string) error {
	res, err := s.verifications.DeleteOne(ctx, bson.M{"_id": value})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return token.ErrTokenNotFound
	}
	return nil
}

func (s *Store) DeleteVerificationTokensByIdentifier(ctx context.Context, identifier string) error {
	_, err := s.verifications.DeleteMany(ctx, bson.M{"identifier": identifier})
	return err
}

func (s *Store) CreateVerificationToken(ctx context.Context, t token.VerificationToken) error {
	_, err := s.verifications.InsertOne(ctx, verificationDoc{
		Token:      t.Token,
		Identifier: t.Identifier,
		Expires:    t.Expires,
	})
	return err
}

func (s *Store) FindRefreshToken(ctx context.Context, value string) (*token.RefreshToken, error) {
	var doc refreshDoc
	if err := s.refreshes.FindOne(ctx, bson.M{"token": value}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, token.ErrTokenNotFound
		}
		return nil, err
	}
	return &token.RefreshToken{
		ID:        doc.ID,
		Token:     doc.Token,
		UserID:    doc.UserID,
		Expires:   doc.Expires,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, t token.RefreshToken) error {
	_, err := s.refreshes.InsertOne(ctx, refreshDoc(t))
	return err
}

func (s *Store) DeleteRefreshToken(ctx context.Context, id string) error {
	res, err := s.refreshes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return token.ErrTokenNotFound
	}
	return nil
}
