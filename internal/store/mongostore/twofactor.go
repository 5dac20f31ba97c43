package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/authkit/svc/twofactor"
)

var _ twofactor.Store = (*Store)(nil)

func (s *Store) FindSecurityFields(ctx context.Context, userID string) (*twofactor.SecurityFields, error) {
	var doc struct {
		TwoFactor twoFactorDoc `bson:"two_factor"`
	}
	err := s.users.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"two_factor": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, twofactor.ErrUserNotFound
		}
		return nil, err
	}
	return &twofactor.SecurityFields{
		Enabled:     doc.TwoFactor.Enabled,
		Secret:      doc.TwoFactor.Secret,
		BackupCodes: doc.TwoFactor.BackupCodes,
		VerifiedAt:  doc.TwoFactor.VerifiedAt,
	}, nil
}

func (s *Store) UpdateSecurityFields(ctx context.Context, userID string, patch twofactor.SecurityPatch) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, securityUpdate(patch, time.Now()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return twofactor.ErrUserNotFound
	}
	return nil
}

// ConsumeBackupCode matches and pulls the code in one update, so only one
// concurrent caller sees ModifiedCount == 1.
func (s *Store) ConsumeBackupCode(ctx context.Context, userID, codeHash string) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "two_factor.backup_codes": codeHash},
		bson.M{"$pull": bson.M{"two_factor.backup_codes": codeHash}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// securityUpdate turns patch into a $set/$unset document.
func securityUpdate(patch twofactor.SecurityPatch, now time.Time) bson.M {
	set := bson.M{}
	unset := bson.M{}

	if patch.Enabled != nil {
		set["two_factor.enabled"] = *patch.Enabled
	}
	if patch.Secret != nil {
		if *patch.Secret == "" {
			unset["two_factor.secret"] = ""
		} else {
			set["two_factor.secret"] = *patch.Secret
		}
	}
	if patch.BackupCodes != nil {
		codes := *patch.BackupCodes
		if codes == nil {
			codes = []string{}
		}
		set["two_factor.backup_codes"] = codes
	}
	if patch.VerifiedAt != nil {
		if patch.VerifiedAt.IsZero() {
			unset["two_factor.verified_at"] = ""
		} else {
			set["two_factor.verified_at"] = patch.VerifiedAt.UTC()
		}
	}

	set["updated_at"] = now.UTC()

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
