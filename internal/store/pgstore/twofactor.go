package pgstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/authkit/svc/twofactor"
)

var _ twofactor.Store = (*Store)(nil)

func (s *Store) FindSecurityFields(ctx context.Context, userID string) (*twofactor.SecurityFields, error) {
	var (
		f      twofactor.SecurityFields
		secret *string
	)
	err := s.db.QueryRow(ctx, `
		SELECT two_factor_enabled, two_factor_secret, two_factor_backup_codes, two_factor_verified_at
		FROM users WHERE id = $1`, userID,
	).Scan(&f.Enabled, &secret, &f.BackupCodes, &f.VerifiedAt)
	if err != nil {
		if missing(err) {
			return nil, twofactor.ErrUserNotFound
		}
		return nil, err
	}
	if secret != nil {
		f.Secret = *secret
	}
	return &f, nil
}

func (s *Store) UpdateSecurityFields(ctx context.Context, userID string, patch twofactor.SecurityPatch) error {
	query, args := securityPatchQuery(userID, patch)
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		if missing(err) {
			return twofactor.ErrUserNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return twofactor.ErrUserNotFound
	}
	return nil
}

// ConsumeBackupCode removes codeHash in the same statement that checks for it,
// so two concurrent callers can never both succeed.
func (s *Store) ConsumeBackupCode(ctx context.Context, userID, codeHash string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET two_factor_backup_codes = array_remove(two_factor_backup_codes, $2), updated_at = now()
		WHERE id = $1 AND $2 = ANY(two_factor_backup_codes)`,
		userID, codeHash,
	)
	if err != nil {
		if missing(err) {
			return false, twofactor.ErrUserNotFound
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// securityPatchQuery builds an UPDATE touching only the columns set in patch.
func securityPatchQuery(userID string, patch twofactor.SecurityPatch) (string, []any) {
	sets := make([]string, 0, 5)
	args := []any{userID}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Enabled != nil {
		set("two_factor_enabled", *patch.Enabled)
	}
	if patch.Secret != nil {
		if *patch.Secret == "" {
			sets = append(sets, "two_factor_secret = NULL")
		} else {
			set("two_factor_secret", *patch.Secret)
		}
	}
	if patch.BackupCodes != nil {
		codes := *patch.BackupCodes
		if codes == nil {
			codes = []string{}
		}
		set("two_factor_backup_codes", codes)
	}
	if patch.VerifiedAt != nil {
		if patch.VerifiedAt.IsZero() {
			sets = append(sets, "two_factor_verified_at = NULL")
		} else {
			set("two_factor_verified_at", patch.VerifiedAt.UTC().Truncate(time.Microsecond))
		}
	}
	sets = append(sets, "updated_at = now()")

	return "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = $1", args
}
