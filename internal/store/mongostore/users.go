package mongostore

import "time"

type twoFactorDoc struct {
	Enabled     bool       `bson:"enabled"`
	Secret      string     `bson:"secret,omitempty"`
	BackupCodes []string   `bson:"backup_codes"`
	VerifiedAt  *time.Time `bson:"verified_at,omitempty"`
}

type userDoc struct {
	ID                string       `bson:"_id"`
	Email             string       `bson:"email"`
	EmailVerified     bool         `bson:"email_verified"`
	Phone             string       `bson:"phone,omitempty"`
	PhoneVerified     bool         `bson:"phone_verified"`
	PasswordHash      string       `bson:"password_hash,omitempty"`
	PasswordChangedAt *time.Time   `bson:"password_changed_at,omitempty"`
	TwoFactor         twoFactorDoc `bson:"two_factor"`
	CreatedAt         time.Time    `bson:"created_at"`
	UpdatedAt         time.Time    `bson:"updated_at"`
}
