package token

import "time"

// Config holds token lifetimes.
type Config struct {
	VerificationTTL  time.Duration `env:"EMAIL_VERIFICATION_TTL" envDefault:"24h"`
	PasswordResetTTL time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`
	RefreshTTL       time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
	AccessTTL        time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
}

// DefaultConfig returns the lifetimes used when no configuration is loaded.
func DefaultConfig() Config {
	return Config{
		VerificationTTL:  24 * time.Hour,
		PasswordResetTTL: time.Hour,
		RefreshTTL:       30 * 24 * time.Hour,
		AccessTTL:        15 * time.Minute,
	}
}
