package security

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Strength is a coarse password strength inferred from the stored hash.
type Strength string

const (
	StrengthStrong  Strength = "strong"
	StrengthMedium  Strength = "medium"
	StrengthWeak    Strength = "weak"
	StrengthNone    Strength = "none"
	StrengthUnknown Strength = "unknown"
)

// PasswordStrength guesses strength from the shape of a password hash.
// It never sees the password, so it rates the storage scheme: bcrypt by cost,
// memory-hard PHC schemes as strong, and anything else by length.
func PasswordStrength(hash string) Strength {
	switch {
	case hash == "":
		return StrengthNone
	case isBcrypt(hash):
		cost, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			return StrengthUnknown
		}
		switch {
		case cost >= 12:
			return StrengthStrong
		case cost >= 10:
			return StrengthMedium
		default:
			return StrengthWeak
		}
	case strings.HasPrefix(hash, "$argon2id$"), strings.HasPrefix(hash, "$scrypt$"):
		return StrengthStrong
	case len(hash) >= 60:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

func isBcrypt(hash string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, p) {
			return true
		}
	}
	return false
}
