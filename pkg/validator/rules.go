package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MaxEmailLength is the longest address RFC 5321 allows.
const MaxEmailLength = 254

func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// ValidEmail accepts a bare RFC 5322 address with a dotted domain. Display
// names ("Bob <bob@example.com>") are rejected.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" || len(value) > MaxEmailLength {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value || addr.Name != "" {
				return false
			}
			local, domain, ok := strings.Cut(value, "@")
			if !ok || local == "" {
				return false
			}
			if !strings.Contains(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// Base32 accepts the unpadded RFC 4648 alphabet in either case.
func Base32(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return false
			}
			for _, r := range strings.ToUpper(value) {
				if (r < 'A' || r > 'Z') && (r < '2' || r > '7') {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must be a base32 string"},
	}
}

func MaxItems[T any](field string, items []T, max int) Rule {
	return Rule{
		Check: func() bool { return len(items) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must contain at most %d items", max)},
	}
}
