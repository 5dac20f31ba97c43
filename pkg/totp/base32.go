package totp

import "strings"

// base32Alphabet is the RFC 4648 alphabet used by authenticator apps.
const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// EncodeBase32 encodes b with the RFC 4648 alphabet and no padding.
// A trailing partial 5-bit group is left-shifted into the final character.
func EncodeBase32(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow((len(b)*8 + 4) / 5)

	var buffer uint32
	bits := 0
	for _, c := range b {
		buffer = buffer<<8 | uint32(c)
		bits += 8
		for bits >= 5 {
			sb.WriteByte(base32Alphabet[(buffer>>uint(bits-5))&0x1f])
			bits -= 5
		}
	}
	if bits > 0 {
		sb.WriteByte(base32Alphabet[(buffer<<uint(5-bits))&0x1f])
	}

	return sb.String()
}

// DecodeBase32 is the lenient decoder used for manually entered keys.
// It is case-insensitive and silently skips anything outside the alphabet
// (spaces, dashes, padding). A trailing group that does not complete a byte
// is dropped. It never fails.
func DecodeBase32(s string) []byte {
	out := make([]byte, 0, len(s)*5/8)

	var buffer uint32
	bits := 0
	for i := 0; i < len(s); i++ {
		v, ok := base32Value(s[i])
		if !ok {
			continue
		}
		buffer = buffer<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			out = append(out, byte(buffer>>uint(bits-8)))
			bits -= 8
		}
	}

	return out
}

// DecodeBase32Strict decodes s but rejects any character outside the alphabet
// apart from trailing "=" padding.
func DecodeBase32Strict(s string) ([]byte, error) {
	trimmed := strings.TrimRight(s, "=")
	if trimmed == "" {
		return nil, ErrInvalidSecret
	}
	for i := 0; i < len(trimmed); i++ {
		if _, ok := base32Value(trimmed[i]); !ok {
			return nil, ErrInvalidSecret
		}
	}
	return DecodeBase32(trimmed), nil
}

func base32Value(c byte) (byte, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return c - 'A', true
	case c >= 'a' && c <= 'z':
		return c - 'a', true
	case c >= '2' && c <= '7':
		return c - '2' + 26, true
	}
	return 0, false
}
