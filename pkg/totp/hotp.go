package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// HMACSHA1 computes HMAC-SHA1 of message under key.
// It exists to drive HOTP (RFC 4226 / RFC 6238) and must not be used as a
// general purpose message authentication primitive.
func HMACSHA1(key, message []byte) []byte {
	mac := hmac.New(sha1.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// HOTP implements the RFC 4226 algorithm: the counter is HMAC'd as an 8-byte
// big-endian value and the digest is reduced by dynamic truncation to a
// zero-padded code of the requested number of digits.
func HOTP(key []byte, counter uint64, digits int) string {
	if digits <= 0 {
		digits = DefaultDigits
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)
	hash := HMACSHA1(key, msg[:])

	// Dynamic truncation: low nibble of the last byte selects a 4-byte window.
	// The top bit is always masked off.
	offset := hash[len(hash)-1] & 0x0f
	code := uint32(hash[offset]&0x7f)<<24 |
		uint32(hash[offset+1])<<16 |
		uint32(hash[offset+2])<<8 |
		uint32(hash[offset+3])

	return fmt.Sprintf("%0*d", digits, uint64(code)%pow10(digits))
}

func pow10(n int) uint64 {
	result := uint64(1)
	for range n {
		result *= 10
	}
	return result
}
