package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultBackupCodeCount is the size of a freshly generated backup-code batch.
const DefaultBackupCodeCount = 10

// GenerateBackupCodes creates a batch of DefaultBackupCodeCount single-use codes.
func GenerateBackupCodes(r io.Reader) ([]string, error) {
	return GenerateBackupCodesN(r, DefaultBackupCodeCount)
}

// GenerateBackupCodesN creates n codes formatted as XXXX-XXXX.
// Each code carries 32 bits of entropy: fine for single-use recovery,
// not for a standing credential.
func GenerateBackupCodesN(r io.Reader, n int) ([]string, error) {
	if n < 1 {
		return nil, ErrInvalidBackupCodeCount
	}
	if r == nil {
		r = rand.Reader
	}

	codes := make([]string, n)
	buf := make([]byte, 4)
	for i := range n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Join(ErrFailedToGenerateBackupCode, err)
		}
		raw := fmt.Sprintf("%X", buf)
		codes[i] = raw[:4] + "-" + raw[4:]
	}
	return codes, nil
}

// NormalizeBackupCode upper-cases and trims a user-entered code and restores
// the dash when the user typed the eight characters without it.
func NormalizeBackupCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, " ", "")
	if len(code) == 8 && !strings.Contains(code, "-") {
		code = code[:4] + "-" + code[4:]
	}
	return code
}

// HashBackupCode returns the SHA-256 hex digest stored in place of the code.
func HashBackupCode(code string) string {
	hash := sha256.Sum256([]byte(NormalizeBackupCode(code)))
	return hex.EncodeToString(hash[:])
}

// HashBackupCodes hashes every code in codes.
func HashBackupCodes(codes []string) []string {
	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = HashBackupCode(c)
	}
	return hashes
}

// MatchBackupCode looks for code among the stored hashes.
// Every hash is compared in constant time so the position of a match does not
// leak through timing. It returns the matching hash.
func MatchBackupCode(code string, hashes []string) (string, bool) {
	if strings.TrimSpace(code) == "" {
		return "", false
	}
	computed := []byte(HashBackupCode(code))

	matched := ""
	for _, h := range hashes {
		if subtle.ConstantTimeCompare(computed, []byte(h)) == 1 {
			matched = h
		}
	}
	return matched, matched != ""
}
