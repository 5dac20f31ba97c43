package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

const (
	AESKeySize = 32 // AES-256

	// sealedPrefix marks secrets sealed with SealSecret so plaintext rows
	// written before encryption was enabled can still be read.
	sealedPrefix = "enc1:"
)

// SealSecret encrypts a Base32 secret with AES-256-GCM for storage at rest.
// The result is "enc1:" followed by base64(nonce || ciphertext).
func SealSecret(plainText string, key []byte) (string, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}

	cipherText := aesGCM.Seal(nonce, nonce, []byte(plainText), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(cipherText), nil
}

// OpenSecret reverses SealSecret.
func OpenSecret(sealed string, key []byte) (string, error) {
	if !IsSealed(sealed) {
		return "", ErrSecretNotSealed
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}

	cipherText, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(cipherText) < nonceSize {
		return "", errors.Join(ErrFailedToOpenSecret, ErrInvalidCipherTooShort)
	}
	nonce, cipherText := cipherText[:nonceSize], cipherText[nonceSize:]

	plainText, err := aesGCM.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}

	return string(plainText), nil
}

// IsSealed reports whether s was produced by SealSecret.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, sealedPrefix)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// GenerateEncodedEncryptionKey returns a random AES-256 key, base64 encoded,
// ready to be placed into TOTP_ENCRYPTION_KEY.
func GenerateEncodedEncryptionKey() (string, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Join(ErrFailedToGenerateEncryptionKey, err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// DecodeEncryptionKey decodes a base64 key. An empty string yields a nil key,
// which disables sealing.
func DecodeEncryptionKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}
	if len(key) != AESKeySize {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrInvalidEncryptionKeyLength)
	}

	return key, nil
}
