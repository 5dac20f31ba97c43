package totp

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"
)

const (
	DefaultDigits     = 6                // Standard 6-digit codes
	DefaultStep       = 30 * time.Second // RFC 6238 time step
	DefaultWindow     = 2                // Adjacent steps accepted on each side of now
	DefaultSecretSize = 20               // 160-bit secret, RFC 4226 recommendation
)

type options struct {
	digits int
	step   time.Duration
	window int
}

// Option tunes code generation and verification.
type Option func(*options)

// WithDigits overrides the code length. Values <= 0 are ignored.
func WithDigits(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.digits = n
		}
	}
}

// WithStep overrides the time step. Values <= 0 are ignored.
func WithStep(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.step = d
		}
	}
}

// WithWindow sets how many steps before and after the current one are accepted.
// Every extra step widens the brute-force acceptance surface.
func WithWindow(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.window = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		digits: DefaultDigits,
		step:   DefaultStep,
		window: DefaultWindow,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TimeCounter returns floor(unix(t) / step). Times before the epoch map to 0.
func TimeCounter(t time.Time, step time.Duration) uint64 {
	if step <= 0 {
		step = DefaultStep
	}
	stepSecs := uint64(step / time.Second)
	if stepSecs == 0 {
		stepSecs = 1
	}
	secs := t.Unix()
	if secs < 0 {
		return 0
	}
	return uint64(secs) / stepSecs
}

// Generate returns the code for the time step containing t.
func Generate(secret []byte, t time.Time, opts ...Option) string {
	o := newOptions(opts)
	return HOTP(secret, TimeCounter(t, o.step), o.digits)
}

// Verify reports whether candidate matches any code in the window around t.
func Verify(secret []byte, candidate string, t time.Time, opts ...Option) bool {
	o := newOptions(opts)
	if len(secret) == 0 || !isDigits(candidate, o.digits) {
		return false
	}

	counter := TimeCounter(t, o.step)
	for i := -o.window; i <= o.window; i++ {
		c := counter + uint64(i)
		if i < 0 {
			if uint64(-i) > counter {
				continue
			}
			c = counter - uint64(-i)
		}
		code := HOTP(secret, c, o.digits)
		if subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1 {
			return true
		}
	}

	return false
}

// GenerateSecret reads DefaultSecretSize bytes from r.
// A nil reader falls back to crypto/rand.
func GenerateSecret(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	secret := make([]byte, DefaultSecretSize)
	if _, err := io.ReadFull(r, secret); err != nil {
		return nil, errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return secret, nil
}

// ProvisioningURI builds the otpauth URI understood by authenticator apps:
//
//	otpauth://totp/<issuer>:<account>?secret=<base32>&issuer=<issuer>
//
// See https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(issuer, account, base32Secret string) string {
	label := fmt.Sprintf("%s:%s", url.PathEscape(issuer), url.PathEscape(account))
	return fmt.Sprintf("otpauth://totp/%s?secret=%s&issuer=%s",
		label,
		url.QueryEscape(base32Secret),
		url.QueryEscape(issuer),
	)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
