package totp

import "time"

// Config holds the process-wide TOTP settings. Load it with config.Load.
type Config struct {
	Issuer        string        `env:"TWOFACTOR_ISSUER" envDefault:"AuthKit"` // Issuer shown in authenticator apps
	Window        int           `env:"TOTP_WINDOW" envDefault:"2"`            // Steps accepted on each side of now
	Step          time.Duration `env:"TOTP_STEP" envDefault:"30s"`            // Time step
	Digits        int           `env:"TOTP_DIGITS" envDefault:"6"`            // Code length
	EncryptionKey string        `env:"TOTP_ENCRYPTION_KEY"`                   // Base64 AES-256 key; empty disables sealing
}

// Options converts the config into generator/verifier options.
func (c Config) Options() []Option {
	return []Option{
		WithDigits(c.Digits),
		WithStep(c.Step),
		WithWindow(c.Window),
	}
}
