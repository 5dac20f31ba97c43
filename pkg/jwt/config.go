package jwt

// Config holds the access-token signing settings.
type Config struct {
	SigningKey string `env:"JWT_SIGNING_KEY,required"`
	Issuer     string `env:"JWT_ISSUER" envDefault:"authkit"`
}
