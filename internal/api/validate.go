package api

import (
	"net/http"

	"github.com/dmitrymomot/authkit/pkg/validator"
)

const (
	maxCodeLength   = 32
	maxUserIDLength = 64
	maxBackupCodes  = 50
)

type validatable interface {
	Validate() error
}

// validateRequest runs after the JSON binder for request types that
// implement Validate.
func validateRequest(_ *http.Request, v any) error {
	if req, ok := v.(validatable); ok {
		return req.Validate()
	}
	return nil
}

func emailRules(email string) []validator.Rule {
	return []validator.Rule{
		validator.Required("email", email),
		validator.ValidEmail("email", email),
	}
}

func codeRules(code string) []validator.Rule {
	return []validator.Rule{
		validator.Required("token", code),
		validator.MaxLen("token", code, maxCodeLength),
	}
}

func (r setupRequest) Validate() error { return validator.Apply(emailRules(r.Email)...) }

func (r emailRequest) Validate() error { return validator.Apply(emailRules(r.Email)...) }

func (r codeRequest) Validate() error { return validator.Apply(codeRules(r.Token)...) }

func (r enableRequest) Validate() error {
	return validator.Apply(append(codeRules(r.Token),
		validator.Required("secret", r.Secret),
		validator.Base32("secret", r.Secret),
		validator.MaxItems("backup_codes", r.BackupCodes, maxBackupCodes),
	)...)
}

func (r verifyTokenRequest) Validate() error {
	return validator.Apply(validator.Required("token", r.Token))
}

func (r refreshRequest) Validate() error {
	return validator.Apply(validator.Required("refresh_token", r.RefreshToken))
}

func (r issueRefreshRequest) Validate() error {
	return validator.Apply(
		validator.Required("user_id", r.UserID),
		validator.MaxLen("user_id", r.UserID, maxUserIDLength),
	)
}
