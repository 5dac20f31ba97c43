package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/authkit/binder"
	"github.com/dmitrymomot/authkit/handler"
	"github.com/dmitrymomot/authkit/pkg/jwt"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/validator"
	"github.com/dmitrymomot/authkit/svc/security"
	"github.com/dmitrymomot/authkit/svc/token"
	"github.com/dmitrymomot/authkit/svc/twofactor"
)

var (
	errInvalidServiceKey  = handler.HTTPError{Status: http.StatusUnauthorized, Code: "invalid_service_key", Message: "Invalid service key"}
	errRateLimited        = handler.HTTPError{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "Too many attempts"}
	errLimiterUnavailable = handler.HTTPError{Status: http.StatusServiceUnavailable, Code: "unavailable", Message: "Service unavailable"}
	errEmailRequired      = handler.HTTPError{Status: http.StatusBadRequest, Code: "email_required", Message: "Email is required"}
	errInvalidLimit       = handler.HTTPError{Status: http.StatusBadRequest, Code: "invalid_limit", Message: "Limit must be a positive integer"}
	errValidation         = handler.HTTPError{Status: http.StatusBadRequest, Code: "validation_failed", Message: "Validation failed"}
)

// mapError translates domain errors into HTTP errors.
func mapError(err error) handler.HTTPError {
	var httpErr handler.HTTPError
	switch {
	case errors.As(err, &httpErr):
		if errors.Is(err, handler.ErrBadRequest) {
			return bindError(err)
		}
		return httpErr
	case errors.Is(err, twofactor.ErrNotEnabled):
		return handler.HTTPError{Status: http.StatusConflict, Code: "two_factor_not_enabled", Message: twofactor.MsgNotEnabled}
	case errors.Is(err, twofactor.ErrUserNotFound), errors.Is(err, security.ErrUserNotFound):
		return handler.HTTPError{Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"}
	case errors.Is(err, token.ErrInvalidRefreshToken):
		return handler.HTTPError{Status: http.StatusUnauthorized, Code: "invalid_refresh_token", Message: token.ErrInvalidRefreshToken.Error()}
	case errors.Is(err, token.ErrEmptyEmail):
		return errEmailRequired
	case errors.Is(err, token.ErrEmptyUserID):
		return handler.HTTPError{Status: http.StatusBadRequest, Code: "user_id_required", Message: "User id is required"}
	case errors.Is(err, jwt.ErrExpiredToken):
		return handler.HTTPError{Status: http.StatusUnauthorized, Code: "access_token_expired", Message: "Access token expired"}
	case errors.Is(err, jwt.ErrMissingAuthorization),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrInvalidSignature),
		errors.Is(err, jwt.ErrUnexpectedIssuer),
		errors.Is(err, jwt.ErrMissingSubject):
		return handler.ErrUnauthorized
	}
	return handler.ErrInternal
}

func bindError(err error) handler.HTTPError {
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return handler.HTTPError{Status: http.StatusUnsupportedMediaType, Code: "unsupported_media_type", Message: "Expected application/json"}
	case errors.Is(err, binder.ErrBodyTooLarge):
		return handler.HTTPError{Status: http.StatusRequestEntityTooLarge, Code: "body_too_large", Message: "Request body too large"}
	}
	return handler.HTTPError{Status: http.StatusBadRequest, Code: "invalid_json", Message: "Invalid JSON body"}
}

// writeError logs server-side failures and renders the error envelope.
func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve := validator.ExtractValidationErrors(err); ve != nil {
		_ = handler.FieldErrorJSON(errValidation, ve.Fields()).Render(w, r)
		return
	}
	httpErr := mapError(err)
	if httpErr.Status >= http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "request failed", logger.UserID(userID(r)), logger.Error(err))
	}
	_ = handler.ErrorJSON(httpErr).Render(w, r)
}
