package api

import (
	"net/http"

	"github.com/dmitrymomot/authkit/binder"
	"github.com/dmitrymomot/authkit/handler"
	"github.com/dmitrymomot/authkit/pkg/audit"
	"github.com/dmitrymomot/authkit/svc/twofactor"
)

var errInvalidCode = handler.HTTPError{Status: http.StatusUnprocessableEntity, Code: "invalid_token", Message: twofactor.MsgInvalidToken}

type setupRequest struct {
	Email string `json:"email"`
}

type enableRequest struct {
	Secret      string   `json:"secret"`
	Token       string   `json:"token"`
	BackupCodes []string `json:"backup_codes"`
}

type codeRequest struct {
	Token string `json:"token"`
}

func (a *api) wrapOptions() []handler.WrapOption {
	return []handler.WrapOption{
		handler.WithBinders(binder.JSON(), validateRequest),
		handler.WithErrorHandler(a.writeError),
	}
}

func (a *api) twoFactorStatus() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, _ struct{}) handler.Response {
		return handler.JSON(a.svc.TwoFactor.GetStatus(r.Context(), userID(r)))
	}, handler.WithErrorHandler(a.writeError))
}

func (a *api) twoFactorSetup() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req setupRequest) handler.Response {
		setup, err := a.svc.TwoFactor.GenerateSetup(r.Context(), userID(r), req.Email)
		if err != nil {
			a.recordError(r, actionTwoFactorSetup, err)
			return handler.Error(err)
		}
		a.recordSuccess(r, actionTwoFactorSetup)
		return handler.JSON(setup)
	}, a.wrapOptions()...)
}

func (a *api) twoFactorEnable() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req enableRequest) handler.Response {
		ok, err := a.svc.TwoFactor.Enable(r.Context(), userID(r), req.Secret, req.Token, req.BackupCodes)
		if err != nil {
			a.recordError(r, actionTwoFactorEnable, err)
			return handler.Error(err)
		}
		if !ok {
			a.recordFailure(r, actionTwoFactorEnable, errInvalidCode.Message)
			return handler.Error(errInvalidCode)
		}
		a.recordSuccess(r, actionTwoFactorEnable, audit.WithMetadata("backup_codes", len(req.BackupCodes)))
		return handler.JSON(map[string]bool{"enabled": true})
	}, a.wrapOptions()...)
}

func (a *api) twoFactorDisable() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req codeRequest) handler.Response {
		ok, err := a.svc.TwoFactor.Disable(r.Context(), userID(r), req.Token)
		if err != nil {
			a.recordError(r, actionTwoFactorDisable, err)
			return handler.Error(err)
		}
		if !ok {
			a.recordFailure(r, actionTwoFactorDisable, errInvalidCode.Message)
			return handler.Error(errInvalidCode)
		}
		a.recordSuccess(r, actionTwoFactorDisable)
		return handler.JSON(map[string]bool{"enabled": false})
	}, a.wrapOptions()...)
}

// twoFactorVerify answers 200 with the result on success and 422 with the
// service message otherwise, so "2FA is not enabled" reaches the client as-is.
func (a *api) twoFactorVerify() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req codeRequest) handler.Response {
		res := a.svc.TwoFactor.VerifyToken(r.Context(), userID(r), req.Token)
		if !res.Success {
			a.recordFailure(r, actionTwoFactorVerify, res.Error)
			code := "invalid_token"
			if res.Error == twofactor.MsgNotEnabled {
				code = "two_factor_not_enabled"
			}
			return handler.Error(handler.HTTPError{Status: http.StatusUnprocessableEntity, Code: code, Message: res.Error})
		}
		a.recordSuccess(r, actionTwoFactorVerify, audit.WithMetadata("backup_code_used", res.BackupCodeUsed))
		return handler.JSON(res)
	}, a.wrapOptions()...)
}

func (a *api) twoFactorBackupCodes() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req codeRequest) handler.Response {
		codes, err := a.svc.TwoFactor.RegenerateBackupCodes(r.Context(), userID(r), req.Token)
		if err != nil {
			a.recordError(r, actionTwoFactorBackupCodes, err)
			return handler.Error(err)
		}
		if codes == nil {
			a.recordFailure(r, actionTwoFactorBackupCodes, errInvalidCode.Message)
			return handler.Error(errInvalidCode)
		}
		a.recordSuccess(r, actionTwoFactorBackupCodes)
		return handler.JSON(map[string][]string{"backup_codes": codes})
	}, a.wrapOptions()...)
}
