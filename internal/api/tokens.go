package api

import (
	"net/http"

	"github.com/dmitrymomot/authkit/handler"
	"github.com/dmitrymomot/authkit/svc/token"
)

type emailRequest struct {
	Email string `json:"email"`
}

type verifyTokenRequest struct {
	Token string `json:"token"`
	// Peek checks the token without consuming it.
	Peek bool `json:"peek"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type issueRefreshRequest struct {
	UserID string `json:"user_id"`
}

func (a *api) issueVerification() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req emailRequest) handler.Response {
		vt, err := a.svc.Tokens.IssueVerificationToken(r.Context(), req.Email)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSONWithStatus(http.StatusCreated, vt)
	}, a.wrapOptions()...)
}

func (a *api) issuePasswordReset() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req emailRequest) handler.Response {
		vt, err := a.svc.Tokens.IssuePasswordResetToken(r.Context(), req.Email)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSONWithStatus(http.StatusCreated, vt)
	}, a.wrapOptions()...)
}

func (a *api) tokenVerify() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req verifyTokenRequest) handler.Response {
		verify := a.svc.Tokens.Verify
		if req.Peek {
			verify = a.svc.Tokens.Peek
		}
		res := verify(r.Context(), req.Token)
		if !res.Valid {
			code := "invalid_token"
			if res.Error == token.MsgTokenExpired {
				code = "token_expired"
			}
			return handler.Error(handler.HTTPError{Status: http.StatusUnprocessableEntity, Code: code, Message: res.Error})
		}
		return handler.JSON(res)
	}, a.wrapOptions()...)
}

func (a *api) tokenRefresh() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req refreshRequest) handler.Response {
		pair, err := a.svc.Tokens.RotateRefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(pair)
	}, a.wrapOptions()...)
}

// tokenRevoke answers 204 for unknown tokens too.
func (a *api) tokenRevoke() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req refreshRequest) handler.Response {
		if err := a.svc.Tokens.Revoke(r.Context(), req.RefreshToken); err != nil {
			return handler.Error(err)
		}
		return handler.Empty()
	}, a.wrapOptions()...)
}

func (a *api) issueRefreshToken() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, req issueRefreshRequest) handler.Response {
		rt, err := a.svc.Tokens.IssueRefreshToken(r.Context(), req.UserID)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSONWithStatus(http.StatusCreated, map[string]string{"refresh_token": rt})
	}, a.wrapOptions()...)
}
