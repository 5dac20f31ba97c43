package api

import (
	"net/http"

	"github.com/dmitrymomot/authkit/pkg/audit"
	"github.com/dmitrymomot/authkit/pkg/logger"
)

// Audited actions.
const (
	actionTwoFactorSetup       = "2fa.setup"
	actionTwoFactorEnable      = "2fa.enable"
	actionTwoFactorDisable     = "2fa.disable"
	actionTwoFactorVerify      = "2fa.verify"
	actionTwoFactorBackupCodes = "2fa.backup_codes.regenerate"
)

// recordSuccess, recordFailure and recordError never fail the request.
// Audit write errors are logged.
func (a *api) recordSuccess(r *http.Request, action string, opts ...audit.EventOption) {
	if a.audit == nil {
		return
	}
	a.auditResult(r, action, a.audit.Log(r.Context(), action, a.auditOpts(r, opts)...))
}

func (a *api) recordFailure(r *http.Request, action, reason string) {
	if a.audit == nil {
		return
	}
	a.auditResult(r, action, a.audit.LogFailure(r.Context(), action, reason, a.auditOpts(r, nil)...))
}

func (a *api) recordError(r *http.Request, action string, err error) {
	if a.audit == nil {
		return
	}
	a.auditResult(r, action, a.audit.LogError(r.Context(), action, err, a.auditOpts(r, nil)...))
}

func (a *api) auditOpts(r *http.Request, opts []audit.EventOption) []audit.EventOption {
	return append([]audit.EventOption{audit.WithUserID(userID(r))}, opts...)
}

func (a *api) auditResult(r *http.Request, action string, err error) {
	if err != nil {
		a.log.WarnContext(r.Context(), "audit event dropped",
			logger.Event(action), logger.UserID(userID(r)), logger.Error(err))
	}
}
