package api

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/authkit/handler"
	"github.com/dmitrymomot/authkit/pkg/audit"
)

func (a *api) securityStatus() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, _ struct{}) handler.Response {
		report, err := a.svc.Security.Report(r.Context(), userID(r))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(report)
	}, handler.WithErrorHandler(a.writeError))
}

func (a *api) securityEvents() http.HandlerFunc {
	return handler.Wrap(func(r *http.Request, _ struct{}) handler.Response {
		c := audit.Criteria{
			UserID: userID(r),
			Action: r.URL.Query().Get("action"),
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return handler.Error(errInvalidLimit)
			}
			c.Limit = n
		}
		events, err := a.events.FindEvents(r.Context(), c)
		if err != nil {
			return handler.Error(err)
		}
		if events == nil {
			events = []audit.Event{}
		}
		return handler.JSON(map[string]any{"events": events})
	}, handler.WithErrorHandler(a.writeError))
}
