// Package handler adapts typed request handlers to http.HandlerFunc.
//
// A HandlerFunc receives its request already decoded and returns a Response.
// Errors travel as responses too: Error(err) hands err to the ErrorHandler
// configured on Wrap, which turns it into the JSON error envelope.
//
//	type enableRequest struct {
//		Secret string `json:"secret"`
//		Token  string `json:"token"`
//	}
//
//	r.Post("/enable", handler.Wrap(func(r *http.Request, req enableRequest) handler.Response {
//		ok, err := svc.Enable(r.Context(), userID, req.Secret, req.Token, nil)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(map[string]bool{"enabled": ok})
//	}, handler.WithBinders(binder.JSON())))
package handler
