// Package audit records security-relevant actions such as enabling two-factor
// authentication or rotating a refresh token.
//
// A Logger fills request metadata from the context through extractors and
// hands each Event to a Storage. AsyncWriter wraps a BatchStorage so that
// request handlers never wait on the database:
//
//	w := audit.NewAsyncWriter(store, audit.AsyncOptions{}, log)
//	defer w.Close(ctx)
//	l := audit.NewLogger(w,
//		audit.WithRequestIDExtractor(requestid.FromContext),
//		audit.WithIPExtractor(clientip.FromContext),
//	)
//	_ = l.Log(ctx, "2fa.enable", audit.WithUserID(id))
//
// Reader implementations list a user's recent events, newest first.
package audit
