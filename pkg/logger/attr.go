package logger

import "log/slog"

// Error records err under "error". A nil error yields an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Component records the emitting service under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records a domain event name under "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// TokenKind records the verification token purpose under "token_kind".
func TokenKind(kind string) slog.Attr {
	return slog.String("token_kind", kind)
}

// Remaining records a remaining count, such as unused backup codes.
func Remaining(n int) slog.Attr {
	return slog.Int("remaining", n)
}

// RequestID records the request identifier under "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}
