package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure" // Rejected input, such as a wrong code
	ResultError   Result = "error"   // The action could not complete
)

// Event is a single audit record.
type Event struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	Result    Result         `json:"result"`
	Reason    string         `json:"reason,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks the fields every storage relies on.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	}
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidEvent)
	}
	return nil
}

// EventOption adjusts an event before it is stored.
type EventOption func(*Event)

// WithUserID sets the subject of the event, overriding the extractor.
func WithUserID(id string) EventOption {
	return func(e *Event) { e.UserID = id }
}

func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// Storage persists events.
type Storage interface {
	Store(ctx context.Context, e Event) error
}

// Criteria selects events for a Reader.
type Criteria struct {
	UserID string
	Action string    // Optional exact match
	Since  time.Time // Optional lower bound on CreatedAt
	Limit  int       // Zero means DefaultLimit
}

// DefaultLimit and MaxLimit bound Criteria.Limit.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Normalize clamps Limit into [1, MaxLimit].
func (c Criteria) Normalize() Criteria {
	switch {
	case c.Limit <= 0:
		c.Limit = DefaultLimit
	case c.Limit > MaxLimit:
		c.Limit = MaxLimit
	}
	return c
}

// Reader lists events newest first.
type Reader interface {
	FindEvents(ctx context.Context, c Criteria) ([]Event, error)
}

// Extractor reads a request attribute from the context. Empty means absent.
type Extractor func(ctx context.Context) string

// Logger builds events and passes them to a Storage.
type Logger struct {
	storage   Storage
	userID    Extractor
	requestID Extractor
	ip        Extractor
	now       func() time.Time
	newID     func() string
}

type Option func(*Logger)

func WithUserIDExtractor(fn Extractor) Option {
	return func(l *Logger) { l.userID = fn }
}

func WithRequestIDExtractor(fn Extractor) Option {
	return func(l *Logger) { l.requestID = fn }
}

func WithIPExtractor(fn Extractor) Option {
	return func(l *Logger) { l.ip = fn }
}

func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(l *Logger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// NewLogger creates a Logger. It panics when storage is nil.
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	l := &Logger{
		storage: storage,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log records a successful action.
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	return l.store(ctx, l.event(ctx, action, ResultSuccess, ""), opts)
}

// LogFailure records an action rejected with reason.
func (l *Logger) LogFailure(ctx context.Context, action, reason string, opts ...EventOption) error {
	return l.store(ctx, l.event(ctx, action, ResultFailure, reason), opts)
}

// LogError records an action that failed with err.
func (l *Logger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return l.store(ctx, l.event(ctx, action, ResultError, reason), opts)
}

func (l *Logger) event(ctx context.Context, action string, result Result, reason string) Event {
	return Event{
		ID:        l.newID(),
		UserID:    extract(ctx, l.userID),
		Action:    action,
		Result:    result,
		Reason:    reason,
		RequestID: extract(ctx, l.requestID),
		IP:        extract(ctx, l.ip),
		CreatedAt: l.now().UTC(),
	}
}

func (l *Logger) store(ctx context.Context, e Event, opts []EventOption) error {
	for _, opt := range opts {
		opt(&e)
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := l.storage.Store(ctx, e); err != nil {
		return errors.Join(fmt.Errorf("audit: store %s", e.Action), err)
	}
	return nil
}

func extract(ctx context.Context, fn Extractor) string {
	if fn == nil {
		return ""
	}
	return fn(ctx)
}
