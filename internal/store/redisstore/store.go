package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/svc/token"
)

// DefaultGrace is how long a key outlives the token it holds.
const DefaultGrace = 24 * time.Hour

var (
	_ token.VerificationStore    = (*Store)(nil)
	_ token.VerificationReplacer = (*Store)(nil)
	_ token.RefreshStore         = (*Store)(nil)
)

// Store implements the token stores on a go-redis client.
type Store struct {
	db     redis.UniversalClient
	prefix string
	grace  time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithGrace overrides DefaultGrace.
func WithGrace(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.grace = d
		}
	}
}

// WithClock sets the time source used for key expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store. All keys are prefixed with prefix.
func New(db redis.UniversalClient, prefix string, opts ...Option) *Store {
	if db == nil {
		panic("redisstore: client is required")
	}
	s := &Store{db: db, prefix: prefix, grace: DefaultGrace, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) verificationKey(value string) string { return s.prefix + "vt:" + value }
func (s *Store) identifierKey(ident string) string   { return s.prefix + "vt:id:" + ident }
func (s *Store) refreshKey(value string) string      { return s.prefix + "rt:" + value }
func (s *Store) refreshIDKey(id string) string       { return s.prefix + "rt:id:" + id }

// ttl is the key lifetime for a token expiring at expires. Never below one second.
func (s *Store) ttl(expires time.Time) time.Duration {
	return max(expires.Sub(s.now())+s.grace, time.Second)
}

func (s *Store) FindVerificationToken(ctx context.Context, value string) (*token.VerificationToken, error) {
	var t token.VerificationToken
	if err := s.getJSON(ctx, s.verificationKey(value), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteVerificationToken uses GETDEL so exactly one caller observes the token.
func (s *Store) DeleteVerificationToken(ctx context.Context, value string) error {
	raw, err := s.db.GetDel(ctx, s.verificationKey(value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return token.ErrTokenNotFound
		}
		return err
	}

	var t token.VerificationToken
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil // deleted; the index entry expires with its key
	}
	return s.db.SRem(ctx, s.identifierKey(t.Identifier), value).Err()
}

func (s *Store) DeleteVerificationTokensByIdentifier(ctx context.Context, identifier string) error {
	members, err := s.db.SMembers(ctx, s.identifierKey(identifier)).Result()
	if err != nil {
		return err
	}
	_, err = s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		s.deleteIdentifier(ctx, p, identifier, members)
		return nil
	})
	return err
}

func (s *Store) CreateVerificationToken(ctx context.Context, t token.VerificationToken) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		s.addVerification(ctx, p, t, raw)
		return nil
	})
	return err
}

// ReplaceVerificationToken removes earlier tokens for t.Identifier and stores t in one MULTI block.
func (s *Store) ReplaceVerificationToken(ctx context.Context, t token.VerificationToken) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	members, err := s.db.SMembers(ctx, s.identifierKey(t.Identifier)).Result()
	if err != nil {
		return err
	}
	_, err = s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		s.deleteIdentifier(ctx, p, t.Identifier, members)
		s.addVerification(ctx, p, t, raw)
		return nil
	})
	return err
}

func (s *Store) deleteIdentifier(ctx context.Context, p redis.Pipeliner, identifier string, members []string) {
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, s.verificationKey(m))
	}
	keys = append(keys, s.identifierKey(identifier))
	p.Del(ctx, keys...)
}

func (s *Store) addVerification(ctx context.Context, p redis.Pipeliner, t token.VerificationToken, raw []byte) {
	ttl := s.ttl(t.Expires)
	p.Set(ctx, s.verificationKey(t.Token), raw, ttl)
	p.SAdd(ctx, s.identifierKey(t.Identifier), t.Token)
	p.Expire(ctx, s.identifierKey(t.Identifier), ttl)
}

func (s *Store) FindRefreshToken(ctx context.Context, value string) (*token.RefreshToken, error) {
	var t token.RefreshToken
	if err := s.getJSON(ctx, s.refreshKey(value), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, t token.RefreshToken) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	ttl := s.ttl(t.Expires)
	_, err = s.db.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.refreshKey(t.Token), raw, ttl)
		p.Set(ctx, s.refreshIDKey(t.ID), t.Token, ttl)
		return nil
	})
	return err
}

// DeleteRefreshToken claims the id key with GETDEL, so concurrent rotations of
// one token have a single winner.
func (s *Store) DeleteRefreshToken(ctx context.Context, id string) error {
	value, err := s.db.GetDel(ctx, s.refreshIDKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return token.ErrTokenNotFound
		}
		return err
	}
	return s.db.Del(ctx, s.refreshKey(value)).Err()
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) error {
	raw, err := s.db.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return token.ErrTokenNotFound
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Join(ErrCorruptValue, err)
	}
	return nil
}
