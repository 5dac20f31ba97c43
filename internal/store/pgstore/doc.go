// Package pgstore persists users, two-factor state, sessions, login attempts
// and lifecycle tokens in PostgreSQL.
//
// A single *Store satisfies twofactor.Store, token.VerificationStore,
// token.VerificationReplacer, token.RefreshStore and security.StatusSource.
// The schema ships as embedded goose migrations:
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations(), log); err != nil {
//		return err
//	}
//	store := pgstore.New(pool)
//
// User ids are UUIDs. A malformed id is reported as "not found" rather than
// as a driver error.
package pgstore
