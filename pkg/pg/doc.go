// Package pg connects to PostgreSQL through a pgx connection pool and applies
// embedded goose migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations(), log); err != nil {
//		return err
//	}
//
// The Is*Error helpers classify pgx errors without leaking driver types to
// store implementations.
package pg
