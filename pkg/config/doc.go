// Package config fills tagged structs from environment variables.
//
// Parsing is done by github.com/caarlos0/env/v11. Before the first parse the
// loader reads .env files with github.com/joho/godotenv; variables already set
// in the process environment win over file values.
//
//	cfg, err := config.Load[twofactor.Config]()
//	pgCfg := config.MustLoad[pg.Config](config.WithPrefix("AUTH_"))
package config
