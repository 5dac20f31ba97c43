package logger

// Config is the environment-driven part of logger setup.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:""`
	Format string `env:"LOG_FORMAT" envDefault:""`
}

// Options converts explicit overrides into options. Empty fields keep the
// environment presets.
func (c Config) Options() []Option {
	var opts []Option
	if c.Level != "" {
		opts = append(opts, WithLevel(ParseLevel(c.Level)))
	}
	if c.Format != "" {
		opts = append(opts, WithFormat(Format(c.Format)))
	}
	return opts
}
