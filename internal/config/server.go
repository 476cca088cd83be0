package config

import "time"

// Server configures cmd/server and cmd/migrate
type Server struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL"` // empty runs on in-memory stores
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ErrorSampleRate int           `env:"ERROR_SAMPLE_RATE" envDefault:"100"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	SlowRequest     time.Duration `env:"SLOW_REQUEST_THRESHOLD" envDefault:"500ms"`
	MaxBatchSize    int           `env:"MAX_BATCH_SIZE" envDefault:"1000"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
}

// UsesDatabase reports whether a Postgres connection is configured
func (s Server) UsesDatabase() bool {
	return s.DatabaseURL != ""
}
