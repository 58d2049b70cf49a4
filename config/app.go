package config

import "time"

type App struct {
	Port                string        `env:"APP_PORT" default:"8080"`
	DatabaseURL         string        `env:"DATABASE_URL,required"`
	Env                 string        `env:"APP_ENV" default:"dev"`
	DBMaxConns          int32         `env:"DB_MAX_CONNS" default:"8"`
	AutoMigrate         bool          `env:"AUTO_MIGRATE" default:"true"`
	KafkaBrokers        []string      `env:"KAFKA_BROKERS"`
	KafkaTopic          string        `env:"KAFKA_TOPIC" default:"library.reservations"`
	RedisAddr           string        `env:"REDIS_ADDR"`
	OverdueScanInterval time.Duration `env:"OVERDUE_SCAN_INTERVAL" default:"0"`
	ServiceName         string        `env:"SERVICE_NAME" default:"library-api"`
}

// EventsEnabled reports whether reservation events go to Kafka.
func (a App) EventsEnabled() bool { return len(a.KafkaBrokers) > 0 }
