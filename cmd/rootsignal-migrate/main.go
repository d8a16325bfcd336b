// rootsignal-migrate applies pending event store migrations and exits. It
// exists as its own binary so a deploy pipeline can run migrations as a
// distinct step ahead of rolling out the rootsignal daemon, without pulling
// in Neo4j, Redis, or LLM client wiring.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	v := viper.New()
	v.SetEnvPrefix("ROOTSIGNAL")
	v.AutomaticEnv()
	v.SetDefault("config-dir", "./deploy/config")

	ctx := context.Background()
	cfg, err := config.Initialize(ctx, v.GetString("config-dir"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := eventstore.Open(ctx, eventstoreConfig(v), slog.Default())
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer store.Close()

	slog.Info("migrations applied", "scopes", len(cfg.Scopes))
	return nil
}

// eventstoreConfig builds eventstore.Config from DB_* environment variables,
// the same naming convention pkg/database/config.go uses for Postgres
// connection settings.
func eventstoreConfig(v *viper.Viper) eventstore.Config {
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "rootsignal")
	v.SetDefault("db_name", "rootsignal")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("db_min_conns", 2)

	for _, key := range []string{"db_host", "db_port", "db_user", "db_password", "db_name", "db_sslmode", "db_max_conns", "db_min_conns"} {
		_ = v.BindEnv(key)
	}

	return eventstore.Config{
		Host:            v.GetString("db_host"),
		Port:            v.GetInt("db_port"),
		User:            v.GetString("db_user"),
		Password:        v.GetString("db_password"),
		Database:        v.GetString("db_name"),
		SSLMode:         v.GetString("db_sslmode"),
		MaxConns:        int32(v.GetInt("db_max_conns")),
		MinConns:        int32(v.GetInt("db_min_conns")),
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 15 * time.Minute,
	}
}
