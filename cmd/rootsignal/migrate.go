package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply pending event store migrations and exit",
	RunE:  runMigrate,
}

// runMigrate applies golang-migrate's pending up migrations against the
// event store and exits without starting the daemon loop. eventstore.Open
// runs migrations as a side effect of connecting, so this is the same path
// the daemon takes at startup, just without building the rest of deps.
func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Initialize(ctx, v.GetString("config-dir"))
	if err != nil {
		return err
	}

	store, err := eventstore.Open(ctx, eventstoreConfigFromEnv(v), slog.Default())
	if err != nil {
		return err
	}
	defer store.Close()

	slog.Info("migrations applied", "scopes", len(cfg.Scopes))
	return nil
}
