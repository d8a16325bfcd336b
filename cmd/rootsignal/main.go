// rootsignal runs the RootSignal daemon: it wires the event store, graph
// projector/reader, Scout Pipeline, Situation Weaver, Story Materializer,
// Reaper, and HTTP API together into one long-running process.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set via -ldflags at build time.
	Version = "dev"

	configDir string
	logLevel  string
	v         = viper.New()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "rootsignal",
	Short:   "RootSignal continuously discovers, weaves, and materializes community signals",
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "./deploy/config", "directory containing rootsignal.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	v.SetEnvPrefix("ROOTSIGNAL")
	v.AutomaticEnv()
	_ = v.BindPFlag("config-dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	_ = v.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
}

func initLogger() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
