package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ogonki/streak-api/internal/config"
)

var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "streakctl",
	Short: "Operations CLI for the streak service",
	Long: `streakctl runs one-off operations against the streak service's
database and Telegram bot, using the same environment as the server.

Examples:
  streakctl migrate
  streakctl webhook set --url https://bot.example.com/v1/telegram/webhook
  streakctl webhook info
  streakctl config show`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env", "../.env"}, "Env files to load when present")
}

// loadConfig reads env files named by --env-file, then the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	paths, _ := cmd.Flags().GetStringSlice("env-file")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return config.Load()
}
