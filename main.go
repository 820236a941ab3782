package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/fruitseller-backend/internal"
	"github.com/rocketscienceinc/fruitseller-backend/internal/config"
)

var (
	configFile string
	inMemory   bool
)

var rootCmd = &cobra.Command{
	Use:   "fruitseller",
	Short: "Fruit Seller game server",
	Long:  `Fruit Seller game server: room lobby, card passing and bot seats over WebSocket.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf := config.MustLoad(configFile)
		if cmd.Flags().Changed("in-memory") {
			conf.InMemory = inMemory
		}

		logger := initLogger(conf)
		logger.Info("config loaded", "path", configFile, "broker", conf.Broker, "inMemory", conf.InMemory)

		if err := app.RunApp(logger, conf); err != nil {
			return fmt.Errorf("app run failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "./config.yml", "path to the config file")
	rootCmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep rooms in process memory instead of redis")
}

// main - is the entry point of the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
