package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/internal/config"
)

var envFile string

func main() {
	root := &cobra.Command{
		Use:   "municipal-assistant",
		Short: "Voice assistant for municipal complaints",
		// Running the binary with no subcommand serves
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(newServeCommand(), newTokenCommand(), newWatchCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	return config.Load(envFile)
}

// newLogger builds a production logger, or a development one for LOG_FORMAT=console
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogFormat == "console" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
