// Package main provides the resume_forge CLI: template-driven LaTeX resume generation from the
// command line and the REST API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/config"
	"github.com/jonathan/resume-forge/internal/observability"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "resume_forge",
	Short: "Template-driven LaTeX resume generator",
	Long: `resume_forge fills LaTeX templates with structured resume data, compiles them to PDF and
optionally tailors the resume to a job description first. It runs as a CLI or as a REST API.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntime,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json (environment and defaults fill the gaps)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

// loadRuntime resolves the configuration and the logger before any subcommand runs.
func loadRuntime(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	cfg = loaded
	logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
