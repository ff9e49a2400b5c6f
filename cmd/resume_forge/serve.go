package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/config"
	"github.com/jonathan/resume-forge/internal/db"
	"github.com/jonathan/resume-forge/internal/pipeline"
	"github.com/jonathan/resume-forge/internal/server"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing templates, rendering, generations, profiles and resume
parsing/tailoring. DATABASE_URL and JWT_SECRET are required; Gemini, S3, Redis and Stripe are
enabled when configured.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply the database schema before starting")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if serveMigrate {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	compiler, cleanup, err := newCompiler(false)
	if err != nil {
		return fmt.Errorf("failed to configure compiler: %w", err)
	}
	defer cleanup()

	client, err := newLLM(ctx)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	if client != nil {
		defer client.Close()
	} else {
		logger.Warn("GEMINI_API_KEY not set; resume parsing and tailoring are disabled")
	}

	objects, err := newObjects()
	if err != nil {
		return fmt.Errorf("failed to configure object storage: %w", err)
	}
	if objects == nil {
		logger.Warn("S3_BUCKET not set; generated PDFs are not stored")
	}

	customers, err := newCustomers()
	if err != nil {
		return fmt.Errorf("failed to configure billing: %w", err)
	}

	port := cfg.Port
	if servePort != 0 {
		port = strconv.Itoa(servePort)
	}

	srv, err := server.New(server.Config{
		Port:  port,
		Store: database,
		JWT:   server.NewJWTService(jwtConfig),
		Generator: &pipeline.Generator{
			Store:        database,
			Compiler:     compiler,
			Objects:      objects,
			EscapeValues: cfg.EscapeValues,
			Logger:       logger,
		},
		Objects:      objects,
		LLM:          client,
		Ingester:     newIngester(client),
		Customers:    customers,
		Logger:       logger,
		EscapeValues: cfg.EscapeValues,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
