package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-forge/internal/billing"
	"github.com/jonathan/resume-forge/internal/compile"
	"github.com/jonathan/resume-forge/internal/ingestion"
	"github.com/jonathan/resume-forge/internal/llm"
	"github.com/jonathan/resume-forge/internal/schemas"
	"github.com/jonathan/resume-forge/internal/storage"
	"github.com/jonathan/resume-forge/internal/types"
)

// newCompiler builds the configured compiler. local selects the LaTeX engine on this machine
// instead of the remote build service. A Redis URL wraps either in the compiled-PDF cache; the
// returned cleanup closes that connection.
func newCompiler(local bool) (compile.Compiler, func(), error) {
	var compiler compile.Compiler
	if local {
		compiler = compile.NewLocalCompiler(cfg.Compiler, cfg.CompileTimeoutDuration())
	} else {
		compiler = compile.NewRemoteCompiler(cfg.CompilerURL, cfg.Compiler, &http.Client{Timeout: cfg.CompileTimeoutDuration()})
	}

	if cfg.RedisURL == "" {
		return compiler, func() {}, nil
	}

	cache, err := compile.NewRedisCache(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := cache.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis cache")
		}
	}
	logger.Debug("compiled-PDF cache enabled")
	return compile.NewCachedCompiler(compiler, cache, cfg.CacheTTLDuration(), logger), cleanup, nil
}

// newLLM returns a Gemini client, or nil when no API key is configured.
func newLLM(ctx context.Context) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	return llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
}

// requireLLM is newLLM for commands that cannot run without a model.
func requireLLM(ctx context.Context) (llm.Client, error) {
	client, err := newLLM(ctx)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable (or api_key in config) is required")
	}
	return client, nil
}

func newIngester(client llm.Client) *ingestion.Ingester {
	return &ingestion.Ingester{Client: client, UseBrowser: cfg.UseBrowser, Logger: logger}
}

// newObjects returns the S3 store, or nil when no bucket is configured.
func newObjects() (storage.ObjectStore, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}
	store, err := storage.NewS3Store(storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PathStyle: cfg.S3Endpoint != "",
	}, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newCustomers returns the Stripe customer creator, or nil when billing is not configured.
func newCustomers() (billing.CustomerCreator, error) {
	if cfg.StripeKey == "" {
		return nil, nil
	}
	customers, err := billing.NewStripeCustomers(cfg.StripeKey)
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// readResume loads a resume JSON file.
func readResume(path string) (*types.Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("resume file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read resume file: %w", err)
	}
	if err := schemas.ValidateResumeJSON(data); err != nil {
		var invalid *schemas.ValidationError
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("resume %s does not match the resume schema: %s", path, invalid.Summary())
		}
		return nil, fmt.Errorf("failed to parse resume JSON: %w", err)
	}
	var resume types.Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("failed to parse resume JSON: %w", err)
	}
	return &resume, nil
}

// writeOutput writes data to path, creating parent directories. An empty path or "-" writes
// to stdout.
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeJSON(stdout io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeOutput(stdout, path, append(data, '\n'))
}
