// Package config provides configuration loading and validation for the CLI and the API server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults used by Load. Timeouts and TTLs are in seconds.
const (
	DefaultPort           = "8080"
	DefaultCompilerURL    = "https://latex.ytotech.com/builds/sync"
	DefaultCompiler       = "pdflatex"
	DefaultCompileTimeout = 60
	DefaultCacheTTL       = 24 * 60 * 60
	DefaultS3Region       = "us-east-1"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

var supportedCompilers = map[string]bool{
	"pdflatex": true,
	"xelatex":  true,
	"lualatex": true,
}

// Config represents the application configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	// Server
	Port        string `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// LLM
	APIKey     string `json:"api_key,omitempty"`     // Gemini API key
	UseBrowser bool   `json:"use_browser,omitempty"` // Headless browser retry for SPA job boards

	// Compilation
	CompilerURL    string `json:"compiler_url,omitempty"`
	Compiler       string `json:"compiler,omitempty"`        // pdflatex, xelatex or lualatex
	CompileTimeout int    `json:"compile_timeout,omitempty"` // seconds
	RedisURL       string `json:"redis_url,omitempty"`       // enables the compiled-PDF cache
	CacheTTL       int    `json:"cache_ttl,omitempty"`       // seconds

	// Object storage
	S3Bucket    string `json:"s3_bucket,omitempty"`
	S3Region    string `json:"s3_region,omitempty"`
	S3Endpoint  string `json:"s3_endpoint,omitempty"`
	S3AccessKey string `json:"s3_access_key,omitempty"`
	S3SecretKey string `json:"s3_secret_key,omitempty"`

	// Billing
	StripeKey string `json:"stripe_key,omitempty"`

	// Rendering
	TemplatesDir string `json:"templates_dir,omitempty"` // built-in templates seeded by migrate
	EscapeValues bool   `json:"escape_values,omitempty"` // LaTeX-escape resume values before generation

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"` // text or json
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset variables leave fields empty.
func FromEnv() Config {
	return Config{
		Port:           os.Getenv("PORT"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		UseBrowser:     envBool("USE_BROWSER"),
		CompilerURL:    os.Getenv("COMPILER_URL"),
		Compiler:       os.Getenv("LATEX_COMPILER"),
		CompileTimeout: envInt("COMPILE_TIMEOUT_SECONDS"),
		RedisURL:       os.Getenv("REDIS_URL"),
		CacheTTL:       envInt("CACHE_TTL_SECONDS"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       firstEnv("S3_REGION", "AWS_REGION"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3AccessKey:    firstEnv("S3_ACCESS_KEY", "AWS_ACCESS_KEY_ID"),
		S3SecretKey:    firstEnv("S3_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"),
		StripeKey:      os.Getenv("STRIPE_SECRET_KEY"),
		TemplatesDir:   os.Getenv("TEMPLATES_DIR"),
		EscapeValues:   envBool("ESCAPE_VALUES"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		LogFormat:      os.Getenv("LOG_FORMAT"),
	}
}

// Defaults returns the configuration used when neither a file nor the environment sets a value.
func Defaults() Config {
	return Config{
		Port:           DefaultPort,
		CompilerURL:    DefaultCompilerURL,
		Compiler:       DefaultCompiler,
		CompileTimeout: DefaultCompileTimeout,
		CacheTTL:       DefaultCacheTTL,
		S3Region:       DefaultS3Region,
		TemplatesDir:   "templates",
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// Load reads the optional config file at path, then fills the gaps from the environment and
// finally from Defaults. File values win over the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	merged := cfg.MergeWithDefaults(FromEnv())
	merged = merged.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.CompileTimeout < 0 {
		return fmt.Errorf("config error: 'compile_timeout' must be non-negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config error: 'cache_ttl' must be non-negative")
	}

	if c.Compiler != "" && !supportedCompilers[c.Compiler] {
		return fmt.Errorf("config error: unsupported compiler %q", c.Compiler)
	}

	if c.Port != "" {
		port, err := strconv.Atoi(c.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("config error: invalid port %q", c.Port)
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json, got %q", c.LogFormat)
	}

	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return fmt.Errorf("config error: 's3_access_key' and 's3_secret_key' must be set together")
	}

	if c.TemplatesDir != "" {
		if info, err := os.Stat(c.TemplatesDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: templates_dir is not a directory: %s", c.TemplatesDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString(&result.Port, defaults.Port)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.CompilerURL, defaults.CompilerURL)
	mergeString(&result.Compiler, defaults.Compiler)
	mergeString(&result.RedisURL, defaults.RedisURL)
	mergeString(&result.S3Bucket, defaults.S3Bucket)
	mergeString(&result.S3Region, defaults.S3Region)
	mergeString(&result.S3Endpoint, defaults.S3Endpoint)
	mergeString(&result.S3AccessKey, defaults.S3AccessKey)
	mergeString(&result.S3SecretKey, defaults.S3SecretKey)
	mergeString(&result.StripeKey, defaults.StripeKey)
	mergeString(&result.TemplatesDir, defaults.TemplatesDir)
	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.LogFormat, defaults.LogFormat)

	if result.CompileTimeout == 0 {
		result.CompileTimeout = defaults.CompileTimeout
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}

	// Bools cannot distinguish unset from false, so a true on either side wins.
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.EscapeValues = result.EscapeValues || defaults.EscapeValues

	return result
}

// CompileTimeoutDuration returns the compile timeout as a duration.
func (c *Config) CompileTimeoutDuration() time.Duration {
	return time.Duration(c.CompileTimeout) * time.Second
}

// CacheTTLDuration returns the compiled-PDF cache lifetime as a duration.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func mergeString(field *string, fallback string) {
	if *field == "" {
		*field = fallback
	}
}

func envInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
