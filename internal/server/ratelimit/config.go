package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultLimit is the per-minute request limit for endpoints without their own entry.
const DefaultLimit = 600

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // requests per window; 0 means unlimited
	Window time.Duration // time window
	Burst  int           // burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", DefaultLimit),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. Generation and LLM calls are
// the most expensive and get hourly budgets.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/generations", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/generations/stream", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/resumes/parse", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/resumes/tailor", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		{Path: "/render", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/templates", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/profiles/", Method: "PUT", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/profiles/", Method: "DELETE", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/generations/", Method: "DELETE", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
