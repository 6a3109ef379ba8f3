// Package config loads the process-wide gasfund configuration from the
// environment into an immutable struct passed to the engine at construction.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vitwit/gasfund/types"
)

// Environment variable names
const (
	EnvPrivateKey     = "GASFUND_PRIVATE_KEY"
	EnvRPCURL         = "GASFUND_RPC_URL"
	EnvRPCURLTemplate = "GASFUND_RPC_URL_TEMPLATE"
	EnvDryRun         = "GASFUND_DRY_RUN"
	EnvGraceDelay     = "GASFUND_GRACE_DELAY"
	EnvMetrics        = "GASFUND_METRICS"
	EnvLogLevel       = "GASFUND_LOG_LEVEL"
)

// NetworkPlaceholder is substituted with the network name in RPCURLTemplate.
const NetworkPlaceholder = "{network}"

// DefaultGraceDelay is the operator-interrupt window before submission.
const DefaultGraceDelay = 10 * time.Second

var validate = validator.New()

// Config holds all process configuration. It is read once at startup and
// never mutated afterwards.
type Config struct {
	// PrivateKey is the funder account's hex-encoded ECDSA key.
	PrivateKey string `validate:"required"`

	// RPCURL is an explicit node endpoint. Takes precedence over the
	// template when both are set.
	RPCURL string `validate:"omitempty,url"`

	// RPCURLTemplate is an endpoint URL with a {network} placeholder.
	RPCURLTemplate string

	// DryRun suppresses the final transaction submission.
	DryRun bool

	// GraceDelay is the cancellation window before submitting a transfer.
	GraceDelay time.Duration

	MetricsEnabled bool
	LogLevel       string
}

// FromEnv builds a Config from environment variables and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		PrivateKey:     strings.TrimPrefix(os.Getenv(EnvPrivateKey), "0x"),
		RPCURL:         os.Getenv(EnvRPCURL),
		RPCURLTemplate: os.Getenv(EnvRPCURLTemplate),
		DryRun:         os.Getenv(EnvDryRun) != "",
		MetricsEnabled: os.Getenv(EnvMetrics) != "",
		GraceDelay:     DefaultGraceDelay,
		LogLevel:       "info",
	}

	if v := os.Getenv(EnvGraceDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, &types.GasFundError{
				Code:    types.ErrConfigError,
				Message: fmt.Sprintf("invalid %s: %q", EnvGraceDelay, v),
			}
		}
		cfg.GraceDelay = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields and the URL-or-template constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &types.GasFundError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid configuration: %v", err),
		}
	}

	if c.RPCURL == "" && c.RPCURLTemplate == "" {
		return &types.GasFundError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("one of %s or %s is required", EnvRPCURL, EnvRPCURLTemplate),
		}
	}

	if c.RPCURL == "" && !strings.Contains(c.RPCURLTemplate, NetworkPlaceholder) {
		return &types.GasFundError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("%s must contain the %s placeholder", EnvRPCURLTemplate, NetworkPlaceholder),
		}
	}

	return nil
}

// EndpointFor resolves the RPC endpoint for a network. An explicit RPCURL
// wins over the template.
func (c *Config) EndpointFor(network types.Network) string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	return strings.ReplaceAll(c.RPCURLTemplate, NetworkPlaceholder, network.String())
}
