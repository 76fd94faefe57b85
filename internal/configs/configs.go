/*
Package configs is responsible for loading and parsing the application's configuration settings.

It reads server parameters from operating system environment variables, including the running
environment, the chat relay port, the HTTP ops port, per-session queue sizing, and the
per-IP connection rate limits.
*/
package configs

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// Environment selects logger output and CORS/origin strictness ("development" or "production").
	Environment string `envconfig:"ENVIRONMENT" default:"development" validate:"oneof=development production"`

	// ChatPort is the TCP port the line-protocol relay listens on.
	ChatPort int `envconfig:"CHAT_PORT" default:"9001" validate:"min=1024,max=65535"`

	// HTTPPort is the port for the ops API and the WebSocket transport endpoint.
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080" validate:"min=1024,max=65535,nefield=ChatPort"`

	// SendQueueSize is the capacity of each session's outbound message queue.
	SendQueueSize int `envconfig:"SEND_QUEUE_SIZE" default:"256" validate:"min=1"`

	// MaxLineBytes caps the length of a single inbound protocol line.
	MaxLineBytes int `envconfig:"MAX_LINE_BYTES" default:"8192" validate:"min=64"`

	// ConnRate is the sustained number of new connections allowed per second per client IP.
	ConnRate float64 `envconfig:"CONN_RATE" default:"1" validate:"gt=0"`

	// ConnBurst is the burst of new connections allowed per client IP.
	ConnBurst int `envconfig:"CONN_BURST" default:"5" validate:"min=1"`

	// AllowedOrigins lists the origins accepted for WebSocket upgrades and CORS outside development.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
}

// LoadConfig reads the application configuration from environment variables,
// applies defaults, and validates the result.
// It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("configs: processing environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configs: invalid configuration: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
