package extension

import (
	"github.com/xraph/elastic"
)

// Config holds the elastic extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.elastic" or "elastic" keys).
type Config struct {
	// Token seeds genesis when the journal is empty.
	Token elastic.Config `json:"token" mapstructure:"token" yaml:"token"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Token: elastic.DefaultConfig()}
}
