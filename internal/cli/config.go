package cli

import (
	"fmt"
	"os"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds CLI configuration
type Config struct {
	// ServerURL is the admin API base URL
	ServerURL string
	// Addr is the game listener's host:port
	Addr    string
	Output  string
	Verbose bool
}

// DefaultConfig returns a Config with values from the environment
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("RPS_ADMIN", "http://localhost:8080"),
		Addr:      getEnvOrDefault("RPS_ADDR", "127.0.0.1:9009"),
		Output:    FormatText,
	}
}

// Validate rejects unknown output formats
func (c *Config) Validate() error {
	switch c.Output {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: must be %s or %s", c.Output, FormatText, FormatJSON)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
