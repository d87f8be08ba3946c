// Package config loads the server configuration from a YAML file and
// TAIGA_MCP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/taiga-contrib/taiga-mcp-go/pkg/pagination"
)

// Config is the full server configuration.
type Config struct {
	// Taiga instance
	APIURL   string
	Username string
	Password string
	Token    string // pre-issued auth token, bypasses login

	// Serving
	Transport   string // "stdio" or "http"
	HTTPAddr    string // streamable-HTTP listen address
	MetricsAddr string // prometheus listen address, empty disables
	LogLevel    string

	// Tracing
	OTLPEndpoint string
	OTLPInsecure bool

	// Pagination bounds
	PageSize      int
	MaxPages      int
	MaxTotalItems int
}

// Load reads configuration from the optional file at path (plus the working
// directory and /etc/taiga-mcp when path is empty) and from TAIGA_MCP_*
// environment variables, which take precedence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("transport", "stdio")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("otlp_insecure", true)
	v.SetDefault("pagination.page_size", pagination.DefaultPageSize)
	v.SetDefault("pagination.max_pages", pagination.DefaultMaxPages)
	v.SetDefault("pagination.max_total_items", pagination.DefaultMaxTotalItems)

	v.SetEnvPrefix("TAIGA_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("taiga-mcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/taiga-mcp")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		APIURL:        v.GetString("api_url"),
		Username:      v.GetString("username"),
		Password:      v.GetString("password"),
		Token:         v.GetString("token"),
		Transport:     v.GetString("transport"),
		HTTPAddr:      v.GetString("http_addr"),
		MetricsAddr:   v.GetString("metrics_addr"),
		LogLevel:      v.GetString("log_level"),
		OTLPEndpoint:  v.GetString("otlp_endpoint"),
		OTLPInsecure:  v.GetBool("otlp_insecure"),
		PageSize:      v.GetInt("pagination.page_size"),
		MaxPages:      v.GetInt("pagination.max_pages"),
		MaxTotalItems: v.GetInt("pagination.max_total_items"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields no server can start without.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("config: api_url is required (TAIGA_MCP_API_URL)")
	}
	if c.Token == "" && (c.Username == "" || c.Password == "") {
		return errors.New("config: either token or username and password are required")
	}
	if c.Transport != "stdio" && c.Transport != "http" {
		return fmt.Errorf("config: unknown transport %q", c.Transport)
	}
	return nil
}

// Pagination builds the pagination bounds, validating them.
func (c *Config) Pagination() (pagination.Config, error) {
	return pagination.NewConfig(c.PageSize, c.MaxPages, c.MaxTotalItems)
}
