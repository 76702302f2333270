// Package config holds the event bot configuration: the shared core
// sections plus the upstream listing API and dialog settings.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/eventbot/core/config"
)

// UpstreamConfig describes the event listing GraphQL API.
type UpstreamConfig struct {
	GraphQLURL     string `yaml:"graphql_url" envconfig:"UPSTREAM_GRAPHQL_URL"`
	BaseURL        string `yaml:"base_url" envconfig:"UPSTREAM_BASE_URL"`
	AreaID         int    `yaml:"area_id" envconfig:"UPSTREAM_AREA_ID"`
	PageSize       int    `yaml:"page_size" envconfig:"UPSTREAM_PAGE_SIZE"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"UPSTREAM_TIMEOUT_SECONDS"`
	UserAgent      string `yaml:"user_agent" envconfig:"UPSTREAM_USER_AGENT"`
}

// Timeout returns the per-request timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// DialogConfig tunes what users see.
type DialogConfig struct {
	// Timezone decides what "today" means.
	Timezone string `yaml:"timezone" envconfig:"DIALOG_TIMEZONE"`
	AreaName string `yaml:"area_name" envconfig:"DIALOG_AREA_NAME"`
	// Limit caps event blocks per reply; 0 keeps the default.
	Limit int `yaml:"limit" envconfig:"DIALOG_LIMIT"`
}

// Location resolves Timezone. Call after Normalize.
func (d DialogConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Upstream UpstreamConfig `yaml:"upstream"`
	Dialog   DialogConfig   `yaml:"dialog"`
}

// CoreConfig exposes the embedded core section to the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

const (
	defaultGraphQLURL = "https://ra.co/graphql"
	defaultBaseURL    = "https://ra.co"
	defaultAreaID     = 34
	defaultPageSize   = 20
	defaultTimeout    = 10
	defaultUserAgent  = "Mozilla/5.0"
	defaultTimezone   = "Europe/Berlin"
	defaultAreaName   = "Berlin"
	defaultLimit      = 10
)

// Load reads YAML (optional) and environment, then validates.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the core sections and fills application defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	up := &cfg.Upstream
	up.GraphQLURL = strings.TrimSpace(up.GraphQLURL)
	if up.GraphQLURL == "" {
		up.GraphQLURL = defaultGraphQLURL
	}
	if u, err := url.Parse(up.GraphQLURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.graphql_url %q is not an absolute URL", up.GraphQLURL)
	}
	up.BaseURL = strings.TrimRight(strings.TrimSpace(up.BaseURL), "/")
	if up.BaseURL == "" {
		up.BaseURL = defaultBaseURL
	}
	if up.AreaID == 0 {
		up.AreaID = defaultAreaID
	}
	if up.AreaID < 0 {
		return fmt.Errorf("upstream.area_id must be > 0")
	}
	if up.PageSize <= 0 {
		up.PageSize = defaultPageSize
	}
	if up.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream.timeout_seconds must be >= 0")
	}
	if up.TimeoutSeconds == 0 {
		up.TimeoutSeconds = defaultTimeout
	}
	if strings.TrimSpace(up.UserAgent) == "" {
		up.UserAgent = defaultUserAgent
	}

	dl := &cfg.Dialog
	dl.Timezone = strings.TrimSpace(dl.Timezone)
	if dl.Timezone == "" {
		dl.Timezone = defaultTimezone
	}
	if _, err := time.LoadLocation(dl.Timezone); err != nil {
		return fmt.Errorf("invalid dialog.timezone %q: %w", dl.Timezone, err)
	}
	if strings.TrimSpace(dl.AreaName) == "" {
		dl.AreaName = defaultAreaName
	}
	if dl.Limit < 0 {
		return fmt.Errorf("dialog.limit must be >= 0")
	}
	if dl.Limit == 0 {
		dl.Limit = defaultLimit
	}
	return nil
}
