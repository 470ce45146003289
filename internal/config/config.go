package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Default endpoints of the hosted backend.
const (
	DefaultAPIURL = "https://dchatapp.runasp.net/api"
	DefaultHubURL = "wss://dchatapp.runasp.net/chatHub"
)

// DefaultSendTimeout is how long an unconfirmed send may stay "sending"
// before it is shown as failed.
const DefaultSendTimeout = 15 * time.Second

// Config is the client configuration. YAML file first, environment
// variables override.
type Config struct {
	APIURL      string        `yaml:"api_url"`
	HubURL      string        `yaml:"hub_url"`
	TokenPath   string        `yaml:"token_path"`
	PageSize    int           `yaml:"page_size"`
	SendTimeout time.Duration `yaml:"send_timeout"`
}

// Load reads the config at path; an empty path falls back to
// $HOME/.dchat/config.yaml when present, otherwise defaults. Environment
// variables DCHAT_API_URL, DCHAT_HUB_URL, DCHAT_TOKEN_PATH, DCHAT_PAGE_SIZE
// and DCHAT_SEND_TIMEOUT win over the file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIURL:      DefaultAPIURL,
		HubURL:      DefaultHubURL,
		TokenPath:   filepath.Join(homeDir(), ".dchat", "jwt_token"),
		PageSize:    20,
		SendTimeout: DefaultSendTimeout,
	}

	explicit := path != ""
	if path == "" {
		path = filepath.Join(homeDir(), ".dchat", "config.yaml")
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("DCHAT_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("DCHAT_HUB_URL"); v != "" {
		cfg.HubURL = v
	}
	if v := os.Getenv("DCHAT_TOKEN_PATH"); v != "" {
		cfg.TokenPath = v
	}
	if v := os.Getenv("DCHAT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("DCHAT_SEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SendTimeout = d
		}
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	return cfg, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
