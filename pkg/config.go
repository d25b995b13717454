package wifiinfo

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Bind         string        `yaml:"bind"`
	Port         int           `yaml:"port"`
	Interface    string        `yaml:"interface"`
	PollInterval time.Duration `yaml:"poll_interval"`
	GrantFile    string        `yaml:"grant_file"`
	Verbose      bool          `yaml:"verbose"`
	Metrics      bool          `yaml:"metrics"`

	// Browser origins allowed to call the API. Empty refuses every
	// cross-origin request, "*" allows any.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Bind:         "127.0.0.1",
		Port:         8089,
		PollInterval: DefaultPollInterval,
		Metrics:      true,
	}
}

// LoadConfigFile overlays the YAML file at path onto base. Keys missing
// from the file keep their value from base.
func LoadConfigFile(path string, base ServerConfig) (ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config: %w", err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return base, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

// OriginAllowed reports whether a request carrying the given Origin
// header may be served. Requests without one are not from a browser
// page and always pass.
func (c ServerConfig) OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	origin = strings.TrimSuffix(origin, "/")
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// ParseOrigins splits a comma separated origin list, dropping blanks.
func ParseOrigins(list string) []string {
	out := []string{}
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, strings.TrimSuffix(o, "/"))
		}
	}
	return out
}
