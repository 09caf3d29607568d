package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

const DefaultAPIBase = "http://localhost:8081"

// Config holds the CLI settings stored in config.toml.
type Config struct {
	APIBase string     `toml:"api_base"`
	Token   string     `toml:"token"`
	User    UserConfig `toml:"user"`
	DNS     DNSConfig  `toml:"dns"`
	Map     MapConfig  `toml:"map"`
}

// UserConfig is the profile of the person running the CLI. Email identifies
// their own entity.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

type DNSConfig struct {
	Server string `toml:"server"`
}

// MapConfig is stored for the map view only.
type MapConfig struct {
	Token string `toml:"token"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{APIBase: DefaultAPIBase}
}

// ConfigDir returns the socialmap configuration directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "socialmap")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "socialmap")
}

// Path is the config file location.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file. A missing file yields the defaults.
func Load() (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(Path())
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", Path(), err)
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	return cfg, nil
}

// Save writes the config to disk. The file holds the session token, so it
// is only readable by its owner.
func Save(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(Path(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"api_base":   &c.APIBase,
		"token":      &c.Token,
		"user.name":  &c.User.Name,
		"user.email": &c.User.Email,
		"dns.server": &c.DNS.Server,
		"map.token":  &c.Map.Token,
	}
}

// Keys lists the settable keys in dotted form.
func (c *Config) Keys() []string {
	f := c.fields()
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) Get(key string) (string, error) {
	p, ok := c.fields()[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return *p, nil
}

func (c *Config) Set(key, value string) error {
	p, ok := c.fields()[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	*p = value
	return nil
}
