package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultRelationshipType is the relationship type used for batch creates
// when none is configured.
const DefaultRelationshipType = "a9deade8-54c2-4683-8d76-a031c7301a47"

// Config holds application configuration.
type Config struct {
	Store         StoreConfig
	Server        ServerConfig
	URLs          URLConfig
	Log           LogConfig
	Gallery       GalleryConfig
	Relationships RelationshipConfig
}

// StoreConfig holds sqlite settings.
type StoreConfig struct {
	Dir string
}

type ServerConfig struct {
	Addr        string
	BaseURL     string `mapstructure:"base_url"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// URLConfig holds the persistence service paths, relative to Server.BaseURL.
type URLConfig struct {
	Card             string
	RelatedResources string `mapstructure:"related_resources"`
}

type LogConfig struct {
	Mode string
}

type GalleryConfig struct {
	Duration       time.Duration
	ScrollDistance int `mapstructure:"scroll_distance"`
}

type RelationshipConfig struct {
	Type string
}

// Load reads configuration from file and env. Env var overrides use prefix CARDS_.
func Load() (Config, error) {
	return load(os.Getenv("CARDS_CONFIG"))
}

func load(cfgPath string) (Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	v.SetDefault("store.dir", filepath.Join(home, ".cards"))
	v.SetDefault("server.addr", "127.0.0.1:8085")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("urls.card", "/cards/")
	v.SetDefault("urls.related_resources", "/related_resources")
	v.SetDefault("log.mode", "development")
	v.SetDefault("gallery.duration", 300*time.Millisecond)
	v.SetDefault("gallery.scroll_distance", 0)
	v.SetDefault("relationships.type", DefaultRelationshipType)

	v.SetConfigType("toml")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "cards"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CARDS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit one must exist.
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// CardURL returns the absolute URL for a card, or "" when no server is configured.
func (c Config) CardURL(cardID string) string {
	base := strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if base == "" {
		return ""
	}
	return base + "/" + strings.Trim(c.URLs.Card, "/") + "/" + cardID
}

// RelatedResourcesURL returns the absolute batch-create URL, or "" when no server is configured.
func (c Config) RelatedResourcesURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if base == "" {
		return ""
	}
	return base + "/" + strings.Trim(c.URLs.RelatedResources, "/")
}
