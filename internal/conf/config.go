// Package conf loads and validates vocab-manager settings from config.yaml,
// environment variables and command line flags.
package conf

import (
	"bytes"
	"crypto/rand"
	"embed"
	"encoding/base64"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/secrets"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings holds every configurable value of vocab-manager.
type Settings struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`

	Logging   logger.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	WebServer WebServerSettings    `mapstructure:"webserver" yaml:"webserver"`
	API       APISettings          `mapstructure:"api" yaml:"api"`
	APIServer APIServerSettings    `mapstructure:"apiserver" yaml:"apiserver"`
	Database  DatabaseSettings     `mapstructure:"database" yaml:"database"`
	MQTT      MQTTSettings         `mapstructure:"mqtt" yaml:"mqtt"`
	Metrics   MetricsSettings      `mapstructure:"metrics" yaml:"metrics"`
	Sentry    SentrySettings       `mapstructure:"sentry" yaml:"sentry"`
}

// WebServerSettings configures the admin UI server.
type WebServerSettings struct {
	Host        string          `mapstructure:"host" yaml:"host"`
	Port        string          `mapstructure:"port" yaml:"port"`
	AutoTLS     AutoTLSSettings `mapstructure:"autotls" yaml:"autotls"`
	Session     SessionSettings `mapstructure:"session" yaml:"session"`
	MessageTTL  time.Duration   `mapstructure:"messagettl" yaml:"messagettl"`   // how long success messages stay visible
	LogRequests bool            `mapstructure:"logrequests" yaml:"logrequests"` // log every request at info level
}

// AutoTLSSettings enables Let's Encrypt certificates for the admin UI.
type AutoTLSSettings struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Domain   string `mapstructure:"domain" yaml:"domain"`
	CacheDir string `mapstructure:"cachedir" yaml:"cachedir"`
}

// SessionSettings configures browser sessions.
type SessionSettings struct {
	Secret     string        `mapstructure:"secret" yaml:"secret"`         // cookie signing key, generated when empty
	SecretFile string        `mapstructure:"secretfile" yaml:"secretfile"` // read Secret from this file
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl"`               // idle lifetime of a session
	Secure     bool          `mapstructure:"secure" yaml:"secure"`         // send cookie over https only
}

// APISettings configures the remote vocabulary API the admin UI talks to.
type APISettings struct {
	BaseURL     string        `mapstructure:"baseurl" yaml:"baseurl"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent   string        `mapstructure:"useragent" yaml:"useragent"`
	HealthCheck bool          `mapstructure:"healthcheck" yaml:"healthcheck"` // probe /api/health at startup
}

// APIServerSettings configures the bundled reference API service.
type APIServerSettings struct {
	Listen    string            `mapstructure:"listen" yaml:"listen"`
	RateLimit RateLimitSettings `mapstructure:"ratelimit" yaml:"ratelimit"`
}

// RateLimitSettings configures the token bucket in front of the API.
type RateLimitSettings struct {
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requestspersecond" yaml:"requestspersecond"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// DatabaseSettings selects and configures the reference API store.
type DatabaseSettings struct {
	Type          string         `mapstructure:"type" yaml:"type"` // sqlite or mysql
	SQLite        SQLiteSettings `mapstructure:"sqlite" yaml:"sqlite"`
	MySQL         MySQLSettings  `mapstructure:"mysql" yaml:"mysql"`
	SlowThreshold time.Duration  `mapstructure:"slowthreshold" yaml:"slowthreshold"`
}

// SQLiteSettings configures the SQLite database.
type SQLiteSettings struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MySQLSettings configures the MySQL database.
type MySQLSettings struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         string `mapstructure:"port" yaml:"port"`
	Username     string `mapstructure:"username" yaml:"username"`
	Password     string `mapstructure:"password" yaml:"password"`
	PasswordFile string `mapstructure:"passwordfile" yaml:"passwordfile"`
	Database     string `mapstructure:"database" yaml:"database"`
}

// MQTTSettings configures change event publishing.
type MQTTSettings struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	Broker       string `mapstructure:"broker" yaml:"broker"`
	Topic        string `mapstructure:"topic" yaml:"topic"`
	ClientID     string `mapstructure:"clientid" yaml:"clientid"`
	Username     string `mapstructure:"username" yaml:"username"`
	Password     string `mapstructure:"password" yaml:"password"`
	PasswordFile string `mapstructure:"passwordfile" yaml:"passwordfile"`
	Retain       bool   `mapstructure:"retain" yaml:"retain"`
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// SentrySettings configures error telemetry.
type SentrySettings struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	DSN         string  `mapstructure:"dsn" yaml:"dsn"`
	DSNFile     string  `mapstructure:"dsnfile" yaml:"dsnfile"`
	Environment string  `mapstructure:"environment" yaml:"environment"`
	SampleRate  float64 `mapstructure:"samplerate" yaml:"samplerate"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration into a new Settings. An explicit configFile
// takes precedence over the default search paths. When no file is found the
// embedded defaults are used.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := resolveSecrets(settings); err != nil {
		return nil, fmt.Errorf("error resolving secrets: %w", err)
	}

	if settings.WebServer.Session.Secret == "" {
		settings.WebServer.Session.Secret = GenerateRandomSecret()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settings, nil
}

// resolveSecrets replaces credential settings with the content of their
// *file counterpart or the expansion of ${VAR} references.
func resolveSecrets(settings *Settings) error {
	targets := []struct {
		name  string
		file  string
		value *string
	}{
		{"webserver.session.secret", settings.WebServer.Session.SecretFile, &settings.WebServer.Session.Secret},
		{"database.mysql.password", settings.Database.MySQL.PasswordFile, &settings.Database.MySQL.Password},
		{"mqtt.password", settings.MQTT.PasswordFile, &settings.MQTT.Password},
		{"sentry.dsn", settings.Sentry.DSNFile, &settings.Sentry.DSN},
	}
	for _, t := range targets {
		resolved, err := secrets.Resolve(t.file, *t.value)
		if err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
		*t.value = resolved
	}
	return nil
}

// initViper registers defaults and env bindings, then reads the config file.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		return err
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.New(err).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Context("config_file", configFile).
				Build()
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range GetDefaultConfigPaths() {
		viper.AddConfigPath(path)
	}

	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	// No file on disk: fall back to the embedded defaults
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded config: %w", err)
	}
	return viper.ReadConfig(bytes.NewReader(data))
}

// GetSettings returns the most recently loaded settings, or nil.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// DefaultConfig returns the embedded default config.yaml.
func DefaultConfig() []byte {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil
	}
	return data
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "vocab-manager"))
	}
	return append(paths, "/etc/vocab-manager")
}

// SaveYAMLConfig writes settings to configPath atomically.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// GenerateRandomSecret returns 32 random bytes encoded as URL-safe base64.
func GenerateRandomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// WebServerAddress returns host:port for the admin UI listener.
func (s *Settings) WebServerAddress() string {
	return net.JoinHostPort(s.WebServer.Host, s.WebServer.Port)
}
