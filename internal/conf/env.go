package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding maps one environment variable onto a config key
type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "VOCAB_DEBUG", validateEnvBool},
		{"logging.default_level", "VOCAB_LOG_LEVEL", validateEnvLogLevel},

		{"api.baseurl", "VOCAB_API_BASEURL", validateEnvURL},
		{"api.timeout", "VOCAB_API_TIMEOUT", validateEnvDuration},

		{"webserver.host", "VOCAB_WEBSERVER_HOST", nil},
		{"webserver.port", "VOCAB_WEBSERVER_PORT", validateEnvPort},
		{"webserver.session.secret", "VOCAB_SESSION_SECRET", nil},
		{"webserver.session.secretfile", "VOCAB_SESSION_SECRET_FILE", nil},

		{"apiserver.listen", "VOCAB_APISERVER_LISTEN", nil},

		{"database.type", "VOCAB_DATABASE_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "VOCAB_DATABASE_SQLITE_PATH", nil},
		{"database.mysql.host", "VOCAB_DATABASE_MYSQL_HOST", nil},
		{"database.mysql.port", "VOCAB_DATABASE_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "VOCAB_DATABASE_MYSQL_USERNAME", nil},
		{"database.mysql.password", "VOCAB_DATABASE_MYSQL_PASSWORD", nil},
		{"database.mysql.passwordfile", "VOCAB_DATABASE_MYSQL_PASSWORD_FILE", nil},
		{"database.mysql.database", "VOCAB_DATABASE_MYSQL_DATABASE", nil},

		{"mqtt.enabled", "VOCAB_MQTT_ENABLED", validateEnvBool},
		{"mqtt.broker", "VOCAB_MQTT_BROKER", validateEnvURL},
		{"mqtt.username", "VOCAB_MQTT_USERNAME", nil},
		{"mqtt.password", "VOCAB_MQTT_PASSWORD", nil},
		{"mqtt.passwordfile", "VOCAB_MQTT_PASSWORD_FILE", nil},

		{"metrics.enabled", "VOCAB_METRICS_ENABLED", validateEnvBool},
		{"sentry.dsn", "VOCAB_SENTRY_DSN", nil},
	}
}

// bindEnvVars binds every variable and reports invalid values together
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}
		if binding.Validate == nil {
			continue
		}
		if value := os.Getenv(binding.EnvVar); value != "" {
			if err := binding.Validate(value); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, value, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("must be one of trace, debug, info, warn, error")
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a number between 1 and 65535")
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch strings.ToLower(value) {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	}
	return fmt.Errorf("must be %s or %s", DatabaseSQLite, DatabaseMySQL)
}
