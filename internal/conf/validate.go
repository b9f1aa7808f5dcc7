package conf

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tphakala/vocab-manager/internal/errors"
)

// Supported database types
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// ValidateSettings checks every section and returns all problems joined.
func ValidateSettings(settings *Settings) error {
	var errs []error

	if err := validateAPISettings(&settings.API); err != nil {
		errs = append(errs, err)
	}
	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		errs = append(errs, err)
	}
	if err := validateAPIServerSettings(&settings.APIServer); err != nil {
		errs = append(errs, err)
	}
	if err := validateDatabaseSettings(&settings.Database); err != nil {
		errs = append(errs, err)
	}
	if err := validateMQTTSettings(&settings.MQTT); err != nil {
		errs = append(errs, err)
	}
	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		errs = append(errs, configError("sentry", "dsn is required when sentry is enabled"))
	}

	return errors.Join(errs...)
}

func configError(section, message string) error {
	return errors.Newf("%s: %s", section, message).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context("section", section).
		Build()
}

func validateAPISettings(s *APISettings) error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return configError("api", fmt.Sprintf("baseurl %q must be an http or https URL", s.BaseURL))
	}
	// Paths are appended to the base URL
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if s.Timeout <= 0 {
		return configError("api", "timeout must be positive")
	}
	return nil
}

func validateWebServerSettings(s *WebServerSettings) error {
	if !validPort(s.Port) {
		return configError("webserver", fmt.Sprintf("invalid port %q", s.Port))
	}
	if s.MessageTTL <= 0 {
		return configError("webserver", "messagettl must be positive")
	}
	if s.Session.TTL <= 0 {
		return configError("webserver", "session ttl must be positive")
	}
	if s.AutoTLS.Enabled && s.AutoTLS.Domain == "" {
		return configError("webserver", "autotls requires a domain")
	}
	return nil
}

func validateAPIServerSettings(s *APIServerSettings) error {
	if s.Listen == "" {
		return configError("apiserver", "listen address is required")
	}
	if s.RateLimit.Enabled && (s.RateLimit.RequestsPerSecond <= 0 || s.RateLimit.Burst < 1) {
		return configError("apiserver", "ratelimit requires positive requestspersecond and burst")
	}
	return nil
}

func validateDatabaseSettings(s *DatabaseSettings) error {
	s.Type = strings.ToLower(s.Type)
	switch s.Type {
	case DatabaseSQLite:
		if s.SQLite.Path == "" {
			return configError("database", "sqlite path is required")
		}
	case DatabaseMySQL:
		if s.MySQL.Host == "" || s.MySQL.Database == "" {
			return configError("database", "mysql host and database are required")
		}
		if !validPort(s.MySQL.Port) {
			return configError("database", fmt.Sprintf("invalid mysql port %q", s.MySQL.Port))
		}
	default:
		return configError("database", fmt.Sprintf("unsupported type %q", s.Type))
	}
	return nil
}

func validateMQTTSettings(s *MQTTSettings) error {
	if !s.Enabled {
		return nil
	}
	if s.Broker == "" {
		return configError("mqtt", "broker is required when mqtt is enabled")
	}
	if s.Topic == "" {
		return configError("mqtt", "topic is required when mqtt is enabled")
	}
	return nil
}

func validPort(port string) bool {
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}
