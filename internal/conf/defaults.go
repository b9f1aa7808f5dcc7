package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers default values for every setting.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", "logs/vocab-manager.log")
	viper.SetDefault("logging.file_output.level", "info")

	viper.SetDefault("webserver.host", "")
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.autotls.enabled", false)
	viper.SetDefault("webserver.autotls.domain", "")
	viper.SetDefault("webserver.autotls.cachedir", "autocert-cache")
	viper.SetDefault("webserver.session.secret", "")
	viper.SetDefault("webserver.session.secretfile", "")
	viper.SetDefault("webserver.session.ttl", 12*time.Hour)
	viper.SetDefault("webserver.session.secure", false)
	viper.SetDefault("webserver.messagettl", 3*time.Second)
	viper.SetDefault("webserver.logrequests", false)

	viper.SetDefault("api.baseurl", "http://localhost:8000")
	viper.SetDefault("api.timeout", 10*time.Second)
	viper.SetDefault("api.useragent", "vocab-manager/1.0")
	viper.SetDefault("api.healthcheck", true)

	viper.SetDefault("apiserver.listen", "127.0.0.1:8000")
	viper.SetDefault("apiserver.ratelimit.enabled", false)
	viper.SetDefault("apiserver.ratelimit.requestspersecond", 20.0)
	viper.SetDefault("apiserver.ratelimit.burst", 40)

	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.sqlite.path", "vocabulary.db")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")
	viper.SetDefault("database.mysql.username", "")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.passwordfile", "")
	viper.SetDefault("database.mysql.database", "vocabulary")
	viper.SetDefault("database.slowthreshold", 200*time.Millisecond)

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "vocab-manager")
	viper.SetDefault("mqtt.clientid", "vocab-manager")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.passwordfile", "")
	viper.SetDefault("mqtt.retain", false)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.dsnfile", "")
	viper.SetDefault("sentry.environment", "production")
	viper.SetDefault("sentry.samplerate", 1.0)
}
