package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Cache holds the cache file and read-overlay configuration.
	Cache CacheConfig `mapstructure:",squash"`

	// Tracking holds the unofficial tracking backend configuration.
	Tracking TrackingConfig `mapstructure:",squash"`

	// Session holds the browser-based session capture configuration.
	Session SessionConfig `mapstructure:",squash"`

	// Daemon holds the background refresher configuration.
	Daemon DaemonConfig `mapstructure:",squash"`
}

// CacheConfig holds the on-disk cache document and read-overlay settings.
type CacheConfig struct {
	// FilePath is the path of the persisted JSON cache document.
	FilePath string `mapstructure:"CACHE_FILE" default:"cache.json"`
	// OverlayTTLSeconds bounds how long a read may be served from the overlay.
	OverlayTTLSeconds int `mapstructure:"CACHE_OVERLAY_TTL_SECONDS" default:"10"`
	// RedisURL, when set, backs the overlay with Redis instead of process memory.
	RedisURL string `mapstructure:"CACHE_REDIS_URL"`
}

// TrackingConfig holds the settings of the reverse-engineered tracking backend.
type TrackingConfig struct {
	// APIURL is the undocumented batched tracking endpoint.
	APIURL string `mapstructure:"TRACK_API_URL" default:"https://t.17track.net/restapi/track"`
	// Referer is sent with every outbound tracking request.
	Referer string `mapstructure:"TRACK_REFERER" default:"https://m.17track.net/"`
	// TablesPath is the directory holding the externally supplied reference tables.
	TablesPath string `mapstructure:"TRACK_TABLES_PATH" required:"true"`
	// ProxyTimeoutSeconds is the request timeout applied when a proxy is configured.
	ProxyTimeoutSeconds int `mapstructure:"TRACK_PROXY_TIMEOUT_SECONDS" default:"10"`
}

// SessionConfig holds the headless-browser capture settings.
type SessionConfig struct {
	// CaptureURL is the public tracking page that triggers the internal call.
	CaptureURL string `mapstructure:"SESSION_CAPTURE_URL" default:"https://m.17track.net/en/track-details#nums=1Z9999999999999999"`
	// MaxCaptureAttempts bounds how many browser launches a single refresh may use.
	MaxCaptureAttempts int `mapstructure:"SESSION_CAPTURE_ATTEMPTS" default:"5"`
	// BrowserProxyURL is an optional authenticated upstream proxy for the browser.
	BrowserProxyURL string `mapstructure:"SESSION_BROWSER_PROXY"`
}

// DaemonConfig holds the background daemon settings.
type DaemonConfig struct {
	// TrackIntervalSeconds is the pause between session-expiry check cycles.
	TrackIntervalSeconds int `mapstructure:"DAEMON_TRACK_INTERVAL_SECONDS" default:"3600"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
