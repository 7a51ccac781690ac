// Package config loads layered configuration: defaults, then the config
// file, then MOODTUNE_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// FileName is the config file name, searched for in the home directory.
const FileName = ".moodtune"

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
	Database  DatabaseConfig  `mapstructure:"database"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Spotify   SpotifyConfig   `mapstructure:"spotify"`
	LastFM    LastFMConfig    `mapstructure:"lastfm"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

type CacheConfig struct {
	Size int `mapstructure:"size" validate:"min=1"`
}

type OracleConfig struct {
	Mode    string        `mapstructure:"mode" validate:"oneof=none vader http"`
	URL     string        `mapstructure:"url" validate:"required_if=Mode http,omitempty,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RPS     float64       `mapstructure:"rps" validate:"gt=0"`
	Retries uint          `mapstructure:"retries" validate:"max=10"`
}

type BreakerConfig struct {
	Failures uint32        `mapstructure:"failures" validate:"min=1"`
	Cooldown time.Duration `mapstructure:"cooldown" validate:"gt=0"`
}

// DatabaseConfig enables PostgreSQL persistence when URL is set.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns" validate:"min=1,max=100"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// MQTTConfig enables event publishing when Broker is set.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker" validate:"omitempty,url"`
	ClientID    string `mapstructure:"client_id" validate:"required"`
	TopicPrefix string `mapstructure:"topic_prefix" validate:"required"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url" validate:"required,url"`
	TokenPath    string `mapstructure:"token_path"`
}

type LastFMConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type RecommendConfig struct {
	NumSongs int `mapstructure:"num_songs" validate:"min=1,max=100"`
	Clusters int `mapstructure:"clusters" validate:"min=1,max=50"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=panic fatal error warn info debug trace"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// SetDefaults registers every key with its default so environment
// variables can override keys that appear in no file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:5001")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("oracle.mode", "vader")
	v.SetDefault("oracle.url", "")
	v.SetDefault("oracle.token", "")
	v.SetDefault("oracle.timeout", 3*time.Second)
	v.SetDefault("oracle.rps", 5.0)
	v.SetDefault("oracle.retries", 3)
	v.SetDefault("breaker.failures", 5)
	v.SetDefault("breaker.cooldown", 30*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("sqlite.path", defaultSQLitePath())
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "moodtune")
	v.SetDefault("mqtt.topic_prefix", "moodtune")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.redirect_url", "http://127.0.0.1:8080/callback")
	v.SetDefault("spotify.token_path", "")
	v.SetDefault("lastfm.api_key", "")
	v.SetDefault("recommend.num_songs", 10)
	v.SetDefault("recommend.clusters", 7)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func defaultSQLitePath() string {
	home, err := homedir.Dir()
	if err != nil {
		return "moodtune.db"
	}
	return filepath.Join(home, ".moodtune", "moodtune.db")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("MOODTUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by the Spotify and Last.fm tooling
	_ = v.BindEnv("spotify.client_id", "MOODTUNE_SPOTIFY_CLIENT_ID", "SPOTIFY_ID")
	_ = v.BindEnv("spotify.client_secret", "MOODTUNE_SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET")
	_ = v.BindEnv("lastfm.api_key", "MOODTUNE_LASTFM_API_KEY", "LASTFM_API_KEY")
	return v
}

// ReadFile reads cfgFile, or $HOME/.moodtune.yaml when cfgFile is empty.
// A missing default file is not an error. Returns the file used, if any.
func ReadFile(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	var err error
	if cfg.SQLite.Path, err = homedir.Expand(cfg.SQLite.Path); err != nil {
		return nil, fmt.Errorf("expanding sqlite.path: %w", err)
	}
	if cfg.Spotify.TokenPath, err = homedir.Expand(cfg.Spotify.TokenPath); err != nil {
		return nil, fmt.Errorf("expanding spotify.token_path: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their config key names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return v
}

// Validate checks cfg against its struct tags. Failures wrap ErrInvalid
// and name every offending key.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s fails %q", keyOf(fe.Namespace()), fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// keyOf drops the root struct name: "Config.oracle.url" -> "oracle.url".
func keyOf(namespace string) string {
	if _, key, ok := strings.Cut(namespace, "."); ok {
		return key
	}
	return namespace
}
