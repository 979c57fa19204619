package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// minSecretLen минимальная длина секрета для подписи JWT (HS256)
const minSecretLen = 32

// ServerConfig is the configuration of the reference server.
type ServerConfig struct {
	Log       LogConfig     `mapstructure:"log"`
	Address   string        `mapstructure:"address"`
	DBPath    string        `mapstructure:"db"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// RateLimit запросов в секунду с одного IP, Burst размер всплеска
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

var serverFlags = map[string]string{
	"address":    "address",
	"db":         "db",
	"jwt-secret": "jwt_secret",
	"log-level":  "log.level",
	"log-file":   "log.file",
}

func setServerDefaults(v *viper.Viper) {
	setLogDefaults(v)
	v.SetDefault("address", ":8080")
	v.SetDefault("db", "complisync-server.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("rate_limit", 20.0)
	v.SetDefault("burst", 40)
}

// LoadServer builds the server configuration. file and flags may be empty.
func LoadServer(file string, flags *pflag.FlagSet) (*ServerConfig, error) {
	v := newViper()
	setServerDefaults(v)

	cfg := &ServerConfig{}
	if err := load(v, file, flags, serverFlags, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the server configuration. The JWT secret is only needed to serve,
// so migrate and adduser validate with requireSecret=false.
func (c *ServerConfig) Validate(requireSecret bool) error {
	if c.DBPath == "" {
		return invalid("db path is required")
	}
	if err := c.Log.Validate(); err != nil {
		return invalid("%v", err)
	}
	if !requireSecret {
		return nil
	}
	if c.Address == "" {
		return invalid("address is required")
	}
	if len(c.JWTSecret) < minSecretLen {
		return invalid("jwt_secret must be at least %d characters", minSecretLen)
	}
	if c.TokenTTL <= 0 {
		return invalid("token_ttl must be positive")
	}
	if c.RateLimit <= 0 || c.Burst <= 0 {
		return invalid("rate_limit and burst must be positive")
	}
	return nil
}
