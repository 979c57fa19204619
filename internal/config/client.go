package config

import (
	"net/url"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SyncConfig настройки движка синхронизации
type SyncConfig struct {
	RetrySchedule  string        `mapstructure:"retry_schedule"`
	WatchDir       string        `mapstructure:"watch_dir"`
	LoadTimeout    time.Duration `mapstructure:"load_timeout"`
	PushTimeout    time.Duration `mapstructure:"push_timeout"`
	ForceTimeout   time.Duration `mapstructure:"force_timeout"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	ProbeInterval  time.Duration `mapstructure:"probe_interval"`
	Debounce       time.Duration `mapstructure:"debounce"`
	FileDebounce   time.Duration `mapstructure:"file_debounce"`
	LockStaleAfter time.Duration `mapstructure:"lock_stale_after"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	MaxRetries     int           `mapstructure:"max_retries"`
	MaxParallel    int           `mapstructure:"max_parallel"`
}

// ClientConfig is the configuration of the client CLI.
type ClientConfig struct {
	Log       LogConfig  `mapstructure:"log"`
	ServerURL string     `mapstructure:"server"`
	DBPath    string     `mapstructure:"db"`
	Sync      SyncConfig `mapstructure:"sync"`
}

// clientFlags связывает флаги cobra с ключами конфигурации
var clientFlags = map[string]string{
	"server":    "server",
	"db":        "db",
	"log-level": "log.level",
	"log-file":  "log.file",
	"watch-dir": "sync.watch_dir",
}

func setClientDefaults(v *viper.Viper) {
	setLogDefaults(v)
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("db", "complisync.db")
	v.SetDefault("sync.load_timeout", 10*time.Second)
	v.SetDefault("sync.push_timeout", 15*time.Second)
	v.SetDefault("sync.force_timeout", 30*time.Second)
	v.SetDefault("sync.probe_timeout", 3*time.Second)
	v.SetDefault("sync.probe_interval", 30*time.Second)
	v.SetDefault("sync.debounce", 2*time.Second)
	v.SetDefault("sync.file_debounce", 200*time.Millisecond)
	v.SetDefault("sync.lock_stale_after", 30*time.Second)
	v.SetDefault("sync.retry_delay", time.Second)
	v.SetDefault("sync.settle_delay", time.Second)
	v.SetDefault("sync.max_retries", 3)
	v.SetDefault("sync.max_parallel", 2)
	v.SetDefault("sync.retry_schedule", "@every 1m")
	v.SetDefault("sync.watch_dir", "")
}

// LoadClient builds the client configuration. file and flags may be empty.
func LoadClient(file string, flags *pflag.FlagSet) (*ClientConfig, error) {
	v := newViper()
	setClientDefaults(v)

	cfg := &ClientConfig{}
	if err := load(v, file, flags, clientFlags, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the client configuration.
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid("server must be an http(s) URL, got %q", c.ServerURL)
	}
	if c.DBPath == "" {
		return invalid("db path is required")
	}
	if err := c.Log.Validate(); err != nil {
		return invalid("%v", err)
	}

	s := c.Sync
	for name, d := range map[string]time.Duration{
		"load_timeout":     s.LoadTimeout,
		"push_timeout":     s.PushTimeout,
		"force_timeout":    s.ForceTimeout,
		"probe_timeout":    s.ProbeTimeout,
		"probe_interval":   s.ProbeInterval,
		"debounce":         s.Debounce,
		"lock_stale_after": s.LockStaleAfter,
	} {
		if d <= 0 {
			return invalid("sync.%s must be positive", name)
		}
	}
	if s.MaxRetries < 1 {
		return invalid("sync.max_retries must be at least 1")
	}
	if s.MaxParallel < 1 {
		return invalid("sync.max_parallel must be at least 1")
	}
	return nil
}
