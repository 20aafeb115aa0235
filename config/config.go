package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sim      SimConfig      `mapstructure:"sim"`
	Security SecurityConfig `mapstructure:"security"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"` // empty disables the debug API
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type SimConfig struct {
	TickMs    int    `mapstructure:"tick_ms"`
	LevelPath string `mapstructure:"level_path"`
	BrainDir  string `mapstructure:"brain_dir"`
}

// Step is the simulated and wall-clock duration of one world tick.
func (c SimConfig) Step() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	// AllowedIPs restricts the debug API to these addresses or CIDR ranges.
	// An empty list allows every client.
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

type JournalConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Buffer        int           `mapstructure:"buffer"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/journal.db")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("sim.tick_ms", 50)
	v.SetDefault("sim.level_path", "./data/levels/demo.yaml")
	v.SetDefault("sim.brain_dir", "./data/brains")
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.buffer", 1024)
	v.SetDefault("journal.batch_size", 100)
	v.SetDefault("journal.flush_interval", "2s")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
