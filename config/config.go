package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"smartwaste-backend/internal/model"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulator  SimulatorConfig  `yaml:"simulator"`
	Settings   SettingsConfig   `yaml:"settings"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	Seed       SeedConfig       `yaml:"seed"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
	StaticDir       string        `yaml:"static_dir"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// SimulatorConfig controls the sensor simulation. The interval is fixed for the
// life of the process and is unrelated to the dashboard refresh setting.
type SimulatorConfig struct {
	Disabled        bool          `yaml:"disabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	Seed            uint64        `yaml:"seed"` // 0 picks a random seed
}

// SettingsConfig holds initial policy overrides. They pass through the same
// validation as runtime updates.
type SettingsConfig struct {
	Depot               *model.Position `yaml:"depot"`
	CriticalFillPercent *float64        `yaml:"critical_fill_percent"`
	RefreshSeconds      *float64        `yaml:"refresh_seconds"`
	Theme               *string         `yaml:"theme"`
}

// Patch converts the overrides into a settings update.
func (s SettingsConfig) Patch() model.SettingsPatch {
	return model.SettingsPatch{
		Depot:               s.Depot,
		CriticalFillPercent: s.CriticalFillPercent,
		RefreshSeconds:      s.RefreshSeconds,
		Theme:               s.Theme,
	}
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	PersistState           bool   `yaml:"persist_state"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// AlertsConfig controls critical-fill notifications.
type AlertsConfig struct {
	CooldownMinutes int           `yaml:"cooldown_minutes"`
	Cooldown        time.Duration `yaml:"-"`
}

// SeedConfig replaces the built-in demo fleet when it lists any bins.
type SeedConfig struct {
	Bins      []SeedBin      `yaml:"bins"`
	Schedules []SeedSchedule `yaml:"schedules"`
}

// SeedBin is a bin in the seed file.
type SeedBin struct {
	ID     string  `yaml:"id"`
	Lat    float64 `yaml:"lat"`
	Lng    float64 `yaml:"lng"`
	Weight float64 `yaml:"weight"`
}

// SeedSchedule is a collection visit in the seed file. An empty date means today.
type SeedSchedule struct {
	ID     string `yaml:"id"`
	BinID  string `yaml:"bin_id"`
	Date   string `yaml:"date"`
	Window string `yaml:"window"`
	Status string `yaml:"status"`
}

// Model converts the seed entries, dating undated visits with today.
func (s SeedConfig) Model(today string) ([]model.Bin, []model.ScheduleEntry) {
	bins := make([]model.Bin, 0, len(s.Bins))
	for _, b := range s.Bins {
		bins = append(bins, model.Bin{ID: b.ID, Lat: b.Lat, Lng: b.Lng, Weight: b.Weight})
	}

	schedules := make([]model.ScheduleEntry, 0, len(s.Schedules))
	for _, e := range s.Schedules {
		date := e.Date
		if date == "" {
			date = today
		}
		schedules = append(schedules, model.ScheduleEntry{
			ID:     e.ID,
			BinID:  e.BinID,
			Date:   date,
			Window: e.Window,
			Status: model.ScheduleStatus(e.Status),
		})
	}
	return bins, schedules
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// ApplyEnv overrides deployment secrets and endpoints from the environment.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		} else {
			log.Printf("Ignoring invalid PORT %q", v)
		}
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("VAPID_PUBLIC_KEY"); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		cfg.Push.PrivateKey = v
	}
	if v := os.Getenv("VAPID_SUBJECT"); v != "" {
		cfg.Push.Subject = v
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	if cfg.Simulator.IntervalSeconds <= 0 {
		cfg.Simulator.IntervalSeconds = 30
	}
	cfg.Simulator.Interval = time.Duration(cfg.Simulator.IntervalSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file::memory:?cache=shared"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Alerts.CooldownMinutes <= 0 {
		cfg.Alerts.CooldownMinutes = 10
	}
	cfg.Alerts.Cooldown = time.Duration(cfg.Alerts.CooldownMinutes) * time.Minute
}
