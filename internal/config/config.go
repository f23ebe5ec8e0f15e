package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TermConfig is one academic-term preset for the dashboard range view.
type TermConfig struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	Start string `yaml:"start"` // YYYY-MM-DD
	End   string `yaml:"end"`   // YYYY-MM-DD
}

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	// Env selects dev conveniences (roster seeding): "dev" | "prod".
	Env string `yaml:"env"`

	// DBPath is the sqlite file holding the roster and tap audit log.
	DBPath string `yaml:"db_path"`

	// RecordsDir is the root of the monthly partition files.
	RecordsDir string `yaml:"records_dir"`

	// RosterPath, when set, reads the roster from a provisioning CSV
	// instead of the sqlite roster table.
	RosterPath string `yaml:"roster_path"`

	// AdminKey gates the dashboard endpoints. Empty leaves them open
	// (the surrounding deployment is expected to handle real auth).
	AdminKey string `yaml:"admin_key"`

	// StudentIDDigits is the exact digit count a student number must
	// have on the manual entry form.
	StudentIDDigits int `yaml:"student_id_digits"`

	// AutoCloseTime is the HH:MM written into force-closed sessions.
	AutoCloseTime string `yaml:"auto_close_time"`

	// SweepIntervalHours is how often the stale-session sweeper runs.
	// 0 disables it.
	SweepIntervalHours int `yaml:"sweep_interval_hours"`

	Terms []TermConfig `yaml:"terms"`
}

func defaults() Config {
	return Config{
		HTTPAddr:           ":8080",
		Env:                "dev",
		DBPath:             "./data/gatelog.db",
		RecordsDir:         "./data/records",
		StudentIDDigits:    10,
		AutoCloseTime:      "21:00",
		SweepIntervalHours: 6,
		Terms: []TermConfig{
			{Key: "T1_2025", Label: "1st Quarter (Aug-Nov 2025)", Start: "2025-08-01", End: "2025-11-20"},
			{Key: "T2_2025", Label: "2nd Quarter (Dec 2025-Mar 2026)", Start: "2025-12-08", End: "2026-03-01"},
			{Key: "T3_2026", Label: "3rd Quarter (Mar-Jun 2026)", Start: "2026-03-09", End: "2026-05-30"},
			{Key: "T4_2026", Label: "4th Quarter (Jun-Aug 2026)", Start: "2026-06-08", End: "2026-08-30"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// named by GATELOG_CONFIG, and GATELOG_* environment overrides, in that
// order. A missing config file is an error (it was asked for
// explicitly); malformed individual env values fail soft to the
// previous value.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("GATELOG_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getenvDefault("GATELOG_HTTP_ADDR", cfg.HTTPAddr)
	cfg.Env = getenvDefault("GATELOG_ENV", cfg.Env)
	cfg.DBPath = getenvDefault("GATELOG_DB_PATH", cfg.DBPath)
	cfg.RecordsDir = getenvDefault("GATELOG_RECORDS_DIR", cfg.RecordsDir)
	cfg.RosterPath = getenvDefault("GATELOG_ROSTER_PATH", cfg.RosterPath)
	cfg.AdminKey = getenvDefault("GATELOG_ADMIN_KEY", cfg.AdminKey)
	cfg.StudentIDDigits = getenvInt("GATELOG_STUDENT_ID_DIGITS", cfg.StudentIDDigits)
	cfg.AutoCloseTime = getenvDefault("GATELOG_AUTO_CLOSE_TIME", cfg.AutoCloseTime)
	cfg.SweepIntervalHours = getenvInt("GATELOG_SWEEP_INTERVAL_HOURS", cfg.SweepIntervalHours)
}

func normalize(cfg *Config) {
	cfg.Env = strings.ToLower(cfg.Env)
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}
	if cfg.StudentIDDigits <= 0 {
		cfg.StudentIDDigits = 10
	}
	if _, err := time.Parse("15:04", cfg.AutoCloseTime); err != nil {
		cfg.AutoCloseTime = "21:00"
	}
	if cfg.SweepIntervalHours < 0 {
		cfg.SweepIntervalHours = 0
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
