package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Thresholds ThresholdConfig  `mapstructure:"thresholds"`
	API        APIProbeConfig   `mapstructure:"api"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Alerts     AlertConfig      `mapstructure:"alerts"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`
	AdminUser string `mapstructure:"admin_user"`
	// AdminPasswordHash is the bcrypt hash of the operator password. When it
	// is empty AdminPassword is hashed at startup instead.
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
	AdminPassword     string `mapstructure:"admin_password"`
}

type DatabaseConfig struct {
	// Path of the monitored application's SQLite database file.
	Path string `mapstructure:"path"`
}

type MonitoringConfig struct {
	IntervalSeconds     int      `mapstructure:"interval_seconds"`
	AutoStart           bool     `mapstructure:"auto_start"`
	Components          []string `mapstructure:"components"`
	MaxConcurrentChecks int64    `mapstructure:"max_concurrent_checks"`
}

type ThresholdConfig struct {
	QueueStuckHours   int     `mapstructure:"queue_stuck_hours"`
	QueueDepth        int     `mapstructure:"queue_depth"`
	PendingRepairs    int     `mapstructure:"pending_repairs"`
	DBResponseMS      float64 `mapstructure:"db_response_ms"`
	DBSizeMB          float64 `mapstructure:"db_size_mb"`
	APIResponseMS     float64 `mapstructure:"api_response_ms"`
	APIErrorRatePct   float64 `mapstructure:"api_error_rate_pct"`
	DiskUsagePct      float64 `mapstructure:"disk_usage_pct"`
	MinFreeDiskGB     float64 `mapstructure:"min_free_disk_gb"`
	LargeFileMB       float64 `mapstructure:"large_file_mb"`
	InactivityDays    int     `mapstructure:"inactivity_days"`
	MinActiveTechs    int     `mapstructure:"min_active_technicians"`
	CompletionRatePct float64 `mapstructure:"completion_rate_pct"`
}

type APIProbeConfig struct {
	BaseURL        string   `mapstructure:"base_url"`
	Endpoints      []string `mapstructure:"endpoints"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

type StorageConfig struct {
	Path      string `mapstructure:"path"`
	UploadDir string `mapstructure:"upload_dir"`
}

type AlertConfig struct {
	Enabled         bool        `mapstructure:"enabled"`
	CooldownMinutes int         `mapstructure:"cooldown_minutes"`
	Slack           SlackConfig `mapstructure:"slack"`
	Email           EmailConfig `mapstructure:"email"`
}

type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Username   string `mapstructure:"username"`
}

type EmailConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// LoadConfig loads the configuration from config.yaml, writing a default
// file when none exists. Environment variables prefixed RSMONITOR_ override
// file values (RSMONITOR_ALERTS_SLACK_WEBHOOK_URL and so on).
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.rsmonitor")

	viper.SetEnvPrefix("RSMONITOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := os.MkdirAll("data", 0755); err != nil {
				fmt.Printf("Warning: Failed to create data directory: %v\n", err)
			}
			if err := viper.SafeWriteConfig(); err != nil {
				fmt.Printf("Warning: Failed to write default config: %v\n", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.admin_user", "admin")

	viper.SetDefault("database.path", "data/rs_systems.db")

	viper.SetDefault("monitoring.interval_seconds", 60)
	viper.SetDefault("monitoring.auto_start", false)
	viper.SetDefault("monitoring.components", []string{"database", "api", "queue", "storage", "activity"})
	viper.SetDefault("monitoring.max_concurrent_checks", 5)

	viper.SetDefault("thresholds.queue_stuck_hours", 24)
	viper.SetDefault("thresholds.queue_depth", 50)
	viper.SetDefault("thresholds.pending_repairs", 20)
	viper.SetDefault("thresholds.db_response_ms", 1000)
	viper.SetDefault("thresholds.db_size_mb", 500)
	viper.SetDefault("thresholds.api_response_ms", 2000)
	viper.SetDefault("thresholds.api_error_rate_pct", 5)
	viper.SetDefault("thresholds.disk_usage_pct", 85)
	viper.SetDefault("thresholds.min_free_disk_gb", 2)
	viper.SetDefault("thresholds.large_file_mb", 100)
	viper.SetDefault("thresholds.inactivity_days", 7)
	viper.SetDefault("thresholds.min_active_technicians", 1)
	viper.SetDefault("thresholds.completion_rate_pct", 50)

	viper.SetDefault("api.base_url", "http://localhost:8000")
	viper.SetDefault("api.endpoints", []string{"/api/health/", "/api/repairs/"})
	viper.SetDefault("api.timeout_seconds", 5)

	viper.SetDefault("storage.path", "data")
	viper.SetDefault("storage.upload_dir", "media")

	viper.SetDefault("alerts.enabled", true)
	viper.SetDefault("alerts.cooldown_minutes", 15)
	viper.SetDefault("alerts.slack.username", "RS Systems Health Monitor")
	viper.SetDefault("alerts.email.smtp_port", 587)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file_path", "logs/rsmonitor.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age_days", 28)
	viper.SetDefault("log.compress", true)
}
