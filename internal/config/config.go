package config

import (
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type MQTT struct {
	Broker   string `json:"broker"`
	Prefix   string `json:"prefix"`
	ClientID string `json:"client_id"`
}

type Config struct {
	ConfigFile string
	LogLevel   zerolog.Level

	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`

	TimeoutSeconds      int `json:"timeout_seconds"`
	PollIntervalSeconds int `json:"poll_interval_seconds"`
	StaleAfterSeconds   int `json:"stale_after_seconds"`

	ListenAddr    string `json:"listen_addr"`
	OverridesFile string `json:"overrides_file"`
	Database      string `json:"database"`
	LogFile       string `json:"log_file"`

	NtfyTopic           string `json:"ntfy_topic"`
	FailureStreakNotify int    `json:"failure_streak_notify"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`

	MQTT MQTT `json:"mqtt"`
}

func Load() Config {
	var cfg Config
	var logLevel string

	flag.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to controller config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg.LogLevel = parseLogLevel(logLevel)

	file, err := os.Open(cfg.ConfigFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	// Credentials from the environment win over the file so the file can
	// be committed without secrets. A .env next to the binary is picked up
	// when present.
	_ = godotenv.Load()
	if v := os.Getenv("BMR_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("BMR_PASSWORD"); v != "" {
		cfg.Password = v
	}

	cfg.applyDefaults()
	cfg.validate()
	return cfg
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) applyDefaults() {
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 60
	}
	if cfg.PollIntervalSeconds == 0 {
		cfg.PollIntervalSeconds = 60
	}
	if cfg.StaleAfterSeconds == 0 {
		cfg.StaleAfterSeconds = 300
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.FailureStreakNotify == 0 {
		cfg.FailureStreakNotify = 5
	}
	if cfg.DDNamespace == "" {
		cfg.DDNamespace = "gobmr."
	}
	if cfg.MQTT.Broker != "" && cfg.MQTT.Prefix == "" {
		cfg.MQTT.Prefix = "bmr"
	}
	if cfg.MQTT.Broker != "" && cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "gobmr"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
}

func (cfg *Config) validate() {
	var missing []string

	if cfg.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if cfg.Username == "" {
		missing = append(missing, "username (or BMR_USERNAME)")
	}
	if cfg.Password == "" {
		missing = append(missing, "password (or BMR_PASSWORD)")
	}

	if len(missing) > 0 {
		panic("Missing required config fields: " + strings.Join(missing, ", "))
	}

	if cfg.PollIntervalSeconds < 0 || cfg.TimeoutSeconds < 0 {
		panic("Config intervals must not be negative")
	}
	if cfg.OverridesFile != "" && cfg.Database != "" {
		panic("Config sets both overrides_file and database; pick one override store")
	}
}
