package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	BotToken    string
	BotPassword string
	AdminIDs    []int64
	LogLevel    string
	HealthAddr  string
	Database    DatabaseConfig
	DJ          DJConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host          string
	Port          string
	Name          string
	User          string
	Password      string
	RetentionDays int
}

// DJConfig holds backend and loop settings
type DJConfig struct {
	APIURL           string
	APITimeout       time.Duration
	StatusPoll       time.Duration
	QueueDrain       time.Duration
	WarningThreshold int
	QuickActionsFile string
}

// QuickAction is a preset request offered as a menu button
type QuickAction struct {
	Label string `yaml:"label"`
	Text  string `yaml:"text"`
}

// DefaultQuickActions are used when no presets file is configured
var DefaultQuickActions = []QuickAction{
	{Label: "🎲 Trivia", Text: "Tell me some music trivia"},
	{Label: "💡 Song fact", Text: "Tell me a fun fact about the current song"},
	{Label: "▶️ Play song", Text: "Play a song that sounds like The Beatles"},
	{Label: "📝 Create playlist", Text: "Create a playlist for a road trip"},
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_IDS: %w", err)
	}

	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		BotPassword: os.Getenv("BOT_PASSWORD"),
		AdminIDs:    adminIDs,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HealthAddr:  getEnvAllowEmpty("HEALTH_ADDR", ":8081"),
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			Name:          getEnv("DB_NAME", "djbot"),
			User:          getEnv("DB_USER", "djbot"),
			Password:      os.Getenv("DB_PASSWORD"),
			RetentionDays: getEnvAsInt("INTERACTION_RETENTION_DAYS", 60),
		},
		DJ: DJConfig{
			APIURL:           strings.TrimRight(getEnv("DJ_API_URL", "http://localhost:5000"), "/"),
			APITimeout:       time.Duration(getEnvAsInt("DJ_API_TIMEOUT_SECONDS", 60)) * time.Second,
			StatusPoll:       time.Duration(getEnvAsInt("STATUS_POLL_SECONDS", 10)) * time.Second,
			QueueDrain:       time.Duration(getEnvAsInt("QUEUE_DRAIN_MILLIS", 1000)) * time.Millisecond,
			WarningThreshold: getEnvAsInt("WARNING_THRESHOLD", 2),
			QuickActionsFile: os.Getenv("QUICK_ACTIONS_FILE"),
		},
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.BotPassword == "" {
		return nil, fmt.Errorf("BOT_PASSWORD is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.DJ.StatusPoll <= 0 || cfg.DJ.QueueDrain <= 0 {
		return nil, fmt.Errorf("STATUS_POLL_SECONDS and QUEUE_DRAIN_MILLIS must be positive")
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// IsAdmin reports whether the Telegram user may run admin commands
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// LoadQuickActions reads menu presets from a YAML file, falling back to defaults
func LoadQuickActions(path string) ([]QuickAction, error) {
	if path == "" {
		return DefaultQuickActions, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quick actions: %w", err)
	}

	var file struct {
		Actions []QuickAction `yaml:"actions"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse quick actions: %w", err)
	}

	actions := make([]QuickAction, 0, len(file.Actions))
	for _, a := range file.Actions {
		a.Label = strings.TrimSpace(a.Label)
		a.Text = strings.TrimSpace(a.Text)
		if a.Label == "" || a.Text == "" {
			continue
		}
		actions = append(actions, a)
	}
	if len(actions) == 0 {
		return DefaultQuickActions, nil
	}
	return actions, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one set to ""
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
