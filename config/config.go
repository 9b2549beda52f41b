package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/BerniceZTT/bid_tracker/models"
)

// 支持的存储格式
const (
	StorageCSV    = "csv"
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
	StorageMongo  = "mongo"
)

// Config 应用配置
type Config struct {
	Port              int             `yaml:"port"`
	Debug             bool            `yaml:"debug"`
	StorageFormat     string          `yaml:"storage_format"`
	DataFile          string          `yaml:"data_file"`
	MongoURI          string          `yaml:"mongo_uri"`
	MongoDB           string          `yaml:"mongo_db"`
	JWTKey            string          `yaml:"jwt_key"`
	AdminUsername     string          `yaml:"admin_username"`
	AdminPasswordHash string          `yaml:"admin_password_hash"`
	Statuses          []models.Status `yaml:"statuses"`
	RequireClient     bool            `yaml:"require_client"`
	AllowOrigins      []string        `yaml:"allow_origins"`
	DeadlineSweepCron string          `yaml:"deadline_sweep_cron"`
	DeadlineWarnDays  int             `yaml:"deadline_warn_days"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Port:              8080,
		StorageFormat:     StorageCSV,
		MongoDB:           "bid_tracker",
		Statuses:          append([]models.Status(nil), models.DefaultStatuses...),
		AllowOrigins:      []string{"http://localhost:3001", "http://localhost:5173"},
		DeadlineSweepCron: "0 0 8 * * *",
		DeadlineWarnDays:  7,
	}
}

// DefaultDataFile 未配置 DATA_FILE 时按存储格式选择文件名
func DefaultDataFile(format string) string {
	switch format {
	case StorageJSON:
		return "projects.json"
	case StorageSQLite:
		return "projects.db"
	default:
		return "projects.csv"
	}
}

// LoadConfig 依次加载默认值、配置文件、.env 与环境变量
func LoadConfig() (*Config, error) {
	// .env 文件不存在时忽略
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("BIDS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.DataFile == "" {
		cfg.DataFile = DefaultDataFile(cfg.StorageFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Debug = v == "debug"
	}
	cfg.StorageFormat = strings.ToLower(getEnv("STORAGE_FORMAT", cfg.StorageFormat))
	cfg.DataFile = getEnv("DATA_FILE", cfg.DataFile)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.JWTKey = getEnv("JWT_KEY", cfg.JWTKey)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.AdminPasswordHash)
	cfg.DeadlineSweepCron = getEnv("DEADLINE_SWEEP_CRON", cfg.DeadlineSweepCron)

	if v := os.Getenv("PROJECT_STATUSES"); v != "" {
		cfg.Statuses = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Statuses = append(cfg.Statuses, models.Status(s))
			}
		}
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("REQUIRE_CLIENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid REQUIRE_CLIENT: %w", err)
		}
		cfg.RequireClient = b
	}
	if v := os.Getenv("DEADLINE_WARN_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DEADLINE_WARN_DAYS: %w", err)
		}
		cfg.DeadlineWarnDays = days
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.StorageFormat {
	case StorageCSV, StorageJSON, StorageSQLite:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for %s storage", c.StorageFormat)
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for mongo storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_FORMAT %q", c.StorageFormat)
	}
	if c.JWTKey == "" {
		return fmt.Errorf("JWT_KEY is required")
	}
	if c.AdminUsername == "" || c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD_HASH are required")
	}
	if len(c.Statuses) == 0 {
		return fmt.Errorf("at least one project status must be configured")
	}
	if c.DeadlineWarnDays < 0 {
		return fmt.Errorf("DEADLINE_WARN_DAYS must not be negative")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
