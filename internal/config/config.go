package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Config vitalwatch（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Analyzer struct {
		SampleRateHz int // ECG 采样率
	}
	Ingest struct {
		WriteAttempts  int // 每个持久化步骤的最大尝试次数
		LatestCacheTTL int // 最新读数缓存 TTL（秒，0 = 不缓存）
		AlertStream    string
	}
	MQTT MQTTConfig
	Risk RiskConfig
}

// MQTTConfig MQTT 配置（用于向蜂鸣器推送 retained 指令，默认禁用：设备轮询 registry 即可）
type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// RiskConfig LLM 风险评估服务配置（旁路 best-effort，默认禁用）
type RiskConfig struct {
	Enabled        bool
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable, vitalwatch falls
	// back to in-memory repositories so the ingest path stays testable.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "vitalwatch")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Analyzer.SampleRateHz = parseInt(getEnv("ECG_SAMPLE_RATE_HZ", "250"), 250)

	cfg.Ingest.WriteAttempts = parseInt(getEnv("INGEST_WRITE_ATTEMPTS", "3"), 3)
	cfg.Ingest.LatestCacheTTL = parseInt(getEnv("INGEST_LATEST_CACHE_TTL", "300"), 300)
	cfg.Ingest.AlertStream = getEnv("INGEST_ALERT_STREAM", "vitalwatch:alerts")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "vitalwatch-ingest")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "buzzer")

	cfg.Risk.Enabled = getEnv("RISK_ENABLED", "false") == "true"
	cfg.Risk.BaseURL = getEnv("RISK_BASE_URL", "")
	cfg.Risk.APIKey = getEnv("RISK_API_KEY", "")
	cfg.Risk.TimeoutSeconds = parseInt(getEnv("RISK_TIMEOUT_SECONDS", "10"), 10)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
