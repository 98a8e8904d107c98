package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port          string
	Environment   string
	APIKey        string
	AdminUsername string
	AdminPassword string

	// 需要データとSARIMAモデルの配置
	DataPath  string
	ModelPath string

	// 集計対象期間（両端を含む、YYYY-MM-DD）
	HistoryStart string
	HistoryEnd   string

	DefaultHorizon  int
	MaxHorizon      int
	ConfidenceLevel float64
	HistoryTail     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		APIKey:          getEnv("API_KEY", ""),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		DataPath:        getEnv("DEMAND_DATA_PATH", "data/Historical_Product_Demand.csv"),
		ModelPath:       getEnv("SARIMA_MODEL_PATH", "models/sarima_model.json"),
		HistoryStart:    getEnv("HISTORY_START", "2012-01-01"),
		HistoryEnd:      getEnv("HISTORY_END", "2016-12-31"),
		DefaultHorizon:  getEnvInt("FORECAST_DEFAULT_HORIZON", 12),
		MaxHorizon:      getEnvInt("FORECAST_MAX_HORIZON", 24),
		ConfidenceLevel: getEnvFloat("FORECAST_CONFIDENCE", 0.95),
		HistoryTail:     getEnvInt("HISTORY_TAIL", 5),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 整数の環境変数を取得（不正な値はデフォルトにフォールバック）
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat 信頼水準など(0,1)の小数を取得
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 && f < 1 {
			return f
		}
	}
	return defaultValue
}
