package config

import (
	"os"
	"strconv"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	PostgresURI         string
	RedisURI            string
	Port                string
	TwitterBearerTokens []string
	TwitterMonthlyCap   int
	AnthropicAPIKey     string
	AnthropicModel      string
	CommunityTopic      string
	SearchMaxResults    int
	CurationInterval    string
	R2                  R2
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", "127.0.0.1:6379"),
		Port:                getEnv("PORT", "3000"),
		TwitterBearerTokens: splitEnv("TWITTER_BEARER_TOKENS"),
		TwitterMonthlyCap:   getEnvInt("TWITTER_MONTHLY_CAP", 450),
		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:      getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		CommunityTopic:      getEnv("COMMUNITY_TOPIC", "crypto"),
		SearchMaxResults:    getEnvInt("SEARCH_MAX_RESULTS", 30),
		CurationInterval:    getEnv("CURATION_INTERVAL", "12h00m00s"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
