package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                      string
	AllowedOrigin             string
	DatabaseURL               string
	RedisAddr                 string
	RedisPassword             string
	RedisDB                   int
	BusinessID                string
	ShiftDetailTTLSeconds     int
	AuthSecret                string
	AccessTokenTTLMinutes     int
	ManagerPIN                string
	RequireAttendanceForShift bool
	GatewayServerKey          string
	GatewayBaseURL            string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := strconv.Atoi(getEnv("SHIFT_DETAIL_TTL_SECONDS", "30"))
	if err != nil || ttl < 1 {
		ttl = 30
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	cfg := Config{
		Port:                      getEnv("PORT", "8080"),
		AllowedOrigin:             getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		RedisDB:                   redisDB,
		BusinessID:                getEnv("DEFAULT_BUSINESS_ID", "main-business"),
		ShiftDetailTTLSeconds:     ttl,
		AuthSecret:                strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes:     tokenTTL,
		ManagerPIN:                strings.TrimSpace(os.Getenv("MANAGER_PIN")),
		RequireAttendanceForShift: parseBool(getEnv("REQUIRE_ATTENDANCE_FOR_SHIFT", "false")),
		GatewayServerKey:          strings.TrimSpace(os.Getenv("GATEWAY_SERVER_KEY")),
		GatewayBaseURL:            strings.TrimSpace(os.Getenv("GATEWAY_BASE_URL")),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func parseBool(raw string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return parsed
}
