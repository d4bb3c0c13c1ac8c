package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv copies variables from path into the process environment.
// Variables that are already set win; a missing file is not an error.
func loadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// parseEnv overlays environment variables onto config.
//
//	PORT                  HTTP port (becomes ":<PORT>")
//	HTTP_ADDR / GRPC_ADDR bind addresses
//	DATABASE_URL          PostgreSQL DSN
//	SECRET_KEY            token signing secret
//	TOKEN_TTL             token lifetime, Go duration
//	OPENROUTER_API_KEY    model provider key (MODEL_API_KEY also accepted)
//	MODEL_API_URL, MODEL_NAME, MODEL_TIMEOUT, MODEL_MAX_TOKENS, MODEL_TEMPERATURE
//	HISTORY_TURNS
//	REDIS_ADDR, REDIS_PASSWORD, REDIS_DB
//	CHAT_RATE_LIMIT, CHAT_RATE_BURST
//	CORS_ALLOWED_ORIGINS  comma separated
//	LOG_LEVEL
func parseEnv(config *Config) {
	if port, ok := lookup("PORT"); ok {
		config.EndpointAddrHTTP = ":" + port
	}
	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SecretKey, "SECRET_KEY")
	setDuration(&config.TokenValidityDuration, "TOKEN_TTL")

	setString(&config.ModelAPIKey, "MODEL_API_KEY")
	setString(&config.ModelAPIKey, "OPENROUTER_API_KEY")
	setString(&config.ModelAPIURL, "MODEL_API_URL")
	setString(&config.ModelName, "MODEL_NAME")
	setDuration(&config.ModelTimeout, "MODEL_TIMEOUT")
	setInt(&config.ModelMaxTokens, "MODEL_MAX_TOKENS")
	if v, ok := lookup("MODEL_TEMPERATURE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.ModelTemperature = f
		}
	}
	setInt(&config.HistoryTurns, "HISTORY_TURNS")

	setString(&config.RedisAddr, "REDIS_ADDR")
	setString(&config.RedisPassword, "REDIS_PASSWORD")
	setInt(&config.RedisDB, "REDIS_DB")
	setInt(&config.ChatRateLimitPerMinute, "CHAT_RATE_LIMIT")
	setInt(&config.ChatRateLimitBurst, "CHAT_RATE_BURST")

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		config.CORSAllowedOrigins = splitList(v)
	}
	setString(&config.LogLevel, "LOG_LEVEL")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
