package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/donna/internal/flagx"
	"github.com/dmitrijs2005/donna/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Only
// keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP       *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC       *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN            *string         `json:"database_dsn"`
	SecretKey              *string         `json:"secret_key"`
	TokenValidityDuration  *timex.Duration `json:"token_validity_duration"`
	ModelAPIURL            *string         `json:"model_api_url"`
	ModelAPIKey            *string         `json:"model_api_key"`
	ModelName              *string         `json:"model_name"`
	ModelTemperature       *float64        `json:"model_temperature"`
	ModelMaxTokens         *int            `json:"model_max_tokens"`
	ModelTimeout           *timex.Duration `json:"model_timeout"`
	HistoryTurns           *int            `json:"history_turns"`
	RedisAddr              *string         `json:"redis_addr"`
	RedisPassword          *string         `json:"redis_password"`
	RedisDB                *int            `json:"redis_db"`
	ChatRateLimitPerMinute *int            `json:"chat_rate_limit_per_minute"`
	ChatRateLimitBurst     *int            `json:"chat_rate_limit_burst"`
	CORSAllowedOrigins     []string        `json:"cors_allowed_origins"`
	LogLevel               *string         `json:"log_level"`
}

// parseJson loads the file named by -c / -config, if any. An unreadable or
// invalid file is a startup error and panics, like a bad flag does.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	copyPtr(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	copyPtr(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	copyPtr(&config.DatabaseDSN, c.DatabaseDSN)
	copyPtr(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	copyPtr(&config.ModelAPIURL, c.ModelAPIURL)
	copyPtr(&config.ModelAPIKey, c.ModelAPIKey)
	copyPtr(&config.ModelName, c.ModelName)
	copyPtr(&config.ModelTemperature, c.ModelTemperature)
	copyPtr(&config.ModelMaxTokens, c.ModelMaxTokens)
	if c.ModelTimeout != nil {
		config.ModelTimeout = c.ModelTimeout.Duration
	}
	copyPtr(&config.HistoryTurns, c.HistoryTurns)
	copyPtr(&config.RedisAddr, c.RedisAddr)
	copyPtr(&config.RedisPassword, c.RedisPassword)
	copyPtr(&config.RedisDB, c.RedisDB)
	copyPtr(&config.ChatRateLimitPerMinute, c.ChatRateLimitPerMinute)
	copyPtr(&config.ChatRateLimitBurst, c.ChatRateLimitBurst)
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	copyPtr(&config.LogLevel, c.LogLevel)
}

func copyPtr[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
