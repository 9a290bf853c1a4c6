// Package env reads process environment overrides with typed fallbacks.
package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetString returns the value of key, or fallback when the variable is unset
// or blank.
func GetString(key, fallback string) string {
	val, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}

func GetInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	valInt, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return valInt
}

// GetDuration parses values such as "15m" or "30s".
func GetDuration(key string, fallback time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return d
}
