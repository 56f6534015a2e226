package configloader

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// OverrideString overrides a string field if the environment variable is set.
func OverrideString(field *string, env string) {
	if val := os.Getenv(env); val != "" {
		*field = val
	}
}

// OverrideInt overrides an int field if the environment variable is set.
func OverrideInt(field *int, env string) {
	if val := os.Getenv(env); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*field = i
		}
	}
}

// OverrideInt64 overrides an int64 field if the environment variable is set.
func OverrideInt64(field *int64, env string) {
	if val := os.Getenv(env); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*field = i
		}
	}
}

// OverrideBool overrides a bool field if the environment variable is set.
// Accepts "1"/"true"/"yes" (case-insensitive) as true, anything else as
// false.
func OverrideBool(field *bool, env string) {
	if val := os.Getenv(env); val != "" {
		val = strings.ToLower(val)
		*field = val == "1" || val == "true" || val == "yes"
	}
}

// OverrideStringSlice overrides a []string field from a comma-separated
// environment variable (e.g. "node-1:9000,node-2:9000").
func OverrideStringSlice(field *[]string, env string) {
	if val := os.Getenv(env); val != "" {
		parts := strings.Split(val, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		*field = trimmed
	}
}

// OverrideDuration overrides a time.Duration field if the environment
// variable is set and parses cleanly.
func OverrideDuration(field *time.Duration, env string) {
	if val := os.Getenv(env); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*field = d
		}
	}
}
