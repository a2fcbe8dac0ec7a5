// Package config provides shared configuration utilities and the playground
// settings file.
package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// envOverride applies one PECK_* variable through set and records its name
// when the value parsed.
type envOverride struct {
	key string
	set func(value string) bool
}

func envString(dst *string) func(string) bool {
	return func(v string) bool {
		*dst = v
		return true
	}
}

func envFloat(dst *float64) func(string) bool {
	return func(v string) bool {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false
		}
		*dst = f
		return true
	}
}

func envInt(dst *int) func(string) bool {
	return func(v string) bool {
		n, err := strconv.Atoi(v)
		if err != nil {
			return false
		}
		*dst = n
		return true
	}
}

func envBool(dst *bool) func(string) bool {
	return func(v string) bool {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false
		}
		*dst = b
		return true
	}
}

func envDuration(dst *time.Duration) func(string) bool {
	return func(v string) bool {
		d, err := time.ParseDuration(v)
		if err != nil {
			return false
		}
		*dst = d
		return true
	}
}

// applyEnv runs every override whose variable is set. It returns the names
// that were applied; unparsable values are skipped.
func applyEnv(overrides []envOverride) []string {
	var applied []string
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && o.set(v) {
			applied = append(applied, o.key)
		}
	}
	return applied
}
