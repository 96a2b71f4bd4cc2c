package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/college.db"

	// ReadErrorPolicy controls what one-shot reads do on backend
	// failure: "degrade" (empty/unknown results) or "propagate".
	ReadErrorPolicy string

	// Location the day window is computed in.
	Location *time.Location
}

func FromEnv() Config {
	addr := getenvDefault("COLLEGE_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("COLLEGE_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("COLLEGE_DB_PATH", "./data/college.db")

	policy := strings.ToLower(getenvDefault("COLLEGE_READ_ERROR_POLICY", "degrade"))
	if policy != "degrade" && policy != "propagate" {
		policy = "degrade"
	}

	loc := time.Local
	if tz := strings.TrimSpace(os.Getenv("COLLEGE_TIMEZONE")); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
		// fail-soft: unknown zone falls back to local time
	}

	return Config{
		HTTPAddr:        addr,
		Env:             env,
		DBPath:          dbPath,
		ReadErrorPolicy: policy,
		Location:        loc,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
