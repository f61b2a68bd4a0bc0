package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the application needs. It is loaded
// once in main and passed down explicitly; nothing in this package keeps
// global state.
type Config struct {
	DatabaseURL string
	RedisAddr   string
	JWTKey      []byte
	ListenAddr  string

	// Group capacity ceilings by program category. Categories listed in
	// SmallCohortCategories get the small ceiling, everything else the
	// default one.
	GroupCapacityDefault  int
	GroupCapacitySmall    int
	SmallCohortCategories map[string]bool

	// MaxGroupsPerClass caps on-demand group creation; 0 means unlimited.
	MaxGroupsPerClass int
}

// Load reads the environment (a local .env file first, if present) and
// builds the Config. Missing optional values fall back to defaults;
// DB_URL is the only hard requirement and is checked by the caller.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:           os.Getenv("DB_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		JWTKey:                []byte(os.Getenv("JWT_SECRET")),
		ListenAddr:            envOr("LISTEN_ADDR", ":8080"),
		GroupCapacityDefault:  envInt("GROUP_CAPACITY_DEFAULT", 100),
		GroupCapacitySmall:    envInt("GROUP_CAPACITY_SMALL", 50),
		SmallCohortCategories: map[string]bool{},
		MaxGroupsPerClass:     envInt("MAX_GROUPS_PER_CLASS", 0),
	}

	for _, name := range strings.Split(envOr("SMALL_COHORT_CATEGORIES", ""), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			cfg.SmallCohortCategories[strings.ToLower(name)] = true
		}
	}

	return cfg
}

// GroupCapacity returns the capacity ceiling for a program category.
func (c *Config) GroupCapacity(category string) int {
	if c.SmallCohortCategories[strings.ToLower(category)] {
		return c.GroupCapacitySmall
	}
	return c.GroupCapacityDefault
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
