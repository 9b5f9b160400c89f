package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the planner.
type Config struct {
	DatabaseURL        string
	Username           string
	ExcludedCategories []string
	Seed               uint64
	AutoplanSchedule   string
	LogFile            string
}

// Load reads configuration from the environment, overlaid on an optional .env
// file in the working directory, with sane defaults.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file. A missing file is not an error;
// variables set in the process environment win over the file.
func LoadFile(path string) (Config, error) {
	fileEnv, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	get := func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(val)
		}
		return strings.TrimSpace(fileEnv[key])
	}

	cfg := Config{
		DatabaseURL:        get("MEALPLANNER_DB"),
		Username:           get("MEALPLANNER_USER"),
		ExcludedCategories: []string{"Appetizer", "Dessert"},
		AutoplanSchedule:   get("MEALPLANNER_AUTOPLAN"),
		LogFile:            get("MEALPLANNER_LOG_FILE"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "meal_planner.db"
	}

	if cfg.Username == "" {
		cfg.Username = "chef"
	}

	if cfg.AutoplanSchedule == "" {
		cfg.AutoplanSchedule = "MON 06:00"
	}

	if raw, ok := lookup(get, "MEALPLANNER_EXCLUDED_CATEGORIES"); ok {
		cfg.ExcludedCategories = parseList(raw)
	}

	if raw := get("MEALPLANNER_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("MEALPLANNER_SEED must be a non-negative integer: %w", err)
		}
		cfg.Seed = seed
	}

	return cfg, nil
}

// lookup distinguishes an explicitly empty variable from an unset one.
func lookup(get func(string) string, key string) (string, bool) {
	if _, ok := os.LookupEnv(key); ok {
		return get(key), true
	}
	if raw := get(key); raw != "" {
		return raw, true
	}
	return "", false
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
