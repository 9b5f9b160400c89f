package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"MEALPLANNER_DB",
	"MEALPLANNER_USER",
	"MEALPLANNER_EXCLUDED_CATEGORIES",
	"MEALPLANNER_SEED",
	"MEALPLANNER_AUTOPLAN",
	"MEALPLANNER_LOG_FILE",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "meal_planner.db", cfg.DatabaseURL)
	assert.Equal(t, "chef", cfg.Username)
	assert.Equal(t, []string{"Appetizer", "Dessert"}, cfg.ExcludedCategories)
	assert.Zero(t, cfg.Seed)
	assert.Equal(t, "MON 06:00", cfg.AutoplanSchedule)
	assert.Empty(t, cfg.LogFile)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEALPLANNER_DB", "data/test.db")
	t.Setenv("MEALPLANNER_USER", "alice")
	t.Setenv("MEALPLANNER_EXCLUDED_CATEGORIES", " Dessert , ,Snack")
	t.Setenv("MEALPLANNER_SEED", "42")
	t.Setenv("MEALPLANNER_AUTOPLAN", "SUN 18:30")
	t.Setenv("MEALPLANNER_LOG_FILE", "planner.log")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "data/test.db", cfg.DatabaseURL)
	assert.Equal(t, "alice", cfg.Username)
	assert.Equal(t, []string{"Dessert", "Snack"}, cfg.ExcludedCategories)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "SUN 18:30", cfg.AutoplanSchedule)
	assert.Equal(t, "planner.log", cfg.LogFile)
}

func TestLoadEmptyExclusionList(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEALPLANNER_EXCLUDED_CATEGORIES", "")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, cfg.ExcludedCategories)
}

func TestLoadEnvFileWithOverride(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "MEALPLANNER_DB=file.db\nMEALPLANNER_USER=bob\nMEALPLANNER_EXCLUDED_CATEGORIES=Dessert\n")
	t.Setenv("MEALPLANNER_USER", "carol")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.DatabaseURL)
	assert.Equal(t, "carol", cfg.Username)
	assert.Equal(t, []string{"Dessert"}, cfg.ExcludedCategories)
}

func TestLoadInvalidSeed(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEALPLANNER_SEED", "-3")

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "MEALPLANNER_SEED")
}
