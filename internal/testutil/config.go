package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/bookshelf/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OverwriteFiles    bool
	GoogleBooksAPIKey string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		OverwriteFiles:    config.OverwriteFiles,
		GoogleBooksAPIKey: config.GoogleBooksAPIKey,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.OverwriteFiles = state.OverwriteFiles
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
}

// ResetConfig resets viper to the defaults of every key and restores the
// previous configuration when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()
	config.SetDefaults()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value for the duration of the test.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so a key that was unset stays overridden.
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupTestDatabases points the book store and the response cache at fresh
// files inside env. It returns the book store path.
func SetupTestDatabases(t *testing.T, env *TestEnv) string {
	t.Helper()

	env.MkdirAll("db")
	dbPath := env.Path("db", "books.sqlite")

	SetViperValue(t, config.KeyDatabaseFile, dbPath)
	SetViperValue(t, config.KeyCacheDBFile, env.Path("db", "cache.db"))
	SetViperValue(t, config.KeyCacheTTL, "24h")

	return dbPath
}

// SetupSources points both networked sources at baseURL, typically an
// httptest server that serves the OpenLibrary and Google Books paths.
func SetupSources(t *testing.T, baseURL string) {
	t.Helper()

	SetViperValue(t, config.KeyOpenLibraryURL, baseURL)
	SetViperValue(t, config.KeyGoogleBooksURL, baseURL)
	SetViperValue(t, config.KeySourcesTimeout, "2s")
}
