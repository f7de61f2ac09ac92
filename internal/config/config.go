// Package config holds the configuration keys of bookshelf and the typed
// snapshot the commands build from viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabaseFile        = "database.file"
	KeyCacheDBFile         = "cache.dbfile"
	KeyCacheTTL            = "cache.ttl"
	KeySourcesTimeout      = "sources.timeout"
	KeyOpenLibraryURL      = "sources.openlibrary.url"
	KeyOpenLibraryEditions = "sources.openlibrary.max_editions"
	KeyGoogleBooksURL      = "sources.googlebooks.url"
	KeyGoogleBooksAPIKey   = "sources.googlebooks.api_key"
	KeyLegacyCSVFile       = "legacy.csvfile"
	KeyLegacyDelimiter     = "legacy.delimiter"
	KeyUnresolvedOutput    = "catalog.unresolved_output"
	KeyUnknownBarcodes     = "shelf.unknown_barcodes"
	KeyDatasetteURL        = "datasette.url"
	KeyDatasetteToken      = "datasette.token"
	KeyDatasetteDatabase   = "datasette.database"
	KeyOverwriteFiles      = "overwritefiles"
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing report files are replaced
	OverwriteFiles bool
	// GoogleBooksAPIKey is the optional API key for Google Books
	GoogleBooksAPIKey string
)

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault(KeyDatabaseFile, "./books.sqlite")
	viper.SetDefault(KeyCacheDBFile, "./cache.db")
	viper.SetDefault(KeyCacheTTL, "720h") // 30 days
	viper.SetDefault(KeySourcesTimeout, "10s")
	viper.SetDefault(KeyOpenLibraryURL, "https://openlibrary.org")
	viper.SetDefault(KeyOpenLibraryEditions, 10)
	viper.SetDefault(KeyGoogleBooksURL, "https://www.googleapis.com/books/v1")
	viper.SetDefault(KeyLegacyDelimiter, ",")
	viper.SetDefault(KeyUnresolvedOutput, "./unresolved.json")
	viper.SetDefault(KeyUnknownBarcodes, "./unknown_barcodes.json")
	viper.SetDefault(KeyDatasetteDatabase, "books")
	viper.SetDefault(KeyOverwriteFiles, true)
}

// BindEnv maps the supported environment variables onto their keys.
func BindEnv() error {
	if err := viper.BindEnv(KeyGoogleBooksAPIKey, "GOOGLE_BOOKS_API_KEY"); err != nil {
		return err
	}
	if err := viper.BindEnv(KeyDatabaseFile, "BOOKSHELF_DB"); err != nil {
		return err
	}
	return viper.BindEnv(KeyDatasetteToken, "DATASETTE_TOKEN")
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()
	OverwriteFiles = viper.GetBool(KeyOverwriteFiles)
	GoogleBooksAPIKey = viper.GetString(KeyGoogleBooksAPIKey)
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// OpenLibrary configures source A.
type OpenLibrary struct {
	URL         string
	MaxEditions int
}

// GoogleBooks configures source B.
type GoogleBooks struct {
	URL    string
	APIKey string
}

// Datasette configures the export target.
type Datasette struct {
	URL      string
	Token    string
	Database string
}

// Config is a snapshot of the effective configuration.
type Config struct {
	DatabaseFile    string
	CacheDBFile     string
	CacheTTL        time.Duration
	SourceTimeout   time.Duration
	OpenLibrary     OpenLibrary
	GoogleBooks     GoogleBooks
	LegacyCSVFile   string
	LegacyDelimiter rune

	UnresolvedOutput string
	UnknownBarcodes  string
	Datasette        Datasette
}

// Load builds a Config from viper.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseFile:  viper.GetString(KeyDatabaseFile),
		CacheDBFile:   viper.GetString(KeyCacheDBFile),
		CacheTTL:      viper.GetDuration(KeyCacheTTL),
		SourceTimeout: viper.GetDuration(KeySourcesTimeout),
		OpenLibrary: OpenLibrary{
			URL:         viper.GetString(KeyOpenLibraryURL),
			MaxEditions: viper.GetInt(KeyOpenLibraryEditions),
		},
		GoogleBooks: GoogleBooks{
			URL:    viper.GetString(KeyGoogleBooksURL),
			APIKey: viper.GetString(KeyGoogleBooksAPIKey),
		},
		LegacyCSVFile:    viper.GetString(KeyLegacyCSVFile),
		UnresolvedOutput: viper.GetString(KeyUnresolvedOutput),
		UnknownBarcodes:  viper.GetString(KeyUnknownBarcodes),
		Datasette: Datasette{
			URL:      viper.GetString(KeyDatasetteURL),
			Token:    viper.GetString(KeyDatasetteToken),
			Database: viper.GetString(KeyDatasetteDatabase),
		},
	}

	if cfg.DatabaseFile == "" {
		return nil, fmt.Errorf("%s must be set", KeyDatabaseFile)
	}
	if cfg.SourceTimeout <= 0 {
		return nil, fmt.Errorf("%s must be a positive duration, got %q", KeySourcesTimeout, viper.GetString(KeySourcesTimeout))
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("%s must not be negative", KeyCacheTTL)
	}

	delim := []rune(viper.GetString(KeyLegacyDelimiter))
	switch {
	case len(delim) == 0:
		cfg.LegacyDelimiter = ','
	case len(delim) == 1:
		cfg.LegacyDelimiter = delim[0]
	default:
		return nil, fmt.Errorf("%s must be a single character, got %q", KeyLegacyDelimiter, string(delim))
	}

	return cfg, nil
}
