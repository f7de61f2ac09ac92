package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/bookshelf/internal/cache"
	"github.com/lepinkainen/bookshelf/internal/config"
)

// stdout receives the command reports; tests replace it.
var stdout io.Writer = os.Stdout

// CLI represents the complete command structure for the bookshelf application
type CLI struct {
	// Global flags
	Debug     bool `help:"Enable debug logging"`
	Overwrite bool `help:"Overwrite existing report files" default:"true" negatable:""`

	DatabaseFile string `name:"db" help:"Path to the book SQLite database (database.file)"`
	CacheDBFile  string `help:"Path to cache SQLite database file (cache.dbfile)"`
	CacheTTL     string `help:"Cache time-to-live duration, e.g. 720h for 30 days (cache.ttl)"`

	Catalog      CatalogCmd      `cmd:"" help:"Reconcile the legacy catalog into the book database"`
	Lookup       LookupCmd       `cmd:"" help:"Look up one ISBN on OpenLibrary and Google Books without storing it"`
	Locations    LocationsCmd    `cmd:"" help:"Manage the shelf location table"`
	Shelf        ShelfCmd        `cmd:"" help:"Mark a book as on the shelf, lent out or moved"`
	BackfillISBN BackfillISBNCmd `cmd:"" name:"backfill-isbn" help:"Fill empty isbn_10/isbn_13 columns from the stored ISBNs"`
	Cache        CacheCmd        `cmd:"" help:"Manage the response cache"`
	Ping         PingCmd         `cmd:"" help:"Check that the networked sources are reachable"`
	Export       ExportCmd       `cmd:"" help:"Publish the book table to a Datasette instance"`
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Drop every cached response of one source"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(false)
	initConfig()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bookshelf"),
		kong.Description("Catalog a home library from OpenLibrary, Google Books and the legacy DBKK spreadsheet."),
		kong.UsageOnError(),
	)

	if cli.Debug {
		initLogging(true)
	}
	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	if err := config.BindEnv(); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

// updateGlobalConfig lets explicitly given flags override the config file.
func updateGlobalConfig(cli *CLI) {
	config.SetOverwriteFiles(cli.Overwrite)

	if cli.DatabaseFile != "" {
		viper.Set(config.KeyDatabaseFile, cli.DatabaseFile)
	}
	if cli.CacheDBFile != "" {
		viper.Set(config.KeyCacheDBFile, cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set(config.KeyCacheTTL, cli.CacheTTL)
	}
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
