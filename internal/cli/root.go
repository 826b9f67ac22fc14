// Package cli implements normsctl, the offline companion to normsd.
package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mind-engage/mindengage-norms/internal/db"
	"github.com/mind-engage/mindengage-norms/internal/logging"
	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/norms/registry"
	"github.com/mind-engage/mindengage-norms/internal/scoring"
	"github.com/mind-engage/mindengage-norms/internal/storage"
)

type app struct {
	v       *viper.Viper
	cfgFile string
}

// NewRootCmd builds the command tree. Each call has its own flag and
// config state.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "normsctl",
		Short: "Convert index raw sums to composite scores from the command line.",
		Long: `normsctl loads normative tables from the embedded set, a directory or the
database, and converts raw index sums to composite scores, percentiles and
confidence intervals. Output is JSON.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.normsctl.yaml)")
	pf.StringP("loglevel", "l", "warn", "Set log level. Available: debug, info, warn, error, fatal")
	pf.String("source", string(registry.SourceEmbedded), "Table source: embedded, dir or db")
	pf.String("tables", "./tables", "Table directory for --source dir")
	pf.String("db-driver", string(db.DriverSQLite), "Database driver: sqlite or postgres")
	pf.String("db-dsn", "", "Database DSN")
	pf.String("overall", string(norms.OverallCore7), "Overall convention: core7, all10 or both")
	for _, k := range []string{"source", "tables", "db-driver", "db-dsn", "overall"} {
		_ = a.v.BindPFlag(k, pf.Lookup(k))
	}

	root.AddCommand(a.convertCmd(), a.bandsCmd(), a.tablesCmd())
	return root
}

// Execute runs normsctl with os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads the optional config file and NORMS_* env vars, then
// sets the log level.
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := homedir.Dir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigName(".normsctl")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("NORMS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, _ := cmd.Flags().GetString("loglevel")
	return logging.SetLevel(level)
}

func (a *app) source() registry.Source { return registry.Source(a.v.GetString("source")) }

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	return db.Open(ctx, db.Driver(a.v.GetString("db-driver")), a.v.GetString("db-dsn"))
}

// loadTables builds a table store from the configured source.
func (a *app) loadTables(ctx context.Context) (*norms.TableStore, []norms.LoadWarning, error) {
	var bs storage.BlobStore
	var dbh *sql.DB
	switch a.source() {
	case registry.SourceDir:
		fs, err := storage.NewFSStore(a.v.GetString("tables"))
		if err != nil {
			return nil, nil, err
		}
		bs = fs
	case registry.SourceDB:
		h, err := a.openDB(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		defer h.Close()
		dbh = h
	}
	return scoring.LoadStore(ctx, a.source(), bs, dbh)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
