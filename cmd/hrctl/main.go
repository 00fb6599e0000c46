// Command hrctl runs catalog imports, vacation reports and exports against
// the incident database without starting the server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/config"
	"github.com/warp/incidencias/logging"
	"github.com/warp/incidencias/store/sqlite"
)

// app carries what every subcommand needs after PersistentPreRun.
type app struct {
	envFile string
	dbPath  string

	cfg   config.Config
	log   *logrus.Logger
	today func() calendar.Date
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{today: calendar.Today}

	cmd := &cobra.Command{
		Use:   "hrctl",
		Short: "Manage the incident and vacation database from the command line",
		Long: `hrctl imports the employee catalog, seeds plants, prints vacation
reports and exports the consolidated incident workbook.

Configuration comes from the environment (and .env), like the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			if a.dbPath != "" {
				cfg.DBPath = a.dbPath
			}
			a.cfg = cfg
			a.log = logging.New(cfg.LogLevel, cfg.LogFormat)
			a.log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.envFile, "env", ".env", "Dotenv file to load")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides DB_PATH)")

	cmd.AddCommand(
		newImportCmd(a),
		newPlantsCmd(a),
		newVacationsCmd(a),
		newExportCmd(a),
	)
	return cmd
}

// withStore opens the configured database for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(context.Context, *sqlite.Store) error) error {
	store, err := sqlite.New(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", a.cfg.DBPath, err)
	}
	defer store.Close()
	return fn(ctx, store)
}

// dateFlag parses an optional YYYY-MM-DD flag value, defaulting to today.
func (a *app) dateFlag(v string) (calendar.Date, error) {
	if v == "" {
		return a.today(), nil
	}
	return calendar.ParseDate(v)
}
