package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/incidencias/catalog"
	"github.com/warp/incidencias/logging"
	"github.com/warp/incidencias/store/sqlite"
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import {internal|master} FILE",
		Short: "Bulk-load employees from a CSV file",
		Long: `Import employees from a CSV file in the internal layout
(name, plant, hire_date, days_per_year, rest_day, company) or the HR master
layout (EMPRESA, ZONA, NOMBRE, PATERNO, MATERNO, INGRESO, ...).

Example:
  hrctl import master empleados.csv --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := catalog.ParseFormat(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			defer f.Close()

			res, err := catalog.ParseCSV(f, format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "skipped row %d: %s\n", s.Row, s.Reason)
				a.log.WithFields(logrus.Fields{
					logging.FieldFile:   args[1],
					logging.FieldReason: s.Reason,
					"row":               s.Row,
				}).Debug("Import row skipped")
			}
			if dryRun {
				for _, e := range res.Employees {
					fmt.Fprintf(out, "%s\t%s\t%s\t%d\n", e.Name, e.Plant, e.HireDate, e.AnnualDays)
				}
				fmt.Fprintf(out, "%d employees ready, %d skipped (dry run)\n", len(res.Employees), len(res.Skipped))
				return nil
			}

			err = a.withStore(cmd.Context(), func(ctx context.Context, store *sqlite.Store) error {
				return store.UpsertEmployees(ctx, res.Employees)
			})
			if err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{
				logging.FieldFile:   args[1],
				logging.FieldFormat: format,
				logging.FieldCount:  len(res.Employees),
			}).Info("Employees imported")
			fmt.Fprintf(out, "%d employees imported, %d skipped\n", len(res.Employees), len(res.Skipped))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and show the rows without writing")
	return cmd
}

func newPlantsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plants",
		Short: "List or seed the plant catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, store *sqlite.Store) error {
				plants, err := store.ListPlants(ctx)
				if err != nil {
					return err
				}
				for _, p := range plants {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			})
		},
	}

	var path string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Seed plants from a JSON or YAML list when the catalog is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = a.cfg.SeedsPath
			}
			if path == "" {
				return fmt.Errorf("no seed file: pass --file or set SEEDS_PATH")
			}
			names, err := catalog.LoadPlantSeeds(path)
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(ctx context.Context, store *sqlite.Store) error {
				n, err := store.SeedPlants(ctx, names)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d plants seeded\n", n)
				return nil
			})
		},
	}
	seed.Flags().StringVar(&path, "file", "", "Seed file (defaults to SEEDS_PATH)")

	cmd.AddCommand(seed)
	return cmd
}
