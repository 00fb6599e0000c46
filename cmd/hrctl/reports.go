package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/export"
	"github.com/warp/incidencias/incident"
	"github.com/warp/incidencias/store/sqlite"
	"github.com/warp/incidencias/vacation"
)

func newVacationsCmd(a *app) *cobra.Command {
	var (
		date    string
		month   int
		csvPath string
		alerts  bool
	)

	cmd := &cobra.Command{
		Use:   "vacations",
		Short: "Print the vacation report",
		Long: `Print every employee's vacation balance at --date (default today).

Example:
  hrctl vacations --month 7 --csv julio.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.dateFlag(date)
			if err != nil {
				return err
			}

			var report vacation.Report
			var reportErr error
			err = a.withStore(cmd.Context(), func(ctx context.Context, store *sqlite.Store) error {
				svc := vacation.NewService(store, a.cfg.VacationPolicy())
				if month != 0 {
					report, reportErr = svc.MonthlyView(ctx, ref, month)
				} else {
					report, reportErr = svc.AnnualReport(ctx, ref)
				}
				if reportErr != nil && !errors.Is(reportErr, vacation.ErrMalformedRecord) {
					return reportErr
				}
				return nil
			})
			if err != nil {
				return err
			}

			rows := report.Rows
			if alerts {
				rows = report.Alerts()
			}
			for _, s := range report.Skipped {
				a.log.WithError(s).Warn("Skipped employee")
			}

			if csvPath != "" {
				if err := writeFile(csvPath, func(w io.Writer) error { return export.WriteVacationCSV(w, rows) }); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s\n", len(rows), csvPath)
			} else {
				printVacations(cmd.OutOrStdout(), rows)
			}
			return reportErr
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Reference date YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&month, "month", 0, "Only employees whose hire anniversary is this month (1-12)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the report to this CSV file")
	cmd.Flags().BoolVar(&alerts, "alerts", false, "Only rows with an expiry alert")
	return cmd
}

func printVacations(w io.Writer, rows []vacation.Status) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLEADO\tPLANTA\tINGRESO\tSALDO ACTUAL\tSALDO ANTERIOR\tVENCE\tDIAS\tALERTA")
	for _, r := range export.VacationRows(rows) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Employee, r.Plant, r.HireDate, r.CurrentRemaining, r.PriorRemaining, r.PriorExpiry, r.DaysToExpiry, r.Alert)
	}
	tw.Flush()
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports to files",
	}

	var (
		from, to, plant, company, out string
	)
	consolidated := &cobra.Command{
		Use:   "consolidated",
		Short: "Write the consolidated incident workbook (Datos and Resumen sheets)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := a.today()
			f := incident.Filter{Plant: plant, Company: company}
			def := calendar.MonthToDate(today)

			var err error
			if f.From, err = optionalDate(from, def.Start); err != nil {
				return err
			}
			if f.To, err = optionalDate(to, def.End); err != nil {
				return err
			}
			if p := (calendar.Period{Start: f.From, End: f.To}); !p.IsValid() {
				return fmt.Errorf("invalid range %s: --to is before --from", p)
			}
			if out == "" {
				out = export.ConsolidatedFileName(today)
			}

			var incs []incident.Incident
			err = a.withStore(cmd.Context(), func(ctx context.Context, store *sqlite.Store) error {
				incs, err = store.ListIncidents(ctx, f)
				return err
			})
			if err != nil {
				return err
			}

			err = writeFile(out, func(w io.Writer) error {
				return export.WriteConsolidated(w, incs, incident.Summarize(incs))
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d incidents written to %s\n", len(incs), out)
			return nil
		},
	}
	consolidated.Flags().StringVar(&from, "from", "", "Start date YYYY-MM-DD (default first of month)")
	consolidated.Flags().StringVar(&to, "to", "", "End date YYYY-MM-DD (default today)")
	consolidated.Flags().StringVar(&plant, "plant", "", "Plant filter (TODAS for all)")
	consolidated.Flags().StringVar(&company, "company", "", "Company filter (TODAS for all)")
	consolidated.Flags().StringVar(&out, "out", "", "Output file (default incidencias_consolidado_<date>.xlsx)")

	cmd.AddCommand(consolidated)
	return cmd
}

func optionalDate(v string, def calendar.Date) (calendar.Date, error) {
	if v == "" {
		return def, nil
	}
	return calendar.ParseDate(v)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
