package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"absensi/internal/attendance"
	"absensi/internal/report"
)

type reportRow struct {
	Name, Class, Date, Time string
}

func (c *cli) reportCmd() *cobra.Command {
	var (
		f      report.Filter
		format string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the public student attendance report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := c.state.Users()
			records := report.Public(c.state.AttendanceRecords(), users, f)
			rows := reportRows(records, users)

			switch format {
			case "table":
				return writeTable(cmd.OutOrStdout(), rows)
			case "csv":
				return writeCSV(cmd.OutOrStdout(), rows)
			default:
				return fmt.Errorf("unknown format %q (want table or csv)", format)
			}
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive name filter")
	cmd.Flags().StringVar(&f.Date, "date", "", "only this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Class, "class", "", "only students of this class")
	cmd.Flags().StringVar(&format, "format", "table", "table or csv")
	return cmd
}

// reportRows takes the class from the user, not the record.
func reportRows(records []attendance.AttendanceRecord, users []attendance.User) []reportRow {
	classOf := make(map[string]string, len(users))
	for _, u := range users {
		classOf[u.ID] = u.Class
	}
	rows := make([]reportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, reportRow{Name: r.UserName, Class: classOf[r.UserID], Date: r.Date, Time: r.Time})
	}
	return rows
}

func writeTable(out io.Writer, rows []reportRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "Tidak ada data absensi yang ditemukan")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAMA SISWA\tKELAS\tTANGGAL\tWAKTU\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\tHadir\n", r.Name, dash(r.Class), displayDate(r.Date), r.Time)
	}
	return w.Flush()
}

func writeCSV(out io.Writer, rows []reportRow) error {
	w := csv.NewWriter(out)
	_ = w.Write([]string{"name", "class", "date", "time", "status"})
	for _, r := range rows {
		_ = w.Write([]string{r.Name, r.Class, r.Date, r.Time, "Hadir"})
	}
	w.Flush()
	return w.Error()
}

// displayDate renders YYYY-MM-DD as dd/MM/yyyy, leaving anything else as is.
func displayDate(date string) string {
	t, err := time.Parse(attendance.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}
