package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/formshift/formshift/internal/analytics"
	"github.com/formshift/formshift/pkg/output"
)

var sessionsGapMinutes int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Reconstruct usage sessions from the translation history",
	Long: `Reads the translation history and groups its timestamps into usage
sessions. Consecutive translations separated by no more than the gap
belong to one session.`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsGapMinutes, "gap", 60, "inactivity gap in minutes that splits sessions")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if sessionsGapMinutes <= 0 {
		return fmt.Errorf("gap must be a positive number of minutes")
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required")
	}

	svc, err := buildService(cfg, log)
	if err != nil {
		return err
	}

	report, err := svc.SessionReport(cmd.Context(), time.Duration(sessionsGapMinutes)*time.Minute)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	return output.Write(out, format, report, func(w io.Writer) error {
		return renderSessionReport(w, report)
	})
}

func renderSessionReport(w io.Writer, report *analytics.Report) error {
	output.Heading(w, "Session report")
	summary := [][]string{
		{"Total records", strconv.Itoa(report.TotalRecords)},
		{"Parsed records", strconv.Itoa(report.ParsedRecords)},
		{"Unique days", strconv.Itoa(report.UniqueDays)},
		{"Sessions", strconv.Itoa(report.TotalSessions)},
	}
	if report.TotalSessions > 0 {
		summary = append(summary,
			[]string{"Mean translations/session", fmt.Sprintf("%.2f", report.MeanPerSession)},
			[]string{"Largest session", fmt.Sprintf("%d translations", report.Largest.Count())},
			[]string{"Smallest session", fmt.Sprintf("%d translations", report.Smallest.Count())},
		)
	}
	if err := output.Table(w, []string{"METRIC", "VALUE"}, summary); err != nil {
		return err
	}

	for _, day := range report.Days {
		fmt.Fprintln(w)
		output.Heading(w, "%s (%d sessions)", day.Date.Format("2006-01-02"), len(day.Sessions))
		rows := make([][]string, len(day.Sessions))
		for i, s := range day.Sessions {
			rows[i] = []string{
				s.Start.Format("15:04:05"),
				s.End.Format("15:04:05"),
				s.Duration().Truncate(time.Second).String(),
				strconv.Itoa(s.Count()),
			}
		}
		if err := output.Table(w, []string{"START", "END", "DURATION", "TRANSLATIONS"}, rows); err != nil {
			return err
		}
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(w)
		output.Warn(w, "%d rows had unparseable timestamps (showing up to %d):",
			len(report.Failures), analytics.FailurePreviewLimit)
		for _, f := range report.FailurePreview() {
			fmt.Fprintf(w, "  row %d: %q\n", f.Row, f.Raw)
		}
	}
	return nil
}
