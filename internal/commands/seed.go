package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/formshift/formshift/internal/models"
	"github.com/formshift/formshift/internal/repository"
)

var (
	seedCount int
	seedDays  int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the history sheet with fake translations",
	Long: `Generates fake translation history spread over the past days, useful
for demos and for exercising the session report against realistic data.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 50, "number of history rows to generate")
	seedCmd.Flags().IntVar(&seedDays, "days", 14, "spread rows over this many past days")
	rootCmd.AddCommand(seedCmd)
}

var seedForms = []models.Form{
	{Name: "Plain English", Description: "Everyday speech"},
	{Name: "Pirate", Description: "Nautical slang"},
	{Name: "Shakespearean", Description: "Early modern English verse"},
	{Name: "Corporate", Description: "Business jargon"},
	{Name: "Haiku", Description: "Three lines, 5-7-5 syllables"},
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedCount <= 0 || seedDays <= 0 {
		return fmt.Errorf("count and days must be positive")
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required")
	}

	repo, err := buildRepository(cfg)
	if err != nil {
		return err
	}

	forms, err := repo.ListForms(cmd.Context())
	if err != nil || len(forms) < 2 {
		forms = seedForms
	}

	now := time.Now()
	timestamps := make([]time.Time, seedCount)
	for i := range timestamps {
		offset := time.Duration(gofakeit.Number(0, seedDays*24*3600)) * time.Second
		timestamps[i] = now.Add(-offset)
	}
	// Sheet order should look like real append-only history.
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	for _, ts := range timestamps {
		source := forms[gofakeit.Number(0, len(forms)-1)]
		target := forms[gofakeit.Number(0, len(forms)-1)]
		for target.Name == source.Name {
			target = forms[gofakeit.Number(0, len(forms)-1)]
		}

		entry := &models.HistoryEntry{
			ID:         uuid.NewString()[:8],
			Stars:      gofakeit.Number(0, 5),
			SourceForm: source.Name,
			SourceText: gofakeit.Sentence(gofakeit.Number(4, 12)),
			TargetForm: target.Name,
			TargetText: gofakeit.Sentence(gofakeit.Number(4, 12)),
			Timestamp:  repository.Timestamp(ts),
		}
		if err := repo.AppendHistory(cmd.Context(), entry); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	log.InfoContext(cmd.Context(), "seeded history", "rows", seedCount, "days", seedDays)
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d history rows over %d days\n", seedCount, seedDays)
	return nil
}
