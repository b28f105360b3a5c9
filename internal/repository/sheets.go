package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/formshift/formshift/internal/analytics"
	"github.com/formshift/formshift/internal/models"
)

// SheetNames maps each record collection to its tab in the spreadsheet.
type SheetNames struct {
	Forms    string
	Prompt   string
	History  string
	Interest string
}

// DefaultSheetNames returns the tab names the spreadsheet ships with.
func DefaultSheetNames() SheetNames {
	return SheetNames{
		Forms:    "Sheet1",
		Prompt:   "prompt",
		History:  "history",
		Interest: "interest_registered",
	}
}

// SheetsAPI is the spreadsheet client surface the repository depends on.
type SheetsAPI interface {
	Get(ctx context.Context, rng string) ([][]string, error)
	Append(ctx context.Context, rng string, rows [][]string) error
	Update(ctx context.Context, rng string, rows [][]string) error
	DeleteRows(ctx context.Context, sheetName string, start, end int) error
}

var (
	formsHeader    = []string{"name", "description", "category"}
	historyHeader  = []string{"id", "stars_count", "source_form", "source_form_id", "source_text", "target_form", "target_form_id", "target_text", "datetime"}
	interestHeader = []string{"id", "what", "counter"}
)

// interestKinds are auto-initialized in the interest sheet on first access.
var interestKinds = []string{models.InterestImages, models.InterestWebsites}

// SheetsRepository stores all records in a Google spreadsheet, one tab
// per collection.
type SheetsRepository struct {
	api    SheetsAPI
	sheets SheetNames
}

// NewSheetsRepository creates a repository over the given spreadsheet client.
func NewSheetsRepository(api SheetsAPI, sheets SheetNames) *SheetsRepository {
	return &SheetsRepository{api: api, sheets: sheets}
}

func (r *SheetsRepository) rng(sheet, cells string) string {
	return sheet + "!" + cells
}

// ensureHeader writes the header row when the sheet is empty or carries a
// different first row.
func (r *SheetsRepository) ensureHeader(ctx context.Context, sheet string, header []string) error {
	endCol := string(rune('A' + len(header) - 1))
	rng := r.rng(sheet, "A1:"+endCol+"1")

	rows, err := r.api.Get(ctx, rng)
	if err != nil {
		return err
	}
	if len(rows) > 0 && equalRow(rows[0], header) {
		return nil
	}
	return r.api.Update(ctx, rng, [][]string{header})
}

func equalRow(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// ListForms returns the form catalog in sheet order.
func (r *SheetsRepository) ListForms(ctx context.Context) ([]models.Form, error) {
	rows, err := r.api.Get(ctx, r.rng(r.sheets.Forms, "A:C"))
	if err != nil {
		return nil, fmt.Errorf("failed to read forms: %w", err)
	}

	forms := make([]models.Form, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		form := models.Form{
			Name:        strings.TrimSpace(row[0]),
			Description: strings.TrimSpace(row[1]),
		}
		if len(row) > 2 {
			form.Category = strings.TrimSpace(row[2])
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// AddForm appends a form to the catalog.
func (r *SheetsRepository) AddForm(ctx context.Context, form *models.Form) error {
	if err := r.ensureHeader(ctx, r.sheets.Forms, formsHeader); err != nil {
		return fmt.Errorf("failed to prepare forms sheet: %w", err)
	}
	row := []string{form.Name, form.Description, form.Category}
	if err := r.api.Append(ctx, r.rng(r.sheets.Forms, "A:C"), [][]string{row}); err != nil {
		return fmt.Errorf("failed to append form: %w", err)
	}
	return nil
}

// UpdateForm overwrites the form at the given position. Positions are
// 1-based and exclude the header row.
func (r *SheetsRepository) UpdateForm(ctx context.Context, row int, form *models.Form) error {
	if err := r.formRowExists(ctx, row); err != nil {
		return err
	}
	cells := fmt.Sprintf("A%d:C%d", row+1, row+1)
	values := [][]string{{form.Name, form.Description, form.Category}}
	if err := r.api.Update(ctx, r.rng(r.sheets.Forms, cells), values); err != nil {
		return fmt.Errorf("failed to update form: %w", err)
	}
	return nil
}

// DeleteForm removes the form at the given position. Positions are
// 1-based and exclude the header row.
func (r *SheetsRepository) DeleteForm(ctx context.Context, row int) error {
	if err := r.formRowExists(ctx, row); err != nil {
		return err
	}
	if err := r.api.DeleteRows(ctx, r.sheets.Forms, row, row+1); err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	return nil
}

func (r *SheetsRepository) formRowExists(ctx context.Context, row int) error {
	if row < 1 {
		return ErrNotFound
	}
	forms, err := r.ListForms(ctx)
	if err != nil {
		return err
	}
	if row > len(forms) {
		return ErrNotFound
	}
	return nil
}

// PromptTemplate looks up a prompt template by ID.
func (r *SheetsRepository) PromptTemplate(ctx context.Context, id string) (*models.PromptTemplate, error) {
	rows, err := r.api.Get(ctx, r.rng(r.sheets.Prompt, "A:D"))
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt sheet: %w", err)
	}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		if strings.TrimSpace(row[0]) != id {
			continue
		}
		tmpl := &models.PromptTemplate{ID: id, Text: row[1]}
		if len(row) > 2 {
			tmpl.Data = row[2]
		}
		if len(row) > 3 {
			tmpl.Version = row[3]
		}
		return tmpl, nil
	}
	return nil, ErrNotFound
}

// ListHistory returns all history entries, most starred first and newest
// first within equal star counts. Entries with unparseable timestamps
// sort last within their star group.
func (r *SheetsRepository) ListHistory(ctx context.Context) ([]*models.HistoryEntry, error) {
	entries, err := r.HistoryRows(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Stars != entries[j].Stars {
			return entries[i].Stars > entries[j].Stars
		}
		ti, iok := analytics.ParseTimestamp(entries[i].Timestamp)
		tj, jok := analytics.ParseTimestamp(entries[j].Timestamp)
		if iok != jok {
			return iok
		}
		return ti.After(tj)
	})
	return entries, nil
}

// HistoryRows returns history entries in sheet order. Rows too short to
// carry a source and target are skipped.
func (r *SheetsRepository) HistoryRows(ctx context.Context) ([]*models.HistoryEntry, error) {
	rows, err := r.api.Get(ctx, r.rng(r.sheets.History, "A:I"))
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]*models.HistoryEntry, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 6 {
			continue
		}
		entries = append(entries, historyFromRow(row))
	}
	return entries, nil
}

func historyFromRow(row []string) *models.HistoryEntry {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	stars, _ := strconv.Atoi(strings.TrimSpace(cell(1)))
	return &models.HistoryEntry{
		ID:           cell(0),
		Stars:        stars,
		SourceForm:   cell(2),
		SourceFormID: cell(3),
		SourceText:   cell(4),
		TargetForm:   cell(5),
		TargetFormID: cell(6),
		TargetText:   cell(7),
		Timestamp:    cell(8),
	}
}

// AppendHistory records a completed translation.
func (r *SheetsRepository) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	if err := r.ensureHeader(ctx, r.sheets.History, historyHeader); err != nil {
		return fmt.Errorf("failed to prepare history sheet: %w", err)
	}
	row := []string{
		entry.ID,
		strconv.Itoa(entry.Stars),
		entry.SourceForm,
		entry.SourceFormID,
		entry.SourceText,
		entry.TargetForm,
		entry.TargetFormID,
		entry.TargetText,
		entry.Timestamp,
	}
	if err := r.api.Append(ctx, r.rng(r.sheets.History, "A:I"), [][]string{row}); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// AdjustStars adds delta to an entry's star count, floored at zero, and
// returns the new count.
func (r *SheetsRepository) AdjustStars(ctx context.Context, id string, delta int) (int, error) {
	rows, err := r.api.Get(ctx, r.rng(r.sheets.History, "A:B"))
	if err != nil {
		return 0, fmt.Errorf("failed to read history: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < 1 || row[0] != id {
			continue
		}
		current := 0
		if len(row) > 1 {
			current, _ = strconv.Atoi(strings.TrimSpace(row[1]))
		}
		next := current + delta
		if next < 0 {
			next = 0
		}
		cell := fmt.Sprintf("B%d", i+1)
		if err := r.api.Update(ctx, r.rng(r.sheets.History, cell), [][]string{{strconv.Itoa(next)}}); err != nil {
			return 0, fmt.Errorf("failed to update stars: %w", err)
		}
		return next, nil
	}
	return 0, ErrNotFound
}

// InterestCount returns the counter for a tracked interest kind.
func (r *SheetsRepository) InterestCount(ctx context.Context, kind string) (int, error) {
	if !validKind(kind) {
		return 0, ErrUnknownKind
	}
	rows, err := r.interestRows(ctx)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if i == 0 || len(row) < 3 || row[1] != kind {
			continue
		}
		count, _ := strconv.Atoi(strings.TrimSpace(row[2]))
		return count, nil
	}
	return 0, nil
}

// IncrementInterest bumps the counter for a tracked interest kind and
// returns the new value.
func (r *SheetsRepository) IncrementInterest(ctx context.Context, kind string) (int, error) {
	if !validKind(kind) {
		return 0, ErrUnknownKind
	}
	rows, err := r.interestRows(ctx)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if i == 0 || len(row) < 2 || row[1] != kind {
			continue
		}
		count := 0
		if len(row) > 2 {
			count, _ = strconv.Atoi(strings.TrimSpace(row[2]))
		}
		count++
		cell := fmt.Sprintf("C%d", i+1)
		if err := r.api.Update(ctx, r.rng(r.sheets.Interest, cell), [][]string{{strconv.Itoa(count)}}); err != nil {
			return 0, fmt.Errorf("failed to update interest counter: %w", err)
		}
		return count, nil
	}
	return 0, fmt.Errorf("interest kind %q missing after initialization", kind)
}

// interestRows reads the interest sheet, creating the header and one
// zeroed row per tracked kind when absent.
func (r *SheetsRepository) interestRows(ctx context.Context) ([][]string, error) {
	if err := r.ensureHeader(ctx, r.sheets.Interest, interestHeader); err != nil {
		return nil, fmt.Errorf("failed to prepare interest sheet: %w", err)
	}
	rows, err := r.api.Get(ctx, r.rng(r.sheets.Interest, "A:C"))
	if err != nil {
		return nil, fmt.Errorf("failed to read interest sheet: %w", err)
	}

	present := make(map[string]bool)
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		present[row[1]] = true
	}

	var missing [][]string
	nextID := len(rows)
	for _, kind := range interestKinds {
		if present[kind] {
			continue
		}
		missing = append(missing, []string{strconv.Itoa(nextID), kind, "0"})
		nextID++
	}
	if len(missing) > 0 {
		if err := r.api.Append(ctx, r.rng(r.sheets.Interest, "A:C"), missing); err != nil {
			return nil, fmt.Errorf("failed to initialize interest counters: %w", err)
		}
		rows = append(rows, missing...)
	}
	return rows, nil
}

func validKind(kind string) bool {
	for _, k := range interestKinds {
		if k == kind {
			return true
		}
	}
	return false
}

var _ Repository = (*SheetsRepository)(nil)

// Timestamp formats a history timestamp the way the sheet stores them.
func Timestamp(t time.Time) string {
	return t.Format("01/02/2006 15:04:05")
}
