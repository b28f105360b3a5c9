package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formshift/formshift/internal/models"
)

// fakeSheets is an in-memory spreadsheet keyed by tab name. It understands
// the handful of range shapes the repository issues.
type fakeSheets struct {
	data        map[string][][]string
	deleteCalls [][3]interface{}
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{data: make(map[string][][]string)}
}

func splitRange(rng string) (string, string) {
	parts := strings.SplitN(rng, "!", 2)
	return parts[0], parts[1]
}

// cellRef parses a reference like "B3" into a 0-based column and a
// 1-based row. A bare column like "A" yields row 0.
func cellRef(ref string) (int, int) {
	col := int(ref[0] - 'A')
	if len(ref) == 1 {
		return col, 0
	}
	row := 0
	for _, c := range ref[1:] {
		row = row*10 + int(c-'0')
	}
	return col, row
}

func (f *fakeSheets) Get(_ context.Context, rng string) ([][]string, error) {
	sheet, cells := splitRange(rng)
	grid := f.data[sheet]

	start := cells
	if i := strings.Index(cells, ":"); i >= 0 {
		start = cells[:i]
	}
	_, row := cellRef(start)
	if row == 0 {
		out := make([][]string, len(grid))
		copy(out, grid)
		return out, nil
	}
	if row > len(grid) {
		return nil, nil
	}
	return [][]string{grid[row-1]}, nil
}

func (f *fakeSheets) Append(_ context.Context, rng string, rows [][]string) error {
	sheet, _ := splitRange(rng)
	f.data[sheet] = append(f.data[sheet], rows...)
	return nil
}

func (f *fakeSheets) Update(_ context.Context, rng string, rows [][]string) error {
	sheet, cells := splitRange(rng)
	start := cells
	if i := strings.Index(cells, ":"); i >= 0 {
		start = cells[:i]
	}
	col, row := cellRef(start)

	grid := f.data[sheet]
	for len(grid) < row {
		grid = append(grid, nil)
	}
	target := grid[row-1]
	for ci, v := range rows[0] {
		for len(target) <= col+ci {
			target = append(target, "")
		}
		target[col+ci] = v
	}
	grid[row-1] = target
	f.data[sheet] = grid
	return nil
}

func (f *fakeSheets) DeleteRows(_ context.Context, sheetName string, start, end int) error {
	f.deleteCalls = append(f.deleteCalls, [3]interface{}{sheetName, start, end})
	grid := f.data[sheetName]
	f.data[sheetName] = append(grid[:start], grid[end:]...)
	return nil
}

func newTestRepo() (*SheetsRepository, *fakeSheets) {
	fake := newFakeSheets()
	return NewSheetsRepository(fake, DefaultSheetNames()), fake
}

func TestListForms(t *testing.T) {
	repo, fake := newTestRepo()
	fake.data["Sheet1"] = [][]string{
		{"name", "description", "category"},
		{"Shakespearean", "Early modern English verse", "literary"},
		{"Pirate", "Nautical slang"},
		{"", ""},
	}

	forms, err := repo.ListForms(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "Shakespearean", forms[0].Name)
	assert.Equal(t, "literary", forms[0].Category)
	assert.Empty(t, forms[1].Category)
}

func TestAddFormBootstrapsHeader(t *testing.T) {
	repo, fake := newTestRepo()

	err := repo.AddForm(context.Background(), &models.Form{
		Name:        "Haiku",
		Description: "Three lines, 5-7-5 syllables",
	})
	require.NoError(t, err)

	grid := fake.data["Sheet1"]
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"name", "description", "category"}, grid[0])
	assert.Equal(t, "Haiku", grid[1][0])
}

func TestUpdateForm(t *testing.T) {
	repo, fake := newTestRepo()
	fake.data["Sheet1"] = [][]string{
		{"name", "description", "category"},
		{"Pirate", "Nautical slang", ""},
	}

	err := repo.UpdateForm(context.Background(), 1, &models.Form{
		Name:        "Pirate",
		Description: "Nautical slang and bravado",
		Category:    "fun",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pirate", "Nautical slang and bravado", "fun"}, fake.data["Sheet1"][1])

	err = repo.UpdateForm(context.Background(), 5, &models.Form{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteForm(t *testing.T) {
	repo, fake := newTestRepo()
	fake.data["Sheet1"] = [][]string{
		{"name", "description", "category"},
		{"Pirate", "Nautical slang", ""},
		{"Haiku", "5-7-5", ""},
	}

	require.NoError(t, repo.DeleteForm(context.Background(), 1))
	require.Len(t, fake.deleteCalls, 1)
	assert.Equal(t, [3]interface{}{"Sheet1", 1, 2}, fake.deleteCalls[0])

	err := repo.DeleteForm(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromptTemplate(t *testing.T) {
	repo, fake := newTestRepo()
	fake.data["prompt"] = [][]string{
		{"id", "prompt", "data", "version"},
		{"1", "Translate {{inputText}} into {{targetForm}}", "", "v2"},
	}

	tmpl, err := repo.PromptTemplate(context.Background(), "1")
	require.NoError(t, err)
	assert.Contains(t, tmpl.Text, "{{targetForm}}")
	assert.Equal(t, "v2", tmpl.Version)

	_, err = repo.PromptTemplate(context.Background(), "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListHistoryOrdering(t *testing.T) {
	repo, fake := newTestRepo()
	fake.data["history"] = [][]string{
		{"id", "stars_count", "source_form", "source_form_id", "source_text", "target_form", "target_form_id", "target_text", "datetime"},
		{"old", "0", "a", "", "hi", "b", "", "ahoy", "6/1/2024 09:00:00"},
		{"starred", "2", "a", "", "hi", "b", "", "ahoy", "6/1/2024 08:00:00"},
		{"new", "0", "a", "", "hi", "b", "", "ahoy", "6/2/2024 10:00:00"},
		{"bad-ts", "0", "a", "", "hi", "b", "", "ahoy", "whenever"},
		{"short"},
	}

	entries, err := repo.ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	ids := []string{entries[0].ID, entries[1].ID, entries[2].ID, entries[3].ID}
	assert.Equal(t, []string{"starred", "new", "old", "bad-ts"}, ids)
	assert.Equal(t, 2, entries[0].Stars)
}

func TestAppendHistory(t *testing.T) {
	repo, fake := newTestRepo()

	err := repo.AppendHistory(context.Background(), &models.HistoryEntry{
		ID:         "abc12345",
		SourceForm: "Plain",
		SourceText: "hello",
		TargetForm: "Pirate",
		TargetText: "ahoy",
		Timestamp:  "06/15/2024 10:00:00",
	})
	require.NoError(t, err)

	grid := fake.data["history"]
	require.Len(t, grid, 2)
	require.Len(t, grid[1], 9)
	assert.Equal(t, "abc12345", grid[1][0])
	assert.Equal(t, "0", grid[1][1])
	assert.Equal(t, "06/15/2024 10:00:00", grid[1][8])
}

func TestAdjustStars(t *testing.T) {
	repo, fake := newTestRepo()
	fake.data["history"] = [][]string{
		{"id", "stars_count"},
		{"abc12345", "1"},
	}

	stars, err := repo.AdjustStars(context.Background(), "abc12345", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stars)
	assert.Equal(t, "2", fake.data["history"][1][1])

	// Decrements floor at zero.
	for i := 0; i < 3; i++ {
		stars, err = repo.AdjustStars(context.Background(), "abc12345", -1)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, stars)

	_, err = repo.AdjustStars(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInterestInitializesCounters(t *testing.T) {
	repo, fake := newTestRepo()

	count, err := repo.InterestCount(context.Background(), models.InterestImages)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	grid := fake.data["interest_registered"]
	require.Len(t, grid, 3)
	assert.Equal(t, []string{"id", "what", "counter"}, grid[0])
	assert.Equal(t, "images", grid[1][1])
	assert.Equal(t, "websites", grid[2][1])
}

func TestIncrementInterest(t *testing.T) {
	repo, _ := newTestRepo()

	count, err := repo.IncrementInterest(context.Background(), models.InterestWebsites)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.IncrementInterest(context.Background(), models.InterestWebsites)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInterestUnknownKind(t *testing.T) {
	repo, _ := newTestRepo()

	_, err := repo.InterestCount(context.Background(), "podcasts")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = repo.IncrementInterest(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
