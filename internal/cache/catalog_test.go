package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formshift/formshift/internal/logging"
	"github.com/formshift/formshift/internal/models"
)

func newTestCatalog(t *testing.T) (*Catalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCatalog(client, time.Minute, logging.Default()), mr
}

func TestFormsCachesLoaderResult(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	var loads int
	load := func(context.Context) ([]models.Form, error) {
		loads++
		return []models.Form{{Name: "Pirate", Description: "Nautical slang"}}, nil
	}

	for i := 0; i < 3; i++ {
		forms, err := catalog.Forms(context.Background(), load)
		require.NoError(t, err)
		require.Len(t, forms, 1)
		assert.Equal(t, "Pirate", forms[0].Name)
	}
	assert.Equal(t, 1, loads)
}

func TestFormsExpiry(t *testing.T) {
	catalog, mr := newTestCatalog(t)

	var loads int
	load := func(context.Context) ([]models.Form, error) {
		loads++
		return nil, nil
	}

	_, err := catalog.Forms(context.Background(), load)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = catalog.Forms(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestFormsLoaderErrorNotCached(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	wantErr := errors.New("sheet unavailable")
	_, err := catalog.Forms(context.Background(), func(context.Context) ([]models.Form, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	forms, err := catalog.Forms(context.Background(), func(context.Context) ([]models.Form, error) {
		return []models.Form{{Name: "Plain"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, forms, 1)
}

func TestInvalidateForms(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	var loads int
	load := func(context.Context) ([]models.Form, error) {
		loads++
		return []models.Form{{Name: "Plain"}}, nil
	}

	_, _ = catalog.Forms(context.Background(), load)
	catalog.InvalidateForms(context.Background())
	_, _ = catalog.Forms(context.Background(), load)
	assert.Equal(t, 2, loads)
}

func TestPromptCachesPerID(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	var loads int
	load := func(context.Context) (*models.PromptTemplate, error) {
		loads++
		return &models.PromptTemplate{ID: "1", Text: "Translate {{inputText}}"}, nil
	}

	tmpl, err := catalog.Prompt(context.Background(), "1", load)
	require.NoError(t, err)
	assert.Equal(t, "1", tmpl.ID)

	tmpl, err = catalog.Prompt(context.Background(), "1", load)
	require.NoError(t, err)
	assert.Contains(t, tmpl.Text, "{{inputText}}")
	assert.Equal(t, 1, loads)
}

func TestDisabledCatalogPassesThrough(t *testing.T) {
	catalog := NewCatalog(nil, time.Minute, logging.Default())

	var loads int
	load := func(context.Context) ([]models.Form, error) {
		loads++
		return nil, nil
	}

	_, _ = catalog.Forms(context.Background(), load)
	_, _ = catalog.Forms(context.Background(), load)
	assert.Equal(t, 2, loads)

	catalog.InvalidateForms(context.Background())
}
