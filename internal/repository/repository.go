// Package repository defines storage access for forms, prompt templates,
// translation history and interest counters.
package repository

import (
	"context"
	"errors"

	"github.com/formshift/formshift/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownKind is returned for an interest kind that is not tracked.
	ErrUnknownKind = errors.New("unknown interest kind")
)

// Repository is the storage interface used by the service layer.
type Repository interface {
	ListForms(ctx context.Context) ([]models.Form, error)
	AddForm(ctx context.Context, form *models.Form) error
	UpdateForm(ctx context.Context, row int, form *models.Form) error
	DeleteForm(ctx context.Context, row int) error

	PromptTemplate(ctx context.Context, id string) (*models.PromptTemplate, error)

	ListHistory(ctx context.Context) ([]*models.HistoryEntry, error)
	HistoryRows(ctx context.Context) ([]*models.HistoryEntry, error)
	AppendHistory(ctx context.Context, entry *models.HistoryEntry) error
	AdjustStars(ctx context.Context, id string, delta int) (int, error)

	InterestCount(ctx context.Context, kind string) (int, error)
	IncrementInterest(ctx context.Context, kind string) (int, error)
}
