// Package service implements the translation workflows on top of the
// repository, catalog cache and completion backend.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formshift/formshift/internal/analytics"
	"github.com/formshift/formshift/internal/cache"
	"github.com/formshift/formshift/internal/completion"
	"github.com/formshift/formshift/internal/logging"
	"github.com/formshift/formshift/internal/metrics"
	"github.com/formshift/formshift/internal/models"
	"github.com/formshift/formshift/internal/repository"
)

// promptTemplateID selects the active template row in the prompt sheet.
const promptTemplateID = "1"

// defaultPromptTemplate is used when the prompt sheet is unreachable or
// has no active template.
const defaultPromptTemplate = `Translate the following text from "{{sourceForm}}" ({{sourceDescription}}) to "{{targetForm}}" ({{targetDescription}}). Preserve the original meaning and intent. Respond only with the translated text.

Text to translate: {{inputText}}`

// translationIDLength is the length of the short IDs given to history rows.
const translationIDLength = 8

// identicalFormsMessage explains a short-circuited translation.
const identicalFormsMessage = "Source and target forms are identical, no translation needed"

// UnknownFormError reports a form name missing from the catalog.
type UnknownFormError struct {
	Field string
	Name  string
	Valid []string
}

func (e *UnknownFormError) Error() string {
	return fmt.Sprintf("unknown %s %q, valid forms: %s", e.Field, e.Name, strings.Join(e.Valid, ", "))
}

// Service coordinates translations, the form catalog, history and
// interest counters.
type Service struct {
	repo       repository.Repository
	catalog    *cache.Catalog
	completion completion.Service
	log        *logging.Logger
	now        func() time.Time
	newID      func() string
}

// New creates a Service.
func New(repo repository.Repository, catalog *cache.Catalog, comp completion.Service, log *logging.Logger) *Service {
	return &Service{
		repo:       repo,
		catalog:    catalog,
		completion: comp,
		log:        log,
		now:        time.Now,
		newID: func() string {
			return uuid.NewString()[:translationIDLength]
		},
	}
}

// Forms returns the form catalog, served from cache when possible.
func (s *Service) Forms(ctx context.Context) ([]models.Form, error) {
	return s.catalog.Forms(ctx, s.repo.ListForms)
}

// AddForm validates and stores a new catalog entry, then invalidates the
// cached catalog.
func (s *Service) AddForm(ctx context.Context, req *models.AddFormRequest) (*models.Form, error) {
	name := strings.TrimSpace(req.Name)
	desc := strings.TrimSpace(req.Description)
	if name == "" || desc == "" {
		return nil, fmt.Errorf("form name and description are required")
	}

	forms, err := s.Forms(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range forms {
		if strings.EqualFold(f.Name, name) {
			return nil, fmt.Errorf("form %q already exists", name)
		}
	}

	form := &models.Form{Name: name, Description: desc, Category: strings.TrimSpace(req.Category)}
	if err := s.repo.AddForm(ctx, form); err != nil {
		return nil, err
	}
	s.catalog.InvalidateForms(ctx)
	return form, nil
}

// UpdateForm overwrites the catalog entry at the given position.
func (s *Service) UpdateForm(ctx context.Context, row int, req *models.AddFormRequest) error {
	form := &models.Form{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
	}
	if form.Name == "" || form.Description == "" {
		return fmt.Errorf("form name and description are required")
	}
	if err := s.repo.UpdateForm(ctx, row, form); err != nil {
		return err
	}
	s.catalog.InvalidateForms(ctx)
	return nil
}

// DeleteForm removes the catalog entry at the given position.
func (s *Service) DeleteForm(ctx context.Context, row int) error {
	if err := s.repo.DeleteForm(ctx, row); err != nil {
		return err
	}
	s.catalog.InvalidateForms(ctx)
	return nil
}

// Translate transforms text from one form to another. Identical source
// and target forms short-circuit without calling the completion backend.
// Recording the result in history is best effort and never fails the
// translation.
func (s *Service) Translate(ctx context.Context, req *models.TranslateRequest) (*models.TranslateResponse, error) {
	forms, err := s.Forms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load form catalog: %w", err)
	}

	source, err := findForm(forms, "source form", req.SourceForm)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	target, err := findForm(forms, "target form", req.TargetForm)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	now := s.now()
	resp := &models.TranslateResponse{
		SourceForm:   source.Name,
		TargetForm:   target.Name,
		OriginalText: req.InputText,
		Timestamp:    repository.Timestamp(now),
	}

	if strings.EqualFold(source.Name, target.Name) {
		resp.TranslatedText = req.InputText
		resp.Message = identicalFormsMessage
		metrics.TranslationsTotal.WithLabelValues("identical").Inc()
		return resp, nil
	}

	prompt := s.composePrompt(ctx, source, target, req.InputText)
	translated, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	resp.ID = s.newID()
	resp.TranslatedText = translated

	entry := &models.HistoryEntry{
		ID:         resp.ID,
		SourceForm: source.Name,
		SourceText: req.InputText,
		TargetForm: target.Name,
		TargetText: translated,
		Timestamp:  resp.Timestamp,
	}
	if err := s.repo.AppendHistory(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "failed to record translation history",
			"translation_id", resp.ID, "error", err)
	}

	metrics.TranslationsTotal.WithLabelValues("ok").Inc()
	return resp, nil
}

// composePrompt renders the active prompt template, falling back to the
// built-in one when the sheet has none.
func (s *Service) composePrompt(ctx context.Context, source, target *models.Form, input string) string {
	text := defaultPromptTemplate
	tmpl, err := s.catalog.Prompt(ctx, promptTemplateID, func(ctx context.Context) (*models.PromptTemplate, error) {
		return s.repo.PromptTemplate(ctx, promptTemplateID)
	})
	if err != nil {
		s.log.WarnContext(ctx, "falling back to built-in prompt template", "error", err)
	} else if strings.TrimSpace(tmpl.Text) != "" {
		text = tmpl.Text
	}

	return strings.NewReplacer(
		"{{sourceForm}}", source.Name,
		"{{sourceDescription}}", source.Description,
		"{{targetForm}}", target.Name,
		"{{targetDescription}}", target.Description,
		"{{inputText}}", input,
	).Replace(text)
}

func findForm(forms []models.Form, field, name string) (*models.Form, error) {
	trimmed := strings.TrimSpace(name)
	for i := range forms {
		if strings.EqualFold(forms[i].Name, trimmed) {
			return &forms[i], nil
		}
	}
	valid := make([]string, len(forms))
	for i, f := range forms {
		valid[i] = f.Name
	}
	return nil, &UnknownFormError{Field: field, Name: name, Valid: valid}
}

// History returns all recorded translations, most starred first.
func (s *Service) History(ctx context.Context) ([]*models.HistoryEntry, error) {
	return s.repo.ListHistory(ctx)
}

// Star increments a history entry's star count.
func (s *Service) Star(ctx context.Context, id string) (int, error) {
	stars, err := s.repo.AdjustStars(ctx, id, 1)
	if err != nil {
		return 0, err
	}
	metrics.StarUpdatesTotal.WithLabelValues("up").Inc()
	return stars, nil
}

// Unstar decrements a history entry's star count, floored at zero.
func (s *Service) Unstar(ctx context.Context, id string) (int, error) {
	stars, err := s.repo.AdjustStars(ctx, id, -1)
	if err != nil {
		return 0, err
	}
	metrics.StarUpdatesTotal.WithLabelValues("down").Inc()
	return stars, nil
}

// InterestCount returns the counter for an interest kind.
func (s *Service) InterestCount(ctx context.Context, kind string) (int, error) {
	return s.repo.InterestCount(ctx, kind)
}

// RegisterInterest bumps the counter for an interest kind.
func (s *Service) RegisterInterest(ctx context.Context, kind string) (int, error) {
	count, err := s.repo.IncrementInterest(ctx, kind)
	if err != nil {
		return 0, err
	}
	metrics.InterestHitsTotal.WithLabelValues(kind).Inc()
	return count, nil
}

// SessionReport reconstructs usage sessions from history timestamps using
// the given inactivity gap.
func (s *Service) SessionReport(ctx context.Context, gap time.Duration) (*analytics.Report, error) {
	entries, err := s.repo.HistoryRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	records := make([]analytics.Record, len(entries))
	for i, e := range entries {
		records[i] = analytics.Record{Timestamp: e.Timestamp, ID: e.ID}
	}
	return analytics.Analyze(records, gap), nil
}
