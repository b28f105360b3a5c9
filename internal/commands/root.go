// Package commands implements the formshift CLI.
package commands

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/formshift/formshift/internal/cache"
	"github.com/formshift/formshift/internal/completion"
	"github.com/formshift/formshift/internal/config"
	"github.com/formshift/formshift/internal/googleauth"
	"github.com/formshift/formshift/internal/logging"
	"github.com/formshift/formshift/internal/repository"
	"github.com/formshift/formshift/internal/service"
	"github.com/formshift/formshift/internal/sheets"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:           "formshift",
	Short:         "Text transformation service backed by a spreadsheet record store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
}

func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(log)
	return cfg, log, nil
}

func buildRepository(cfg *config.Config) (repository.Repository, error) {
	creds, err := googleauth.LoadCredentials(cfg.Sheets.CredentialsFile)
	if err != nil {
		return nil, err
	}
	tokens := googleauth.NewTokenSource(creds, sheets.Scope)

	var opts []sheets.Option
	if cfg.Sheets.BaseURL != "" {
		opts = append(opts, sheets.WithBaseURL(cfg.Sheets.BaseURL))
	}
	client := sheets.NewClient(cfg.Sheets.SpreadsheetID, tokens, opts...)

	names := repository.SheetNames{
		Forms:    cfg.Sheets.FormsSheet,
		Prompt:   cfg.Sheets.PromptSheet,
		History:  cfg.Sheets.HistorySheet,
		Interest: cfg.Sheets.InterestSheet,
	}
	return repository.NewSheetsRepository(client, names), nil
}

func buildCatalog(cfg *config.Config, log *logging.Logger) (*cache.Catalog, error) {
	if !cfg.Redis.Enabled {
		return cache.NewCatalog(nil, cfg.Redis.TTL, log), nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return cache.NewCatalog(redis.NewClient(opts), cfg.Redis.TTL, log), nil
}

func buildCompletion(cfg *config.Config) (completion.Service, error) {
	switch cfg.Completion.Provider {
	case "mock":
		return completion.NewMock(), nil
	case "openai":
		return completion.NewOpenAIClient(completion.OpenAIConfig{
			APIKey:      cfg.Completion.APIKey,
			BaseURL:     cfg.Completion.BaseURL,
			Model:       cfg.Completion.Model,
			MaxTokens:   cfg.Completion.MaxTokens,
			Temperature: cfg.Completion.Temperature,
			Timeout:     cfg.Completion.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Completion.Provider)
	}
}

func buildService(cfg *config.Config, log *logging.Logger) (*service.Service, error) {
	repo, err := buildRepository(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := buildCatalog(cfg, log)
	if err != nil {
		return nil, err
	}
	comp, err := buildCompletion(cfg)
	if err != nil {
		return nil, err
	}
	return service.New(repo, catalog, comp, log), nil
}
