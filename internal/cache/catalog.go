// Package cache provides a read-through Redis cache for the slow-moving
// catalog data: the form list and prompt templates.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/formshift/formshift/internal/logging"
	"github.com/formshift/formshift/internal/metrics"
	"github.com/formshift/formshift/internal/models"
)

const (
	formsKey        = "formshift:forms"
	promptKeyPrefix = "formshift:prompt:"
)

// DefaultTTL bounds how stale cached catalog data may get.
const DefaultTTL = 5 * time.Minute

// Catalog caches form and prompt lookups. With a nil Redis client it
// degrades to calling the loader directly, so callers never branch on
// whether caching is enabled.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
	log    *logging.Logger
}

// NewCatalog creates a catalog cache. client may be nil to disable caching.
func NewCatalog(client *redis.Client, ttl time.Duration, log *logging.Logger) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{client: client, ttl: ttl, log: log}
}

// Forms returns the cached form list, falling back to load on a miss.
// Cache failures are logged and treated as misses.
func (c *Catalog) Forms(ctx context.Context, load func(context.Context) ([]models.Form, error)) ([]models.Form, error) {
	if c.client == nil {
		return load(ctx)
	}

	if data, err := c.client.Get(ctx, formsKey).Bytes(); err == nil {
		var forms []models.Form
		if err := json.Unmarshal(data, &forms); err == nil {
			metrics.CacheHits.Inc()
			return forms, nil
		}
	} else if err != redis.Nil {
		c.log.WarnContext(ctx, "forms cache read failed", "error", err)
	}
	metrics.CacheMisses.Inc()

	forms, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, formsKey, forms)
	return forms, nil
}

// Prompt returns the cached template with the given ID, falling back to
// load on a miss.
func (c *Catalog) Prompt(ctx context.Context, id string, load func(context.Context) (*models.PromptTemplate, error)) (*models.PromptTemplate, error) {
	if c.client == nil {
		return load(ctx)
	}

	key := promptKeyPrefix + id
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var tmpl models.PromptTemplate
		if err := json.Unmarshal(data, &tmpl); err == nil {
			metrics.CacheHits.Inc()
			return &tmpl, nil
		}
	} else if err != redis.Nil {
		c.log.WarnContext(ctx, "prompt cache read failed", "error", err)
	}
	metrics.CacheMisses.Inc()

	tmpl, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, tmpl)
	return tmpl, nil
}

// InvalidateForms drops the cached form list after a catalog write.
func (c *Catalog) InvalidateForms(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, formsKey).Err(); err != nil {
		c.log.WarnContext(ctx, "forms cache invalidation failed", "error", err)
	}
}

func (c *Catalog) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
