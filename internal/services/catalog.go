package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"plantation-manager/backend/internal/cache"
	"plantation-manager/backend/internal/catalog"
	"plantation-manager/backend/internal/models"
	"plantation-manager/backend/internal/monitoring"
)

const (
	templatesAllKey     = "templates:all"
	templatesKeyPattern = "templates:*"
)

func templatesVarietyKey(key string) string {
	return fmt.Sprintf("templates:variety:%s", key)
}

// CachedTemplateCatalog reads templates through Redis. Cache errors never
// fail a lookup; the underlying catalog is the source of truth.
type CachedTemplateCatalog struct {
	inner TemplateCatalog
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewCachedTemplateCatalog wraps inner. A nil cache disables caching.
func NewCachedTemplateCatalog(inner TemplateCatalog, c *cache.RedisCache, ttl time.Duration) *CachedTemplateCatalog {
	return &CachedTemplateCatalog{inner: inner, cache: c, ttl: ttl}
}

func (c *CachedTemplateCatalog) GetByVarietyKey(ctx context.Context, key string) ([]models.AgronomyTemplate, error) {
	return c.cached(ctx, templatesVarietyKey(key), func() ([]models.AgronomyTemplate, error) {
		return c.inner.GetByVarietyKey(ctx, key)
	})
}

func (c *CachedTemplateCatalog) GetAll(ctx context.Context) ([]models.AgronomyTemplate, error) {
	return c.cached(ctx, templatesAllKey, func() ([]models.AgronomyTemplate, error) {
		return c.inner.GetAll(ctx)
	})
}

func (c *CachedTemplateCatalog) cached(ctx context.Context, key string, load func() ([]models.AgronomyTemplate, error)) ([]models.AgronomyTemplate, error) {
	if c.cache == nil {
		return load()
	}

	var templates []models.AgronomyTemplate
	err := c.cache.Get(ctx, key, &templates)
	if err == nil {
		return templates, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Str("key", key).Msg("template cache read failed, using database")
	}

	templates, err = load()
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, templates, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("template cache write failed")
	}
	return templates, nil
}

// Invalidate drops every cached template list.
func (c *CachedTemplateCatalog) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.DeletePattern(ctx, templatesKeyPattern)
}

type ReferenceWriter interface {
	Upsert(ctx context.Context, districts []models.District, soils []models.SoilType, varieties []models.Variety) error
}

type TemplateWriter interface {
	Replace(ctx context.Context, templates []models.AgronomyTemplate) error
}

// CatalogService loads catalog documents into the reference tables.
type CatalogService struct {
	refs      ReferenceWriter
	templates TemplateWriter
	cached    *CachedTemplateCatalog
}

func NewCatalogService(refs ReferenceWriter, templates TemplateWriter, cached *CachedTemplateCatalog) *CatalogService {
	return &CatalogService{refs: refs, templates: templates, cached: cached}
}

type ImportSummary struct {
	Districts int `json:"districts"`
	SoilTypes int `json:"soil_types"`
	Varieties int `json:"varieties"`
	Templates int `json:"templates"`
}

// Import upserts the reference rows, replaces the template set and clears
// cached template lists.
func (s *CatalogService) Import(ctx context.Context, doc *catalog.Document) (ImportSummary, error) {
	if err := doc.Validate(); err != nil {
		return ImportSummary{}, newError(ErrValidation, "%s", err.Error())
	}

	if err := s.refs.Upsert(ctx, doc.DistrictModels(), doc.SoilTypeModels(), doc.VarietyModels()); err != nil {
		return ImportSummary{}, fmt.Errorf("upsert reference data: %w", err)
	}

	templates := doc.TemplateModels()
	if err := s.templates.Replace(ctx, templates); err != nil {
		return ImportSummary{}, fmt.Errorf("replace templates: %w", err)
	}

	if s.cached != nil {
		if err := s.cached.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("could not invalidate template cache")
		}
	}
	monitoring.RecordCatalogImport()

	summary := ImportSummary{
		Districts: len(doc.Districts),
		SoilTypes: len(doc.SoilTypes),
		Varieties: len(doc.Varieties),
		Templates: len(templates),
	}
	log.Info().Interface("summary", summary).Msg("catalog imported")
	return summary, nil
}
