package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/at-my-table/backend/internal/model"
)

// ErrMissingURL is returned before any I/O when no URL was supplied
var ErrMissingURL = errors.New("recipe url is required")

// PersistenceError reports a store read/write failure, kept distinct so
// callers can tell "could not fetch/parse" from "could not save".
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("recipe save error: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ImportError wraps any failure of the import pipeline, preserving the
// original cause in the message.
type ImportError struct {
	URL string
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("failed to import recipe: %v", e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// PageRenderer renders a URL in a browser and returns a DOM snapshot
type PageRenderer interface {
	Render(ctx context.Context, url string) (*LoadedPage, error)
}

// ImageMirror copies a remote image to durable storage and returns its new
// URL.
type ImageMirror interface {
	MirrorImage(ctx context.Context, imageURL string) (string, error)
}

// ErrCacheMiss reports an absent cache key
var ErrCacheMiss = errors.New("cache miss")

// RecipeCache is the hot-cache surface the importer needs, backed by
// redis in production.
type RecipeCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisRecipeCache adapts a redis client to RecipeCache
type RedisRecipeCache struct {
	client *redis.Client
}

func NewRedisRecipeCache(client *redis.Client) *RedisRecipeCache {
	return &RedisRecipeCache{client: client}
}

func (c *RedisRecipeCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (c *RedisRecipeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisRecipeCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

const importCacheTTL = 24 * time.Hour

// ImportService coordinates the import pipeline: cache lookup, render,
// extract, persist. Each import owns its render session exclusively; the
// renderer releases it on every exit path.
type ImportService struct {
	db       *gorm.DB
	renderer PageRenderer
	cache    RecipeCache
	mirror   ImageMirror
}

// NewImportService creates a new ImportService instance. cache and mirror
// are optional.
func NewImportService(db *gorm.DB, renderer PageRenderer, cache RecipeCache, mirror ImageMirror) *ImportService {
	return &ImportService{
		db:       db,
		renderer: renderer,
		cache:    cache,
		mirror:   mirror,
	}
}

func importCacheKey(userID uuid.UUID, url string) string {
	return fmt.Sprintf("recipe:import:%s:%s", userID, url)
}

// ImportRecipe imports the recipe at url for the given user, returning the
// stored row. A previously imported URL returns the existing row unchanged
// without rendering. The lookup keys on the exact URL string; no
// normalization of scheme, trailing slashes or query parameters.
func (s *ImportService) ImportRecipe(ctx context.Context, url string, userID uuid.UUID) (*model.Recipe, error) {
	if url == "" {
		return nil, ErrMissingURL
	}

	if cached := s.cacheLookup(ctx, userID, url); cached != nil {
		return cached, nil
	}

	var existing model.Recipe
	err := s.db.WithContext(ctx).First(&existing, "user_id = ? AND source_url = ?", userID, url).Error
	if err == nil {
		log.Printf("[ImportService] recipe found in store, returning cached version: %s", url)
		s.cacheStore(ctx, userID, url, &existing)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ImportError{URL: url, Err: &PersistenceError{Op: "lookup", Err: err}}
	}

	page, err := s.renderer.Render(ctx, url)
	if err != nil {
		return nil, &ImportError{URL: url, Err: err}
	}

	raw := ExtractRecipe(page)

	if s.mirror != nil && raw.Image != "" {
		if mirrored, err := s.mirror.MirrorImage(ctx, raw.Image); err != nil {
			log.Printf("[ImportService] image mirror failed, keeping source URL: %v", err)
		} else {
			raw.Image = mirrored
		}
	}

	sourceURL := url
	recipe := &model.Recipe{
		UserID:       userID,
		Title:        raw.Title,
		SourceURL:    &sourceURL,
		ImageURL:     raw.Image,
		Ingredients:  model.FlattenIngredients(raw.Ingredients),
		Instructions: model.JSONBStringArray(raw.Instructions),
		Servings:     raw.Servings,
		PrepTime:     raw.Time,
		Nutrition:    model.JSONBStringMap(raw.Nutrition),
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, &ImportError{URL: url, Err: &PersistenceError{Op: "insert", Err: err}}
	}

	s.cacheStore(ctx, userID, url, recipe)
	return recipe, nil
}

// cacheLookup returns the stored row a cache entry points at, or nil.
// Cache failures are never fatal; the persistent store is authoritative,
// so a hit is re-read from the store and an entry whose row has since
// been deleted is dropped instead of served.
func (s *ImportService) cacheLookup(ctx context.Context, userID uuid.UUID, url string) *model.Recipe {
	if s.cache == nil {
		return nil
	}
	key := importCacheKey(userID, url)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("[ImportService] cache lookup failed: %v", err)
		}
		return nil
	}
	var cached model.Recipe
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Printf("[ImportService] cache entry corrupt, ignoring: %v", err)
		return nil
	}

	var current model.Recipe
	if err := s.db.WithContext(ctx).First(&current, "id = ?", cached.ID).Error; err != nil {
		if delErr := s.cache.Del(ctx, key); delErr != nil {
			log.Printf("[ImportService] cache invalidation failed: %v", delErr)
		}
		return nil
	}
	return &current
}

func (s *ImportService) cacheStore(ctx context.Context, userID uuid.UUID, url string, recipe *model.Recipe) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(recipe)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, importCacheKey(userID, url), data, importCacheTTL); err != nil {
		log.Printf("[ImportService] cache store failed: %v", err)
	}
}
