package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
)

// PartsCache stores grouped parts per product. Implementations must treat
// a miss as (false, nil).
type PartsCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

const partsCachePrefix = "parts:"

func partsCacheKey(productID uint) string {
	return fmt.Sprintf("%s%d", partsCachePrefix, productID)
}

type CatalogService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListParts(ctx context.Context, productID uint) ([]model.Part, error)
	ListSchemes(ctx context.Context) ([]model.Scheme, error)
	InvalidateParts(ctx context.Context) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	partRepo    repository.PartRepository
	schemeRepo  repository.SchemeRepository
	cache       PartsCache
	cacheTTL    time.Duration
}

// NewCatalogService builds the read side of the catalog. cache may be nil.
func NewCatalogService(
	productRepo repository.ProductRepository,
	partRepo repository.PartRepository,
	schemeRepo repository.SchemeRepository,
	cache PartsCache,
	cacheTTL time.Duration,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		partRepo:    partRepo,
		schemeRepo:  schemeRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// ListParts returns the grouped parts of a product. An unknown product
// yields an empty list. Cache failures fall back to the database.
func (s *catalogService) ListParts(ctx context.Context, productID uint) ([]model.Part, error) {
	key := partsCacheKey(productID)

	if s.cache != nil {
		var cached []model.Part
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.Warn("Parts cache read failed, using database", map[string]interface{}{
				"product_id": productID,
				"error":      err.Error(),
			})
		} else if hit {
			logger.Debug("Parts served from cache", map[string]interface{}{
				"product_id": productID,
			})
			return withSetMaps(cached), nil
		}
	}

	rows, err := s.partRepo.FindRowsByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}

	parts, anomalies := GroupParts(rows)
	if len(anomalies) > 0 {
		logger.Warn("Inconsistent part rows grouped", map[string]interface{}{
			"product_id": productID,
			"part_ids":   anomalies,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, parts, s.cacheTTL); err != nil {
			logger.Warn("Parts cache write failed", map[string]interface{}{
				"product_id": productID,
				"error":      err.Error(),
			})
		}
	}

	logger.Debug("Parts grouped", map[string]interface{}{
		"product_id": productID,
		"rows":       len(rows),
		"parts":      len(parts),
	})
	return parts, nil
}

// withSetMaps restores the non-nil set map a JSON round trip may drop.
func withSetMaps(parts []model.Part) []model.Part {
	for i := range parts {
		if parts[i].AlternativeSets == nil {
			parts[i].AlternativeSets = map[string]model.AlternativeSet{}
		}
	}
	return parts
}

func (s *catalogService) ListSchemes(ctx context.Context) ([]model.Scheme, error) {
	return s.schemeRepo.FindAll(ctx)
}

func (s *catalogService) InvalidateParts(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	n, err := s.cache.DeletePrefix(ctx, partsCachePrefix)
	if err != nil {
		logger.Error("Failed to invalidate parts cache", err)
		return err
	}
	logger.Info("Parts cache invalidated", map[string]interface{}{
		"entries": n,
	})
	return nil
}
