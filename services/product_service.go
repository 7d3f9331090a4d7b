package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/models"
	"storefront-backend/repository"
)

const (
	productCacheTTL        = 5 * time.Minute
	productCacheVersionKey = "products:cache_version"
)

// ProductList is a page of catalog entries.
type ProductList struct {
	Products   []models.Product  `json:"products"`
	Pagination models.Pagination `json:"pagination"`
}

// ProductService handles the catalog. Listings and single-product reads go
// through a read-through Redis cache; every write bumps a cache version so
// stale pages expire immediately without enumerating keys. The cache is an
// optimization only; Redis failures fall through to the store.
type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	GetProduct(ctx context.Context, id string) (*models.Product, *ServiceError)
	ListProducts(ctx context.Context, filters *models.ProductFilters) (*ProductList, *ServiceError)
	UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	UpdateStock(ctx context.Context, id string, stock int) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id string) *ServiceError
}

type productService struct {
	repo   repository.ProductRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewProductService creates a ProductService. cache may be nil to run
// without Redis.
func NewProductService(repo repository.ProductRepository, cache *redis.Client, logger *zap.Logger) ProductService {
	return &productService{repo: repo, cache: cache, logger: logger}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	if existing, err := s.repo.FindBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, NewConflictError("a product with this SKU already exists")
	} else if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return nil, NewInternalError("failed to check existing SKU", err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	product := &models.Product{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		SKU:            req.SKU,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Stock:          req.Stock,
		Images:         req.Images,
		Features:       req.Features,
		IsActive:       isActive,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, NewInternalError("failed to create product", err)
	}

	s.bumpCacheVersion(ctx)
	s.logger.Info("Product created", zap.String("sku", product.SKU), zap.String("title", product.Title))
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*models.Product, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, NewNotFoundError("product not found")
	}

	key := s.cacheKey(ctx, "id:"+id)
	if product := cacheGet[models.Product](ctx, s, key); product != nil {
		return product, nil
	}

	product, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, NewNotFoundError("product not found")
		}
		return nil, NewInternalError("failed to load product", err)
	}

	s.cacheSet(ctx, key, product)
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filters *models.ProductFilters) (*ProductList, *ServiceError) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}

	active := "any"
	if filters.IsActive != nil {
		active = fmt.Sprintf("%t", *filters.IsActive)
	}
	key := s.cacheKey(ctx, fmt.Sprintf("list:%s:%s:%s:%d:%d:%s:%s",
		filters.Category, filters.Search, active,
		filters.Page, filters.Limit, filters.SortBy, filters.SortOrder))
	if list := cacheGet[ProductList](ctx, s, key); list != nil {
		return list, nil
	}

	products, total, err := s.repo.Find(ctx, filters)
	if err != nil {
		return nil, NewInternalError("failed to list products", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	pages := total / int64(filters.Limit)
	if total%int64(filters.Limit) != 0 {
		pages++
	}
	list := &ProductList{
		Products: products,
		Pagination: models.Pagination{
			Page:  filters.Page,
			Limit: filters.Limit,
			Total: total,
			Pages: pages,
		},
	}

	s.cacheSet(ctx, key, list)
	return list, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, NewNotFoundError("product not found")
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.SKU != nil {
		set["sku"] = *req.SKU
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.CompareAtPrice != nil {
		set["compare_at_price"] = *req.CompareAtPrice
	}
	if req.Stock != nil {
		set["stock"] = *req.Stock
	}
	if req.Images != nil {
		set["images"] = req.Images
	}
	if req.Features != nil {
		set["features"] = req.Features
	}
	if req.IsActive != nil {
		set["is_active"] = *req.IsActive
	}
	if len(set) == 0 {
		return nil, NewValidationError("no fields to update")
	}

	product, err := s.repo.Update(ctx, oid, set)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, NewNotFoundError("product not found")
		}
		return nil, NewInternalError("failed to update product", err)
	}

	s.bumpCacheVersion(ctx)
	return product, nil
}

func (s *productService) UpdateStock(ctx context.Context, id string, stock int) (*models.Product, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, NewNotFoundError("product not found")
	}
	if stock < 0 {
		return nil, NewValidationError("stock must not be negative")
	}

	product, err := s.repo.Update(ctx, oid, bson.M{"stock": stock})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, NewNotFoundError("product not found")
		}
		return nil, NewInternalError("failed to update stock", err)
	}

	s.bumpCacheVersion(ctx)
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) *ServiceError {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return NewNotFoundError("product not found")
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return NewNotFoundError("product not found")
		}
		return NewInternalError("failed to delete product", err)
	}
	s.bumpCacheVersion(ctx)
	return nil
}

// ---- cache plumbing ----

// cacheKey prefixes keys with the current cache version so a version bump
// orphans every older entry at once; orphans age out via TTL.
func (s *productService) cacheKey(ctx context.Context, suffix string) string {
	version := "0"
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, productCacheVersionKey).Result(); err == nil {
			version = v
		}
	}
	return fmt.Sprintf("products:v%s:%s", version, suffix)
}

func (s *productService) bumpCacheVersion(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, productCacheVersionKey).Err(); err != nil {
		s.logger.Warn("Failed to bump product cache version", zap.Error(err))
	}
}

func cacheGet[T any](ctx context.Context, s *productService, key string) *T {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Product cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("Product cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &out
}

func (s *productService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, productCacheTTL).Err(); err != nil {
		s.logger.Warn("Product cache write failed", zap.String("key", key), zap.Error(err))
	}
}
