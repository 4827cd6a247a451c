package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/cache"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/search"
	"github.com/fekuna/storefront-inventory-service/internal/product"
	"github.com/fekuna/storefront-inventory-service/internal/product/dto"
)

const (
	listCachePrefix = "products:list:"
	listCacheTTL    = 5 * time.Minute
	duplicateMsg    = "error.duplicate.product"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"description": { "type": "text" },
			"price": { "type": "double" },
			"stock": { "type": "integer" },
			"attribute_ids": { "type": "keyword" },
			"category_id": { "type": "keyword" },
			"subcategory_id": { "type": "keyword" },
			"is_active": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	index  string
	logger logger.ZapLogger
}

// NewProductUseCase wires the product collaborator. cache and es may be nil.
func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, index string, log logger.ZapLogger) product.UseCase {
	if index == "" {
		index = "products"
	}
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		index:  index,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("error.validation.name_required", "name is required")
	}
	if input.Price.IsNegative() || input.Cost.IsNegative() {
		return nil, apperr.Validation("error.validation.price_negative", "price and cost cannot be negative")
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:          name,
		Description:   optional(input.Description),
		Price:         input.Price,
		Cost:          input.Cost,
		AttributeIDs:  pq.StringArray(orderedSet(input.AttributeIDs)),
		CategoryID:    optional(input.CategoryID),
		SubcategoryID: optional(input.SubcategoryID),
		CoverImage:    optional(input.CoverImage),
		HoverImage:    optional(input.HoverImage),
		ProductImages: pq.StringArray(input.ProductImages),
		IsActive:      true,
		IsFeatured:    input.IsFeatured,
		IsNew:         input.IsNew,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefSubcategory)
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefProduct)
	}
	return p, nil
}

type cachedList struct {
	Products []model.Product
	Count    int
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters == nil {
		filters = &dto.ProductFilters{}
	}

	cacheKey := ""
	if uc.cache != nil {
		if key, err := generateCacheKey(filters); err == nil {
			cacheKey = key
			var hit cachedList
			if err := uc.cache.GetJSON(ctx, cacheKey, &hit); err == nil {
				return hit.Products, hit.Count, nil
			} else if !errors.Is(err, cache.ErrCacheMiss) {
				uc.logger.Warn("product cache read failed", zap.Error(err))
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.FromStore(err, duplicateMsg, apperr.RefProduct)
	}

	if cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, cachedList{Products: products, Count: count}, listCacheTTL); err != nil {
			uc.logger.Warn("product cache write failed", zap.Error(err))
		}
	}
	return products, count, nil
}

func (uc *productUseCase) searchElastic(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", f.SearchQuery),
				"fields": []string{"name^3", "description"},
			},
		},
	}
	if f.SubcategoryID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"subcategory_id": f.SubcategoryID}})
	}
	if f.IsActive != nil {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"is_active": *f.IsActive}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
	}
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * f.PageSize
		q["size"] = f.PageSize
	}

	res, err := uc.es.Search(ctx, uc.index, q)
	if err != nil {
		return nil, 0, err
	}
	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
		if p.Name == "" {
			return nil, apperr.Validation("error.validation.name_required", "name is required")
		}
	}
	if input.Description != nil {
		p.Description = optional(*input.Description)
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Cost != nil {
		p.Cost = *input.Cost
	}
	if p.Price.IsNegative() || p.Cost.IsNegative() {
		return nil, apperr.Validation("error.validation.price_negative", "price and cost cannot be negative")
	}
	if input.CategoryID != nil {
		p.CategoryID = optional(*input.CategoryID)
	}
	if input.SubcategoryID != nil {
		p.SubcategoryID = optional(*input.SubcategoryID)
	}
	if input.CoverImage != nil {
		p.CoverImage = optional(*input.CoverImage)
	}
	if input.HoverImage != nil {
		p.HoverImage = optional(*input.HoverImage)
	}
	if input.ProductImages != nil {
		p.ProductImages = pq.StringArray(input.ProductImages)
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		p.IsFeatured = *input.IsFeatured
	}
	if input.IsNew != nil {
		p.IsNew = *input.IsNew
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefSubcategory)
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.FromStore(err, duplicateMsg, apperr.RefProduct)
	}

	go uc.invalidateListCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), uc.index, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.String("product_id", id), zap.Error(err))
			}
		}()
	}
	return nil
}

// SetAttributes replaces the product's ordered attribute set. Duplicate ids
// keep their first position.
func (uc *productUseCase) SetAttributes(ctx context.Context, id string, attributeIDs []string) (*model.Product, error) {
	ids := orderedSet(attributeIDs)
	if err := uc.repo.UpdateAttributeIDs(ctx, id, ids); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefProduct)
	}
	return uc.refreshed(ctx, id)
}

func (uc *productUseCase) SetStock(ctx context.Context, id string, stock int) (*model.Product, error) {
	if stock < 0 {
		return nil, apperr.Validation("error.validation.quantity_negative", "stock cannot be negative")
	}
	if err := uc.repo.UpdateStock(ctx, id, stock); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefProduct)
	}
	return uc.refreshed(ctx, id)
}

func (uc *productUseCase) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	stock, err := uc.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return 0, apperr.FromStore(err, duplicateMsg, apperr.RefProduct)
	}
	if _, err := uc.refreshed(ctx, id); err != nil {
		uc.logger.Warn("reload after stock adjustment failed", zap.String("product_id", id), zap.Error(err))
	}
	return stock, nil
}

// refreshed reloads the product after a column update and propagates it to the
// list cache and the search index.
func (uc *productUseCase) refreshed(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)
	return p, nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	if err := uc.es.CreateIndex(ctx, uc.index, indexMapping); err != nil {
		uc.logger.Warn("ensure product index failed", zap.Error(err))
	}
	if err := uc.es.Index(ctx, uc.index, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeletePattern(ctx, listCachePrefix+"*"); err != nil {
		uc.logger.Warn("product cache invalidation failed", zap.Error(err))
	}
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", listCachePrefix, md5.Sum(data)), nil
}

func orderedSet(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
