package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/models"
	"storefront-backend/repository"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*models.Product{}}
}

func (r *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	copied := *product
	r.products[product.ID.Hex()] = &copied
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id.Hex()]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *fakeProductRepo) Find(ctx context.Context, filters *models.ProductFilters) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(filters.Search)) {
			continue
		}
		if filters.IsActive != nil && p.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	total := int64(len(out))

	start := (filters.Page - 1) * filters.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + filters.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id.Hex()]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if v, ok := set["title"].(string); ok {
		p.Title = v
	}
	if v, ok := set["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := set["stock"].(int); ok {
		p.Stock = v
	}
	if v, ok := set["is_active"].(bool); ok {
		p.IsActive = v
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id.Hex()]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id.Hex())
	return nil
}

// Tests run without Redis; the cache is an optimization and nil disables it.
func newTestProductService(repo repository.ProductRepository) ProductService {
	return NewProductService(repo, nil, zap.NewNop())
}

func TestCreateProductAndDuplicateSKU(t *testing.T) {
	svc := newTestProductService(newFakeProductRepo())

	req := &models.CreateProductRequest{
		Title: "Steel Bottle", Category: "kitchen", SKU: "BTL-1", Price: 499, Stock: 10,
	}
	product, svcErr := svc.CreateProduct(context.Background(), req)
	require.Nil(t, svcErr)
	assert.True(t, product.IsActive)
	assert.True(t, product.InStock())

	_, svcErr = svc.CreateProduct(context.Background(), req)
	require.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
}

func TestGetProductNotFound(t *testing.T) {
	svc := newTestProductService(newFakeProductRepo())

	_, svcErr := svc.GetProduct(context.Background(), primitive.NewObjectID().Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)

	_, svcErr = svc.GetProduct(context.Background(), "not-an-id")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newTestProductService(repo)

	for _, p := range []*models.CreateProductRequest{
		{Title: "Mug A", Category: "kitchen", SKU: "MUG-A", Price: 100, Stock: 5},
		{Title: "Mug B", Category: "kitchen", SKU: "MUG-B", Price: 120, Stock: 5},
		{Title: "Lamp", Category: "decor", SKU: "LMP-1", Price: 900, Stock: 2},
	} {
		_, svcErr := svc.CreateProduct(context.Background(), p)
		require.Nil(t, svcErr)
	}

	list, svcErr := svc.ListProducts(context.Background(), &models.ProductFilters{Category: "kitchen", Page: 1, Limit: 1})
	require.Nil(t, svcErr)
	assert.Len(t, list.Products, 1)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, int64(2), list.Pagination.Pages)

	list, svcErr = svc.ListProducts(context.Background(), &models.ProductFilters{Search: "lamp"})
	require.Nil(t, svcErr)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "LMP-1", list.Products[0].SKU)
}

func TestUpdateProductAndStock(t *testing.T) {
	svc := newTestProductService(newFakeProductRepo())

	product, svcErr := svc.CreateProduct(context.Background(), &models.CreateProductRequest{
		Title: "Mug", Category: "kitchen", SKU: "MUG-1", Price: 100, Stock: 5,
	})
	require.Nil(t, svcErr)

	newPrice := 150.0
	updated, svcErr := svc.UpdateProduct(context.Background(), product.ID.Hex(), &models.UpdateProductRequest{Price: &newPrice})
	require.Nil(t, svcErr)
	assert.Equal(t, 150.0, updated.Price)

	_, svcErr = svc.UpdateProduct(context.Background(), product.ID.Hex(), &models.UpdateProductRequest{})
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)

	updated, svcErr = svc.UpdateStock(context.Background(), product.ID.Hex(), 0)
	require.Nil(t, svcErr)
	assert.False(t, updated.InStock())

	_, svcErr = svc.UpdateStock(context.Background(), product.ID.Hex(), -1)
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	svc := newTestProductService(newFakeProductRepo())

	product, svcErr := svc.CreateProduct(context.Background(), &models.CreateProductRequest{
		Title: "Mug", Category: "kitchen", SKU: "MUG-1", Price: 100,
	})
	require.Nil(t, svcErr)

	require.Nil(t, svc.DeleteProduct(context.Background(), product.ID.Hex()))

	delErr := svc.DeleteProduct(context.Background(), product.ID.Hex())
	require.NotNil(t, delErr)
	assert.Equal(t, 404, delErr.StatusCode)
}
