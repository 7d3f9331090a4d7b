package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-backend/models"
	"storefront-backend/services"
)

// ProductController exposes catalog endpoints.
type ProductController struct {
	products services.ProductService
}

// NewProductController creates a ProductController.
func NewProductController(products services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// ListProducts handles GET /api/products.
func (ctl *ProductController) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filters := &models.ProductFilters{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	// Storefront listings only show active products.
	active := true
	filters.IsActive = &active

	list, svcErr := ctl.products.ListProducts(c.Request.Context(), filters)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetProduct handles GET /api/products/:id.
func (ctl *ProductController) GetProduct(c *gin.Context) {
	product, svcErr := ctl.products.GetProduct(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct handles POST /api/products. Admin only.
func (ctl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, svcErr := ctl.products.CreateProduct(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct handles PATCH /api/products/:id. Admin only.
func (ctl *ProductController) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, svcErr := ctl.products.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// UpdateStock handles PATCH /api/products/:id/stock. Admin only.
func (ctl *ProductController) UpdateStock(c *gin.Context) {
	var req models.UpdateStockRequest
	if !bindJSON(c, &req) {
		return
	}
	product, svcErr := ctl.products.UpdateStock(c.Request.Context(), c.Param("id"), req.Stock)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct handles DELETE /api/products/:id. Admin only.
func (ctl *ProductController) DeleteProduct(c *gin.Context) {
	if svcErr := ctl.products.DeleteProduct(c.Request.Context(), c.Param("id")); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
