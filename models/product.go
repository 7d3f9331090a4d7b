package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImage is a catalog image; at most one per product is featured.
type ProductImage struct {
	URL      string `json:"url" bson:"url"`
	Featured bool   `json:"featured" bson:"featured"`
}

// Product is a catalog entry.
type Product struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title          string             `json:"title" bson:"title"`
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`
	Category       string             `json:"category" bson:"category"`
	SKU            string             `json:"sku" bson:"sku"`
	Price          float64            `json:"price" bson:"price"`
	CompareAtPrice *float64           `json:"compareAtPrice,omitempty" bson:"compare_at_price,omitempty"`
	Stock          int                `json:"stock" bson:"stock"`
	Images         []ProductImage     `json:"images" bson:"images"`
	Rating         float64            `json:"rating" bson:"rating"`
	ReviewCount    int                `json:"reviewCount" bson:"review_count"`
	Features       []string           `json:"features,omitempty" bson:"features,omitempty"`
	IsActive       bool               `json:"isActive" bson:"is_active"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}

// InStock reports whether the product can currently be ordered.
func (p *Product) InStock() bool { return p.Stock > 0 }

// ProductFilters narrows catalog listings.
type ProductFilters struct {
	Category  string
	Search    string
	IsActive  *bool
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination describes a page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// CreateProductRequest is the admin payload for adding a catalog entry.
type CreateProductRequest struct {
	Title          string         `json:"title" binding:"required,min=2"`
	Description    string         `json:"description,omitempty"`
	Category       string         `json:"category" binding:"required"`
	SKU            string         `json:"sku" binding:"required"`
	Price          float64        `json:"price" binding:"required,gt=0"`
	CompareAtPrice *float64       `json:"compareAtPrice,omitempty"`
	Stock          int            `json:"stock" binding:"gte=0"`
	Images         []ProductImage `json:"images,omitempty"`
	Features       []string       `json:"features,omitempty"`
	IsActive       *bool          `json:"isActive,omitempty"`
}

// UpdateProductRequest carries partial catalog updates; nil fields are left
// untouched.
type UpdateProductRequest struct {
	Title          *string        `json:"title,omitempty"`
	Description    *string        `json:"description,omitempty"`
	Category       *string        `json:"category,omitempty"`
	SKU            *string        `json:"sku,omitempty"`
	Price          *float64       `json:"price,omitempty" binding:"omitempty,gt=0"`
	CompareAtPrice *float64       `json:"compareAtPrice,omitempty"`
	Stock          *int           `json:"stock,omitempty" binding:"omitempty,gte=0"`
	Images         []ProductImage `json:"images,omitempty"`
	Features       []string       `json:"features,omitempty"`
	IsActive       *bool          `json:"isActive,omitempty"`
}

// UpdateStockRequest adjusts the stock level of a product.
type UpdateStockRequest struct {
	Stock int `json:"stock" binding:"gte=0"`
}
