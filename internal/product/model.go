// File: internal/product/model.go
package product

import (
	"time"

	"marketplace_backend/internal/domain"
)

// Product is the stored product document: products/{id} in Firestore or the
// products table in SQL.
type Product struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" firestore:"-"`
	Name        string    `gorm:"type:varchar(255);not null" firestore:"name"`
	Price       float64   `gorm:"not null" firestore:"price"`
	Description string    `gorm:"type:text" firestore:"description"`
	VendorID    string    `gorm:"type:varchar(128);not null;index" firestore:"vendorId"`
	Stock       int       `gorm:"not null;default:0" firestore:"stock"`
	Status      string    `gorm:"type:varchar(20);not null;default:'active';index" firestore:"status"`
	CreatedAt   time.Time `gorm:"not null" firestore:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" firestore:"updatedAt"`
}

// TableName specifies the table name for the Product model.
func (Product) TableName() string {
	return "products"
}

// ToDomain converts the stored document into the domain product. Missing
// status falls back to active.
func (p *Product) ToDomain() domain.Product {
	status := domain.ProductStatus(p.Status)
	if !status.Valid() {
		status = domain.ProductStatusActive
	}
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		VendorID:    p.VendorID,
		Stock:       p.Stock,
		Status:      status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreateProductRequest is the body of POST /api/products/create. Any vendorId
// or userId field in the body is ignored; the vendor is always the caller.
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Price       *float64 `json:"price" binding:"required,gt=0"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
}

// ProductSummary is one entry of the vendor product list.
type ProductSummary struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Price       float64              `json:"price"`
	Stock       int                  `json:"stock"`
	Description string               `json:"description"`
	Status      domain.ProductStatus `json:"status"`
}

// ListProductsResponse is the body of GET /api/products.
type ListProductsResponse struct {
	Products []ProductSummary `json:"products"`
}

// ToSummary projects a domain product into the list shape.
func ToSummary(p domain.Product) ProductSummary {
	return ProductSummary{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		Description: p.Description,
		Status:      p.Status,
	}
}
