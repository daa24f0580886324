package catalog

import (
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"

	"github.com/gosimple/slug"
)

// Document is the products index document.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	VendorID    string    `json:"vendorId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToDocument converts a product into its index document.
func ToDocument(p domain.Product) Document {
	return Document{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        slug.Make(p.Name),
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		VendorID:    p.VendorID,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Item is the public catalog entry shown to buyers and riders.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	VendorID    string  `json:"vendorId"`
}

func (d Document) toItem() Item {
	return Item{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		VendorID:    d.VendorID,
	}
}

// SearchResponse is the body of GET /api/catalog.
type SearchResponse struct {
	Products   []Item             `json:"products"`
	Pagination *common.Pagination `json:"pagination"`
}
