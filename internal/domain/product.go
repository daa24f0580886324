// File: internal/domain/product.go
package domain

import (
	"errors"
	"math"
	"time"
)

// ProductStatus is the availability state of a product.
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// Valid reports whether s is a known status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock:
		return true
	}
	return false
}

// Product is a vendor's catalog entry.
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Price       float64       `json:"price"`
	Description string        `json:"description"`
	VendorID    string        `json:"vendorId"`
	Stock       int           `json:"stock"`
	Status      ProductStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ErrInvalidPrice is returned for prices that are not finite and positive after normalization.
var ErrInvalidPrice = errors.New("price must be a positive number")

// NormalizePrice rounds p to cents, halves away from zero (19.999 becomes 20,
// 0.125 becomes 0.13), and rejects non-positive results.
func NormalizePrice(p float64) (float64, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return 0, ErrInvalidPrice
	}
	rounded := math.Round(p*100) / 100
	if math.IsInf(rounded, 0) || rounded <= 0 {
		return 0, ErrInvalidPrice
	}
	return rounded, nil
}
