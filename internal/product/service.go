package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/metrics"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Indexer receives every newly stored product (the buyer catalog).
type Indexer interface {
	IndexProduct(ctx context.Context, p domain.Product) error
}

// Service defines the vendor product operations.
type Service interface {
	CreateProduct(ctx context.Context, vendorID string, req CreateProductRequest) (*domain.Product, error)
	ListVendorProducts(ctx context.Context, vendorID string) ([]domain.Product, error)
}

type service struct {
	repo    Repository
	indexer Indexer
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new product service. indexer and m may be nil.
func NewService(repo Repository, indexer Indexer, m *metrics.Metrics, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		indexer: indexer,
		metrics: m,
		logger:  logger.Named("product_service"),
		now:     time.Now,
	}
}

// ValidateCreateRequest checks the body before anything is written and returns
// the sanitized name, normalized price and sanitized description.
func ValidateCreateRequest(req CreateProductRequest) (name string, price float64, description string, err error) {
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return "", 0, "", invalidProductData(err)
	}
	name = plainText(req.Name)
	if name == "" {
		return "", 0, "", common.ErrInvalidProductData.WithDetails(map[string]string{"Name": "The name field must contain text."})
	}
	price, err = domain.NormalizePrice(*req.Price)
	if err != nil {
		return "", 0, "", common.ErrInvalidProductData.WithDetails(map[string]string{"Price": "The price field must be at least 0.01."})
	}
	if req.Description != nil {
		description = plainText(*req.Description)
	}
	return name, price, description, nil
}

func invalidProductData(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return common.ErrInvalidProductData.WithDetails(common.FormatValidationErrors(ve))
	}
	return common.ErrInvalidProductData.WithDetails("name and a numeric price (>0) are required")
}

func (s *service) CreateProduct(ctx context.Context, vendorID string, req CreateProductRequest) (*domain.Product, error) {
	name, price, description, err := ValidateCreateRequest(req)
	if err != nil {
		return nil, err
	}
	if vendorID == "" {
		return nil, common.ErrUnauthorized
	}

	now := s.now().UTC()
	p := &Product{
		Name:        name,
		Price:       price,
		Description: description,
		VendorID:    vendorID,
		Stock:       0,
		Status:      string(domain.ProductStatusActive),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err), zap.String("vendorID", vendorID))
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.metrics.ProductCreated()

	created := p.ToDomain()
	if s.indexer != nil {
		if err := s.indexer.IndexProduct(ctx, created); err != nil {
			// The store is authoritative; the sync job repairs the index later.
			s.logger.Warn("Failed to index product", zap.Error(err), zap.String("productID", created.ID))
		}
	}

	s.logger.Info("Product created", zap.String("productID", created.ID), zap.String("vendorID", vendorID))
	return &created, nil
}

func (s *service) ListVendorProducts(ctx context.Context, vendorID string) ([]domain.Product, error) {
	if vendorID == "" {
		return nil, common.ErrUnauthorized
	}
	stored, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err), zap.String("vendorID", vendorID))
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]domain.Product, 0, len(stored))
	for i := range stored {
		// The query already filters; this guards a misbehaving store.
		if stored[i].VendorID != vendorID {
			continue
		}
		out = append(out, stored[i].ToDomain())
	}
	return out, nil
}
