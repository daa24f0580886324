// File: internal/product/repository.go
package product

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const productsCollection = "products"

// Repository defines the interface for product data operations.
type Repository interface {
	// Create stores p and assigns p.ID.
	Create(ctx context.Context, p *Product) error
	// ListByVendor returns the vendor's products, newest first.
	ListByVendor(ctx context.Context, vendorID string) ([]Product, error)
	// ListActive pages through active products, newest first.
	ListActive(ctx context.Context, offset, limit int) ([]Product, error)
	// ListAll pages through every product in a stable order.
	ListAll(ctx context.Context, offset, limit int) ([]Product, error)
}

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a product repository over the products collection.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) Create(ctx context.Context, p *Product) error {
	ref, _, err := r.client.Collection(productsCollection).Add(ctx, p)
	if err != nil {
		return fmt.Errorf("firestore add product: %w", err)
	}
	p.ID = ref.ID
	return nil
}

func (r *firestoreRepository) ListByVendor(ctx context.Context, vendorID string) ([]Product, error) {
	docs, err := r.client.Collection(productsCollection).
		Where("vendorId", "==", vendorID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore list vendor products: %w", err)
	}
	products, err := decodeProducts(docs)
	if err != nil {
		return nil, err
	}
	// Sorted here so the query needs no composite index.
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *firestoreRepository) ListActive(ctx context.Context, offset, limit int) ([]Product, error) {
	docs, err := r.client.Collection(productsCollection).
		Where("status", "==", "active").
		OrderBy("createdAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore list active products: %w", err)
	}
	return decodeProducts(docs)
}

func (r *firestoreRepository) ListAll(ctx context.Context, offset, limit int) ([]Product, error) {
	docs, err := r.client.Collection(productsCollection).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Offset(offset).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore list products: %w", err)
	}
	return decodeProducts(docs)
}

func decodeProducts(docs []*firestore.DocumentSnapshot) ([]Product, error) {
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		var p Product
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", doc.Ref.ID, err)
		}
		p.ID = doc.Ref.ID
		products = append(products, p)
	}
	return products, nil
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM product repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("gorm create product: %w", err)
	}
	return nil
}

func (r *gormRepository) ListByVendor(ctx context.Context, vendorID string) ([]Product, error) {
	var products []Product
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("gorm list vendor products: %w", err)
	}
	return products, nil
}

func (r *gormRepository) ListActive(ctx context.Context, offset, limit int) ([]Product, error) {
	var products []Product
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("created_at DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("gorm list active products: %w", err)
	}
	return products, nil
}

func (r *gormRepository) ListAll(ctx context.Context, offset, limit int) ([]Product, error) {
	var products []Product
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("gorm list products: %w", err)
	}
	return products, nil
}
