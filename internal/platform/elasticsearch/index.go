package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// ProductsIndexName is the catalog index.
const ProductsIndexName = "products"

// productsMapping returns the JSON mapping for the products index.
func productsMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":          map[string]interface{}{"type": "keyword"},
				"name":        map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"slug":        map[string]interface{}{"type": "keyword"},
				"description": map[string]interface{}{"type": "text"},
				"price":       map[string]interface{}{"type": "scaled_float", "scaling_factor": 100},
				"stock":       map[string]interface{}{"type": "integer"},
				"vendorId":    map[string]interface{}{"type": "keyword"},
				"status":      map[string]interface{}{"type": "keyword"},
				"createdAt":   map[string]interface{}{"type": "date"},
				"updatedAt":   map[string]interface{}{"type": "date"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling products mapping to JSON: %w", err)
	}
	return string(b), nil
}

// CreateProductsIndexIfNotExists creates the products index with its mapping
// if it does not already exist.
func CreateProductsIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{ProductsIndexName}}.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if products index exists", zap.Error(err))
		return fmt.Errorf("error checking if products index exists: %w", err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		log.Debug("Products index already exists", zap.String("index_name", ProductsIndexName))
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("error checking if products index exists: status %s", res.Status())
	}

	mappingJSON, err := productsMapping()
	if err != nil {
		return err
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: ProductsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating products index", zap.Error(err))
		return fmt.Errorf("error creating products index %s: %w", ProductsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		log.Error("Failed to create products index",
			zap.String("status", createRes.Status()),
			zap.Any("error_details", decodeErrorBody(createRes)),
		)
		return fmt.Errorf("failed to create products index %s: status %s", ProductsIndexName, createRes.Status())
	}

	log.Info("Products index created successfully", zap.String("index_name", ProductsIndexName))
	return nil
}
