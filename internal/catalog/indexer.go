package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"marketplace_backend/internal/domain"
	platformElasticsearch "marketplace_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// Indexer writes products into the catalog index.
type Indexer interface {
	IndexProduct(ctx context.Context, p domain.Product) error
	BulkIndex(ctx context.Context, products []domain.Product) (indexed, failed int, err error)
}

// NewIndexer returns the Elasticsearch indexer, or a no-op one when es is nil.
func NewIndexer(es *platformElasticsearch.ESClientWrapper, logger *zap.Logger) Indexer {
	if es == nil {
		return NoopIndexer{}
	}
	return &ESIndexer{es: es, logger: logger.Named("catalog_indexer")}
}

// NoopIndexer is used when no search index is configured.
type NoopIndexer struct{}

func (NoopIndexer) IndexProduct(context.Context, domain.Product) error { return nil }

func (NoopIndexer) BulkIndex(_ context.Context, products []domain.Product) (int, int, error) {
	return 0, 0, nil
}

// ESIndexer indexes products into Elasticsearch.
type ESIndexer struct {
	es     *platformElasticsearch.ESClientWrapper
	logger *zap.Logger
}

// IndexProduct upserts a single product document.
func (i *ESIndexer) IndexProduct(ctx context.Context, p domain.Product) error {
	body, err := json.Marshal(ToDocument(p))
	if err != nil {
		return fmt.Errorf("marshal catalog document: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      platformElasticsearch.ProductsIndexName,
		DocumentID: p.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.es.Client)
	if err != nil {
		return fmt.Errorf("index product %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index product %s: status %s", p.ID, res.Status())
	}
	i.logger.Debug("Product indexed", zap.String("productID", p.ID))
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string                 `json:"_id"`
			Status int                    `json:"status"`
			Error  map[string]interface{} `json:"error,omitempty"`
		} `json:"index"`
	} `json:"items"`
}

// BulkIndex upserts a batch of products with one bulk request and reports
// per-item outcomes.
func (i *ESIndexer) BulkIndex(ctx context.Context, products []domain.Product) (int, int, error) {
	if len(products) == 0 {
		return 0, 0, nil
	}

	var body strings.Builder
	for _, p := range products {
		doc, err := json.Marshal(ToDocument(p))
		if err != nil {
			return 0, len(products), fmt.Errorf("marshal catalog document %s: %w", p.ID, err)
		}
		fmt.Fprintf(&body, `{"index":{"_index":%q,"_id":%q}}`+"\n", platformElasticsearch.ProductsIndexName, p.ID)
		body.Write(doc)
		body.WriteString("\n")
	}

	res, err := esapi.BulkRequest{Body: strings.NewReader(body.String())}.Do(ctx, i.es.Client)
	if err != nil {
		return 0, len(products), fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, len(products), fmt.Errorf("bulk index: status %s", res.Status())
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return 0, len(products), fmt.Errorf("decode bulk response: %w", err)
	}

	indexed, failed := 0, 0
	for _, item := range br.Items {
		if item.Index.Error != nil {
			failed++
			i.logger.Error("Failed to index document in bulk batch",
				zap.String("productID", item.Index.ID),
				zap.Any("error", item.Index.Error),
			)
			continue
		}
		indexed++
	}
	return indexed, failed, nil
}
