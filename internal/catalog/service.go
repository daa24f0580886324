package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"
	platformElasticsearch "marketplace_backend/internal/platform/elasticsearch"
	"marketplace_backend/internal/product"

	"go.uber.org/zap"
)

const (
	// storeScanBatch is how many active products the store fallback reads per query.
	storeScanBatch = 200
	// maxResultWindow is the index's default index.max_result_window.
	maxResultWindow = 10000
)

// Service answers buyer catalog searches.
type Service interface {
	Search(ctx context.Context, query string, page, pageSize int) ([]Item, *common.Pagination, error)
}

type service struct {
	es     *platformElasticsearch.ESClientWrapper
	repo   product.Repository
	logger *zap.Logger
}

// NewService creates a catalog service. With a nil es client it searches the
// document store directly.
func NewService(es *platformElasticsearch.ESClientWrapper, repo product.Repository, logger *zap.Logger) Service {
	return &service{es: es, repo: repo, logger: logger.Named("catalog_service")}
}

func (s *service) Search(ctx context.Context, query string, page, pageSize int) ([]Item, *common.Pagination, error) {
	query = strings.TrimSpace(query)
	if pageSize <= 0 {
		pageSize = common.DefaultPageSize
	}
	if s.es == nil {
		return s.searchStore(ctx, query, page, pageSize)
	}
	items, total, err := s.searchIndex(ctx, query, page, pageSize)
	if err != nil {
		s.logger.Error("Catalog index search failed", zap.Error(err), zap.String("query", query))
		return nil, nil, err
	}
	return items, common.NewPagination(total, page, pageSize), nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildSearchQuery(query string) map[string]interface{} {
	must := []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	if query != "" {
		must = []interface{}{map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		}}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": []interface{}{map[string]interface{}{"term": map[string]interface{}{"status": string(domain.ProductStatusActive)}}},
			},
		},
		"sort": []interface{}{"_score", map[string]interface{}{"createdAt": "desc"}},
	}
}

func (s *service) searchIndex(ctx context.Context, query string, page, pageSize int) ([]Item, int64, error) {
	body, err := json.Marshal(buildSearchQuery(query))
	if err != nil {
		return nil, 0, fmt.Errorf("marshal search query: %w", err)
	}

	// Pages past the result window come back empty with the real total.
	from, size := common.Offset(page, pageSize), pageSize
	if from >= maxResultWindow {
		from, size = 0, 0
	} else if from+size > maxResultWindow {
		size = maxResultWindow - from
	}

	client := s.es.Client
	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(platformElasticsearch.ProductsIndexName),
		client.Search.WithBody(bytes.NewReader(body)),
		client.Search.WithFrom(from),
		client.Search.WithSize(size),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("catalog search: status %s", res.Status())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}
	items := make([]Item, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		items = append(items, h.Source.toItem())
	}
	return items, sr.Hits.Total.Value, nil
}

// searchStore scans every active product so the total stays exact; only the
// requested page is kept.
func (s *service) searchStore(ctx context.Context, query string, page, pageSize int) ([]Item, *common.Pagination, error) {
	start := common.Offset(page, pageSize)
	end := start + pageSize
	if end < start {
		end = start
	}

	needle := strings.ToLower(query)
	items := make([]Item, 0, pageSize)
	var total int64
	for offset := 0; ; offset += storeScanBatch {
		stored, err := s.repo.ListActive(ctx, offset, storeScanBatch)
		if err != nil {
			s.logger.Error("Catalog store search failed", zap.Error(err))
			return nil, nil, fmt.Errorf("catalog store search: %w", err)
		}
		for i := range stored {
			p := stored[i].ToDomain()
			if p.Status != domain.ProductStatusActive || !matches(p, needle) {
				continue
			}
			if total >= int64(start) && total < int64(end) {
				items = append(items, ToDocument(p).toItem())
			}
			total++
		}
		if len(stored) < storeScanBatch {
			break
		}
	}
	return items, common.NewPagination(total, page, pageSize), nil
}

func matches(p domain.Product, needle string) bool {
	return needle == "" ||
		strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}
