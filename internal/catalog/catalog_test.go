package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace_backend/internal/domain"
	platformElasticsearch "marketplace_backend/internal/platform/elasticsearch"
	"marketplace_backend/internal/product"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newProductRepo(t *testing.T) product.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&product.Product{}))
	t.Cleanup(func() { sqlDB.Close() })
	return product.NewGORMRepository(db)
}

// newFakeES returns a client whose transport is served by handler. The v8
// client insists on the product header in every response.
func newFakeES(t *testing.T, handler http.HandlerFunc) *platformElasticsearch.ESClientWrapper {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &platformElasticsearch.ESClientWrapper{Client: client}
}

func TestToDocument_Slug(t *testing.T) {
	doc := ToDocument(domain.Product{ID: "p1", Name: "Steel Beam 10ft", Status: domain.ProductStatusActive})
	assert.Equal(t, "steel-beam-10ft", doc.Slug)
	assert.Equal(t, "active", doc.Status)
}

func TestService_StoreFallback(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, p := range []product.Product{
		{Name: "Steel Beam", Description: "10ft", Price: 89.5, VendorID: "v1", Status: "active", CreatedAt: now, UpdatedAt: now},
		{Name: "Cement Bag", Description: "50kg portland", Price: 12, VendorID: "v2", Status: "active", CreatedAt: now, UpdatedAt: now},
		{Name: "Steel Rod", Description: "hidden", Price: 5, VendorID: "v1", Status: "inactive", CreatedAt: now, UpdatedAt: now},
	} {
		p := p
		require.NoError(t, repo.Create(ctx, &p))
	}

	svc := NewService(nil, repo, zap.NewNop())

	items, pg, err := svc.Search(ctx, "steel", 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Steel Beam", items[0].Name)
	assert.Equal(t, int64(1), pg.TotalItems)

	items, pg, err = svc.Search(ctx, "", 2, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(2), pg.TotalItems)
	assert.True(t, pg.HasPrev)

	items, _, err = svc.Search(ctx, "PORTLAND", 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "cement-bag", items[0].Slug)
}

func TestService_StoreFallback_CountsEveryActiveProduct(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()
	base := time.Now().UTC()
	const n = storeScanBatch + 5
	for i := 0; i < n; i++ {
		at := base.Add(-time.Duration(i) * time.Minute)
		p := product.Product{Name: fmt.Sprintf("Brick %03d", i), Price: 1, VendorID: "v1", Status: "active", CreatedAt: at, UpdatedAt: at}
		require.NoError(t, repo.Create(ctx, &p))
	}
	svc := NewService(nil, repo, zap.NewNop())

	items, pg, err := svc.Search(ctx, "brick", 21, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(n), pg.TotalItems)
	assert.Equal(t, 21, pg.TotalPages)
	require.Len(t, items, 5)
	assert.Equal(t, "Brick 200", items[0].Name)
}

func TestService_StoreFallback_OutOfRangePage(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	p := product.Product{Name: "Steel Beam", Price: 89.5, VendorID: "v1", Status: "active", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, &p))
	svc := NewService(nil, repo, zap.NewNop())

	for _, page := range []int{2, 1000, math.MaxInt} {
		items, pg, err := svc.Search(ctx, "", page, 10)
		require.NoError(t, err, page)
		assert.Empty(t, items, page)
		assert.Equal(t, int64(1), pg.TotalItems, page)
	}
}

func TestService_IndexSearch_PastResultWindow(t *testing.T) {
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("from"))
		assert.Equal(t, "0", r.URL.Query().Get("size"))
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":42},"hits":[]}}`)
	})

	svc := NewService(es, nil, zap.NewNop())
	items, pg, err := svc.Search(context.Background(), "", 5000, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(42), pg.TotalItems)
}

func TestService_IndexSearch(t *testing.T) {
	var gotBody map[string]interface{}
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/products/_search"), r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("from"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":11},"hits":[{"_source":{"id":"p1","name":"Steel Beam","slug":"steel-beam","price":89.5,"vendorId":"v1","status":"active"}}]}}`)
	})

	svc := NewService(es, nil, zap.NewNop())
	items, pg, err := svc.Search(context.Background(), "steel", 2, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, int64(11), pg.TotalItems)
	assert.Equal(t, 2, pg.TotalPages)

	query := gotBody["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, query, "filter")
}

func TestESIndexer_IndexProduct(t *testing.T) {
	var path string
	var doc Document
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&doc)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})

	idx := NewIndexer(es, zap.NewNop())
	err := idx.IndexProduct(context.Background(), domain.Product{ID: "p9", Name: "Roof Tiles", Price: 3.5, VendorID: "v1", Status: domain.ProductStatusActive})
	require.NoError(t, err)
	assert.Equal(t, "/products/_doc/p9", path)
	assert.Equal(t, "roof-tiles", doc.Slug)
}

func TestESIndexer_BulkIndex_ReportsItemFailures(t *testing.T) {
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		_, _ = io.WriteString(w, `{"errors":true,"items":[{"index":{"_id":"a","status":201}},{"index":{"_id":"b","status":400,"error":{"type":"mapper_parsing_exception"}}}]}`)
	})

	idx := NewIndexer(es, zap.NewNop())
	ok, failed, err := idx.BulkIndex(context.Background(), []domain.Product{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})
	require.NoError(t, err)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
}

func TestNewIndexer_NoopWithoutClient(t *testing.T) {
	idx := NewIndexer(nil, zap.NewNop())
	assert.IsType(t, NoopIndexer{}, idx)
	assert.NoError(t, idx.IndexProduct(context.Background(), domain.Product{ID: "x"}))
}
