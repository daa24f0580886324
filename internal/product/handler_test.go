package product

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeAuth trusts X-Test-UID / X-Test-Role so handler tests can act as any account.
func fakeAuth(c *gin.Context) {
	uid := c.GetHeader("X-Test-UID")
	if uid == "" {
		common.RespondWithError(c, common.ErrMissingAuthHeader)
		return
	}
	role, err := domain.ParseRole(c.GetHeader("X-Test-Role"))
	if err != nil {
		common.RespondWithError(c, common.ErrInvalidProfile)
		return
	}
	c.Set(common.AccountIDKey, uid)
	c.Set(common.AccountRoleKey, role)
	c.Next()
}

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Product{}))
	t.Cleanup(func() { sqlDB.Close() })
	return NewGORMRepository(db)
}

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Preflight())
	svc := NewService(newTestRepo(t), nil, nil, zap.NewNop())
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api"), fakeAuth, middleware.RoleAuthMiddleware(domain.RoleVendor))
	return r
}

func call(r http.Handler, method, path, uid, role, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if uid != "" {
		req.Header.Set("X-Test-UID", uid)
		req.Header.Set("X-Test-Role", role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateThenList_RoundTrip(t *testing.T) {
	r := setupRouter(t)

	w := call(r, http.MethodPost, "/api/products/create", "vendor-v", "vendor",
		`{"name":"Steel Beam","price":89.5,"description":"10ft"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "vendor-v", created.VendorID)
	assert.Equal(t, 0, created.Stock)
	assert.Equal(t, domain.ProductStatusActive, created.Status)

	w = call(r, http.MethodGet, "/api/products", "vendor-v", "vendor", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list ListProductsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	matches := 0
	for _, p := range list.Products {
		if p.Name == "Steel Beam" && p.Price == 89.5 && p.Description == "10ft" {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestHandler_Create_IgnoresBodyVendorID(t *testing.T) {
	r := setupRouter(t)

	w := call(r, http.MethodPost, "/api/products/create", "vendor-a", "vendor",
		`{"name":"Bricks","price":1.25,"vendorId":"vendor-b","userId":"vendor-b"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"vendorId":"vendor-a"`)

	w = call(r, http.MethodGet, "/api/products", "vendor-b", "vendor", "")
	assert.JSONEq(t, `{"products":[]}`, w.Body.String())
}

func TestHandler_Create_PriceRounding(t *testing.T) {
	r := setupRouter(t)

	w := call(r, http.MethodPost, "/api/products/create", "vendor-a", "vendor", `{"name":"Nails","price":19.999}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"price":20`)
}

func TestHandler_Create_InvalidData(t *testing.T) {
	r := setupRouter(t)

	for _, body := range []string{
		`{"name":"Nails","price":0}`,
		`{"name":"Nails","price":-3}`,
		`{"name":"Nails","price":"12"}`,
		`{"price":12}`,
		`not json`,
	} {
		w := call(r, http.MethodPost, "/api/products/create", "vendor-a", "vendor", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "INVALID_PRODUCT_DATA", body)
	}

	w := call(r, http.MethodPost, "/api/products/create", "vendor-a", "vendor", `{"price":12}`)
	assert.Contains(t, w.Body.String(), `"Name":"The name field is required."`)

	w = call(r, http.MethodGet, "/api/products", "vendor-a", "vendor", "")
	assert.JSONEq(t, `{"products":[]}`, w.Body.String())
}

func TestHandler_VendorIsolation(t *testing.T) {
	r := setupRouter(t)

	call(r, http.MethodPost, "/api/products/create", "vendor-a", "vendor", `{"name":"A1","price":1}`)
	call(r, http.MethodPost, "/api/products/create", "vendor-b", "vendor", `{"name":"B1","price":2}`)

	w := call(r, http.MethodGet, "/api/products", "vendor-a", "vendor", "")
	var list ListProductsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Products, 1)
	assert.Equal(t, "A1", list.Products[0].Name)
}

func TestHandler_Authorization(t *testing.T) {
	r := setupRouter(t)

	w := call(r, http.MethodGet, "/api/products", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodGet, "/api/products", "buyer-1", "buyer", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, http.MethodPost, "/api/products/create", "rider-1", "rider", `{"name":"X","price":1}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	r := setupRouter(t)

	w := call(r, http.MethodGet, "/api/products/create", "", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST", w.Header().Get("Allow"))

	w = call(r, http.MethodDelete, "/api/products", "", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET", w.Header().Get("Allow"))

	w = call(r, http.MethodOptions, "/api/products/create", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
