package product

import (
	"context"
	"errors"
	"strings"
	"testing"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock type for product.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Product) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil && p.ID == "" {
		p.ID = "generated-id"
	}
	return args.Error(0)
}

func (m *MockRepository) ListByVendor(ctx context.Context, vendorID string) ([]Product, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) ListActive(ctx context.Context, offset, limit int) ([]Product, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context, offset, limit int) ([]Product, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]Product), args.Error(1)
}

// MockIndexer is a mock type for product.Indexer
type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) IndexProduct(ctx context.Context, p domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestService_CreateProduct_RejectsBadPriceBeforeWrite(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil, zap.NewNop())

	for _, price := range []*float64{floatPtr(0), floatPtr(-5), nil} {
		_, err := svc.CreateProduct(context.Background(), "vendor-a", CreateProductRequest{Name: "Cement", Price: price})
		assert.ErrorIs(t, err, common.ErrInvalidProductData)
	}
	_, err := svc.CreateProduct(context.Background(), "vendor-a", CreateProductRequest{Name: "   ", Price: floatPtr(3)})
	assert.ErrorIs(t, err, common.ErrInvalidProductData)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_CreateProduct_NormalizesAndForcesVendor(t *testing.T) {
	repo := new(MockRepository)
	idx := new(MockIndexer)
	svc := NewService(repo, idx, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*product.Product")).Run(func(args mock.Arguments) {
		p := args.Get(1).(*Product)
		assert.Equal(t, 20.00, p.Price)
		assert.Equal(t, "vendor-a", p.VendorID)
		assert.Equal(t, "Rebar", p.Name)
		assert.Equal(t, 0, p.Stock)
		assert.Equal(t, "active", p.Status)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	}).Return(nil)
	idx.On("IndexProduct", ctx, mock.AnythingOfType("domain.Product")).Return(nil)

	got, err := svc.CreateProduct(ctx, "vendor-a", CreateProductRequest{Name: " Rebar ", Price: floatPtr(19.999), Description: strPtr("12mm")})
	require.NoError(t, err)
	assert.Equal(t, "generated-id", got.ID)
	assert.Equal(t, 20.00, got.Price)
	assert.Equal(t, domain.ProductStatusActive, got.Status)
	repo.AssertExpectations(t)
	idx.AssertExpectations(t)
}

func TestService_CreateProduct_IndexFailureDoesNotFail(t *testing.T) {
	repo := new(MockRepository)
	idx := new(MockIndexer)
	svc := NewService(repo, idx, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(nil)
	idx.On("IndexProduct", ctx, mock.Anything).Return(errors.New("es down"))

	_, err := svc.CreateProduct(ctx, "vendor-a", CreateProductRequest{Name: "Sand", Price: floatPtr(5)})
	assert.NoError(t, err)
}

func TestService_CreateProduct_StoreFailure(t *testing.T) {
	repo := new(MockRepository)
	idx := new(MockIndexer)
	svc := NewService(repo, idx, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(errors.New("quota exceeded"))

	_, err := svc.CreateProduct(ctx, "vendor-a", CreateProductRequest{Name: "Sand", Price: floatPtr(5)})
	require.Error(t, err)
	idx.AssertNotCalled(t, "IndexProduct", mock.Anything, mock.Anything)
}

func TestService_ListVendorProducts_FiltersForeignRows(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("ListByVendor", ctx, "vendor-a").Return([]Product{
		{ID: "1", VendorID: "vendor-a", Name: "Mine"},
		{ID: "2", VendorID: "vendor-b", Name: "Theirs"},
	}, nil)

	got, err := svc.ListVendorProducts(ctx, "vendor-a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mine", got[0].Name)
	assert.Equal(t, domain.ProductStatusActive, got[0].Status, "missing status reads as active")
}

func TestValidateCreateRequest_Rules(t *testing.T) {
	for _, tc := range []struct {
		name  string
		req   CreateProductRequest
		field string
	}{
		{"missing name", CreateProductRequest{Price: floatPtr(4)}, "Name"},
		{"missing price", CreateProductRequest{Name: "Sand"}, "Price"},
		{"zero price", CreateProductRequest{Name: "Sand", Price: floatPtr(0)}, "Price"},
		{"below a cent", CreateProductRequest{Name: "Sand", Price: floatPtr(0.004)}, "Price"},
		{"long name", CreateProductRequest{Name: strings.Repeat("a", 201), Price: floatPtr(4)}, "Name"},
		{"long description", CreateProductRequest{Name: "Sand", Price: floatPtr(4), Description: strPtr(strings.Repeat("a", 2001))}, "Description"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := ValidateCreateRequest(tc.req)
			var apiErr *common.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "INVALID_PRODUCT_DATA", apiErr.Code)
			details, ok := apiErr.Details.(map[string]string)
			require.True(t, ok, "details: %#v", apiErr.Details)
			assert.Contains(t, details, tc.field)
		})
	}
}

func TestValidateCreateRequest_StripsMarkup(t *testing.T) {
	name, _, desc, err := ValidateCreateRequest(CreateProductRequest{
		Name:        "<b>Nuts & Bolts</b>",
		Price:       floatPtr(4),
		Description: strPtr(`M8 <script>alert("x")</script>zinc`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nuts & Bolts", name)
	assert.Equal(t, "M8 zinc", desc)

	_, _, _, err = ValidateCreateRequest(CreateProductRequest{Name: "<script>x</script>", Price: floatPtr(4)})
	assert.ErrorIs(t, err, common.ErrInvalidProductData)
}
