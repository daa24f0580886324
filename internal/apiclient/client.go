package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/product"
	"marketplace_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client calls the marketplace API on behalf of a bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client for baseURL, e.g. "http://localhost:8080". A nil
// httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    httpClient,
		logger:  logger.Named("apiclient"),
	}
}

// CreateProduct creates a product owned by the caller.
func (c *Client) CreateProduct(ctx context.Context, token string, req product.CreateProductRequest) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodPost, "/products/create", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts returns the caller's products.
func (c *Client) ListProducts(ctx context.Context, token string) ([]product.ProductSummary, error) {
	var out product.ListProductsResponse
	if err := c.do(ctx, http.MethodGet, "/products", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// SearchCatalog searches active products. An empty query lists everything.
func (c *Client) SearchCatalog(ctx context.Context, token, query string, page, pageSize int) (*catalog.SearchResponse, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	path := "/catalog"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out catalog.SearchResponse
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	if out.Pagination == nil {
		out.Pagination = &common.Pagination{}
	}
	return &out, nil
}

// CreateProfile stores the profile of the account that owns token.
func (c *Client) CreateProfile(ctx context.Context, token string, role domain.Role, name string) (*domain.Account, error) {
	var out domain.Account
	body := user.CreateProfileRequest{Role: role.String(), Name: name}
	if err := c.do(ctx, http.MethodPost, "/users/profile", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile returns the account that owns token.
func (c *Client) GetProfile(ctx context.Context, token string) (*domain.Account, error) {
	var out domain.Account
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.AuthorizationTypeBearer+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("requestID", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if !isJSON(resp.Header.Get("Content-Type")) {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnexpectedResponse)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnexpectedResponse, err)
	}
	return nil
}

// decodeError reads an API error body. Anything but a JSON error object
// becomes ErrUnexpectedResponse.
func decodeError(resp *http.Response) error {
	body := io.LimitReader(resp.Body, maxErrorBody)
	if !isJSON(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, body)
		return fmt.Errorf("%w (status %d)", ErrUnexpectedResponse, resp.StatusCode)
	}
	apiErr := &Error{}
	if err := json.NewDecoder(body).Decode(apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("%w (status %d)", ErrUnexpectedResponse, resp.StatusCode)
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
