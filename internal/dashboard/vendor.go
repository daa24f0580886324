package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/product"
	"marketplace_backend/internal/session"

	"go.uber.org/zap"
)

const invalidProductMessage = "Please enter a valid product name (2+ characters) and price (>0)"

// ProductForm is the vendor's create-product input as typed.
type ProductForm struct {
	Name        string
	Price       string
	Description string
}

// VendorView lists the vendor's products and creates new ones.
type VendorView struct {
	screen
	deps Deps

	products []product.ProductSummary
	loaded   chan struct{}
}

// NewVendorView creates the vendor dashboard.
func NewVendorView(deps Deps) *VendorView {
	deps.Logger = deps.Logger.Named("vendor_dashboard")
	return &VendorView{deps: deps, loaded: make(chan struct{})}
}

func (v *VendorView) Placeholder() {
	fmt.Fprintln(v.deps.Out, "Loading dashboard...")
}

// Show renders the header and loads the product list in the background.
func (v *VendorView) Show(ctx context.Context, s session.Session) {
	v.mu.Lock()
	v.products = nil
	loaded := make(chan struct{})
	v.loaded = loaded
	v.mu.Unlock()
	v.show(ctx, s)

	fmt.Fprintln(v.deps.Out, "Welcome Vendor")
	fmt.Fprintf(v.deps.Out, "%s, %s\n", greeting(v.deps.now()), displayName(s.User))

	go func() {
		defer close(loaded)
		if _, err := v.Refresh(ctx); err != nil {
			v.deps.Logger.Debug("Initial product load failed", zap.Error(err))
		}
	}()
}

func (v *VendorView) Update(s session.Session) { v.update(s) }

func (v *VendorView) Hide() { v.hide() }

// WaitLoaded blocks until the list requested by the latest Show has loaded
// or failed.
func (v *VendorView) WaitLoaded(ctx context.Context) error {
	if err := v.WaitShown(ctx); err != nil {
		return err
	}
	v.mu.Lock()
	loaded := v.loaded
	v.mu.Unlock()
	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Products returns the last loaded list.
func (v *VendorView) Products() []product.ProductSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]product.ProductSummary(nil), v.products...)
}

// Refresh fetches and renders the vendor's products.
func (v *VendorView) Refresh(ctx context.Context) ([]product.ProductSummary, error) {
	var list []product.ProductSummary
	err := v.call(ctx, v.deps.Tokens, func(ctx context.Context, token string) error {
		var err error
		list, err = v.deps.Products.ListProducts(ctx, token)
		return err
	}, func() {
		v.products = list
	})
	if err != nil {
		report(ctx, v.deps, err)
		return nil, err
	}
	v.render(list)
	return list, nil
}

// Create validates form before any network call, creates the product and
// refreshes the list.
func (v *VendorView) Create(ctx context.Context, form ProductForm) (*domain.Product, error) {
	req, invalid := parseProductForm(form)
	if invalid != nil {
		v.deps.Notifier.Notify(session.NoticeError, invalid.Message)
		return nil, invalid
	}

	var created *domain.Product
	err := v.call(ctx, v.deps.Tokens, func(ctx context.Context, token string) error {
		var err error
		created, err = v.deps.Products.CreateProduct(ctx, token, req)
		return err
	}, nil)
	if err != nil {
		report(ctx, v.deps, err)
		return nil, err
	}

	v.deps.Logger.Info("Product created", zap.String("productID", created.ID))
	v.deps.Notifier.Notify(session.NoticeSuccess, "Product created successfully!")
	_, _ = v.Refresh(ctx)
	return created, nil
}

func (v *VendorView) render(list []product.ProductSummary) {
	if len(list) == 0 {
		fmt.Fprintln(v.deps.Out, "No products yet. Create your first product.")
		return
	}
	w := tabwriter.NewWriter(v.deps.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tSTATUS")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\n", p.ID, p.Name, p.Price, p.Stock, p.Status)
	}
	_ = w.Flush()
}

// parseProductForm applies the dashboard's rules (name of two or more
// characters, positive price) and the server's create rules.
func parseProductForm(form ProductForm) (product.CreateProductRequest, *session.ValidationError) {
	invalid := &session.ValidationError{Field: "product", Message: invalidProductMessage}

	name := strings.TrimSpace(form.Name)
	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if utf8.RuneCountInString(name) < 2 || err != nil || price <= 0 {
		return product.CreateProductRequest{}, invalid
	}
	description := strings.TrimSpace(form.Description)
	req := product.CreateProductRequest{Name: name, Price: &price, Description: &description}
	if _, _, _, err := product.ValidateCreateRequest(req); err != nil {
		return product.CreateProductRequest{}, invalid
	}
	return req, nil
}
