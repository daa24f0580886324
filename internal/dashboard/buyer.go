package dashboard

import (
	"context"
	"fmt"
	"text/tabwriter"

	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/session"

	"go.uber.org/zap"
)

// DefaultPageSize is the number of catalog entries per page.
const DefaultPageSize = 10

// BuyerView browses the catalog of active products.
type BuyerView struct {
	screen
	deps Deps

	results *catalog.SearchResponse
	loaded  chan struct{}
}

// NewBuyerView creates the buyer dashboard.
func NewBuyerView(deps Deps) *BuyerView {
	deps.Logger = deps.Logger.Named("buyer_dashboard")
	return &BuyerView{deps: deps, loaded: make(chan struct{})}
}

func (v *BuyerView) Placeholder() {
	fmt.Fprintln(v.deps.Out, "Loading dashboard...")
}

// Show renders the header and loads the first catalog page.
func (v *BuyerView) Show(ctx context.Context, s session.Session) {
	v.mu.Lock()
	v.results = nil
	loaded := make(chan struct{})
	v.loaded = loaded
	v.mu.Unlock()
	v.show(ctx, s)

	fmt.Fprintln(v.deps.Out, "Welcome Buyer")
	fmt.Fprintf(v.deps.Out, "%s, %s\n", greeting(v.deps.now()), displayName(s.User))

	go func() {
		defer close(loaded)
		if _, err := v.Search(ctx, "", 1); err != nil {
			v.deps.Logger.Debug("Initial catalog load failed", zap.Error(err))
		}
	}()
}

func (v *BuyerView) Update(s session.Session) { v.update(s) }

func (v *BuyerView) Hide() { v.hide() }

// WaitLoaded blocks until the first page requested by the latest Show has
// loaded or failed.
func (v *BuyerView) WaitLoaded(ctx context.Context) error {
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

// Results returns the last loaded page, or nil.
func (v *BuyerView) Results() *catalog.SearchResponse {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.results
}

// Search fetches and renders one catalog page. An empty query lists everything.
func (v *BuyerView) Search(ctx context.Context, query string, page int) (*catalog.SearchResponse, error) {
	var res *catalog.SearchResponse
	err := v.call(ctx, v.deps.Tokens, func(ctx context.Context, token string) error {
		var err error
		res, err = v.deps.Catalog.SearchCatalog(ctx, token, query, page, DefaultPageSize)
		return err
	}, func() {
		v.results = res
	})
	if err != nil {
		report(ctx, v.deps, err)
		return nil, err
	}
	v.render(res)
	return res, nil
}

func (v *BuyerView) render(res *catalog.SearchResponse) {
	if len(res.Products) == 0 {
		fmt.Fprintln(v.deps.Out, "No products found.")
		return
	}
	w := tabwriter.NewWriter(v.deps.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tDESCRIPTION")
	for _, p := range res.Products {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\n", p.ID, p.Name, p.Price, p.Stock, p.Description)
	}
	_ = w.Flush()
	if pg := res.Pagination; pg != nil && pg.TotalPages > 1 {
		fmt.Fprintf(v.deps.Out, "Page %d of %d (%d products)\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
	}
}
