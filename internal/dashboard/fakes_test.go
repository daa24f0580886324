package dashboard

import (
	"context"
	"sync"

	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/product"
	"marketplace_backend/internal/session"
)

// fakeAPI serves products per token ("token-<uid>"). A non-nil gate blocks
// every call until it is closed or the call's context ends.
type fakeAPI struct {
	mu       sync.Mutex
	products map[string][]product.ProductSummary
	gate     chan struct{}
	failWith map[string]error // token -> error
	tokens   []string
	creates  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{products: map[string][]product.ProductSummary{}, failWith: map[string]error{}}
}

func (f *fakeAPI) wait(ctx context.Context, token string) error {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	gate := f.gate
	err := f.failWith[token]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeAPI) CreateProduct(ctx context.Context, token string, req product.CreateProductRequest) (*domain.Product, error) {
	if err := f.wait(ctx, token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	p := domain.Product{ID: "p" + string(rune('0'+f.creates)), Name: req.Name, Price: *req.Price, Description: *req.Description, VendorID: token, Status: domain.ProductStatusActive}
	f.products[token] = append(f.products[token], product.ToSummary(p))
	return &p, nil
}

func (f *fakeAPI) ListProducts(ctx context.Context, token string) ([]product.ProductSummary, error) {
	if err := f.wait(ctx, token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]product.ProductSummary(nil), f.products[token]...), nil
}

func (f *fakeAPI) SearchCatalog(ctx context.Context, token, query string, page, pageSize int) (*catalog.SearchResponse, error) {
	if err := f.wait(ctx, token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	res := &catalog.SearchResponse{Pagination: &common.Pagination{CurrentPage: page, PageSize: pageSize, TotalPages: 1}}
	for _, list := range f.products {
		for _, p := range list {
			if query == "" || p.Name == query {
				res.Products = append(res.Products, catalog.Item{ID: p.ID, Name: p.Name, Price: p.Price})
			}
		}
	}
	res.Pagination.TotalItems = int64(len(res.Products))
	return res, nil
}

func (f *fakeAPI) setGate(g chan struct{}) {
	f.mu.Lock()
	f.gate = g
	f.mu.Unlock()
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

type fakeTokens struct {
	token  string
	forced int
}

func (t *fakeTokens) IDToken(_ context.Context, force bool) (string, error) {
	if force {
		t.forced++
	}
	return t.token, nil
}

type fakeSession struct {
	mu      sync.Mutex
	logouts int
}

func (s *fakeSession) Logout(context.Context) error {
	s.mu.Lock()
	s.logouts++
	s.mu.Unlock()
	return nil
}

func (s *fakeSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

type notice struct {
	kind session.NoticeKind
	msg  string
}

type notices struct {
	mu   sync.Mutex
	list []notice
}

func (n *notices) Notify(kind session.NoticeKind, msg string) {
	n.mu.Lock()
	n.list = append(n.list, notice{kind, msg})
	n.mu.Unlock()
}

func (n *notices) last() notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.list) == 0 {
		return notice{}
	}
	return n.list[len(n.list)-1]
}

// syncBuffer is a goroutine-safe output sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// fakeSource hands every subscriber the current session and later updates.
type fakeSource struct {
	mu   sync.Mutex
	cur  session.Session
	subs []chan session.Session
}

func (s *fakeSource) Subscribe() (<-chan session.Session, func()) {
	ch := make(chan session.Session, 1)
	s.mu.Lock()
	ch <- s.cur
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch, func() {}
}

func (s *fakeSource) set(sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = sess
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- sess
	}
}

type navLog struct {
	mu    sync.Mutex
	paths []string
}

func (n *navLog) Navigate(p string) {
	n.mu.Lock()
	n.paths = append(n.paths, p)
	n.mu.Unlock()
}

func (n *navLog) snapshot() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}
