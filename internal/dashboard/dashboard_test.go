package dashboard

import (
	"context"
	"net/http"
	"testing"
	"time"

	"marketplace_backend/internal/apiclient"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/product"
	"marketplace_backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	api     *fakeAPI
	tokens  *fakeTokens
	sess    *fakeSession
	notices *notices
	out     *syncBuffer
	deps    Deps
}

func newFixture() *fixture {
	f := &fixture{
		api:     newFakeAPI(),
		tokens:  &fakeTokens{token: "token-fresh"},
		sess:    &fakeSession{},
		notices: &notices{},
		out:     &syncBuffer{},
	}
	f.deps = Deps{
		Products: f.api,
		Catalog:  f.api,
		Tokens:   f.tokens,
		Session:  f.sess,
		Notifier: f.notices,
		Out:      f.out,
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) },
	}
	return f
}

func vendorSession(uid string, epoch uint64) session.Session {
	return session.Session{
		User:   &domain.Account{ID: uid, Email: uid + "@example.com", Name: "nia okafor", Role: domain.RoleVendor},
		Token:  "token-" + uid,
		Status: session.StatusAuthenticated,
		Epoch:  epoch,
	}
}

func showVendor(t *testing.T, f *fixture, s session.Session) (*VendorView, context.CancelFunc) {
	t.Helper()
	v := NewVendorView(f.deps)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	v.Show(ctx, s)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, v.WaitLoaded(waitCtx))
	return v, cancel
}

func TestVendorView_ShowLoadsOwnProducts(t *testing.T) {
	f := newFixture()
	f.api.products["token-a"] = []product.ProductSummary{{ID: "p1", Name: "Rebar", Price: 20}}
	f.api.products["token-b"] = []product.ProductSummary{{ID: "p2", Name: "Gravel", Price: 3}}

	v, _ := showVendor(t, f, vendorSession("a", 1))

	got := v.Products()
	require.Len(t, got, 1)
	assert.Equal(t, "Rebar", got[0].Name)
	out := f.out.String()
	assert.Contains(t, out, "Welcome Vendor")
	assert.Contains(t, out, "Good morning, Nia")
	assert.Contains(t, out, "Rebar")
	assert.NotContains(t, out, "Gravel")
}

func TestVendorView_CreateValidatesBeforeNetwork(t *testing.T) {
	f := newFixture()
	v, _ := showVendor(t, f, vendorSession("a", 1))
	callsAfterLoad := f.api.calls()

	for _, form := range []ProductForm{
		{Name: "Beam", Price: "0"},
		{Name: "Beam", Price: "-3"},
		{Name: "Beam", Price: "abc"},
		{Name: "Beam", Price: "NaN"},
		{Name: "B", Price: "10"},
		{Name: "  ", Price: "10"},
	} {
		_, err := v.Create(context.Background(), form)
		var ve *session.ValidationError
		require.ErrorAs(t, err, &ve, form)
		assert.Equal(t, invalidProductMessage, f.notices.last().msg)
	}
	assert.Equal(t, callsAfterLoad, f.api.calls())
}

func TestVendorView_CreateRoundTrip(t *testing.T) {
	f := newFixture()
	v, _ := showVendor(t, f, vendorSession("v", 1))

	created, err := v.Create(context.Background(), ProductForm{Name: "Steel Beam", Price: "89.5", Description: "10ft"})
	require.NoError(t, err)
	assert.Equal(t, "token-v", created.VendorID)
	assert.Equal(t, notice{session.NoticeSuccess, "Product created successfully!"}, f.notices.last())

	list := v.Products()
	require.Len(t, list, 1)
	assert.Equal(t, "Steel Beam", list[0].Name)
	assert.Equal(t, 89.5, list[0].Price)
	assert.Equal(t, "10ft", list[0].Description)
}

func TestVendorView_HideDropsInFlightResponse(t *testing.T) {
	f := newFixture()
	v, cancel := showVendor(t, f, vendorSession("a", 1))

	gate := make(chan struct{})
	f.api.setGate(gate)
	done := make(chan error, 1)
	go func() {
		_, err := v.Refresh(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.api.calls() == 2 }, time.Second, 5*time.Millisecond)

	v.Hide()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStale)
	case <-time.After(time.Second):
		t.Fatal("in-flight call was not cancelled")
	}
	close(gate)
	_, err := v.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrHidden)
}

func TestVendorView_SessionChangeDropsResponse(t *testing.T) {
	f := newFixture()
	f.api.products["token-a"] = []product.ProductSummary{{ID: "p1", Name: "Rebar"}}
	v := NewVendorView(f.deps)
	ctxA := context.Background()
	v.Show(ctxA, vendorSession("a", 1))
	waitCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, v.WaitLoaded(waitCtx))

	gate := make(chan struct{})
	f.api.setGate(gate)
	done := make(chan error, 1)
	go func() {
		_, err := v.Refresh(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.api.calls() == 2 }, time.Second, 5*time.Millisecond)

	// Another account takes over without cancelling the first call.
	v.Hide()
	f.api.setGate(nil)
	v.Show(context.Background(), vendorSession("b", 2))
	close(gate)

	assert.ErrorIs(t, <-done, ErrStale)
	require.NoError(t, v.WaitLoaded(waitCtx))
	for _, p := range v.Products() {
		assert.NotEqual(t, "Rebar", p.Name)
	}
}

func TestVendorView_ExpiredSessionRetriesWithFreshToken(t *testing.T) {
	f := newFixture()
	f.api.failWith["token-a"] = &apiclient.Error{Status: http.StatusUnauthorized, Code: "SESSION_EXPIRED"}
	f.api.products["token-fresh"] = []product.ProductSummary{{ID: "p1", Name: "Rebar"}}

	v, _ := showVendor(t, f, vendorSession("a", 1))

	assert.Equal(t, 1, f.tokens.forced)
	require.Len(t, v.Products(), 1)
}

func TestVendorView_AccessDeniedLogsOut(t *testing.T) {
	f := newFixture()
	f.api.failWith["token-a"] = &apiclient.Error{Status: http.StatusUnauthorized, Code: "PROFILE_NOT_FOUND"}

	showVendor(t, f, vendorSession("a", 1))

	assert.Equal(t, notice{session.NoticeError, accessDeniedMessage}, f.notices.last())
	assert.Equal(t, 1, f.sess.count())
}

func TestBuyerView_Search(t *testing.T) {
	f := newFixture()
	f.api.products["token-v"] = []product.ProductSummary{{ID: "p1", Name: "Steel Beam", Price: 89.5}, {ID: "p2", Name: "Sand", Price: 4}}
	v := NewBuyerView(f.deps)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v.Show(ctx, session.Session{
		User:   &domain.Account{ID: "b", Email: "b@example.com", Role: domain.RoleBuyer},
		Token:  "token-b",
		Status: session.StatusAuthenticated,
		Epoch:  1,
	})
	require.NoError(t, v.WaitLoaded(ctx))
	assert.Len(t, v.Results().Products, 2)

	res, err := v.Search(ctx, "Sand", 1)
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Contains(t, f.out.String(), "Good morning, b@example.com")
}

func TestRouter_DashboardResolvesRole(t *testing.T) {
	f := newFixture()
	src := &fakeSource{cur: session.Session{Status: session.StatusLoading, Loading: true}}
	nav := &navLog{}
	vendor := NewVendorView(f.deps)
	r := NewRouter(src, nav, vendor, NewBuyerView(f.deps), NewRiderView(f.deps))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Open(ctx, domain.DashboardPath) }()

	src.set(vendorSession("v", 1))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, vendor.WaitLoaded(waitCtx))
	assert.Equal(t, []string{"/dashboard/vendor"}, nav.snapshot())

	src.set(session.Session{Status: session.StatusUnauthenticated, Epoch: 2})
	require.Eventually(t, func() bool {
		_, err := vendor.Refresh(context.Background())
		return err == ErrHidden
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"/dashboard/vendor", domain.LoginPath}, nav.snapshot())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRouter_UnknownRoute(t *testing.T) {
	f := newFixture()
	r := NewRouter(&fakeSource{}, &navLog{}, NewVendorView(f.deps), NewBuyerView(f.deps), NewRiderView(f.deps))
	assert.ErrorIs(t, r.Open(context.Background(), "/dashboard/admin"), ErrUnknownRoute)
}

func TestDisplayNameAndGreeting(t *testing.T) {
	assert.Equal(t, "Nia", displayName(&domain.Account{Name: "NIA okafor"}))
	assert.Equal(t, "r@example.com", displayName(&domain.Account{Email: "r@example.com"}))
	assert.Equal(t, "Good morning", greeting(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Good afternoon", greeting(time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Good evening", greeting(time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)))
}
