package dashboard

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/guard"
	"marketplace_backend/internal/session"
)

// ErrUnknownRoute is returned by Open for paths without a view.
var ErrUnknownRoute = errors.New("unknown route")

type route struct {
	guard guard.Guard
	view  guard.View
}

// Router maps dashboard paths to guarded views.
type Router struct {
	src    guard.Source
	nav    session.Navigator
	routes map[string]route
}

// NewRouter mounts each view behind a guard admitting only its role.
func NewRouter(src guard.Source, nav session.Navigator, vendor *VendorView, buyer *BuyerView, rider *RiderView) *Router {
	return &Router{
		src: src,
		nav: nav,
		routes: map[string]route{
			domain.DashboardPathFor(domain.RoleVendor): {guard.Guard{Allowed: []domain.Role{domain.RoleVendor}}, vendor},
			domain.DashboardPathFor(domain.RoleBuyer):  {guard.Guard{Allowed: []domain.Role{domain.RoleBuyer}}, buyer},
			domain.DashboardPathFor(domain.RoleRider):  {guard.Guard{Allowed: []domain.Role{domain.RoleRider}}, rider},
		},
	}
}

// Open mounts the view for path until ctx is done. The bare dashboard path
// resolves to the signed-in account's role dashboard.
func (r *Router) Open(ctx context.Context, path string) error {
	if path == domain.DashboardPath {
		s, err := r.resolved(ctx)
		if err != nil {
			return err
		}
		if !s.Authenticated() {
			r.nav.Navigate(domain.LoginPath)
			return nil
		}
		path = domain.DashboardPathFor(s.User.Role)
		r.nav.Navigate(path)
	}

	rt, ok := r.routes[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}
	return rt.guard.Mount(ctx, r.src, rt.view, r.nav)
}

func (r *Router) resolved(ctx context.Context) (session.Session, error) {
	updates, unsubscribe := r.src.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return session.Session{}, ctx.Err()
		case s, ok := <-updates:
			if !ok {
				return session.Session{}, session.ErrStopped
			}
			if s.Resolved() {
				return s, nil
			}
		}
	}
}
