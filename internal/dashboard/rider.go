package dashboard

import (
	"context"
	"fmt"

	"marketplace_backend/internal/session"
)

// RiderView is the rider's delivery schedule. Deliveries are not tracked yet,
// so the schedule is always empty.
type RiderView struct {
	screen
	deps Deps
}

// NewRiderView creates the rider dashboard.
func NewRiderView(deps Deps) *RiderView {
	return &RiderView{deps: deps}
}

func (v *RiderView) Placeholder() {
	fmt.Fprintln(v.deps.Out, "Loading dashboard...")
}

func (v *RiderView) Show(ctx context.Context, s session.Session) {
	v.show(ctx, s)
	fmt.Fprintln(v.deps.Out, "Welcome Rider")
	fmt.Fprintf(v.deps.Out, "%s, %s\n", greeting(v.deps.now()), s.User.Email)
	fmt.Fprintln(v.deps.Out, "Today's Delivery Schedule")
	fmt.Fprintln(v.deps.Out, "No deliveries scheduled.")
}

func (v *RiderView) Update(s session.Session) { v.update(s) }

func (v *RiderView) Hide() { v.hide() }
