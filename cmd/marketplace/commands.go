package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"marketplace_backend/internal/config"
	"marketplace_backend/internal/dashboard"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/session"

	"go.uber.org/zap"
)

var commands = map[string]func(args []string) int{
	"register":        registerCmd,
	"login":           loginCmd,
	"logout":          logoutCmd,
	"whoami":          whoamiCmd,
	"dashboard":       dashboardCmd,
	"products create": createProductCmd,
	"products list":   listProductsCmd,
	"catalog search":  searchCatalogCmd,
}

// errRedirected means the guard sent the user to the login page.
var errRedirected = errors.New("not signed in with a role that can open this page")

func registerCmd(args []string) int {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	role := fs.String("role", "", "One of buyer, vendor, rider")
	name := fs.String("name", "", "Display name (optional)")
	_ = fs.Parse(args)

	return withSession(func(ctx context.Context, c *cli) error {
		return c.Session.Register(ctx, *email, *password, *role, *name)
	})
}

func loginCmd(args []string) int {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	_ = fs.Parse(args)

	return withSession(func(ctx context.Context, c *cli) error {
		return c.Session.Login(ctx, *email, *password)
	})
}

func logoutCmd(args []string) int {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	return withSession(func(ctx context.Context, c *cli) error {
		if !c.Session.Snapshot().Authenticated() {
			fmt.Fprintln(c.Term.out, "Not logged in.")
			return nil
		}
		return c.Session.Logout(ctx)
	})
}

func whoamiCmd(args []string) int {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	_ = fs.Parse(args)

	return withSession(func(ctx context.Context, c *cli) error {
		s := c.Session.Snapshot()
		if !s.Authenticated() {
			fmt.Fprintln(c.Term.out, "Not logged in.")
			return nil
		}
		fmt.Fprintf(c.Term.out, "%s (%s)\n", s.User.Email, s.User.Role)
		if s.User.Name != "" {
			fmt.Fprintf(c.Term.out, "Name: %s\n", s.User.Name)
		}
		return nil
	})
}

func dashboardCmd(args []string) int {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	_ = fs.Parse(args)

	return withSession(func(ctx context.Context, c *cli) error {
		ready := c.Rider.WaitShown
		if s := c.Session.Snapshot(); s.Authenticated() {
			switch s.User.Role {
			case domain.RoleVendor:
				ready = c.Vendor.WaitLoaded
			case domain.RoleBuyer:
				ready = c.Buyer.WaitLoaded
			}
		}
		return openView(ctx, c, domain.DashboardPath, ready)
	})
}

func createProductCmd(args []string) int {
	fs := flag.NewFlagSet("products create", flag.ExitOnError)
	name := fs.String("name", "", "Product name")
	price := fs.String("price", "", "Unit price, e.g. 89.50")
	description := fs.String("description", "", "Product description (optional)")
	_ = fs.Parse(args)

	return withSession(func(ctx context.Context, c *cli) error {
		return openView(ctx, c, domain.DashboardPathFor(domain.RoleVendor), func(ctx context.Context) error {
			if err := c.Vendor.WaitLoaded(ctx); err != nil {
				return err
			}
			_, err := c.Vendor.Create(ctx, dashboard.ProductForm{Name: *name, Price: *price, Description: *description})
			return err
		})
	})
}

func listProductsCmd(args []string) int {
	fs := flag.NewFlagSet("products list", flag.ExitOnError)
	_ = fs.Parse(args)

	return withSession(func(ctx context.Context, c *cli) error {
		return openView(ctx, c, domain.DashboardPathFor(domain.RoleVendor), c.Vendor.WaitLoaded)
	})
}

func searchCatalogCmd(args []string) int {
	fs := flag.NewFlagSet("catalog search", flag.ExitOnError)
	query := fs.String("q", "", "Search text (empty lists every product)")
	page := fs.Int("page", 1, "Result page")
	_ = fs.Parse(args)

	return withSession(func(ctx context.Context, c *cli) error {
		return openView(ctx, c, domain.DashboardPathFor(domain.RoleBuyer), func(ctx context.Context) error {
			if err := c.Buyer.WaitShown(ctx); err != nil {
				return err
			}
			_, err := c.Buyer.Search(ctx, *query, *page)
			return err
		})
	})
}

// withSession builds the client, starts the session manager, waits for the
// first resolved session and runs fn. It returns the exit code.
func withSession(fn func(ctx context.Context, c *cli) error) int {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err)
		return 1
	}
	c, cleanup, err := initializeCLI(cfg)
	if err != nil {
		log.Printf("FATAL: Failed to initialize client: %v", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx, cancelRun := context.WithCancel(ctx)
	runDone := make(chan error, 1)
	go func() { runDone <- c.Session.Run(runCtx) }()
	defer func() {
		cancelRun()
		<-runDone
	}()

	if err := c.Identity.Start(ctx); err != nil {
		c.Logger.Error("Failed to start identity client", zap.Error(err))
		return 1
	}
	waitCtx, cancelWait := context.WithTimeout(ctx, 2*cfg.RequestTimeout)
	defer cancelWait()
	if _, err := c.Session.WaitResolved(waitCtx); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+session.ErrorMessage(err))
		return 1
	}

	actionCtx, cancelAction := context.WithTimeout(ctx, 4*cfg.RequestTimeout)
	defer cancelAction()
	if err := fn(actionCtx, c); err != nil {
		c.Logger.Debug("Command failed", zap.Error(err))
		if errors.Is(err, errRedirected) {
			fmt.Fprintln(os.Stderr, "error: Please log in with an account that can open this page.")
		}
		return 1
	}
	return 0
}

// openView mounts the guarded page at path and runs ready once it can. It
// fails with errRedirected if the guard sends the user to the login page.
func openView(ctx context.Context, c *cli, path string, ready func(ctx context.Context) error) error {
	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	openDone := make(chan error, 1)
	go func() { openDone <- c.Router.Open(viewCtx, path) }()
	defer func() {
		cancel()
		<-openDone
	}()

	readyDone := make(chan error, 1)
	go func() { readyDone <- ready(viewCtx) }()

	select {
	case err := <-readyDone:
		return err
	case <-c.Term.redirects:
		return errRedirected
	case err := <-openDone:
		openDone <- err
		if err == nil {
			return errRedirected
		}
		return err
	}
}
