package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go-reseller-ws/config"
	"go-reseller-ws/internal/kv"
	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/notify"
	"go-reseller-ws/internal/pricing"
	"go-reseller-ws/internal/repository"
	"go-reseller-ws/internal/service"
	"go-reseller-ws/internal/store"
	"go-reseller-ws/pkg/database"
	"go-reseller-ws/pkg/jwt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	errUsage         = errors.New("usage: resellerctl <login|whoami|logout|dashboard|set-price|set-active|quote|reset-password> [flags]")
	errNotSignedIn   = errors.New("not signed in, run `resellerctl login` first")
	errResellersOnly = errors.New("this command is only available to resellers")
)

type services struct {
	users   repository.UserRepository
	auth    service.AuthService
	catalog service.CatalogService
}

type cli struct {
	cfg     *config.Config
	logger  *slog.Logger
	out     io.Writer
	session *store.SessionStore

	// connect is replaced in tests
	connect func() (*services, error)
}

func newCLI(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*cli, error) {
	slot, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open session store")
	}
	session, err := store.NewSessionStore(ctx, slot, logger)
	if err != nil {
		return nil, err
	}
	c := &cli{cfg: cfg, logger: logger, out: out, session: session}
	c.connect = c.connectDB
	return c, nil
}

func (c *cli) connectDB() (*services, error) {
	db, err := database.ConnectDB(c.cfg.Database)
	if err != nil {
		return nil, err
	}
	return buildServices(db, c.cfg, c.logger), nil
}

func buildServices(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *services {
	products := repository.NewProductRepo(db)
	listings := repository.NewResellerProductRepo(db)
	orders := repository.NewOrderRepo(db, products)
	users := repository.NewUserRepo(db)
	return &services{
		users: users,
		auth:  service.NewAuthService(users, jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)),
		catalog: service.NewCatalogService(repository.NewDashboardRepo(orders, listings), listings, products,
			notify.NewLogNotifier(logger), logger,
			store.WithRetry(cfg.Dashboard.RetryAttempts, cfg.Dashboard.RetryInitial),
			store.WithRecentOrderLimit(cfg.Dashboard.RecentOrders),
		),
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "whoami":
		return c.whoami()
	case "logout":
		if err := c.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "signed out")
		return nil
	case "dashboard":
		return c.dashboard(ctx)
	case "set-price":
		return c.setPrice(ctx, rest)
	case "set-active":
		return c.setActive(ctx, rest)
	case "quote":
		return c.quote(rest)
	case "reset-password":
		return c.resetPassword(ctx, rest)
	}
	return errors.Wrapf(errUsage, "unknown command %q", cmd)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login: --email and --password are required")
	}

	svc, err := c.connect()
	if err != nil {
		return err
	}
	resp, err := svc.auth.Login(ctx, *email, *password)
	if err != nil {
		return errors.Wrap(err, "login")
	}
	err = c.session.SetUser(ctx, store.SessionUser{
		ID:       resp.User.ID,
		Email:    resp.User.Email,
		Username: resp.User.Username,
		FullName: resp.User.FullName,
		Role:     resp.User.Role,
		Token:    resp.Token,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s (%s)\n", resp.User.Username, resp.User.Role)
	return nil
}

func (c *cli) whoami() error {
	user, ok := c.session.User()
	if !ok {
		return errNotSignedIn
	}
	fmt.Fprintf(c.out, "%s <%s> %s\n", user.Username, user.Email, user.Role)
	return nil
}

// reseller returns the signed-in reseller after re-checking the stored token.
func (c *cli) reseller(ctx context.Context) (*services, uuid.UUID, error) {
	user, ok := c.session.User()
	if !ok {
		return nil, uuid.Nil, errNotSignedIn
	}
	if user.Role != model.RoleReseller {
		return nil, uuid.Nil, errResellersOnly
	}
	svc, err := c.connect()
	if err != nil {
		return nil, uuid.Nil, err
	}
	if _, err := svc.auth.ValidateToken(ctx, user.Token); err != nil {
		// a stale token can never become valid again
		if logoutErr := c.session.Logout(ctx); logoutErr != nil {
			c.logger.Warn("clear stale session", "error", logoutErr)
		}
		return nil, uuid.Nil, errors.Wrap(err, "session is no longer valid")
	}
	return svc, user.ID, nil
}

func (c *cli) dashboard(ctx context.Context) error {
	svc, resellerID, err := c.reseller(ctx)
	if err != nil {
		return err
	}
	view, err := svc.catalog.Dashboard(ctx, resellerID)
	if err != nil {
		return errors.Wrap(err, "load dashboard")
	}
	return c.printJSON(view)
}

func (c *cli) setPrice(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-price", flag.ContinueOnError)
	product := fs.String("product", "", "product id")
	price := fs.Int64("price", 0, "selling price in rupiah")
	if err := fs.Parse(args); err != nil {
		return err
	}
	productID, err := uuid.Parse(*product)
	if err != nil {
		return errors.New("set-price: --product must be a product id")
	}
	if err := pricing.ValidatePrice(*price).Err(); err != nil {
		return err
	}

	svc, resellerID, err := c.reseller(ctx)
	if err != nil {
		return err
	}
	listing, err := svc.catalog.SetPrice(ctx, resellerID, productID, *price)
	if err != nil {
		return errors.Wrap(err, "set price")
	}
	return c.printJSON(listing)
}

func (c *cli) setActive(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-active", flag.ContinueOnError)
	product := fs.String("product", "", "product id")
	active := fs.Bool("active", true, "show the product on the storefront")
	if err := fs.Parse(args); err != nil {
		return err
	}
	productID, err := uuid.Parse(*product)
	if err != nil {
		return errors.New("set-active: --product must be a product id")
	}

	svc, resellerID, err := c.reseller(ctx)
	if err != nil {
		return err
	}
	listing, err := svc.catalog.SetActive(ctx, resellerID, productID, *active)
	if err != nil {
		return errors.Wrap(err, "set active")
	}
	return c.printJSON(listing)
}

func (c *cli) quote(args []string) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	base := fs.Int64("base", 0, "brand base price")
	price := fs.Int64("price", 0, "selling price")
	rate := fs.Int("rate", 0, "commission rate percent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := pricing.ValidatePrice(*price).Err(); err != nil {
		return err
	}
	if *rate < 0 || *rate > 100 {
		return errors.New("quote: --rate must be between 0 and 100")
	}
	return c.printJSON(pricing.Quote(*base, *price, *rate))
}

// resetPassword sets a new password without the old one. It is an operator
// command and talks to the database directly.
func (c *cli) resetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || len(*password) < 6 {
		return errors.New("reset-password: --email and a --password of at least 6 characters are required")
	}

	svc, err := c.connect()
	if err != nil {
		return err
	}
	user, err := svc.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(*email)))
	if err != nil {
		return errors.Wrapf(err, "find user %s", *email)
	}
	if err := user.SetPassword(*password); err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := svc.users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return errors.Wrap(err, "update password")
	}
	// invalidate every issued token
	if err := svc.users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		return errors.Wrap(err, "revoke sessions")
	}
	fmt.Fprintf(c.out, "password for %s has been reset\n", user.Email)
	return nil
}

func (c *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
