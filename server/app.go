package server

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	catalogapi "github.com/touslux/catalog-api"
	"github.com/touslux/catalog-api/auth"
	"github.com/touslux/catalog-api/auth/firebase"
	"github.com/touslux/catalog-api/catalog"
	"github.com/touslux/catalog-api/config"
	"github.com/touslux/catalog-api/reviews"
)

// App wires configuration, persistence, auth, and the HTTP surface
// together. Each With* step fills in one concern; Run starts the listener.
type App struct {
	config   *gconfig.Container[*config.BaseConfig]
	logger   *glog.BaseLogger
	bunDB    *bun.DB
	repo     auth.RepositoryManager
	issuer   *auth.SessionIssuer
	tokens   auth.TokenService
	verifier *firebase.Verifier
	srv      router.Server[*fiber.App]
}

// New creates an App from loaded configuration.
func New(cfg *gconfig.Container[*config.BaseConfig], logger *glog.BaseLogger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Config returns the raw configuration.
func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

// GetLogger returns a named child logger.
func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

// DB returns the bun handle, nil before WithPersistence.
func (a *App) DB() *bun.DB {
	return a.bunDB
}

// WithPersistence opens the database, runs migrations, and seeds fixtures.
func (a *App) WithPersistence(ctx context.Context) error {
	cfg := a.Config().GetPersistence()

	db, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*auth.User)(nil))
	persistence.RegisterModel((*catalog.Product)(nil))
	persistence.RegisterModel((*catalog.Comparison)(nil))
	persistence.RegisterModel((*reviews.Review)(nil))

	client, err := persistence.New(cfg, db, sqlitedialect.New())
	if err != nil {
		return err
	}

	client.SetLogger(a.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(catalogapi.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	client.RegisterFixtures(catalogapi.GetFixturesFS()).AddOptions(persistence.WithTrucateTables())

	if err := client.Seed(ctx); err != nil {
		return err
	}

	a.bunDB = client.DB()
	a.repo = auth.NewRepositoryManager(a.bunDB)

	return a.repo.Validate()
}

// WithAuth builds the Firebase verifier, the token service, and the session
// issuer.
func (a *App) WithAuth(ctx context.Context) error {
	authCfg := a.Config().GetAuth()
	fbCfg := a.Config().GetFirebase()

	verifier, err := firebase.NewVerifier(firebase.Config{
		ProjectID: fbCfg.GetProjectID(),
		JWKSURL:   fbCfg.GetJWKSURL(),
	}, firebase.WithLogger(glogAdapter{a.GetLogger("auth:firebase")}))
	if err != nil {
		return err
	}
	a.verifier = verifier

	a.tokens = auth.NewTokenServiceFromConfig(authCfg, glogAdapter{a.GetLogger("auth:tokens")})

	a.issuer = auth.NewSessionIssuer(
		verifier,
		a.repo.Users(),
		a.tokens,
		auth.WithLogger(glogAdapter{a.GetLogger("auth:issuer")}),
	)

	return nil
}

// WithHTTPServer builds the fiber-backed router and registers every route.
func (a *App) WithHTTPServer(ctx context.Context) error {
	srv := router.NewFiberAdapter(func(app *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
			AppName:       "catalog-api",
		}))
	})

	srv.Router().WithLogger(a.GetLogger("router"))

	a.srv = srv
	a.registerRoutes()

	return nil
}

func (a *App) registerRoutes() {
	r := a.srv.Router()
	contextKey := a.Config().GetAuth().GetContextKey()

	errorHandler := JSONErrorHandler(glogAdapter{a.GetLogger("http")})

	protected := auth.Protected(auth.MiddlewareConfig{
		Validator:    a.tokens,
		ContextKey:   contextKey,
		ErrorHandler: errorHandler,
	})
	admin := auth.Protected(auth.MiddlewareConfig{
		Validator:    a.tokens,
		ContextKey:   contextKey,
		RequiredRole: auth.RoleAdmin,
		ErrorHandler: errorHandler,
	})

	authController := auth.NewController(a.issuer, a.repo,
		auth.WithControllerLogger(glogAdapter{a.GetLogger("auth:ctrl")}),
		auth.WithControllerErrorHandler(errorHandler),
		auth.WithControllerContextKey(contextKey),
	)
	authController.RegisterRoutes(r, protected)

	usersController := auth.NewUsersController(a.repo,
		auth.WithUsersLogger(glogAdapter{a.GetLogger("users:ctrl")}),
		auth.WithUsersErrorHandler(errorHandler),
		auth.WithUsersContextKey(contextKey),
	)
	usersController.RegisterRoutes(r, protected, admin)

	productsRepo := catalog.NewProductRepository(a.bunDB)
	productsController := catalog.NewProductsController(productsRepo,
		catalog.WithProductsLogger(glogAdapter{a.GetLogger("catalog:products")}),
		catalog.WithProductsErrorHandler(errorHandler),
	)
	productsController.RegisterRoutes(r, admin)

	comparisonsRepo := catalog.NewComparisonRepository(a.bunDB, productsRepo)
	comparisonsController := catalog.NewComparisonsController(comparisonsRepo,
		catalog.WithComparisonsLogger(glogAdapter{a.GetLogger("catalog:comparisons")}),
		catalog.WithComparisonsErrorHandler(errorHandler),
	)
	comparisonsController.RegisterRoutes(r, admin)

	reviewService := reviews.NewService(
		reviews.NewReviewRepository(a.bunDB),
		reviews.WithServiceLogger(glogAdapter{a.GetLogger("reviews:svc")}),
	)
	reviewsController := reviews.NewController(reviewService,
		reviews.WithControllerLogger(glogAdapter{a.GetLogger("reviews:ctrl")}),
		reviews.WithControllerErrorHandler(errorHandler),
		reviews.WithControllerContextKey(contextKey),
	)
	reviewsController.RegisterRoutes(r, protected)
}

// Run starts the listener and blocks until an exit signal arrives.
func (a *App) Run() {
	addr := a.Config().GetServer().GetAddress()
	a.GetLogger("server").Info("listening", "address", addr)

	a.srv.Serve(addr)

	WaitExitSignal()

	if a.verifier != nil {
		a.verifier.Close()
	}
}

// WaitExitSignal blocks until the process receives an interrupt or
// termination signal.
func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

// glogAdapter bridges glog's key-value logger to the printf-style Logger
// the controllers take.
type glogAdapter struct {
	logger glog.Logger
}

func (g glogAdapter) Debug(format string, args ...any) {
	g.logger.Debug(fmt.Sprintf(format, args...))
}

func (g glogAdapter) Info(format string, args ...any) {
	g.logger.Info(fmt.Sprintf(format, args...))
}

func (g glogAdapter) Warn(format string, args ...any) {
	g.logger.Warn(fmt.Sprintf(format, args...))
}

func (g glogAdapter) Error(format string, args ...any) {
	g.logger.Error(fmt.Sprintf(format, args...))
}
