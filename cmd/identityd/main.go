package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/tablekit/go-auth"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// identityd is the credential and token issuing service. It owns the users
// table, exposes register/login/profile/health over JSON, and verifies tokens
// in "resolve" mode so revoked identities stop working immediately.
func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Debug),
		glog.WithName("identityd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := LoadConfig()
	if err != nil {
		lgr.Error("configuration error", "error", err)
		os.Exit(1)
	}

	if cfg.UsingInsecureDefault() {
		lgr.Warn("JWT_SECRET not set, using an INSECURE development signing key; do not run this configuration anywhere that matters")
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg, lgr.GetLogger("persistence"))
	if err != nil {
		lgr.Error("database bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		lgr.Error("repository validation failed", "error", err)
		os.Exit(1)
	}

	provider := auth.NewUserProvider(repo.Users()).
		WithLogger(lgr.GetLogger("auth:prv"))

	authenticator := auth.NewAuthenticator(provider, repo, cfg).
		WithLogger(lgr.GetLogger("auth:authn"))

	verifier := auth.NewTokenVerifier(cfg, authenticator.TokenService(), provider, lgr.GetLogger("auth:verify"))
	authenticator.WithTokenValidator(verifier)

	httpAuth, err := auth.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		lgr.Error("http authenticator setup failed", "error", err)
		os.Exit(1)
	}
	httpAuth.WithLogger(lgr.GetLogger("auth:http"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "identityd",
			StrictRouting: false,
		}))
	})
	srv.Router().WithLogger(lgr.GetLogger("router"))

	controller := auth.NewAuthController(
		auth.WithControllerAuthenticator(authenticator),
		auth.WithControllerLogger(lgr.GetLogger("auth:ctrl")),
	)
	controller.Debug = cfg.Debug

	auth.RegisterAuthRoutes(srv.Router(), controller, httpAuth.ProtectedRoute())

	lgr.Info("listening", "address", cfg.Address, "mode", cfg.GetVerificationMode())
	srv.Serve(cfg.Address)

	WaitExitSignal()
	lgr.Info("shutting down")
}

func openDatabase(ctx context.Context, cfg *Config, lgr glog.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := auth.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	lgr.Debug("migrations applied", "dsn", cfg.DatabaseDSN)

	return db, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
