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
	"github.com/tablekit/go-auth/middleware/jwtware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// restaurantd is a downstream resource service. It accepts tokens minted by
// identityd in trust-claims mode: the claims snapshot is authoritative for the
// request and no identity lookup happens here.
func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Debug),
		glog.WithName("restaurantd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := LoadConfig()
	if err != nil {
		lgr.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		lgr.Error("database bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	tokenService := auth.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		lgr.GetLogger("auth:tokens"),
	)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "restaurantd",
			StrictRouting: false,
		}))
	})
	srv.Router().WithLogger(lgr.GetLogger("router"))

	controller := &RestaurantController{
		Repo:   NewRestaurantsRepository(db),
		Logger: lgr.GetLogger("restaurants"),
	}

	guard := auth.NewAccessGuard().WithLogger(lgr.GetLogger("auth:guard"))
	RegisterRestaurantRoutes(srv.Router(), controller, protectWith(cfg, tokenService, guard))

	lgr.Info("listening", "address", cfg.Address, "mode", cfg.GetVerificationMode())
	srv.Serve(cfg.Address)

	WaitExitSignal()
	lgr.Info("shutting down")
}

// protectWith builds the per-route guard factory. Each route hands its role
// set in; an empty set still demands a valid token. Admission runs through
// the shared access guard.
func protectWith(cfg *Config, service auth.TokenService, guard *auth.AccessGuard) func(roles ...auth.Role) router.MiddlewareFunc {
	return func(roles ...auth.Role) router.MiddlewareFunc {
		return jwtware.New(jwtware.Config{
			SigningKey: jwtware.SigningKey{
				JWTAlg: cfg.GetSigningMethod(),
				Key:    []byte(cfg.GetSigningKey()),
			},
			ContextKey:      cfg.GetContextKey(),
			TokenLookup:     cfg.GetTokenLookup(),
			AuthScheme:      cfg.GetAuthScheme(),
			TokenValidator:  serviceValidator{service: service},
			RequiredRoles:   roles,
			RoleChecker:     auth.GuardRoleChecker(guard),
			ContextEnricher: auth.ContextEnricherAdapter,
		})
	}
}

// serviceValidator bridges the token service into the middleware's validator
// interface.
type serviceValidator struct {
	service auth.TokenService
}

func (v serviceValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func openDatabase(ctx context.Context, cfg *Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.NewCreateTable().
		Model((*Restaurant)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

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
