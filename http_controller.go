package auth

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the JSON auth endpoints. The profile route runs
// behind the protected middleware; register and login are open by nature.
func RegisterAuthRoutes[T any](app router.Router[T], controller *AuthController, protected router.MiddlewareFunc) {
	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("auth.register")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")

	app.Get(controller.Routes.Profile, controller.ProfileShow, protected).
		SetName("auth.profile")

	app.Get(controller.Routes.Health, controller.HealthShow).
		SetName("auth.health")
}

type AuthControllerRoutes struct {
	Register string
	Login    string
	Profile  string
	Health   string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Auther Authenticator
	Routes *AuthControllerRoutes
	// TrustClaims makes ProfileShow answer from the validated claims alone
	// instead of resolving the identity record, for services that never talk
	// to the identity store.
	TrustClaims  bool
	ContextKey   string
	ErrorHandler func(c router.Context, err error) error
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
		Routes: &AuthControllerRoutes{
			Register: "/auth/register",
			Login:    "/auth/login",
			Profile:  "/auth/profile",
			Health:   "/auth/health",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = func(ctx router.Context, err error) error {
			return WriteError(ctx, c.Logger, err)
		}
	}

	return c
}

func WithControllerAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerTrustClaims(trust bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.TrustClaims = trust
		return c
	}
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 100),
		),
		validation.Field(
			&r.Role,
			validation.Required,
			validation.In(RoleUser, RoleAdmin),
		),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 100),
		),
	)
}

// IdentitySummary is what leaves the service: never the password hash.
type IdentitySummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func summaryFromIdentity(identity Identity) IdentitySummary {
	return IdentitySummary{
		ID:    identity.ID(),
		Email: identity.Email(),
		Role:  identity.Role(),
	}
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": "could not parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Info("register payload rejected", "error", err)
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":  "validation_error",
			"fields": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	identity, err := a.Auther.Register(ctx.Context(), payload.Email, payload.Password, Role(payload.Role))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, summaryFromIdentity(identity))
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": "could not parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Info("login payload rejected", "error", err)
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":  "validation_error",
			"fields": FormatValidationErrorToMap(err),
		})
	}

	token, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"access_token": token,
	})
}

// ProfileShow answers with the identity behind the validated claims. In
// trust-claims mode the claims snapshot is returned as-is; otherwise the
// record is resolved from the store so the answer reflects current state.
func (a *AuthController) ProfileShow(ctx router.Context) error {
	claims, ok := GetClaims(ctx.Context())
	if !ok {
		claims, ok = GetRouterClaims(ctx, a.ContextKey)
	}
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, map[string]any{
			"error": "unauthorized",
		})
	}

	if a.TrustClaims {
		return ctx.JSON(http.StatusOK, IdentitySummary{
			ID:    claims.Subject(),
			Email: claims.Email(),
			Role:  claims.Role(),
		})
	}

	identity, err := a.Auther.IdentityFromClaims(ctx.Context(), claims)
	if err != nil {
		a.Logger.Warn("profile resolution failed", "subject", claims.Subject(), "error", err)
		return ctx.JSON(http.StatusUnauthorized, map[string]any{
			"error": "unauthorized",
		})
	}

	return ctx.JSON(http.StatusOK, summaryFromIdentity(identity))
}

func (a *AuthController) HealthShow(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status": "ok",
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
