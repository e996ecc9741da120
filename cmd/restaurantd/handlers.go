package main

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/tablekit/go-auth"
)

// RestaurantController serves the restaurant catalog. Every route requires a
// valid token; the role sets below decide who gets past authentication.
type RestaurantController struct {
	Repo   Restaurants
	Logger auth.Logger
}

// RegisterRestaurantRoutes mounts the catalog routes. Creation and updates are
// admin only, reads are open to any known role, and removal admits any
// authenticated caller regardless of role.
func RegisterRestaurantRoutes[T any](app router.Router[T], ctrl *RestaurantController, protect func(roles ...auth.Role) router.MiddlewareFunc) {
	app.Post("/restaurants", ctrl.Create, protect(auth.RoleAdmin)).SetName("restaurants.create")
	app.Get("/restaurants", ctrl.List, protect(auth.RoleAdmin, auth.RoleUser)).SetName("restaurants.index")
	app.Get("/restaurants/:id", ctrl.Show, protect(auth.RoleAdmin, auth.RoleUser)).SetName("restaurants.show")
	app.Patch("/restaurants/:id", ctrl.Update, protect(auth.RoleAdmin)).SetName("restaurants.update")
	app.Delete("/restaurants/:id", ctrl.Remove, protect()).SetName("restaurants.remove")
	app.Get("/health", ctrl.Health).SetName("restaurants.health")
}

type RestaurantPayload struct {
	Name    string   `json:"name" form:"name"`
	Address string   `json:"address" form:"address"`
	Phone   string   `json:"phone" form:"phone"`
	Cuisine []string `json:"cuisine" form:"cuisine"`
}

func (r RestaurantPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Address, validation.Required),
	)
}

func (r RestaurantPayload) record() *Restaurant {
	return &Restaurant{
		Name:    r.Name,
		Address: r.Address,
		Phone:   r.Phone,
		Cuisine: r.Cuisine,
	}
}

func (h *RestaurantController) Create(ctx router.Context) error {
	payload := RestaurantPayload{}
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": "unable to parse request payload",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":  "validation_error",
			"fields": auth.FormatValidationErrorToMap(err),
		})
	}

	record, err := h.Repo.Save(ctx.Context(), payload.record())
	if err != nil {
		return auth.WriteError(ctx, h.Logger, err)
	}

	return ctx.JSON(http.StatusCreated, record)
}

func (h *RestaurantController) List(ctx router.Context) error {
	records, err := h.Repo.List(ctx.Context())
	if err != nil {
		return auth.WriteError(ctx, h.Logger, err)
	}

	if records == nil {
		records = []*Restaurant{}
	}

	return ctx.JSON(http.StatusOK, records)
}

func (h *RestaurantController) Show(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": "id must be a valid UUID",
		})
	}

	record, err := h.Repo.Get(ctx.Context(), id)
	if err != nil {
		return auth.WriteError(ctx, h.Logger, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

// Update applies a partial change set; absent fields keep their stored value,
// so no validation beyond payload shape is run here.
func (h *RestaurantController) Update(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": "id must be a valid UUID",
		})
	}

	payload := RestaurantPayload{}
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": "unable to parse request payload",
		})
	}

	record, err := h.Repo.Amend(ctx.Context(), id, payload.record())
	if err != nil {
		return auth.WriteError(ctx, h.Logger, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

func (h *RestaurantController) Remove(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": "id must be a valid UUID",
		})
	}

	record, err := h.Repo.Remove(ctx.Context(), id)
	if err != nil {
		return auth.WriteError(ctx, h.Logger, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

func (h *RestaurantController) Health(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(ctx router.Context) (uuid.UUID, error) {
	return uuid.Parse(ctx.Param("id"))
}
