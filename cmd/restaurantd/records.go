package main

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Restaurant struct {
	bun.BaseModel `bun:"table:restaurants,alias:rst"`

	ID        uuid.UUID  `bun:"id,pk,notnull" json:"id"`
	Name      string     `bun:"name,notnull" json:"name"`
	Address   string     `bun:"address,notnull" json:"address"`
	Phone     string     `bun:"phone" json:"phone,omitempty"`
	Cuisine   []string   `bun:"cuisine" json:"cuisine,omitempty"`
	CreatedAt *time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at,omitempty"`
}

var ErrRestaurantNotFound = errors.New("restaurant not found", errors.CategoryNotFound).
	WithTextCode("RESTAURANT_NOT_FOUND")

// Restaurants is the narrow catalog surface the handlers consume. The generic
// repository stays an implementation detail of the concrete type.
type Restaurants interface {
	List(ctx context.Context) ([]*Restaurant, error)
	Get(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	Save(ctx context.Context, record *Restaurant) (*Restaurant, error)
	Amend(ctx context.Context, id uuid.UUID, record *Restaurant) (*Restaurant, error)
	Remove(ctx context.Context, id uuid.UUID) (*Restaurant, error)
}

type restaurants struct {
	repository.Repository[*Restaurant]
	db *bun.DB
}

var _ Restaurants = (*restaurants)(nil)

func NewRestaurantsRepository(db *bun.DB) Restaurants {
	repo := repository.NewRepository[*Restaurant](db, repository.ModelHandlers[*Restaurant]{
		NewRecord: func() *Restaurant { return &Restaurant{} },
		GetID: func(r *Restaurant) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Restaurant, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &restaurants{
		Repository: repo,
		db:         db,
	}
}

func (a *restaurants) List(ctx context.Context) ([]*Restaurant, error) {
	var records []*Restaurant
	err := a.db.NewSelect().
		Model(&records).
		Order("rst.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *restaurants) Get(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	record := &Restaurant{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrRestaurantNotFound.Clone().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *restaurants) Save(ctx context.Context, record *Restaurant) (*Restaurant, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, a.db, record)
}

// Amend applies a partial update; zero fields in record are left untouched.
func (a *restaurants) Amend(ctx context.Context, id uuid.UUID, record *Restaurant) (*Restaurant, error) {
	if _, err := a.Get(ctx, id); err != nil {
		return nil, err
	}

	record.ID = id
	now := time.Now()
	record.UpdatedAt = &now

	return a.Repository.UpdateTx(ctx, a.db, record,
		repository.UpdateByID(id.String()),
		repository.UpdateSkipZeroValues(),
	)
}

// Remove deletes the record and returns the last known state, mirroring what
// callers expect from a destructive endpoint that echoes the removed resource.
func (a *restaurants) Remove(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	record, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	_, err = a.db.NewDelete().
		Model((*Restaurant)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func isNoRows(err error) bool {
	if err == nil {
		return false
	}
	return repository.IsRecordNotFound(err) ||
		strings.Contains(err.Error(), "no rows in result set")
}
