// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"context"

	"github.com/google/uuid"

	"categoryd/internal/models"
	"categoryd/internal/store"
)

// Repository is the store surface the Service depends on. Finders return
// nil, nil when the row does not exist.
type Repository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Category, error)
	SlugTaken(ctx context.Context, slug string, excluding *uuid.UUID) (bool, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]models.Category, error)
	ChildrenOf(ctx context.Context, parentIDs []uuid.UUID) ([]models.Category, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	ShiftDepth(ctx context.Context, ids []uuid.UUID, delta int) error
	Delete(ctx context.Context, id uuid.UUID) error

	// InTx runs fn against a Repository bound to one transaction.
	InTx(ctx context.Context, fn func(tx Repository) error) error
}

// storeRepository adapts *store.CategoryStore to Repository.
type storeRepository struct {
	*store.CategoryStore
}

// NewStoreRepository returns a Repository backed by PostgreSQL.
func NewStoreRepository(s *store.CategoryStore) Repository {
	return storeRepository{s}
}

func (r storeRepository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.CategoryStore.InTx(ctx, func(tx *store.CategoryStore) error {
		return fn(storeRepository{tx})
	})
}
