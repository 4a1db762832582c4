// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package categorytest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"categoryd/internal/models"
	"categoryd/internal/store"
)

func TestStoreConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	root, err := s.Create(ctx, &models.Category{Name: "Root", Slug: "root"})
	require.NoError(t, err)
	_, err = s.Create(ctx, &models.Category{Name: "Child", Slug: "child", ParentID: &root.ID, Depth: 1})
	require.NoError(t, err)

	_, err = s.Create(ctx, &models.Category{Name: "Again", Slug: "root"})
	assert.ErrorIs(t, err, store.ErrDuplicateSlug)
	assert.ErrorIs(t, s.Delete(ctx, root.ID), store.ErrReferenced)
	assert.Error(t, s.Update(ctx, &models.Category{ID: uuid.New()}))
}

func TestStoreRunTxRestoresRows(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.RunTx(func() error {
		_, err := s.Create(ctx, &models.Category{Name: "Gone", Slug: "gone"})
		require.NoError(t, err)
		// A nested call joins the outer transaction.
		return s.RunTx(func() error { return boom })
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Rows)
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	down := errors.New("down")
	s.Err = down
	s.FailOn["List"] = nil

	_, err := s.List(ctx)
	assert.NoError(t, err, "an explicit nil entry overrides Err")
	_, err = s.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, down)
}
