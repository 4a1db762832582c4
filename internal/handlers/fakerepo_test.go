// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"

	"categoryd/internal/category"
	"categoryd/internal/category/categorytest"
)

// fakeRepo adapts the shared in-memory store to category.Repository.
type fakeRepo struct {
	*categorytest.Store
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{Store: categorytest.NewStore()}
}

func (r *fakeRepo) InTx(_ context.Context, fn func(category.Repository) error) error {
	return r.RunTx(func() error { return fn(r) })
}
