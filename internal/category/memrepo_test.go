// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"context"

	"categoryd/internal/category/categorytest"
)

// memRepo is an in-memory Repository. InTx restores a snapshot when the
// callback fails, which is enough to observe all-or-nothing behavior.
type memRepo struct {
	*categorytest.Store
}

func newMemRepo() *memRepo {
	return &memRepo{Store: categorytest.NewStore()}
}

func (r *memRepo) InTx(_ context.Context, fn func(tx Repository) error) error {
	return r.RunTx(func() error { return fn(r) })
}

// recordingObserver captures observer callbacks.
type recordingObserver struct {
	committed []Event
	rejected  []Kind
}

func (o *recordingObserver) Committed(_ context.Context, ev Event) {
	o.committed = append(o.committed, ev)
}

func (o *recordingObserver) Rejected(_ context.Context, _ string, err error) {
	o.rejected = append(o.rejected, KindOf(err))
}
