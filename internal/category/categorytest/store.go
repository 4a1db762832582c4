// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package categorytest provides an in-memory category store for tests.
//
// Store implements every method of category.Repository except InTx, so it
// does not import the category package and can be used from its internal
// tests. Callers embed it and add InTx on top of RunTx:
//
//	type repo struct{ *categorytest.Store }
//
//	func (r *repo) InTx(ctx context.Context, fn func(category.Repository) error) error {
//		return r.RunTx(func() error { return fn(r) })
//	}
package categorytest

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"categoryd/internal/models"
	"categoryd/internal/store"
)

// Store keeps categories in a map. It enforces the same constraints as the
// categories table: unique slugs, existing rows on update and no deletion
// of referenced parents.
type Store struct {
	// Rows is the table. Tests may read it directly after an operation.
	Rows map[uuid.UUID]models.Category

	// FailOn makes the named method return the given error.
	FailOn map[string]error

	// Err, when set, is returned by every method without an entry in FailOn.
	Err error

	// ShiftCalls counts ShiftDepth statements.
	ShiftCalls int

	mu   sync.Mutex
	inTx bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		Rows:   make(map[uuid.UUID]models.Category),
		FailOn: make(map[string]error),
	}
}

func (s *Store) fail(op string) error {
	if err, ok := s.FailOn[op]; ok {
		return err
	}
	return s.Err
}

// Put stores a row as-is, bypassing every check. Used to plant corrupt data.
func (s *Store) Put(c models.Category) {
	s.Rows[c.ID] = c
}

// Depths returns a copy of every cached depth keyed by id.
func (s *Store) Depths() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(s.Rows))
	for id, c := range s.Rows {
		out[id] = c.Depth
	}
	return out
}

// RunTx runs fn as one transaction: Rows are restored when fn fails.
// Nested calls join the outer transaction. Top-level transactions are
// serialized.
func (s *Store) RunTx(fn func() error) error {
	if s.inTx {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := maps.Clone(s.Rows)
	s.inTx = true
	err := fn()
	s.inTx = false
	if err != nil {
		s.Rows = snapshot
	}
	return err
}

// sorted returns the rows accepted by keep ordered by depth, then name.
func (s *Store) sorted(keep func(models.Category) bool) []models.Category {
	var out []models.Category
	for _, c := range s.Rows {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Store) List(context.Context) ([]models.Category, error) {
	if err := s.fail("List"); err != nil {
		return nil, err
	}
	return s.sorted(func(models.Category) bool { return true }), nil
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if err := s.fail("FindByID"); err != nil {
		return nil, err
	}
	c, ok := s.Rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.FindByID(ctx, id)
}

func (s *Store) SlugTaken(_ context.Context, slug string, excluding *uuid.UUID) (bool, error) {
	if err := s.fail("SlugTaken"); err != nil {
		return false, err
	}
	for _, c := range s.Rows {
		if c.Slug == slug && (excluding == nil || c.ID != *excluding) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Children(_ context.Context, parentID uuid.UUID) ([]models.Category, error) {
	if err := s.fail("Children"); err != nil {
		return nil, err
	}
	return s.sorted(func(c models.Category) bool { return c.HasParent(parentID) }), nil
}

func (s *Store) ChildrenOf(_ context.Context, parentIDs []uuid.UUID) ([]models.Category, error) {
	if err := s.fail("ChildrenOf"); err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(parentIDs))
	for _, id := range parentIDs {
		set[id] = true
	}
	return s.sorted(func(c models.Category) bool { return c.ParentID != nil && set[*c.ParentID] }), nil
}

func (s *Store) CountChildren(_ context.Context, id uuid.UUID) (int, error) {
	if err := s.fail("CountChildren"); err != nil {
		return 0, err
	}
	n := 0
	for _, c := range s.Rows {
		if c.HasParent(id) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	if err := s.fail("Create"); err != nil {
		return nil, err
	}
	for _, existing := range s.Rows {
		if existing.Slug == c.Slug {
			return nil, fmt.Errorf("create category: %w", store.ErrDuplicateSlug)
		}
	}
	row := *c
	row.ID = uuid.New()
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	s.Rows[row.ID] = row
	return &row, nil
}

func (s *Store) Update(_ context.Context, c *models.Category) error {
	if err := s.fail("Update"); err != nil {
		return err
	}
	if _, ok := s.Rows[c.ID]; !ok {
		return fmt.Errorf("update category: no row %s", c.ID)
	}
	row := *c
	row.UpdatedAt = time.Now()
	s.Rows[c.ID] = row
	return nil
}

func (s *Store) ShiftDepth(_ context.Context, ids []uuid.UUID, delta int) error {
	if err := s.fail("ShiftDepth"); err != nil {
		return err
	}
	s.ShiftCalls++
	for _, id := range ids {
		row := s.Rows[id]
		row.Depth += delta
		s.Rows[id] = row
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	if err := s.fail("Delete"); err != nil {
		return err
	}
	for _, c := range s.Rows {
		if c.HasParent(id) {
			return fmt.Errorf("delete category: %w", store.ErrReferenced)
		}
	}
	delete(s.Rows, id)
	return nil
}
