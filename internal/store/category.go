// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"categoryd/internal/models"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CategoryStore manages categories in the database. A store returned by
// NewCategoryStore runs each statement on its own; the store passed to the
// InTx callback runs everything inside one transaction.
type CategoryStore struct {
	db *sql.DB
	q  DBTX
	tx bool
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db, q: db}
}

const categoryColumns = `id, name, slug, description, parent_id, depth, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.Depth, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanCategories drains rows into a slice.
func scanCategories(rows *sql.Rows) ([]models.Category, error) {
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// InTx runs fn inside a serializable transaction. The transaction commits
// when fn returns nil and rolls back otherwise. Calling InTx on a store that
// is already transactional reuses the open transaction.
func (s *CategoryStore) InTx(ctx context.Context, fn func(tx *CategoryStore) error) error {
	if s.tx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", classify(err))
	}
	defer tx.Rollback()

	if err := fn(&CategoryStore{db: s.db, q: tx, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", classify(err))
	}
	return nil
}

// List returns all categories ordered by depth, then name, so that the
// result renders as an indented tree.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY depth, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", classify(err))
	}
	return scanCategories(rows)
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "find category by id", `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves a category by ID and locks the row until the
// surrounding transaction ends. Returns nil if not found.
func (s *CategoryStore) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "lock category", `SELECT `+categoryColumns+` FROM categories WHERE id = $1 FOR UPDATE`, id)
}

func (s *CategoryStore) findOne(ctx context.Context, op, query string, arg any) (*models.Category, error) {
	c, err := scanCategory(s.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return c, nil
}

// SlugTaken reports whether any category other than excluding uses slug.
// Pass a nil excluding on create.
func (s *CategoryStore) SlugTaken(ctx context.Context, slug string, excluding *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if excluding == nil {
		err = s.q.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug,
		).Scan(&exists)
	} else {
		err = s.q.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`, slug, *excluding,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check slug: %w", classify(err))
	}
	return exists, nil
}

// Children returns the direct children of a category ordered by name.
func (s *CategoryStore) Children(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 ORDER BY name`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", classify(err))
	}
	return scanCategories(rows)
}

// ChildrenOf returns the direct children of every category in parentIDs in
// a single query. Used to fetch one breadth-first level at a time.
func (s *CategoryStore) ChildrenOf(ctx context.Context, parentIDs []uuid.UUID) ([]models.Category, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = ANY($1::uuid[]) ORDER BY name`,
		idStrings(parentIDs))
	if err != nil {
		return nil, fmt.Errorf("list children of level: %w", classify(err))
	}
	return scanCategories(rows)
}

// CountChildren returns the number of direct children of a category.
func (s *CategoryStore) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count children: %w", classify(err))
	}
	return n, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, parent_id, depth)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.Depth,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", classify(err))
	}
	return result, nil
}

// Update modifies an existing category, including its parent and depth.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			depth = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Name, c.Slug, c.Description, c.ParentID, c.Depth, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", classify(err))
	}
	return nil
}

// ShiftDepth adds delta to the cached depth of every category in ids.
func (s *CategoryStore) ShiftDepth(ctx context.Context, ids []uuid.UUID, delta int) error {
	if len(ids) == 0 || delta == 0 {
		return nil
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE categories SET depth = depth + $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[])
	`, delta, idStrings(ids))
	if err != nil {
		return fmt.Errorf("shift depth: %w", classify(err))
	}
	return nil
}

// Delete removes a category by ID. The parent_id foreign key restricts
// deletion of categories that still have children.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", classify(err))
	}
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
