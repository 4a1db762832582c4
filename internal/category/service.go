// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package category keeps the category tree consistent. Every mutation runs
// in a single transaction and leaves the tree acyclic, with each cached
// depth equal to the distance to a root and every slug unique.
package category

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"categoryd/internal/models"
	"categoryd/internal/store"
)

// Mutation names reported to observers.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"

	// OpGet labels read failures; reads are not reported to observers.
	OpGet = "get"
)

// Event describes a committed mutation.
type Event struct {
	Op       string
	ID       uuid.UUID
	Moved    bool // parent changed
	Cascaded int  // descendants whose depth was rewritten
	Duration time.Duration
}

// Observer is notified after every mutation. Implementations must not block.
type Observer interface {
	Committed(ctx context.Context, ev Event)
	Rejected(ctx context.Context, op string, err error)
}

// CreateInput holds the fields of a new category. A nil or empty ParentID
// creates a root category.
type CreateInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    *string
}

// OptionalID is a parent reference in an update. Set false leaves the
// parent unchanged; Set with an empty Value moves the category to the root.
type OptionalID struct {
	Set   bool
	Value string
}

// SetParent returns an OptionalID that assigns the given parent.
func SetParent(id string) OptionalID {
	return OptionalID{Set: true, Value: id}
}

// UpdateInput holds a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Slug        *string
	Description *string
	ParentID    OptionalID
}

// DTO is the read model returned to callers.
// Children is only filled by Get and Update.
type DTO struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Slug        string               `json:"slug"`
	Description string               `json:"description"`
	Depth       int                  `json:"depth"`
	Parent      *models.CategoryRef  `json:"parent"`
	Children    []models.CategoryRef `json:"children,omitempty"`
}

func newDTO(c *models.Category, parent *models.Category, children []models.Category) *DTO {
	d := &DTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Depth:       c.Depth,
	}
	if parent != nil {
		ref := parent.Ref()
		d.Parent = &ref
	}
	if children != nil {
		d.Children = make([]models.CategoryRef, 0, len(children))
		for i := range children {
			d.Children = append(d.Children, children[i].Ref())
		}
	}
	return d
}

// Service implements create, update, delete and the read projections of
// the category tree.
type Service struct {
	repo      Repository
	maxDepth  int
	observers []Observer
}

// New returns a Service. A maxDepth <= 0 selects DefaultMaxDepth.
func New(repo Repository, maxDepth int, observers ...Observer) *Service {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Service{repo: repo, maxDepth: maxDepth, observers: observers}
}

// Create inserts a new category under the given parent, or as a root.
func (s *Service) Create(ctx context.Context, in CreateInput) (*DTO, error) {
	start := time.Now()

	name, err := cleanName(in.Name)
	if err != nil {
		return nil, s.reject(ctx, OpCreate, err)
	}
	slug, err := cleanSlug(in.Slug)
	if err != nil {
		return nil, s.reject(ctx, OpCreate, err)
	}
	desc, err := cleanDescription(in.Description)
	if err != nil {
		return nil, s.reject(ctx, OpCreate, err)
	}
	var parentID uuid.UUID
	isRoot := true
	if in.ParentID != nil {
		if parentID, isRoot, err = parseParentID(*in.ParentID); err != nil {
			return nil, s.reject(ctx, OpCreate, err)
		}
	}

	var created, parent *models.Category
	err = s.repo.InTx(ctx, func(tx Repository) error {
		if err := ensureUniqueSlug(ctx, tx, slug, nil); err != nil {
			return err
		}

		if !isRoot {
			p, err := tx.FindByID(ctx, parentID)
			if err != nil {
				return err
			}
			if p == nil {
				return parentNotFound(parentID)
			}
			parent = p
		}

		depth := computeDepth(parent)
		if depth > s.maxDepth {
			return invalidParent("category would exceed the maximum tree depth")
		}

		c := &models.Category{
			Name:        name,
			Slug:        slug,
			Description: desc,
			Depth:       depth,
		}
		if parent != nil {
			c.ParentID = &parent.ID
		}
		saved, err := tx.Create(ctx, c)
		if err != nil {
			return err
		}
		created = saved
		return nil
	})
	if err != nil {
		return nil, s.reject(ctx, OpCreate, err)
	}

	s.commit(ctx, Event{Op: OpCreate, ID: created.ID, Duration: time.Since(start)})
	return newDTO(created, parent, nil), nil
}

// Update applies a partial update. When the patch carries a parent, the
// category is re-parented and the depth of its whole subtree is shifted by
// the same amount, all in one transaction.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*DTO, error) {
	start := time.Now()

	var name, slug, desc string
	var err error
	if in.Name != nil {
		if name, err = cleanName(*in.Name); err != nil {
			return nil, s.reject(ctx, OpUpdate, err)
		}
	}
	if in.Slug != nil {
		if slug, err = cleanSlug(*in.Slug); err != nil {
			return nil, s.reject(ctx, OpUpdate, err)
		}
	}
	if in.Description != nil {
		if desc, err = cleanDescription(*in.Description); err != nil {
			return nil, s.reject(ctx, OpUpdate, err)
		}
	}
	var targetID uuid.UUID
	toRoot := false
	if in.ParentID.Set {
		if targetID, toRoot, err = parseParentID(in.ParentID.Value); err != nil {
			return nil, s.reject(ctx, OpUpdate, err)
		}
	}

	var (
		cur      *models.Category
		parent   *models.Category
		children []models.Category
		moved    bool
		cascade  cascadeResult
	)
	err = s.repo.InTx(ctx, func(tx Repository) error {
		c, err := tx.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return categoryNotFound(id)
		}
		cur = c

		if in.Name != nil {
			cur.Name = name
		}
		if in.Slug != nil && slug != cur.Slug {
			if err := ensureUniqueSlug(ctx, tx, slug, &cur.ID); err != nil {
				return err
			}
			cur.Slug = slug
		}
		if in.Description != nil {
			cur.Description = desc
		}

		delta := 0
		if in.ParentID.Set {
			oldParent := cur.ParentID
			oldDepth := cur.Depth
			if toRoot {
				cur.ParentID = nil
			} else {
				if targetID == cur.ID {
					return invalidParent("a category cannot be its own parent")
				}
				p, err := tx.FindByID(ctx, targetID)
				if err != nil {
					return err
				}
				if p == nil {
					return parentNotFound(targetID)
				}
				cycle, err := wouldCycle(ctx, tx, cur.ID, p, s.maxDepth)
				if err != nil {
					return err
				}
				if cycle {
					return invalidParent("a category cannot be moved under one of its own subcategories")
				}
				parent = p
				cur.ParentID = &p.ID
			}
			cur.Depth = computeDepth(parent)
			delta = cur.Depth - oldDepth
			moved = !sameParent(oldParent, cur.ParentID)
		}

		if err := tx.Update(ctx, cur); err != nil {
			return err
		}

		if delta != 0 {
			cascade, err = cascadeDepth(ctx, tx, cur, delta)
			if err != nil {
				return err
			}
			if delta > 0 && cur.Depth+cascade.Height > s.maxDepth {
				return invalidParent("move would exceed the maximum tree depth")
			}
		}

		if parent == nil && cur.ParentID != nil {
			if parent, err = tx.FindByID(ctx, *cur.ParentID); err != nil {
				return err
			}
		}
		children, err = tx.Children(ctx, cur.ID)
		return err
	})
	if err != nil {
		return nil, s.reject(ctx, OpUpdate, err)
	}

	if cascade.Updated > 0 {
		slog.Info("category depth cascaded",
			"id", cur.ID,
			"depth", cur.Depth,
			"descendants", cascade.Updated,
		)
	}
	s.commit(ctx, Event{Op: OpUpdate, ID: cur.ID, Moved: moved, Cascaded: cascade.Updated, Duration: time.Since(start)})
	return newDTO(cur, parent, children), nil
}

// Delete removes a leaf category. Categories with subcategories are
// rejected with HasChildren.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	err := s.repo.InTx(ctx, func(tx Repository) error {
		c, err := tx.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return categoryNotFound(id)
		}
		n, err := tx.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return hasChildren(n)
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return s.reject(ctx, OpDelete, err)
	}

	s.commit(ctx, Event{Op: OpDelete, ID: id, Duration: time.Since(start)})
	return nil
}

// Get returns a category with its parent and children, or nil if it does
// not exist.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceError("get category", err)
	}
	if c == nil {
		return nil, nil
	}

	var parent *models.Category
	if c.ParentID != nil {
		if parent, err = s.repo.FindByID(ctx, *c.ParentID); err != nil {
			return nil, persistenceError("get parent", err)
		}
	}
	children, err := s.repo.Children(ctx, c.ID)
	if err != nil {
		return nil, persistenceError("get children", err)
	}
	return newDTO(c, parent, children), nil
}

// List returns every category ordered by depth, then name.
func (s *Service) List(ctx context.Context) ([]DTO, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistenceError("list categories", err)
	}

	byID := make(map[uuid.UUID]*models.Category, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	out := make([]DTO, 0, len(all))
	for i := range all {
		var parent *models.Category
		if all[i].ParentID != nil {
			parent = byID[*all[i].ParentID]
		}
		out = append(out, *newDTO(&all[i], parent, nil))
	}
	return out, nil
}

// Ancestors returns the ancestor chain of a category, nearest first.
func (s *Service) Ancestors(ctx context.Context, id uuid.UUID) ([]DTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceError("get category", err)
	}
	if c == nil {
		return nil, categoryNotFound(id)
	}

	chain, err := ancestors(ctx, s.repo, c, s.maxDepth)
	if err != nil {
		return nil, classify(OpGet, err)
	}

	out := make([]DTO, 0, len(chain))
	for i := range chain {
		var parent *models.Category
		if i+1 < len(chain) {
			parent = &chain[i+1]
		}
		out = append(out, *newDTO(&chain[i], parent, nil))
	}
	return out, nil
}

// classify turns any error into an *Error. Store constraint violations
// that slipped past the checks because of a concurrent write map to the
// kind the check would have reported.
func classify(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, store.ErrDuplicateSlug):
		return &Error{Kind: KindDuplicateSlug, Message: "a category with this slug already exists", Err: err}
	case errors.Is(err, store.ErrReferenced) && op == OpDelete:
		return &Error{Kind: KindHasChildren, Message: "category has subcategories; remove or move subcategories first", Err: err}
	case errors.Is(err, store.ErrReferenced):
		return &Error{Kind: KindParentNotFound, Message: "parent category no longer exists", Err: err}
	}
	return persistenceError(op+" category", err)
}

func (s *Service) reject(ctx context.Context, op string, err error) error {
	e := classify(op, err)
	if e.Kind == KindPersistence {
		slog.Error("category mutation failed", "op", op, "retryable", e.Retryable(), "error", e.Err)
	}
	for _, o := range s.observers {
		o.Rejected(ctx, op, e)
	}
	return e
}

func (s *Service) commit(ctx context.Context, ev Event) {
	for _, o := range s.observers {
		o.Committed(ctx, ev)
	}
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
