// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"categoryd/internal/models"
)

// DefaultMaxDepth bounds ancestor walks and the depth a move may produce.
const DefaultMaxDepth = 256

// ensureUniqueSlug fails with DuplicateSlug when another category already
// uses slug. excluding is the category being updated, or nil on create.
func ensureUniqueSlug(ctx context.Context, repo Repository, slug string, excluding *uuid.UUID) error {
	taken, err := repo.SlugTaken(ctx, slug, excluding)
	if err != nil {
		return err
	}
	if taken {
		return duplicateSlug(slug)
	}
	return nil
}

// computeDepth returns the depth of a category placed under parent.
func computeDepth(parent *models.Category) int {
	if parent == nil {
		return 0
	}
	return parent.Depth + 1
}

// ancestors returns the ancestor chain of start, nearest first. The walk
// stops after limit hops; a longer chain, a repeated node or a missing
// parent row means the stored tree is already broken.
func ancestors(ctx context.Context, repo Repository, start *models.Category, limit int) ([]models.Category, error) {
	var chain []models.Category
	seen := map[uuid.UUID]bool{start.ID: true}

	cur := start
	for cur.ParentID != nil {
		parentID := *cur.ParentID
		if len(chain) >= limit {
			return nil, corrupt(start.ID, "ancestor chain exceeds %d levels", limit)
		}
		if seen[parentID] {
			return nil, corrupt(start.ID, "category %s appears twice in its own ancestor chain", parentID)
		}
		seen[parentID] = true

		parent, err := repo.FindByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, corrupt(start.ID, "category %s references missing parent %s", cur.ID, parentID)
		}
		chain = append(chain, *parent)
		cur = parent
	}
	return chain, nil
}

// wouldCycle reports whether making candidateParent the parent of movingID
// would create a cycle: either self-parenting or moving a category under
// one of its own descendants.
func wouldCycle(ctx context.Context, repo Repository, movingID uuid.UUID, candidateParent *models.Category, limit int) (bool, error) {
	if candidateParent.ID == movingID {
		return true, nil
	}
	chain, err := ancestors(ctx, repo, candidateParent, limit)
	if err != nil {
		return false, err
	}
	for _, a := range chain {
		if a.ID == movingID {
			return true, nil
		}
	}
	return false, nil
}

// cascadeResult describes one cascading depth update.
type cascadeResult struct {
	Updated int // descendants whose depth changed
	Height  int // levels below the root of the change
}

// cascadeDepth adds delta to the depth of every descendant of root, one
// breadth-first level at a time. root itself must already be saved with
// its new depth. The shape of the subtree does not change, so the same
// delta applies to every level. Each descendant is written exactly once.
func cascadeDepth(ctx context.Context, repo Repository, root *models.Category, delta int) (cascadeResult, error) {
	var res cascadeResult
	if delta == 0 {
		return res, nil
	}

	visited := map[uuid.UUID]bool{root.ID: true}
	level := []uuid.UUID{root.ID}
	for len(level) > 0 {
		children, err := repo.ChildrenOf(ctx, level)
		if err != nil {
			return res, err
		}

		next := make([]uuid.UUID, 0, len(children))
		for _, c := range children {
			if visited[c.ID] {
				return res, corrupt(root.ID, "category %s reached twice while cascading depth", c.ID)
			}
			if c.Depth+delta < 0 {
				return res, corrupt(root.ID, "category %s would get negative depth %d", c.ID, c.Depth+delta)
			}
			visited[c.ID] = true
			next = append(next, c.ID)
		}
		if len(next) == 0 {
			break
		}

		if err := repo.ShiftDepth(ctx, next, delta); err != nil {
			return res, err
		}
		res.Updated += len(next)
		res.Height++
		level = next
	}
	return res, nil
}

// corrupt builds a CorruptHierarchy error and logs it. It signals data
// left behind by an earlier faulty write, not a caller mistake.
func corrupt(id uuid.UUID, format string, args ...any) *Error {
	err := corruptHierarchy(format, args...)
	slog.Error("category hierarchy corrupt", "id", id, "error", err.Message)
	return err
}
