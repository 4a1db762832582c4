// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"categoryd/internal/store"
)

func TestErrorKinds(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		err       *Error
		kind      Kind
		sentinel  error
		retryable bool
	}{
		{name: "validation", err: validationError("name is required"), kind: KindValidation, sentinel: ErrValidation},
		{name: "duplicate slug", err: duplicateSlug("news"), kind: KindDuplicateSlug, sentinel: ErrDuplicateSlug},
		{name: "parent not found", err: parentNotFound(id), kind: KindParentNotFound, sentinel: ErrParentNotFound},
		{name: "category not found", err: categoryNotFound(id), kind: KindCategoryNotFound, sentinel: ErrCategoryNotFound},
		{name: "invalid parent", err: invalidParent("cycle"), kind: KindInvalidParent, sentinel: ErrInvalidParent},
		{name: "has children", err: hasChildren(2), kind: KindHasChildren, sentinel: ErrHasChildren},
		{name: "corrupt", err: corruptHierarchy("loop at %s", id), kind: KindCorruptHierarchy, sentinel: ErrCorruptHierarchy},
		{name: "transient persistence", err: persistenceError("update category", fmt.Errorf("shift depth: %w", store.ErrConflict)), kind: KindPersistence, sentinel: ErrPersistence, retryable: true},
		{name: "permanent persistence", err: persistenceError("update category", errors.New("check constraint violated")), kind: KindPersistence, sentinel: ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.retryable, tt.err.Retryable())

			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.Equal(t, tt.kind, KindOf(wrapped))
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestErrorKindsDoNotCrossMatch(t *testing.T) {
	assert.NotErrorIs(t, duplicateSlug("x"), ErrValidation)
	assert.NotErrorIs(t, invalidParent("x"), ErrParentNotFound)
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := duplicateSlug("news")
	assert.Equal(t, `duplicate_slug: a category with slug "news" already exists`, err.Error())

	cause := errors.New("connection refused")
	perr := persistenceError("delete category", cause)
	assert.Equal(t, "persistence: delete category failed: connection refused", perr.Error())
	assert.ErrorIs(t, perr, cause)
}
