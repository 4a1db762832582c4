// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"errors"
	"fmt"

	"categoryd/internal/store"
)

// Kind classifies the errors returned by Service.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindDuplicateSlug    Kind = "duplicate_slug"
	KindParentNotFound   Kind = "parent_not_found"
	KindCategoryNotFound Kind = "category_not_found"
	KindInvalidParent    Kind = "invalid_parent"
	KindHasChildren      Kind = "has_children"
	KindCorruptHierarchy Kind = "corrupt_hierarchy"
	KindPersistence      Kind = "persistence"
)

// Error is the structured error returned at the Service boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the Err* values below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Retryable reports whether the caller may retry the operation unchanged.
// Only transient store failures qualify: conflicts, lost connections and
// timeouts. Every other kind needs different input or an operator.
func (e *Error) Retryable() bool {
	return e.Kind == KindPersistence && store.IsTransient(e.Err)
}

// Kind markers for errors.Is.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrDuplicateSlug    = &Error{Kind: KindDuplicateSlug}
	ErrParentNotFound   = &Error{Kind: KindParentNotFound}
	ErrCategoryNotFound = &Error{Kind: KindCategoryNotFound}
	ErrInvalidParent    = &Error{Kind: KindInvalidParent}
	ErrHasChildren      = &Error{Kind: KindHasChildren}
	ErrCorruptHierarchy = &Error{Kind: KindCorruptHierarchy}
	ErrPersistence      = &Error{Kind: KindPersistence}
)

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func duplicateSlug(slug string) *Error {
	return &Error{Kind: KindDuplicateSlug, Message: fmt.Sprintf("a category with slug %q already exists", slug)}
}

func parentNotFound(id fmt.Stringer) *Error {
	return &Error{Kind: KindParentNotFound, Message: fmt.Sprintf("parent category %s not found", id)}
}

func categoryNotFound(id fmt.Stringer) *Error {
	return &Error{Kind: KindCategoryNotFound, Message: fmt.Sprintf("category %s not found", id)}
}

func invalidParent(msg string) *Error {
	return &Error{Kind: KindInvalidParent, Message: msg}
}

func hasChildren(n int) *Error {
	return &Error{Kind: KindHasChildren, Message: fmt.Sprintf("category still has %d direct subcategories; remove or move subcategories first", n)}
}

func corruptHierarchy(format string, args ...any) *Error {
	return &Error{Kind: KindCorruptHierarchy, Message: fmt.Sprintf(format, args...)}
}

func persistenceError(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: op + " failed", Err: err}
}
