// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"categoryd/internal/slug"
)

// Validation limits for category fields.
const (
	maxNameLen        = 200
	maxSlugLen        = 200
	maxDescriptionLen = 1_000
)

// cleanName trims the name and checks it is present and within limits.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", validationError("name is too long (max %d characters)", maxNameLen)
	}
	return name, nil
}

// cleanSlug normalizes the slug and checks it is present and within limits.
func cleanSlug(s string) (string, error) {
	s = slug.Normalize(s)
	if s == "" {
		return "", validationError("slug is required")
	}
	if utf8.RuneCountInString(s) > maxSlugLen {
		return "", validationError("slug is too long (max %d characters)", maxSlugLen)
	}
	return s, nil
}

func cleanDescription(d string) (string, error) {
	d = strings.TrimSpace(d)
	if utf8.RuneCountInString(d) > maxDescriptionLen {
		return "", validationError("description is too long (max %d characters)", maxDescriptionLen)
	}
	return d, nil
}

// parseParentID interprets a parent reference. An empty value means "no
// parent"; anything else must be a valid id.
func parseParentID(v string) (id uuid.UUID, root bool, err error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return uuid.Nil, true, nil
	}
	id, err = uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false, validationError("parentId %q is not a valid id", v)
	}
	return id, false, nil
}
