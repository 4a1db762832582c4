// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"categoryd/internal/slug"
)

// seedNode is one category of the development tree.
type seedNode struct {
	name        string
	description string
	children    []seedNode
}

// seedTree is a small three-level hierarchy used for local development.
var seedTree = []seedNode{
	{name: "News", description: "Current events", children: []seedNode{
		{name: "World News"},
		{name: "Local News", children: []seedNode{
			{name: "City Hall"},
			{name: "Schools"},
		}},
	}},
	{name: "Technology", description: "Software and hardware", children: []seedNode{
		{name: "Programming"},
		{name: "Gadgets"},
	}},
	{name: "Arts & Culture"},
}

// Seed populates the categories table with a development tree when it is
// empty. Depths are written explicitly so the seeded rows satisfy the same
// invariants the service maintains.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	var insert func(nodes []seedNode, parentID *uuid.UUID, depth int) error
	insert = func(nodes []seedNode, parentID *uuid.UUID, depth int) error {
		for _, n := range nodes {
			var id uuid.UUID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO categories (name, slug, description, parent_id, depth)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
			`, n.name, slug.Generate(n.name), n.description, parentID, depth).Scan(&id)
			if err != nil {
				return fmt.Errorf("seed insert %q: %w", n.name, err)
			}
			inserted++
			if err := insert(n.children, &id, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := insert(seedTree, nil, 0); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development categories", "count", inserted)
	return nil
}
