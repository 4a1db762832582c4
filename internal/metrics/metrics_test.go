// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"categoryd/internal/category"
)

func TestObserverCommitted(t *testing.T) {
	before := testutil.ToFloat64(mutationsTotal.WithLabelValues(category.OpUpdate, "ok"))

	Observer{}.Committed(context.Background(), category.Event{
		Op:       category.OpUpdate,
		ID:       uuid.New(),
		Moved:    true,
		Cascaded: 12,
		Duration: 3 * time.Millisecond,
	})

	after := testutil.ToFloat64(mutationsTotal.WithLabelValues(category.OpUpdate, "ok"))
	assert.Equal(t, before+1, after)
}

func TestObserverRejected(t *testing.T) {
	ctx := context.Background()
	corruptBefore := testutil.ToFloat64(corruptTotal)
	dupBefore := testutil.ToFloat64(mutationsTotal.WithLabelValues(category.OpCreate, string(category.KindDuplicateSlug)))

	Observer{}.Rejected(ctx, category.OpCreate, category.ErrDuplicateSlug)
	Observer{}.Rejected(ctx, category.OpUpdate, category.ErrCorruptHierarchy)

	assert.Equal(t, dupBefore+1, testutil.ToFloat64(mutationsTotal.WithLabelValues(category.OpCreate, string(category.KindDuplicateSlug))))
	assert.Equal(t, corruptBefore+1, testutil.ToFloat64(corruptTotal))
}
