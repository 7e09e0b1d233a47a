// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package terms_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/terms"
	"github.com/danielhkuo/committee-roster/testutil"
)

func TestCreateAndActivate(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := terms.NewService(conn)

	_, err := svc.Active(ctx)
	assert.ErrorIs(t, err, models.ErrNoActiveTerm)

	first, err := svc.Create(ctx, " 2024-2026 ", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-2026", first.Name)
	assert.False(t, first.IsActive)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(2, 0, 0)
	second, err := svc.Create(ctx, "2026-2028", &start, &end)
	require.NoError(t, err)

	activated, err := svc.Activate(ctx, first.ID, testutil.TestActor)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	activated, err = svc.Activate(ctx, second.ID, testutil.TestActor)
	require.NoError(t, err)
	assert.Equal(t, second.ID, activated.ID)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestActivate_UnknownTermKeepsCurrent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := terms.NewService(conn)
	current := testutil.CreateTestTerm(t, conn, "current", true)

	_, err := svc.Activate(ctx, "missing", testutil.TestActor)
	assert.ErrorIs(t, err, models.ErrNotFound)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, current, active.ID)
}

func TestCreate_Validation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := terms.NewService(conn)

	_, err := svc.Create(context.Background(), "  ", nil, nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err = svc.Create(context.Background(), "backwards", &start, &end)
	assert.ErrorIs(t, err, models.ErrValidation)
}
