package registry

import (
	"context"
	"testing"

	"github.com/acara-app/acara-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotate(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	full := createEvent(t, db, 1)
	open := createEvent(t, db, 3)
	viewer := createProfile(t, db, "viewer")
	other := createProfile(t, db, "other")

	_, err := store.Register(ctx, other.ID, full.ID)
	require.NoError(t, err)
	mine, err := store.Register(ctx, viewer.ID, open.ID)
	require.NoError(t, err)

	annotated, err := store.Annotate(ctx, []models.Event{full, open}, viewer.ID)
	require.NoError(t, err)
	require.Len(t, annotated, 2)

	assert.Equal(t, 1, annotated[0].Occupancy.RegisteredCount)
	assert.True(t, annotated[0].Occupancy.IsFull)
	assert.False(t, annotated[0].Occupancy.IsUserRegistered)
	assert.Zero(t, annotated[0].Occupancy.RegistrationID)

	assert.Equal(t, 1, annotated[1].Occupancy.RegisteredCount)
	assert.False(t, annotated[1].Occupancy.IsFull)
	assert.True(t, annotated[1].Occupancy.IsUserRegistered)
	assert.Equal(t, mine.ID, annotated[1].Occupancy.RegistrationID)
}

func TestAnnotateIsRecomputedAfterMutation(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	event := createEvent(t, db, 2)
	user := createProfile(t, db, "alice")

	annotated, err := store.Annotate(ctx, []models.Event{event}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, annotated[0].Occupancy.RegisteredCount)

	reg, err := store.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)

	annotated, err = store.Annotate(ctx, []models.Event{event}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, annotated[0].Occupancy.RegisteredCount)
	assert.True(t, annotated[0].Occupancy.IsUserRegistered)

	require.NoError(t, store.Cancel(ctx, reg.ID, user.ID))

	annotated, err = store.Annotate(ctx, []models.Event{event}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, annotated[0].Occupancy.RegisteredCount)
	assert.False(t, annotated[0].Occupancy.IsFull)
	assert.False(t, annotated[0].Occupancy.IsUserRegistered)
}

func TestAnnotateEmpty(t *testing.T) {
	store, db := setupStore(t)
	user := createProfile(t, db, "alice")

	annotated, err := store.Annotate(context.Background(), nil, user.ID)
	require.NoError(t, err)
	assert.Empty(t, annotated)
}
