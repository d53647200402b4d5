package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/acara-app/acara-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Event{},
		&models.Registration{},
		&models.RegistrationHistory{},
	))

	return NewStore(db, true), db
}

func createEvent(t *testing.T, db *gorm.DB, capacity int) models.Event {
	t.Helper()
	event := models.Event{
		Title:     "Seminar Proposal",
		Category:  "Seminar",
		EventDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "11:00",
		Location:  "Aula Fakultas Teknik",
		Capacity:  capacity,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func createProfile(t *testing.T, db *gorm.DB, name string) models.Profile {
	t.Helper()
	profile := models.Profile{DiscordID: name, Name: name, Username: name}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func TestRegisterAndCancelRoundTrip(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	event := createEvent(t, db, 10)
	user := createProfile(t, db, "alice")

	reg, err := store.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	require.NotZero(t, reg.ID)

	registered, err := store.IsRegistered(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.True(t, registered)

	count, err := store.CountFor(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Cancel(ctx, reg.ID, user.ID))

	registered, err = store.IsRegistered(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.False(t, registered)

	count, err = store.CountFor(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRegisterUnknownEvent(t *testing.T) {
	store, db := setupStore(t)
	user := createProfile(t, db, "alice")

	_, err := store.Register(context.Background(), user.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterDuplicate(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	event := createEvent(t, db, 10)
	user := createProfile(t, db, "alice")

	_, err := store.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)

	_, err = store.Register(ctx, user.ID, event.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	count, err := store.CountFor(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegisterAgainAfterCancel(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	event := createEvent(t, db, 10)
	user := createProfile(t, db, "alice")

	reg, err := store.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	require.NoError(t, store.Cancel(ctx, reg.ID, user.ID))

	// The (user, event) slot must free up on cancel.
	_, err = store.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
}

func TestCapacityScenario(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	event := createEvent(t, db, 2)
	userA := createProfile(t, db, "a")
	userB := createProfile(t, db, "b")
	userC := createProfile(t, db, "c")

	regA, err := store.Register(ctx, userA.ID, event.ID)
	require.NoError(t, err)
	_, err = store.Register(ctx, userB.ID, event.ID)
	require.NoError(t, err)

	count, err := store.CountFor(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = store.Register(ctx, userC.ID, event.ID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	require.NoError(t, store.Cancel(ctx, regA.ID, userA.ID))

	count, err = store.CountFor(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.Register(ctx, userC.ID, event.ID)
	require.NoError(t, err)

	count, err = store.CountFor(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCancelIdempotence(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	event := createEvent(t, db, 5)
	user := createProfile(t, db, "alice")

	reg, err := store.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)

	require.NoError(t, store.Cancel(ctx, reg.ID, user.ID))
	assert.ErrorIs(t, store.Cancel(ctx, reg.ID, user.ID), ErrNotFound)

	count, err := store.CountFor(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCancelForbidden(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	event := createEvent(t, db, 5)
	owner := createProfile(t, db, "owner")
	other := createProfile(t, db, "other")

	reg, err := store.Register(ctx, owner.ID, event.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Cancel(ctx, reg.ID, other.ID), ErrForbidden)

	registered, err := store.IsRegistered(ctx, owner.ID, event.ID)
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestCancelClosedAfterEventStart(t *testing.T) {
	store, db := setupStore(t)
	store.allowLateCancel = false
	store.now = func() time.Time {
		return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) // event started at 09:00
	}

	ctx := context.Background()
	event := createEvent(t, db, 5)
	user := createProfile(t, db, "alice")

	reg, err := store.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Cancel(ctx, reg.ID, user.ID), ErrCancelClosed)

	// Before the start time the cancel goes through.
	store.now = func() time.Time {
		return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	}
	require.NoError(t, store.Cancel(ctx, reg.ID, user.ID))
}

func TestListForUserInsertionOrder(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	user := createProfile(t, db, "alice")

	var eventIDs []uint
	for i := 0; i < 3; i++ {
		event := createEvent(t, db, 5)
		eventIDs = append(eventIDs, event.ID)
		_, err := store.Register(ctx, user.ID, event.ID)
		require.NoError(t, err)
	}

	regs, err := store.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, regs, 3)
	for i, reg := range regs {
		assert.Equal(t, eventIDs[i], reg.EventID)
	}
}

func TestRegistrationHistoryAudit(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	event := createEvent(t, db, 5)
	user := createProfile(t, db, "alice")

	reg, err := store.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	require.NoError(t, store.Cancel(ctx, reg.ID, user.ID))

	var history []models.RegistrationHistory
	require.NoError(t, db.Order("id asc").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, models.HistoryRegistered, history[0].Action)
	assert.Equal(t, models.HistoryCancelled, history[1].Action)
	assert.Equal(t, event.ID, history[0].EventID)
}

func TestParticipantsFiltersOrphans(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	event := createEvent(t, db, 5)
	alive := createProfile(t, db, "alive")
	deleted := createProfile(t, db, "deleted")

	_, err := store.Register(ctx, alive.ID, event.ID)
	require.NoError(t, err)
	_, err = store.Register(ctx, deleted.ID, event.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&deleted).Error)

	participants, err := store.Participants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "alive", participants[0].Profile.Username)

	_, err = store.Participants(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentRegistrationNeverOverbooks(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	const capacity = 3
	const contenders = 8
	event := createEvent(t, db, capacity)

	users := make([]models.Profile, contenders)
	for i := range users {
		users[i] = createProfile(t, db, fmt.Sprintf("user-%d", i))
	}

	errs := make([]error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Register(ctx, users[i].ID, event.ID)
		}(i)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrCapacityExceeded):
			full++
		}
	}
	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, contenders-capacity, full)

	count, err := store.CountFor(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)

	// Derived count matches the rows, no drift.
	var rows int64
	require.NoError(t, db.Model(&models.Registration{}).Where("event_id = ?", event.ID).Count(&rows).Error)
	assert.Equal(t, int64(capacity), rows)
}
