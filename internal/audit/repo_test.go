package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.AuditEntry{}))
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, role enums.Role, actionType enums.ActionType, username, ip string, at time.Time) models.AuditEntry {
	t.Helper()

	actorID := uuid.New()
	entry := models.AuditEntry{
		ID:            uuid.New(),
		Role:          role,
		ActorID:       &actorID,
		ActorUsername: username,
		Action:        fmt.Sprintf("%s by %s", actionType, username),
		ActionType:    actionType,
		IPAddress:     ip,
		UserAgent:     "test-agent",
	}
	require.NoError(t, db.Create(&entry).Error)
	require.NoError(t, db.Model(&entry).UpdateColumn("created_at", at).Error)
	entry.CreatedAt = at
	return entry
}

func TestQueryOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	oldest := seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "ana", "10.0.0.1", now.Add(-2*time.Hour))
	newest := seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "ana", "10.0.0.1", now)
	middle := seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "ana", "10.0.0.1", now.Add(-time.Hour))

	entries, total, err := repo.Query(context.Background(), Filter{}, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	assert.Equal(t, newest.ID, entries[0].ID)
	assert.Equal(t, middle.ID, entries[1].ID)
	assert.Equal(t, oldest.ID, entries[2].ID)
}

func TestQueryFiltersCombineWithAND(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	match := seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "ana", "10.0.0.1", now)
	seedEntry(t, db, enums.RoleAdmin, enums.ActionUpdate, "ana", "10.0.0.1", now)
	seedEntry(t, db, enums.RoleEmployee, enums.ActionLogin, "ana", "10.0.0.1", now)

	entries, total, err := repo.Query(context.Background(), Filter{
		Role:       enums.RoleAdmin,
		ActionType: enums.ActionLogin,
	}, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, match.ID, entries[0].ID)
}

func TestQueryDateRange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "ana", "10.0.0.1", now.Add(-72*time.Hour))
	inRange := seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "ana", "10.0.0.1", now.Add(-24*time.Hour))
	seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "ana", "10.0.0.1", now)

	from := now.Add(-48 * time.Hour)
	to := now.Add(-time.Hour)
	entries, total, err := repo.Query(context.Background(), Filter{
		DateFrom: &from,
		DateTo:   &to,
	}, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, inRange.ID, entries[0].ID)
}

func TestQuerySearchIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	byName := seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "Carmen", "10.0.0.1", now)
	byIP := seedEntry(t, db, enums.RoleEmployee, enums.ActionLogout, "dario", "192.168.7.7", now)
	seedEntry(t, db, enums.RoleCustomer, enums.ActionView, "elena", "10.0.0.3", now)

	entries, total, err := repo.Query(context.Background(), Filter{Search: "CARMEN"}, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, byName.ID, entries[0].ID)

	entries, total, err = repo.Query(context.Background(), Filter{Search: "192.168"}, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, byIP.ID, entries[0].ID)
}

func TestQueryClampsPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	for i := 0; i < 15; i++ {
		seedEntry(t, db, enums.RoleAdmin, enums.ActionLogin, "ana", "10.0.0.1", now.Add(-time.Duration(i)*time.Minute))
	}

	// Limit below the floor is raised to the floor.
	entries, total, err := repo.Query(context.Background(), Filter{}, pagination.Params{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, entries, 10)

	// Page past the end returns an empty slice, not an error.
	entries, _, err = repo.Query(context.Background(), Filter{}, pagination.Params{Page: 99, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
