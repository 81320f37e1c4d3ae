package loginattempts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.LoginAttempt{}))
	return db
}

func TestRecordAndCountRecentFailures(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "kim@cafenowa.test", "10.0.0.1", false))
	require.NoError(t, repo.Record(ctx, "kim@cafenowa.test", "10.0.0.1", false))
	require.NoError(t, repo.Record(ctx, "kim@cafenowa.test", "10.0.0.1", true))

	count, err := repo.CountRecentFailures(ctx, "kim@cafenowa.test", "10.0.0.1", 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count, "successful attempts must not be counted")
}

func TestCountScopedToEmailAndIP(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "kim@cafenowa.test", "10.0.0.1", false))
	require.NoError(t, repo.Record(ctx, "kim@cafenowa.test", "10.0.0.2", false))
	require.NoError(t, repo.Record(ctx, "lee@cafenowa.test", "10.0.0.1", false))

	count, err := repo.CountRecentFailures(ctx, "kim@cafenowa.test", "10.0.0.1", 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "other IPs and other emails must not leak into the count")
}

func TestCountIgnoresAttemptsOutsideWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stale := &models.LoginAttempt{
		ID:        uuid.New(),
		Email:     "kim@cafenowa.test",
		IPAddress: "10.0.0.1",
		Succeeded: false,
	}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Model(stale).
		UpdateColumn("created_at", time.Now().UTC().Add(-16*time.Minute)).Error)

	require.NoError(t, repo.Record(ctx, "kim@cafenowa.test", "10.0.0.1", false))

	count, err := repo.CountRecentFailures(ctx, "kim@cafenowa.test", "10.0.0.1", 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "attempts older than the window must age out")
}

func TestEmailNormalizedOnRecordAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "  Kim@CafeNowa.Test ", "10.0.0.1", false))

	count, err := repo.CountRecentFailures(ctx, "kim@cafenowa.test", "10.0.0.1", 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
