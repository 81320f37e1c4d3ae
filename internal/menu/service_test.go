package menu

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func setupService(t *testing.T) (Service, *recordingAudit) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.MenuItem{}))

	recorder := &recordingAudit{}
	svc, err := NewService(ServiceParams{
		Repo:  NewRepository(conn),
		Audit: recorder,
	})
	require.NoError(t, err)
	return svc, recorder
}

func adminActor() types.Actor {
	return types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, Username: "ana"}
}

func meta() types.RequestMeta {
	return types.RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"}
}

func TestCreateListAndGet(t *testing.T) {
	svc, recorder := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor(), meta(), CreateItemRequest{
		Name:     "Latte",
		Category: "coffee",
		Price:    decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsAvailable, "new items default to available")

	items, err := svc.List(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Latte", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("4.50")))

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, enums.ActionCreate, recorder.entries[0].ActionType)
	require.NotNil(t, recorder.entries[0].TargetTable)
	assert.Equal(t, "menu_items", *recorder.entries[0].TargetTable)
}

func TestListFilters(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	actor := adminActor()

	unavailable := false
	_, err := svc.Create(ctx, actor, meta(), CreateItemRequest{
		Name: "Latte", Category: "coffee", Price: decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, meta(), CreateItemRequest{
		Name: "Croissant", Category: "pastry", Price: decimal.RequireFromString("3.00"),
		IsAvailable: &unavailable,
	})
	require.NoError(t, err)

	coffee, err := svc.List(ctx, "coffee", false)
	require.NoError(t, err)
	require.Len(t, coffee, 1)
	assert.Equal(t, "Latte", coffee[0].Name)

	available, err := svc.List(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Latte", available[0].Name)
}

func TestUpdateAuditsAndPersists(t *testing.T) {
	svc, recorder := setupService(t)
	ctx := context.Background()
	actor := adminActor()

	created, err := svc.Create(ctx, actor, meta(), CreateItemRequest{
		Name: "Latte", Category: "coffee", Price: decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)

	price := decimal.RequireFromString("4.75")
	updated, err := svc.Update(ctx, actor, meta(), created.ID, UpdateItemRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))

	reloaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Price.Equal(price))

	require.Len(t, recorder.entries, 2)
	assert.Equal(t, enums.ActionUpdate, recorder.entries[1].ActionType)
}

func TestDeleteRemovesItem(t *testing.T) {
	svc, recorder := setupService(t)
	ctx := context.Background()
	actor := adminActor()

	created, err := svc.Create(ctx, actor, meta(), CreateItemRequest{
		Name: "Latte", Category: "coffee", Price: decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, actor, meta(), created.ID))

	_, err = svc.Get(ctx, created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	require.Len(t, recorder.entries, 2)
	assert.Equal(t, enums.ActionDelete, recorder.entries[1].ActionType)
}

func TestValidationAndConflicts(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	actor := adminActor()

	_, err := svc.Create(ctx, actor, meta(), CreateItemRequest{
		Name: "Latte", Category: "coffee", Price: decimal.RequireFromString("-1"),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.Create(ctx, actor, meta(), CreateItemRequest{
		Name: "Latte", Category: "coffee", Price: decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor, meta(), CreateItemRequest{
		Name: "Latte", Category: "coffee", Price: decimal.RequireFromString("5.00"),
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	_, err = svc.Update(ctx, actor, meta(), uuid.New(), UpdateItemRequest{})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
