package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
)

// Repository exposes the append-only audit trail. There is deliberately
// no update or delete method.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an audit repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one audit row.
func (r *Repository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// Filter narrows an audit query. Zero-valued fields are not applied;
// set fields combine with AND.
type Filter struct {
	Role       enums.Role
	ActionType enums.ActionType
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
}

// Query returns one page of audit rows, newest first, plus the total
// row count for the filter.
func (r *Repository) Query(ctx context.Context, filter Filter, page pagination.Params) ([]models.AuditEntry, int64, error) {
	page = pagination.Normalize(page)

	query := r.db.WithContext(ctx).Model(&models.AuditEntry{})

	if filter.Role != "" {
		query = query.Where("user_type = ?", filter.Role)
	}
	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", filter.DateTo.UTC())
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		needle := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(action) LIKE ? OR LOWER(ip_address) LIKE ?",
			needle, needle, needle,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditEntry
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
