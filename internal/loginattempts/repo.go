package loginattempts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
)

// Repository exposes the append-only login attempt ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a login attempts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record appends one attempt row. Rows are never updated or deleted.
func (r *Repository) Record(ctx context.Context, email, ipAddress string, succeeded bool) error {
	attempt := &models.LoginAttempt{
		ID:        uuid.New(),
		Email:     normalizeEmail(email),
		IPAddress: ipAddress,
		Succeeded: succeeded,
	}
	return r.db.WithContext(ctx).Create(attempt).Error
}

// CountRecentFailures counts failed attempts for the email+IP pair whose
// created_at falls inside the trailing window. Successful attempts do
// not reset the count; only time does.
func (r *Repository) CountRecentFailures(ctx context.Context, email, ipAddress string, window time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-window)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoginAttempt{}).
		Where("email = ? AND ip_address = ? AND succeeded = ? AND created_at > ?",
			normalizeEmail(email), ipAddress, false, cutoff).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
