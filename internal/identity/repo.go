package identity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
)

// Record is the partition-agnostic view of one account row. The role
// names the table the row came from.
type Record struct {
	ID           uuid.UUID
	Role         enums.Role
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	LastLoginAt  *time.Time
	Position     *string
	Phone        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams carries the fields needed to insert an account.
type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	Position     *string
	Phone        *string
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Username     *string
	Email        *string
	PasswordHash *string
	FullName     *string
	Position     *string
	Phone        *string
}

// Repository reads and writes the four credential partitions. Every
// method takes the role explicitly; there are no cross-partition
// uniqueness guarantees.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an identity repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByEmail retrieves the account matching the email inside one partition.
func (r *Repository) FindByEmail(ctx context.Context, role enums.Role, email string) (*Record, error) {
	return r.findOne(ctx, role, "email = ?", normalizeEmail(email))
}

// FindByID loads an account by UUID inside one partition.
func (r *Repository) FindByID(ctx context.Context, role enums.Role, id uuid.UUID) (*Record, error) {
	return r.findOne(ctx, role, "id = ?", id)
}

// Create inserts a new account into the role's partition.
func (r *Repository) Create(ctx context.Context, role enums.Role, params CreateParams) (*Record, error) {
	account := models.Account{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(params.Username),
		Email:        normalizeEmail(params.Email),
		PasswordHash: params.PasswordHash,
		FullName:     strings.TrimSpace(params.FullName),
		IsActive:     params.IsActive,
	}

	switch role {
	case enums.RoleSuperAdmin:
		row := models.SuperAdmin{Account: account}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return recordFromAccount(role, row.Account, nil, nil), nil
	case enums.RoleAdmin:
		row := models.Admin{Account: account}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return recordFromAccount(role, row.Account, nil, nil), nil
	case enums.RoleEmployee:
		row := models.Employee{Account: account}
		if params.Position != nil {
			row.Position = strings.TrimSpace(*params.Position)
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return recordFromAccount(role, row.Account, &row.Position, nil), nil
	case enums.RoleCustomer:
		row := models.Customer{Account: account, Phone: params.Phone}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return recordFromAccount(role, row.Account, nil, row.Phone), nil
	}
	return nil, fmt.Errorf("unknown partition %q", role)
}

// Update applies a partial update to one account.
func (r *Repository) Update(ctx context.Context, role enums.Role, id uuid.UUID, params UpdateParams) error {
	updates := map[string]any{}
	if params.Username != nil {
		updates["username"] = strings.TrimSpace(*params.Username)
	}
	if params.Email != nil {
		updates["email"] = normalizeEmail(*params.Email)
	}
	if params.PasswordHash != nil {
		updates["password_hash"] = *params.PasswordHash
	}
	if params.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*params.FullName)
	}
	if params.Position != nil && role == enums.RoleEmployee {
		updates["position"] = strings.TrimSpace(*params.Position)
	}
	if params.Phone != nil && role == enums.RoleCustomer {
		updates["phone"] = *params.Phone
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()

	return r.applyUpdates(ctx, role, id, updates)
}

// SetActive flips the is_active flag of one account.
func (r *Repository) SetActive(ctx context.Context, role enums.Role, id uuid.UUID, active bool) error {
	return r.applyUpdates(ctx, role, id, map[string]any{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	})
}

// Delete removes one account row permanently.
func (r *Repository) Delete(ctx context.Context, role enums.Role, id uuid.UUID) error {
	model, err := modelFor(role)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateLastLogin refreshes the account's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, role enums.Role, id uuid.UUID, at time.Time) error {
	return r.applyUpdates(ctx, role, id, map[string]any{"last_login_at": at})
}

// List returns one page of accounts merged across the given partitions,
// ordered by created_at descending. The café's partitions are small
// enough that the merge happens in memory.
func (r *Repository) List(ctx context.Context, roles []enums.Role, search string, page pagination.Params) ([]Record, int64, error) {
	page = pagination.Normalize(page)

	var merged []Record
	var total int64
	for _, role := range roles {
		records, count, err := r.listPartition(ctx, role, search)
		if err != nil {
			return nil, 0, err
		}
		merged = append(merged, records...)
		total += count
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	start := page.Offset()
	if start >= len(merged) {
		return []Record{}, total, nil
	}
	end := start + page.Limit
	if end > len(merged) {
		end = len(merged)
	}
	return merged[start:end], total, nil
}

func (r *Repository) listPartition(ctx context.Context, role enums.Role, search string) ([]Record, int64, error) {
	model, err := modelFor(role)
	if err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Model(model)
	if term := strings.TrimSpace(search); term != "" {
		needle := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?",
			needle, needle, needle,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	records, err := r.fetchPartition(query, role)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *Repository) fetchPartition(query *gorm.DB, role enums.Role) ([]Record, error) {
	switch role {
	case enums.RoleSuperAdmin:
		var rows []models.SuperAdmin
		if err := query.Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, *recordFromAccount(role, row.Account, nil, nil))
		}
		return records, nil
	case enums.RoleAdmin:
		var rows []models.Admin
		if err := query.Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, *recordFromAccount(role, row.Account, nil, nil))
		}
		return records, nil
	case enums.RoleEmployee:
		var rows []models.Employee
		if err := query.Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			position := row.Position
			records = append(records, *recordFromAccount(role, row.Account, &position, nil))
		}
		return records, nil
	case enums.RoleCustomer:
		var rows []models.Customer
		if err := query.Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, *recordFromAccount(role, row.Account, nil, row.Phone))
		}
		return records, nil
	}
	return nil, fmt.Errorf("unknown partition %q", role)
}

func (r *Repository) findOne(ctx context.Context, role enums.Role, cond string, arg any) (*Record, error) {
	switch role {
	case enums.RoleSuperAdmin:
		var row models.SuperAdmin
		if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
			return nil, err
		}
		return recordFromAccount(role, row.Account, nil, nil), nil
	case enums.RoleAdmin:
		var row models.Admin
		if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
			return nil, err
		}
		return recordFromAccount(role, row.Account, nil, nil), nil
	case enums.RoleEmployee:
		var row models.Employee
		if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
			return nil, err
		}
		position := row.Position
		return recordFromAccount(role, row.Account, &position, nil), nil
	case enums.RoleCustomer:
		var row models.Customer
		if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
			return nil, err
		}
		return recordFromAccount(role, row.Account, nil, row.Phone), nil
	}
	return nil, fmt.Errorf("unknown partition %q", role)
}

func (r *Repository) applyUpdates(ctx context.Context, role enums.Role, id uuid.UUID, updates map[string]any) error {
	model, err := modelFor(role)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(model).Where("id = ?", id).UpdateColumns(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func modelFor(role enums.Role) (any, error) {
	switch role {
	case enums.RoleSuperAdmin:
		return &models.SuperAdmin{}, nil
	case enums.RoleAdmin:
		return &models.Admin{}, nil
	case enums.RoleEmployee:
		return &models.Employee{}, nil
	case enums.RoleCustomer:
		return &models.Customer{}, nil
	}
	return nil, fmt.Errorf("unknown partition %q", role)
}

func recordFromAccount(role enums.Role, account models.Account, position, phone *string) *Record {
	return &Record{
		ID:           account.ID,
		Role:         role,
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		FullName:     account.FullName,
		IsActive:     account.IsActive,
		LastLoginAt:  account.LastLoginAt,
		Position:     position,
		Phone:        phone,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
