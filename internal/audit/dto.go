package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

// EntryDTO is the transport shape of one audit row.
type EntryDTO struct {
	ID          uuid.UUID        `json:"id"`
	Role        enums.Role       `json:"user_type"`
	ActorID     *uuid.UUID       `json:"user_id,omitempty"`
	Username    string           `json:"username"`
	Action      string           `json:"action"`
	ActionType  enums.ActionType `json:"action_type"`
	TargetTable *string          `json:"target_table,omitempty"`
	TargetID    *uuid.UUID       `json:"target_id,omitempty"`
	IPAddress   string           `json:"ip_address"`
	UserAgent   string           `json:"user_agent"`
	Details     *string          `json:"details,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TrailPage is one page of the trail plus its page window.
type TrailPage struct {
	Entries    []EntryDTO       `json:"entries"`
	Pagination types.Pagination `json:"pagination"`
}

func fromModel(m models.AuditEntry) EntryDTO {
	return EntryDTO{
		ID:          m.ID,
		Role:        m.Role,
		ActorID:     m.ActorID,
		Username:    m.ActorUsername,
		Action:      m.Action,
		ActionType:  m.ActionType,
		TargetTable: m.TargetTable,
		TargetID:    m.TargetID,
		IPAddress:   m.IPAddress,
		UserAgent:   m.UserAgent,
		Details:     m.Details,
		CreatedAt:   m.CreatedAt,
	}
}

func newTrailPage(entries []models.AuditEntry, total int64, page pagination.Params) *TrailPage {
	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, fromModel(entry))
	}
	return &TrailPage{
		Entries: dtos,
		Pagination: types.Pagination{
			CurrentPage:    page.Page,
			TotalRecords:   total,
			TotalPages:     pagination.TotalPages(total, page.Limit),
			RecordsPerPage: page.Limit,
		},
	}
}
