package model

import (
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/pkg/dates"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Project struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name   string    `gorm:"type:varchar(255);not null" json:"name"`
	Status string    `gorm:"type:varchar(32);not null;default:'IN_REVIEW'" json:"status"`

	PlannedDate         *dates.Date `gorm:"type:varchar(10)" json:"planned_date,omitempty"`
	HandoverDate        *dates.Date `gorm:"type:varchar(10)" json:"handover_date,omitempty"`
	InitialHandoverDate *dates.Date `gorm:"type:varchar(10)" json:"initial_handover_date,omitempty"`
	MaintenanceDate     *dates.Date `gorm:"type:varchar(10)" json:"maintenance_date,omitempty"`

	IsSuspended      bool        `gorm:"not null;default:false" json:"is_suspended"`
	SuspendedDate    *dates.Date `gorm:"type:varchar(10)" json:"suspended_date,omitempty"`
	SuspensionReason *string     `gorm:"type:text" json:"suspension_reason,omitempty"`

	// Stored as a list for compatibility with older records; the business
	// rule is at most one active manager, always the first entry.
	ManagerIDs  datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb" swaggertype:"array,string" json:"manager_ids"`
	TeamMembers datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb" swaggertype:"array,string" json:"team_members"`

	TempApproverID *uuid.UUID `gorm:"type:uuid" json:"temp_approver_id,omitempty"`

	StatusUpdatedAt time.Time `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Project <-> Phase
	Phases []Phase `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"phases,omitempty"`
}

func (Project) TableName() string { return "projects" }

// CurrentStatus decodes the stored status onto the closed enum; legacy
// or unknown values come back LOCKED instead of failing.
func (p *Project) CurrentStatus() engine.Status {
	return engine.ParseStatus(p.Status)
}

// FirstManager returns the active manager, if any.
func (p *Project) FirstManager() *uuid.UUID {
	if len(p.ManagerIDs) == 0 {
		return nil
	}
	id := p.ManagerIDs[0]
	return &id
}
