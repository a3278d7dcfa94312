package model

import (
	"time"

	"github.com/fieldcost/fieldcost/internal/pkg/dates"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Phase struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_project_phase_number,priority:1" json:"project_id"`

	// 1-based ordering within the project; renumbered when a phase is
	// deleted so the sequence stays gapless.
	PhaseNumber int `gorm:"not null;uniqueIndex:uq_project_phase_number,priority:2" json:"phase_number"`

	StartDate *dates.Date `gorm:"type:varchar(10)" json:"start_date,omitempty"`
	EndDate   *dates.Date `gorm:"type:varchar(10)" json:"end_date,omitempty"`
	IsEnabled bool        `gorm:"not null;default:true" json:"is_enabled"`

	// Pre-department budget map (department name -> allocated amount).
	// Superseded by Department rows when those exist; kept for older
	// projects and as the degraded-mode fallback.
	LegacyBudgets datatypes.JSONType[map[string]float64] `gorm:"type:jsonb" swaggertype:"object" json:"legacy_budgets"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Phase <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Phase <-> Department
	Departments []Department `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"departments,omitempty"`
}

func (Phase) TableName() string { return "phases" }
