package model

import (
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TempApprover is a time-windowed delegation of approval authority over
// one project. The stored status lags the clock by design; readers must
// go through CurrentStatus.
type TempApprover struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_project_approver,priority:1" json:"project_id"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_project_approver,priority:2" json:"approver_id"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	Status       string  `gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','accepted','rejected','active','expired')" json:"status"`
	RejectReason *string `gorm:"type:text" json:"reject_reason,omitempty"`

	// Expense ids approved under this delegation.
	ApprovedExpenses datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb" swaggertype:"array,string" json:"approved_expenses"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// TempApprover <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (TempApprover) TableName() string { return "temp_approvers" }

// CurrentStatus reconciles the stored status against the clock.
func (t *TempApprover) CurrentStatus(now time.Time) engine.ApproverStatus {
	return engine.CurrentApproverStatus(engine.ApproverStatus(t.Status), t.StartDate, t.EndDate, now)
}
