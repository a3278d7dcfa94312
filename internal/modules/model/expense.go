package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ExpensePending  = "pending"
	ExpenseApproved = "approved"
	ExpenseRejected = "rejected"
)

type Expense struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index:ix_expense_project;index:ix_expense_project_status,priority:1" json:"project_id"`
	PhaseID   *uuid.UUID `gorm:"type:uuid;index" json:"phase_id,omitempty"`

	// Phase-scoped department key, see model.DepartmentKey.
	DepartmentKey string `gorm:"type:varchar(192);index" json:"department_key"`

	Amount      float64 `gorm:"not null" json:"amount"`
	Description string  `gorm:"type:text" json:"description"`
	Status      string  `gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','approved','rejected');index:ix_expense_project_status,priority:2" json:"status"`

	// Set once by the escalation check at submission time; never
	// recomputed when budgets change afterwards.
	IsAdmin bool `gorm:"not null;default:false" json:"is_admin"`

	SubmittedBy uuid.UUID  `gorm:"type:uuid;not null" json:"submitted_by"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	RejectedBy  *uuid.UUID `gorm:"type:uuid" json:"rejected_by,omitempty"`
	Remark      string     `gorm:"type:text" json:"remark,omitempty"`

	Receipt datatypes.JSONType[Asset] `gorm:"type:jsonb" swaggertype:"object" json:"receipt"`

	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Expense <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Expense) TableName() string { return "expenses" }

// Decided reports whether the expense has already been approved or
// rejected. Decided expenses are immutable apart from that one decision.
func (e *Expense) Decided() bool {
	return e.Status == ExpenseApproved || e.Status == ExpenseRejected
}
