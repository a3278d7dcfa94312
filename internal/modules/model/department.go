package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ContractorLabourOnly = "labour_only"
	ContractorTurnkey    = "turnkey"
)

// LineItem is one priced row of a department budget.
type LineItem struct {
	ItemType  string  `json:"item_type"`
	Item      string  `json:"item"`
	Spec      string  `json:"spec,omitempty"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
}

func (li LineItem) Total() float64 { return li.Quantity * li.UnitPrice }

type Department struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PhaseID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_phase_department_name,priority:1" json:"phase_id"`

	Name string `gorm:"type:varchar(128);not null" json:"name"`
	// Lowercased name, enforcing case-insensitive uniqueness within a phase.
	NameKey string `gorm:"type:varchar(128);not null;uniqueIndex:uq_phase_department_name,priority:2" json:"-"`

	ContractorMode string `gorm:"type:varchar(16);not null;default:'labour_only'" json:"contractor_mode"`

	Items datatypes.JSONType[[]LineItem] `gorm:"type:jsonb" swaggertype:"array,object" json:"items"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Department <-> Phase
	Phase *Phase `gorm:"foreignKey:PhaseID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Department) TableName() string { return "departments" }

// AllocatedBudget is the sum over line items of quantity times unit price.
func (d *Department) AllocatedBudget() float64 {
	var total float64
	for _, li := range d.Items.Data() {
		total += li.Total()
	}
	return total
}

// Key is the phase-scoped department key expenses are booked against.
// The phase id prefix disambiguates same-named departments across phases.
func (d *Department) Key() string {
	return DepartmentKey(d.PhaseID, d.Name)
}

// DepartmentKey builds the phase-scoped key for a department name.
func DepartmentKey(phaseID uuid.UUID, name string) string {
	return fmt.Sprintf("%s_%s", phaseID, NormalizeDepartmentName(name))
}

// NormalizeDepartmentName lowercases and trims a department name for
// case-insensitive matching.
func NormalizeDepartmentName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
