package engine

import "github.com/fieldcost/fieldcost/internal/pkg/dates"

// Status is a project's operational status.
type Status string

const (
	StatusInReview    Status = "IN_REVIEW"
	StatusLocked      Status = "LOCKED"
	StatusActive      Status = "ACTIVE"
	StatusSuspended   Status = "SUSPENDED"
	StatusStandby     Status = "STANDBY"
	StatusMaintenance Status = "MAINTENANCE"
	StatusCompleted   Status = "COMPLETED"
	StatusDeclined    Status = "DECLINED"
	StatusArchive     Status = "ARCHIVE"
)

// ParseStatus maps a stored status value onto the closed enum. Unknown
// or missing values become LOCKED: a legacy status must never crash the
// surrounding system.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusInReview, StatusLocked, StatusActive, StatusSuspended,
		StatusStandby, StatusMaintenance, StatusCompleted, StatusDeclined,
		StatusArchive:
		return Status(s)
	default:
		return StatusLocked
	}
}

// StatusInput is everything one reconciliation pass needs to derive a
// project's next status.
type StatusInput struct {
	Current        Status
	Today          dates.Date
	HandoverDate   *dates.Date
	Suspended      bool
	AnyPhaseActive bool
}

// NextStatus derives the status a project should hold given the current
// calendar day and phase activity. The second return is false when no
// transition fires, which makes a repeated pass a no-op.
//
// Suspension overrides every automatic transition. IN_REVIEW, LOCKED,
// DECLINED, COMPLETED and ARCHIVE only move by explicit administrative
// action, never by this pass.
func NextStatus(in StatusInput) (Status, bool) {
	if in.Suspended {
		return in.Current, false
	}

	switch in.Current {
	case StatusActive:
		if !in.AnyPhaseActive {
			return StatusStandby, true
		}
	case StatusStandby:
		if in.AnyPhaseActive {
			if in.HandoverDate == nil || in.HandoverDate.OnOrAfter(in.Today) {
				return StatusActive, true
			}
			return StatusMaintenance, true
		}
	}
	return in.Current, false
}

// UnsuspendTarget is the status a project lands on when its suspension
// lifts: ACTIVE once the planned date has been reached, LOCKED otherwise
// (including when no planned date is set).
func UnsuspendTarget(planned *dates.Date, today dates.Date) Status {
	if planned != nil && planned.OnOrBefore(today) {
		return StatusActive
	}
	return StatusLocked
}
