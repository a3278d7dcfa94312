package engine

import "time"

// ApproverStatus is the delegation state of a temporary approver.
type ApproverStatus string

const (
	ApproverPending  ApproverStatus = "pending"
	ApproverAccepted ApproverStatus = "accepted"
	ApproverRejected ApproverStatus = "rejected"
	ApproverActive   ApproverStatus = "active"
	ApproverExpired  ApproverStatus = "expired"
)

// CurrentApproverStatus reconciles a stored delegation status against
// the clock. Pure in (stored, start, end, now); evaluated on every read,
// not only on writes.
//
//	pending  -> expired once now passes the window end, else pending
//	accepted -> active inside the window, expired past it, else accepted
//	active   -> expired past the window end, else active
//	rejected and expired are terminal
func CurrentApproverStatus(stored ApproverStatus, start, end, now time.Time) ApproverStatus {
	switch stored {
	case ApproverRejected:
		return ApproverRejected
	case ApproverExpired:
		return ApproverExpired
	case ApproverPending:
		if now.After(end) {
			return ApproverExpired
		}
		return ApproverPending
	case ApproverAccepted, ApproverActive:
		if now.After(end) {
			return ApproverExpired
		}
		if !now.Before(start) {
			return ApproverActive
		}
		// Window not yet started: the acceptance stands.
		return ApproverAccepted
	default:
		return stored
	}
}

// HasAuthority reports whether a delegation in the given reconciled
// state carries approval authority.
func HasAuthority(current ApproverStatus) bool {
	return current == ApproverAccepted || current == ApproverActive
}
