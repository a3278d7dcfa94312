package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentApproverStatus(t *testing.T) {
	start := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 20, 23, 59, 59, 0, time.UTC)

	beforeWindow := start.Add(-48 * time.Hour)
	inWindow := start.Add(72 * time.Hour)
	afterWindow := end.Add(time.Hour)

	tests := []struct {
		name   string
		stored ApproverStatus
		now    time.Time
		want   ApproverStatus
	}{
		{name: "pending before window stays pending", stored: ApproverPending, now: beforeWindow, want: ApproverPending},
		{name: "pending inside window stays pending", stored: ApproverPending, now: inWindow, want: ApproverPending},
		{name: "pending past window expires", stored: ApproverPending, now: afterWindow, want: ApproverExpired},
		{name: "accepted before window stays accepted", stored: ApproverAccepted, now: beforeWindow, want: ApproverAccepted},
		{name: "accepted inside window becomes active", stored: ApproverAccepted, now: inWindow, want: ApproverActive},
		{name: "accepted on window start becomes active", stored: ApproverAccepted, now: start, want: ApproverActive},
		{name: "accepted on window end still active", stored: ApproverAccepted, now: end, want: ApproverActive},
		{name: "accepted past window expires", stored: ApproverAccepted, now: afterWindow, want: ApproverExpired},
		{name: "active inside window stays active", stored: ApproverActive, now: inWindow, want: ApproverActive},
		{name: "active past window expires", stored: ApproverActive, now: afterWindow, want: ApproverExpired},
		{name: "rejected is terminal before window", stored: ApproverRejected, now: beforeWindow, want: ApproverRejected},
		{name: "rejected is terminal inside window", stored: ApproverRejected, now: inWindow, want: ApproverRejected},
		{name: "rejected is terminal past window", stored: ApproverRejected, now: afterWindow, want: ApproverRejected},
		{name: "expired is terminal", stored: ApproverExpired, now: beforeWindow, want: ApproverExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentApproverStatus(tt.stored, start, end, tt.now))
		})
	}
}

func TestCurrentApproverStatus_PureOverRepeatedReads(t *testing.T) {
	start := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	now := start.Add(time.Hour)

	first := CurrentApproverStatus(ApproverAccepted, start, end, now)
	second := CurrentApproverStatus(ApproverAccepted, start, end, now)
	assert.Equal(t, first, second)
}

func TestHasAuthority(t *testing.T) {
	assert.True(t, HasAuthority(ApproverAccepted))
	assert.True(t, HasAuthority(ApproverActive))
	assert.False(t, HasAuthority(ApproverPending))
	assert.False(t, HasAuthority(ApproverRejected))
	assert.False(t, HasAuthority(ApproverExpired))
}
