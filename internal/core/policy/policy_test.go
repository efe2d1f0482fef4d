package policy

import (
	"testing"

	"alfa-sacco/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func memberActor(memberID uint) Actor {
	return Actor{UserID: 10, MemberID: &memberID, Role: domain.RoleMember}
}

func TestAuthorize(t *testing.T) {
	admin := Actor{UserID: 1, Role: domain.RoleAdmin}
	treasurer := Actor{UserID: 2, Role: domain.RoleTreasurer}

	tests := []struct {
		name     string
		actor    Actor
		action   Action
		resource Resource
		allowed  bool
	}{
		{"anonymous denied reads", Actor{}, ActionReadRecords, Resource{}, false},
		{"member reads records", memberActor(5), ActionReadRecords, Resource{}, true},
		{"admin reads records", admin, ActionReadRecords, Resource{}, true},

		{"member records own savings", memberActor(5), ActionRecordSavings, OwnResource(5), true},
		{"member denied savings for another member", memberActor(5), ActionRecordSavings, OwnResource(6), false},
		{"treasurer records savings for anyone", treasurer, ActionRecordSavings, OwnResource(6), true},

		{"member applies for own loan", memberActor(5), ActionApplyLoan, OwnResource(5), true},
		{"member denied loan for another member", memberActor(5), ActionApplyLoan, OwnResource(9), false},

		{"member denied payment recording regardless of ownership", memberActor(5), ActionRecordPayment, OwnResource(5), false},
		{"treasurer records payments", treasurer, ActionRecordPayment, Resource{}, true},
		{"admin records payments", admin, ActionRecordPayment, Resource{}, true},

		{"member denied loan management", memberActor(5), ActionManageLoan, OwnResource(5), false},
		{"admin manages loans", admin, ActionManageLoan, Resource{}, true},

		{"member denied member update", memberActor(5), ActionUpdateMember, OwnResource(5), false},
		{"treasurer updates members", treasurer, ActionUpdateMember, Resource{}, true},
		{"member denied savings edits", memberActor(5), ActionUpdateSavings, OwnResource(5), false},
		{"member denied savings deletes", memberActor(5), ActionDeleteSavings, OwnResource(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.action, tt.resource)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
			}
		})
	}
}
