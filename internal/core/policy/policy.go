// Package policy is the single authorization gate for mutating operations.
// Role membership has one source of truth (the actor's role claim) and every
// service consults the same Authorize function, independent of any route-level
// guard the HTTP layer may also apply.
package policy

import (
	"fmt"

	"alfa-sacco/internal/core/domain"
)

// Action identifies an operation subject to authorization.
type Action string

const (
	ActionReadRecords Action = "records:read"

	ActionUpdateMember Action = "member:update"
	ActionDeleteMember Action = "member:delete"

	ActionRecordSavings Action = "savings:record"
	ActionUpdateSavings Action = "savings:update"
	ActionDeleteSavings Action = "savings:delete"

	ActionApplyLoan     Action = "loan:apply"
	ActionManageLoan    Action = "loan:manage"
	ActionRecordPayment Action = "loan:record_payment"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID   uint
	MemberID *uint
	Role     domain.Role
}

// Resource describes the target of an operation. OwnerMemberID is the member
// the record belongs to, when ownership is relevant.
type Resource struct {
	OwnerMemberID *uint
}

// OwnResource builds a resource owned by the given member.
func OwnResource(memberID uint) Resource {
	return Resource{OwnerMemberID: &memberID}
}

// Authorize returns nil when the actor may perform the action, or an error
// wrapping domain.ErrUnauthorized. Unauthenticated actors are denied
// everything, including reads.
func Authorize(actor Actor, action Action, resource Resource) error {
	if actor.Role == "" {
		return deny(action, "not authenticated")
	}

	staff := actor.Role == domain.RoleAdmin || actor.Role == domain.RoleTreasurer

	switch action {
	case ActionReadRecords:
		return nil

	case ActionUpdateMember, ActionDeleteMember,
		ActionUpdateSavings, ActionDeleteSavings,
		ActionManageLoan, ActionRecordPayment:
		if staff {
			return nil
		}
		return deny(action, "requires admin or treasurer role")

	case ActionRecordSavings, ActionApplyLoan:
		if staff {
			return nil
		}
		if actor.MemberID != nil && resource.OwnerMemberID != nil &&
			*actor.MemberID == *resource.OwnerMemberID {
			return nil
		}
		return deny(action, "members may only act on their own record")
	}

	return deny(action, "unknown action")
}

func deny(action Action, reason string) error {
	return fmt.Errorf("%w: %s (%s)", domain.ErrUnauthorized, action, reason)
}
