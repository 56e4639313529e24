// internal/app/enroll/eligibility.go
package enroll

import (
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/status"
	"github.com/dalemusser/teamhub/internal/domain/models"
)

// Reason is a machine-readable rejection code, safe to show to end users.
type Reason string

const (
	ReasonAlreadyMember      Reason = "already_member"
	ReasonAlreadyWaitlisted  Reason = "already_waitlisted"
	ReasonClosed             Reason = "closed"
	ReasonDeadlinePassed     Reason = "deadline_passed"
	ReasonRequirementsNotMet Reason = "requirements_not_met"
	ReasonNotMember          Reason = "not_member"
	ReasonNotWaitlisted      Reason = "not_waitlisted"
	ReasonFull               Reason = "full"
)

// CheckJoin validates a new join request. Pure check, no side effects;
// rejections are expected business outcomes, never errors.
func CheckJoin(user models.User, g models.Group, isMember, isWaitlisted bool, now time.Time) (bool, Reason) {
	if isMember {
		return false, ReasonAlreadyMember
	}
	if isWaitlisted {
		return false, ReasonAlreadyWaitlisted
	}
	if g.Status != status.Open {
		return false, ReasonClosed
	}
	if g.Deadline != nil && now.After(*g.Deadline) {
		return false, ReasonDeadlinePassed
	}
	if !meetsRequirements(user, g) {
		return false, ReasonRequirementsNotMet
	}
	return true, ""
}

// CheckPromotion re-validates a queued candidate at promotion time.
// Requirements may have changed since the candidate queued. The join
// deadline does not apply here (queuing happened before it), but the
// enrollment window does: no promotions once the group is closed or past
// its end date.
func CheckPromotion(user models.User, g models.Group, isMember bool, now time.Time) (bool, Reason) {
	if isMember {
		return false, ReasonAlreadyMember
	}
	if g.Status != status.Open {
		return false, ReasonClosed
	}
	if g.EndDate != nil && now.After(*g.EndDate) {
		return false, ReasonClosed
	}
	if !meetsRequirements(user, g) {
		return false, ReasonRequirementsNotMet
	}
	return true, ""
}

// meetsRequirements applies the matching policy: a candidate must hold at
// least one of the group's required positions and all of its required
// skills. An empty requirement list leaves that dimension unconstrained.
func meetsRequirements(user models.User, g models.Group) bool {
	if len(g.Positions) > 0 && !anyOf(user.Positions, g.Positions) {
		return false
	}
	if len(g.Skills) > 0 && !allOf(user.Skills, g.Skills) {
		return false
	}
	return true
}

// anyOf reports whether have contains at least one of want.
func anyOf(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// allOf reports whether have contains every element of want.
func allOf(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
