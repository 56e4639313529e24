// internal/app/enroll/policy.go
package enroll

import (
	"github.com/dalemusser/teamhub/internal/domain/models"
)

// PromotionAction is what the promotion sweep should do with an eligible
// head-of-queue candidate.
type PromotionAction int

const (
	// PromoteNow admits the candidate immediately.
	PromoteNow PromotionAction = iota
	// HoldForApproval leaves the seat free and notifies an approver; the
	// candidate stays queued until an explicit Approve call.
	HoldForApproval
)

// PromotionPolicy decides how a freed seat is filled. New policies (e.g.
// rating-based priority) implement this interface without touching the
// sweep loop in the Controller.
type PromotionPolicy interface {
	NextAction(candidate models.WaitlistEntry) PromotionAction
	Name() string
}

// PolicyFor selects the policy for a group from its AutoAllow flag.
func PolicyFor(g models.Group) PromotionPolicy {
	if g.AutoAllow {
		return AutoPromote{}
	}
	return ManualApproval{}
}

// AutoPromote admits the next eligible candidate as soon as a seat frees.
type AutoPromote struct{}

func (AutoPromote) NextAction(models.WaitlistEntry) PromotionAction { return PromoteNow }
func (AutoPromote) Name() string                                   { return "auto_promote" }

// ManualApproval holds freed seats for an approver.
type ManualApproval struct{}

func (ManualApproval) NextAction(models.WaitlistEntry) PromotionAction { return HoldForApproval }
func (ManualApproval) Name() string                                    { return "manual_approval" }
