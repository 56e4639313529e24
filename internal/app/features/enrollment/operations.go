// internal/app/features/enrollment/operations.go
package enrollment

import (
	"net/http"
)

// HandleJoin handles POST /enrollment/groups/{groupID}/join.
// Body: {"user_id": "..."}. Responds with the decided outcome: admitted,
// waitlisted, or rejected with a reason code.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}
	out, err := h.Engine.JoinGroup(r.Context(), userID, groupID)
	h.writeOutcome(w, out, err)
}

// HandleLeave handles POST /enrollment/groups/{groupID}/leave. Freeing a
// seat triggers the promotion sweep before the response is written.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}
	out, err := h.Engine.LeaveGroup(r.Context(), userID, groupID)
	h.writeOutcome(w, out, err)
}

// HandleWithdraw handles POST /enrollment/groups/{groupID}/withdraw.
// Idempotent: withdrawing an absent entry still returns "withdrawn".
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}
	out, err := h.Engine.WithdrawFromWaitlist(r.Context(), userID, groupID)
	h.writeOutcome(w, out, err)
}

// HandleApprove handles POST /enrollment/groups/{groupID}/approve —
// manual promotion of a queued candidate when the group does not
// auto-allow.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}
	out, err := h.Engine.ApprovePending(r.Context(), userID, groupID)
	h.writeOutcome(w, out, err)
}

// HandleClose handles POST /enrollment/groups/{groupID}/close. Closing
// drains the waitlist; queued users are rejected with reason "closed".
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Engine.CloseGroup(r.Context(), groupID); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
