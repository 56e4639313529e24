// internal/app/features/enrollment/routes.go
package enrollment

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the enrollment subrouter; mounted under /enrollment.
// Authentication is handled by the platform gateway in front of this
// service.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/groups/{groupID}/join", h.HandleJoin)
	r.Post("/groups/{groupID}/leave", h.HandleLeave)
	r.Post("/groups/{groupID}/withdraw", h.HandleWithdraw)
	r.Post("/groups/{groupID}/approve", h.HandleApprove)
	r.Post("/groups/{groupID}/close", h.HandleClose)

	return r
}
