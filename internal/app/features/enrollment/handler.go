// internal/app/features/enrollment/handler.go
package enrollment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/teamhub/internal/app/enroll"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service is the slice of the enrollment engine this feature exposes over
// HTTP. *enroll.Controller satisfies it.
type Service interface {
	JoinGroup(ctx context.Context, userID, groupID primitive.ObjectID) (enroll.Outcome, error)
	LeaveGroup(ctx context.Context, userID, groupID primitive.ObjectID) (enroll.Outcome, error)
	WithdrawFromWaitlist(ctx context.Context, userID, groupID primitive.ObjectID) (enroll.Outcome, error)
	ApprovePending(ctx context.Context, userID, groupID primitive.ObjectID) (enroll.Outcome, error)
	CloseGroup(ctx context.Context, groupID primitive.ObjectID) error
}

// Handler is the shared dependency container for the enrollment feature.
type Handler struct {
	Engine Service
	Log    *zap.Logger
}

// NewHandler constructs an enrollment Handler. It is called from the
// bootstrap BuildHandler function with the engine already wired.
func NewHandler(engine Service, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// userRequest is the JSON body for operations that act on a user.
type userRequest struct {
	UserID string `json:"user_id"`
}

// groupIDParam parses the {groupID} URL parameter. Writes a 400 and returns
// false when the id is malformed.
func groupIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// decodeUserID parses the request body's user_id. Writes a 400 and returns
// false when missing or malformed.
func decodeUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeOutcome maps an engine result to an HTTP response. Decided business
// outcomes (admitted, waitlisted, rejected, …) are all 200s; the reason
// code tells the caller what happened.
func (h *Handler) writeOutcome(w http.ResponseWriter, out enroll.Outcome, err error) {
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, enroll.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "group not found")
	case errors.Is(err, enroll.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, enroll.ErrStorageUnavailable):
		h.Log.Error("enrollment storage unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		h.Log.Error("enrollment operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
