package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"musicapp/internal/models"
)

type activityRequest struct {
	UserID   string         `json:"userId"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not log activity")
		return
	}
	entry, err := s.activity.Log(r.Context(), requesterID(r, req.UserID), models.ActivityType(req.Type), req.Metadata)
	if err != nil {
		writeError(w, r, err, "Could not log activity")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Success  bool             `json:"success"`
		Activity *models.Activity `json:"activity"`
	}{Success: true, Activity: entry})
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.activity.Recent(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err, "Could not fetch activity")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success    bool              `json:"success"`
		Activities []models.Activity `json:"activities"`
	}{Success: true, Activities: entries})
}
