package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	gobreaker "github.com/sony/gobreaker/v2"

	"musicapp/internal/app"
	"musicapp/internal/app/recommend"
	"musicapp/internal/logging"
	"musicapp/internal/models"
	"musicapp/internal/recsvc"
)

type recommendRequest struct {
	UserID  string   `json:"userId"`
	SeedIDs []string `json:"seedTrackIds"`
	Mood    string   `json:"mood" validate:"omitempty,oneof=happy energetic chill dark"`
	Genre   string   `json:"genre"`
	Limit   *int     `json:"limit" validate:"omitempty,gte=0"`
}

type recommendResponse struct {
	Success         bool             `json:"success"`
	Recommendations []models.Song    `json:"recommendations"`
	Debug           *recommend.Debug `json:"debug,omitempty"`
}

type statusResponse struct {
	Success    bool   `json:"success"`
	Configured bool   `json:"configured"`
	Healthy    bool   `json:"healthy"`
	Breaker    string `json:"breaker,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not compute recommendations")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err, "Could not compute recommendations")
		return
	}

	result, err := s.recommend.Recommend(r.Context(), recommend.Request{
		UserID:  requesterID(r, req.UserID),
		SeedIDs: req.SeedIDs,
		Mood:    recommend.Mood(req.Mood),
		Genre:   req.Genre,
		Limit:   req.Limit,
	})
	if err != nil {
		writeError(w, r, err, "Could not compute recommendations")
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{
		Success:         true,
		Recommendations: result.Recommendations,
		Debug:           result.Debug,
	})
}

func (s *Server) handleRecommendationStatus(w http.ResponseWriter, r *http.Request) {
	if s.external == nil || !s.external.Configured() {
		writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: recsvc.ErrNotConfigured.Error()})
		return
	}
	resp := statusResponse{Success: true, Configured: true}
	if err := s.external.Health(r.Context()); err != nil {
		resp.Message = err.Error()
	} else {
		resp.Healthy = true
	}
	resp.Breaker = s.external.BreakerState()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExternalForSong(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	if s.external == nil {
		writeExternalError(w, r, recsvc.ErrNotConfigured)
		return
	}
	recs, err := s.external.ForSong(r.Context(), mux.Vars(r)["songId"], limit)
	if err != nil {
		writeExternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleExternalForUser(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	if s.external == nil {
		writeExternalError(w, r, recsvc.ErrNotConfigured)
		return
	}
	recs, err := s.external.ForUser(r.Context(), mux.Vars(r)["userId"], limit)
	if err != nil {
		writeExternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(w, r, app.Validation("invalid limit parameter"), "")
		return 0, false
	}
	return limit, true
}

// writeExternalError translates proxy failures. Client errors from the
// service are passed through; everything else is a gateway problem.
func writeExternalError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *recsvc.StatusError
	switch {
	case errors.Is(err, recsvc.ErrNotConfigured), errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		writeJSON(w, http.StatusServiceUnavailable, messageResponse{Message: err.Error()})
	case errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500:
		writeJSON(w, statusErr.StatusCode, messageResponse{Message: statusErr.Detail})
	default:
		logging.FromContext(r.Context()).Error().Err(err).Msg("recommendation service call failed")
		writeJSON(w, http.StatusBadGateway, messageResponse{Message: "Recommendation service unavailable"})
	}
}
