package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"musicapp/internal/models"
)

type favoriteRequest struct {
	UserID string `json:"userId"`
	SongID string `json:"songId"`
}

type favoriteResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Created  bool             `json:"created"`
	Favorite *models.Favorite `json:"favorite,omitempty"`
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not add favorite")
		return
	}
	fav, created, err := s.favorites.Add(r.Context(), requesterID(r, req.UserID), req.SongID)
	if err != nil {
		writeError(w, r, err, "Could not add favorite")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, favoriteResponse{Success: true, Message: "Song added to favorites", Created: created, Favorite: fav})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not remove favorite")
		return
	}
	if err := s.favorites.Remove(r.Context(), requesterID(r, req.UserID), req.SongID); err != nil {
		writeError(w, r, err, "Could not remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Song removed from favorites"})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := s.favorites.List(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err, "Could not fetch favorites")
		return
	}
	writeJSON(w, http.StatusOK, songsResponse{Success: true, Songs: list})
}
