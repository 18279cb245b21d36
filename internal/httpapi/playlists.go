package httpapi

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"musicapp/internal/app"
	"musicapp/internal/app/playlists"
	"musicapp/internal/auth"
	"musicapp/internal/models"
)

type createPlaylistRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	UserID      string   `json:"userId"`
	Songs       []string `json:"songs"`
}

type playlistSongRequest struct {
	UserID string `json:"userId"`
	SongID string `json:"songId"`
}

type visibilityRequest struct {
	UserID   string `json:"userId"`
	IsPublic *bool  `json:"isPublic" validate:"required"`
}

type shareRequest struct {
	UserID     string `json:"userId"`
	Regenerate bool   `json:"regenerate"`
}

type playlistResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Playlist *models.Playlist `json:"playlist"`
}

type playlistsResponse struct {
	Success   bool               `json:"success"`
	Playlists []*models.Playlist `json:"playlists"`
}

type shareResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	playlists.ShareResult
}

func (s *Server) registerPlaylists(api *mux.Router) {
	r := api.PathPrefix("/playlists").Subrouter()

	r.HandleFunc("/create", s.handleCreatePlaylist).Methods(http.MethodPost)
	r.HandleFunc("/shared/{shareCode}", s.handleSharedPlaylist).Methods(http.MethodGet)
	r.HandleFunc("/public/discover", s.handleDiscoverPlaylists).Methods(http.MethodGet)
	r.HandleFunc("/public/{playlistId}", s.handlePublicPlaylist).Methods(http.MethodGet)
	r.HandleFunc("/user/{userId}", s.handleUserPlaylists).Methods(http.MethodGet)

	all := http.Handler(http.HandlerFunc(s.handleAllPlaylists))
	if s.verifier != nil {
		all = auth.RequireAdmin(all)
	}
	r.Handle("/all", all).Methods(http.MethodGet)

	r.HandleFunc("/{playlistId}", s.handleGetPlaylist).Methods(http.MethodGet)
	r.HandleFunc("/{playlistId}", s.handleDeletePlaylist).Methods(http.MethodDelete)
	r.HandleFunc("/{playlistId}/add-song", s.handleAddPlaylistSong).Methods(http.MethodPost)
	r.HandleFunc("/{playlistId}/remove-song", s.handleRemovePlaylistSong).Methods(http.MethodPost)
	r.HandleFunc("/{playlistId}/visibility", s.handlePlaylistVisibility).Methods(http.MethodPatch)
	r.HandleFunc("/{playlistId}/share", s.handleSharePlaylist).Methods(http.MethodPost)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not create playlist")
		return
	}
	playlist, err := s.playlists.Create(r.Context(), playlists.CreateInput{
		OwnerID:     requesterID(r, req.UserID),
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		SongIDs:     req.Songs,
	})
	if err != nil {
		writeError(w, r, err, "Could not create playlist")
		return
	}
	writeJSON(w, http.StatusCreated, playlistResponse{Success: true, Message: "Playlist created", Playlist: playlist})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	// The requester may arrive in a JSON body or, for clients that cannot
	// send DELETE bodies, the query string.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, r, app.Validation("invalid JSON payload"), "")
		return
	}
	if req.UserID == "" {
		req.UserID = r.URL.Query().Get("userId")
	}

	if err := s.playlists.Delete(r.Context(), mux.Vars(r)["playlistId"], requesterID(r, req.UserID)); err != nil {
		writeError(w, r, err, "Could not delete playlist")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Playlist removed successfully"})
}

func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	var req playlistSongRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not add song to playlist")
		return
	}
	playlist, err := s.playlists.AddSong(r.Context(), mux.Vars(r)["playlistId"], requesterID(r, req.UserID), req.SongID)
	if err != nil {
		writeError(w, r, err, "Could not add song to playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{Success: true, Message: "Song added to playlist", Playlist: playlist})
}

func (s *Server) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	var req playlistSongRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not remove song from playlist")
		return
	}
	playlist, err := s.playlists.RemoveSong(r.Context(), mux.Vars(r)["playlistId"], requesterID(r, req.UserID), req.SongID)
	if err != nil {
		writeError(w, r, err, "Could not remove song from playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{Success: true, Message: "Song removed from playlist", Playlist: playlist})
}

func (s *Server) handlePlaylistVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not update playlist visibility")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err, "Could not update playlist visibility")
		return
	}
	playlist, err := s.playlists.SetVisibility(r.Context(), mux.Vars(r)["playlistId"], requesterID(r, req.UserID), *req.IsPublic)
	if err != nil {
		writeError(w, r, err, "Could not update playlist visibility")
		return
	}
	message := "Playlist is now private"
	if playlist.IsPublic {
		message = "Playlist is now public"
	}
	writeJSON(w, http.StatusOK, playlistResponse{Success: true, Message: message, Playlist: playlist})
}

func (s *Server) handleSharePlaylist(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Could not share playlist")
		return
	}
	result, err := s.playlists.Share(r.Context(), mux.Vars(r)["playlistId"], requesterID(r, req.UserID), req.Regenerate)
	if err != nil {
		writeError(w, r, err, "Could not share playlist")
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Success: true, Message: "Share link generated", ShareResult: *result})
}

func (s *Server) handleSharedPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.playlists.GetBySharedCode(r.Context(), mux.Vars(r)["shareCode"])
	if err != nil {
		writeError(w, r, err, "Could not fetch shared playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{Success: true, Playlist: playlist})
}

func (s *Server) handleDiscoverPlaylists(w http.ResponseWriter, r *http.Request) {
	list, err := s.playlists.ListPublic(r.Context(), requesterID(r, r.URL.Query().Get("userId")))
	if err != nil {
		writeError(w, r, err, "Could not load public playlists")
		return
	}
	writeJSON(w, http.StatusOK, playlistsResponse{Success: true, Playlists: list})
}

func (s *Server) handlePublicPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.playlists.GetPublicByID(r.Context(), mux.Vars(r)["playlistId"])
	if err != nil {
		writeError(w, r, err, "Could not load public playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{Success: true, Playlist: playlist})
}

func (s *Server) handleUserPlaylists(w http.ResponseWriter, r *http.Request) {
	list, err := s.playlists.ListByOwner(r.Context(), mux.Vars(r)["userId"], requesterID(r, ""))
	if err != nil {
		writeError(w, r, err, "Could not load playlists")
		return
	}
	writeJSON(w, http.StatusOK, playlistsResponse{Success: true, Playlists: list})
}

func (s *Server) handleAllPlaylists(w http.ResponseWriter, r *http.Request) {
	list, err := s.playlists.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err, "Could not load playlists")
		return
	}
	writeJSON(w, http.StatusOK, playlistsResponse{Success: true, Playlists: list})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.playlists.GetByID(r.Context(), mux.Vars(r)["playlistId"], requesterID(r, r.URL.Query().Get("userId")))
	if err != nil {
		writeError(w, r, err, "Could not load playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{Success: true, Playlist: playlist})
}
