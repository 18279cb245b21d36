package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"musicapp/internal/models"
)

type albumRequest struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"desc"`
	BackgroundColor string `json:"bgColour" validate:"omitempty,hexcolor"`
	ImageURL        string `json:"image" validate:"omitempty,url"`
}

type albumResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Album   models.Album `json:"album"`
}

type albumsResponse struct {
	Success bool           `json:"success"`
	Albums  []models.Album `json:"albums"`
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.albums.List(r.Context())
	if err != nil {
		writeError(w, r, err, "Album List Failed")
		return
	}
	writeJSON(w, http.StatusOK, albumsResponse{Success: true, Albums: albums})
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Album Add Failed")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err, "Album Add Failed")
		return
	}

	album, err := s.albums.Create(r.Context(), models.Album{
		Name:            req.Name,
		Description:     req.Description,
		BackgroundColor: req.BackgroundColor,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		writeError(w, r, err, "Album Add Failed")
		return
	}
	writeJSON(w, http.StatusCreated, albumResponse{Success: true, Message: "Album Added", Album: album})
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	if err := s.albums.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err, "Album removed Failed")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Album removed success"})
}
