package httpapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"musicapp/internal/app"
	"musicapp/internal/app/songs"
	"musicapp/internal/media"
	"musicapp/internal/models"
)

const maxUploadBytes = 64 << 20

type songRequest struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"desc"`
	AlbumName       string   `json:"album"`
	Artist          string   `json:"artist"`
	Genre           string   `json:"genre"`
	ReleaseYear     *int     `json:"releaseYear" validate:"omitempty,gte=1000,lte=9999"`
	DurationSeconds *float64 `json:"durationSeconds" validate:"omitempty,gte=0"`
	Duration        string   `json:"duration"`
	AudioURL        string   `json:"file"`
	ImageURL        string   `json:"image"`

	BPM              *float64 `json:"bpm" validate:"omitempty,gte=0"`
	Energy           *float64 `json:"energy" validate:"omitempty,gte=0,lte=1"`
	Danceability     *float64 `json:"danceability" validate:"omitempty,gte=0,lte=1"`
	Valence          *float64 `json:"valence" validate:"omitempty,gte=0,lte=1"`
	Acousticness     *float64 `json:"acousticness" validate:"omitempty,gte=0,lte=1"`
	Instrumentalness *float64 `json:"instrumentalness" validate:"omitempty,gte=0,lte=1"`
	Liveness         *float64 `json:"liveness" validate:"omitempty,gte=0,lte=1"`
	Speechiness      *float64 `json:"speechiness" validate:"omitempty,gte=0,lte=1"`
}

func (req songRequest) input() songs.CreateInput {
	return songs.CreateInput{
		Name:            req.Name,
		Description:     req.Description,
		AlbumName:       req.AlbumName,
		Artist:          req.Artist,
		Genre:           req.Genre,
		ReleaseYear:     req.ReleaseYear,
		DurationSeconds: req.DurationSeconds,
		Duration:        req.Duration,
		AudioURL:        req.AudioURL,
		ImageURL:        req.ImageURL,
		Features: models.AudioFeatures{
			BPM:              req.BPM,
			Energy:           req.Energy,
			Danceability:     req.Danceability,
			Valence:          req.Valence,
			Acousticness:     req.Acousticness,
			Instrumentalness: req.Instrumentalness,
			Liveness:         req.Liveness,
			Speechiness:      req.Speechiness,
		},
	}
}

type songResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Song    *models.Song `json:"song"`
}

type songsResponse struct {
	Success bool          `json:"success"`
	Songs   []models.Song `json:"songs"`
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	list, err := s.songs.List(r.Context())
	if err != nil {
		writeError(w, r, err, "Song List Failed")
		return
	}
	writeJSON(w, http.StatusOK, songsResponse{Success: true, Songs: list})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.songs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "Could not load song")
		return
	}
	writeJSON(w, http.StatusOK, songResponse{Success: true, Song: song})
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := s.songs.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err, "Song removed Failed")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Song removed success"})
}

// handleCreateSong accepts either JSON with media URLs or a multipart form
// carrying "audio" and "image" files.
func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var (
		in  songs.CreateInput
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		in, err = parseSongForm(r)
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}
		defer closeUploads(in.Audio, in.Image)
	} else {
		var req songRequest
		if err = decodeJSON(r, &req); err == nil {
			err = validateStruct(req)
		}
		in = req.input()
	}
	if err != nil {
		writeError(w, r, err, "Song Add Failed")
		return
	}

	song, err := s.songs.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Song Add Failed")
		return
	}
	writeJSON(w, http.StatusCreated, songResponse{Success: true, Message: "Song Added", Song: song})
}

func parseSongForm(r *http.Request) (songs.CreateInput, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return songs.CreateInput{}, app.Validation("invalid multipart form")
	}
	form := r.MultipartForm.Value
	value := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	req := songRequest{
		Name:        value("name"),
		Description: value("desc"),
		AlbumName:   value("album"),
		Artist:      value("artist"),
		Genre:       value("genre"),
		Duration:    value("duration"),
		AudioURL:    value("file"),
		ImageURL:    value("image"),
	}

	var problems []string
	floatField := func(key string) *float64 {
		raw := value(key)
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			problems = append(problems, key+" must be a number")
			return nil
		}
		return &f
	}
	req.DurationSeconds = floatField("durationSeconds")
	req.BPM = floatField("bpm")
	req.Energy = floatField("energy")
	req.Danceability = floatField("danceability")
	req.Valence = floatField("valence")
	req.Acousticness = floatField("acousticness")
	req.Instrumentalness = floatField("instrumentalness")
	req.Liveness = floatField("liveness")
	req.Speechiness = floatField("speechiness")
	if raw := value("releaseYear"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, "releaseYear must be an integer")
		} else {
			req.ReleaseYear = &year
		}
	}
	if len(problems) > 0 {
		return songs.CreateInput{}, app.Validation("%s", strings.Join(problems, "; "))
	}
	if err := validateStruct(req); err != nil {
		return songs.CreateInput{}, err
	}

	in := req.input()
	var err error
	if in.Audio, err = formFile(r.MultipartForm, "audio"); err != nil {
		return songs.CreateInput{}, err
	}
	if in.Image, err = formFile(r.MultipartForm, "image"); err != nil {
		closeUploads(in.Audio)
		return songs.CreateInput{}, err
	}
	return in, nil
}

func closeUploads(files ...*media.File) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if c, ok := f.Body.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func formFile(form *multipart.Form, key string) (*media.File, error) {
	headers := form.File[key]
	if len(headers) == 0 {
		return nil, nil
	}
	header := headers[0]
	f, err := header.Open()
	if err != nil {
		return nil, app.Validation("could not read %s upload", key)
	}
	return &media.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, nil
}
