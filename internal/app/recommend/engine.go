// Package recommend ranks catalog songs by weighted cosine similarity to a
// seed pool's averaged audio features.
package recommend

import (
	"math"
	"sort"
	"strings"

	"musicapp/internal/models"
)

// Mood nudges the target vector before scoring.
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodEnergetic Mood = "energetic"
	MoodChill     Mood = "chill"
	MoodDark      Mood = "dark"
)

// Valid reports whether m is empty or one of the known moods.
func (m Mood) Valid() bool {
	switch m {
	case "", MoodHappy, MoodEnergetic, MoodChill, MoodDark:
		return true
	}
	return false
}

const (
	// DefaultLimit applies when a request leaves Limit nil.
	DefaultLimit = 10
	// FallbackSeedCount is how many leading catalog songs seed a request
	// with no resolvable seeds.
	FallbackSeedCount = 3

	genreBonus  = 0.05
	artistBonus = 0.02
)

type feature struct {
	name     string
	min, max float64
	weight   float64
	value    func(models.AudioFeatures) *float64
}

// features is ordered; Vector indexes follow it.
var features = [...]feature{
	{"bpm", 60, 190, 0.25, func(f models.AudioFeatures) *float64 { return f.BPM }},
	{"energy", 0, 1, 0.20, func(f models.AudioFeatures) *float64 { return f.Energy }},
	{"danceability", 0, 1, 0.20, func(f models.AudioFeatures) *float64 { return f.Danceability }},
	{"valence", 0, 1, 0.15, func(f models.AudioFeatures) *float64 { return f.Valence }},
	{"acousticness", 0, 1, 0.05, func(f models.AudioFeatures) *float64 { return f.Acousticness }},
	{"instrumentalness", 0, 1, 0.05, func(f models.AudioFeatures) *float64 { return f.Instrumentalness }},
	{"liveness", 0, 1, 0.05, func(f models.AudioFeatures) *float64 { return f.Liveness }},
	{"speechiness", 0, 1, 0.05, func(f models.AudioFeatures) *float64 { return f.Speechiness }},
}

const (
	idxEnergy       = 1
	idxDanceability = 2
	idxValence      = 3
)

// Vector is a song's normalized feature representation.
type Vector [len(features)]float64

// FeatureWeights returns a fresh copy of the weight table keyed by feature
// name.
func FeatureWeights() map[string]float64 {
	weights := make(map[string]float64, len(features))
	for _, f := range features {
		weights[f.name] = f.weight
	}
	return weights
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func normalize(v *float64, min, max float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return clamp((*v - min) / (max - min))
}

// VectorOf rescales each feature of song into [0,1]. Missing values map to 0.
func VectorOf(song models.Song) Vector {
	var vec Vector
	for i, f := range features {
		vec[i] = normalize(f.value(song.AudioFeatures), f.min, f.max)
	}
	return vec
}

// Cosine is the weighted similarity of a and b: the dot product carries each
// weight once while the norms are taken over weight-scaled components, so the
// result is not capped at 1. A zero norm on either side yields 0.
func Cosine(a, b Vector) float64 {
	var dot, normA, normB float64
	for i, f := range features {
		dot += a[i] * b[i] * f.weight
		wa, wb := a[i]*f.weight, b[i]*f.weight
		normA += wa * wa
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ApplyMood returns target adjusted for mood. Unknown or empty moods leave it
// unchanged.
func ApplyMood(target Vector, mood Mood) Vector {
	switch mood {
	case MoodHappy:
		target[idxValence] = clamp(target[idxValence] + 0.10)
	case MoodEnergetic:
		target[idxEnergy] = clamp(target[idxEnergy] + 0.15)
	case MoodChill:
		target[idxEnergy] = clamp(target[idxEnergy] - 0.10)
		target[idxDanceability] = clamp(target[idxDanceability] - 0.05)
	case MoodDark:
		target[idxValence] = clamp(target[idxValence] - 0.15)
	}
	return target
}

func mean(pool []models.Song) Vector {
	var target Vector
	if len(pool) == 0 {
		return target
	}
	for _, song := range pool {
		vec := VectorOf(song)
		for i := range target {
			target[i] += vec[i]
		}
	}
	for i := range target {
		target[i] /= float64(len(pool))
	}
	return target
}

// Request describes a recommendation query.
type Request struct {
	UserID  string   `json:"userId,omitempty"`
	SeedIDs []string `json:"seedTrackIds,omitempty"`
	Mood    Mood     `json:"mood,omitempty"`
	Genre   string   `json:"genre,omitempty"`
	// Limit caps the result. nil means DefaultLimit; zero yields no songs.
	Limit *int `json:"limit,omitempty"`
}

// Debug exposes the inputs that shaped a result.
type Debug struct {
	Seeds          []string           `json:"seeds"`
	FeatureWeights map[string]float64 `json:"featureWeights"`
	Mood           Mood               `json:"mood,omitempty"`
	Genre          string             `json:"genre,omitempty"`
}

// Result is the ranked output of Recommend.
type Result struct {
	Recommendations []models.Song `json:"recommendations"`
	Debug           *Debug        `json:"debug,omitempty"`
}

// Scored pairs a candidate with its score.
type Scored struct {
	Song  models.Song `json:"song"`
	Score float64     `json:"score"`
}

// Score ranks every candidate in catalog. Songs named in req.SeedIDs are
// never candidates. The returned pool is the set of songs the target vector
// was averaged from.
func Score(req Request, catalog []models.Song) (scored []Scored, pool []models.Song) {
	if len(catalog) == 0 {
		return []Scored{}, []models.Song{}
	}

	byID := make(map[string]models.Song, len(catalog))
	for _, song := range catalog {
		if _, ok := byID[song.ID]; !ok {
			byID[song.ID] = song
		}
	}

	excluded := make(map[string]struct{}, len(req.SeedIDs))
	seeds := make([]models.Song, 0, len(req.SeedIDs))
	for _, id := range req.SeedIDs {
		excluded[id] = struct{}{}
		if song, ok := byID[id]; ok {
			seeds = append(seeds, song)
		}
	}

	pool = seeds
	if len(pool) == 0 {
		n := FallbackSeedCount
		if n > len(catalog) {
			n = len(catalog)
		}
		pool = catalog[:n]
	}

	seedArtists := make(map[string]struct{})
	for _, song := range seeds {
		if song.Artist != "" {
			seedArtists[song.Artist] = struct{}{}
		}
	}

	target := ApplyMood(mean(pool), req.Mood)

	scored = make([]Scored, 0, len(catalog))
	for _, song := range catalog {
		if _, skip := excluded[song.ID]; skip {
			continue
		}
		score := Cosine(target, VectorOf(song))
		if req.Genre != "" && strings.EqualFold(song.Genre, req.Genre) {
			score += genreBonus
		}
		if _, shared := seedArtists[song.Artist]; shared && song.Artist != "" {
			score += artistBonus
		}
		scored = append(scored, Scored{Song: song, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, pool
}

// Recommend returns the top req.Limit songs. It performs no I/O and is safe
// for concurrent use.
func Recommend(req Request, catalog []models.Song) Result {
	if len(catalog) == 0 {
		return Result{Recommendations: []models.Song{}}
	}

	scored, pool := Score(req, catalog)

	limit := DefaultLimit
	if req.Limit != nil {
		limit = max(*req.Limit, 0)
	}
	if limit > len(scored) {
		limit = len(scored)
	}

	recommendations := make([]models.Song, 0, limit)
	for _, s := range scored[:limit] {
		recommendations = append(recommendations, s.Song)
	}

	seedIDs := make([]string, 0, len(pool))
	for _, song := range pool {
		seedIDs = append(seedIDs, song.ID)
	}

	return Result{
		Recommendations: recommendations,
		Debug: &Debug{
			Seeds:          seedIDs,
			FeatureWeights: FeatureWeights(),
			Mood:           req.Mood,
			Genre:          req.Genre,
		},
	}
}
