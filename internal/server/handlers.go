package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/claude/wodcoach/internal/coach"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/strategy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies. Workout text itself is capped lower by
// the parser.
const maxBodyBytes = 64 << 10

type workoutRequest struct {
	Text string `json:"text"`
}

type percentileRequest struct {
	BenchmarkCode string   `json:"benchmark_code"`
	Value         *float64 `json:"value"`
	Gender        string   `json:"gender"`
	Experience    string   `json:"experience"`
}

type benchmarkRequest struct {
	BenchmarkCode string     `json:"benchmark_code"`
	Value         *float64   `json:"value"`
	RecordedAt    *time.Time `json:"recorded_at"`
}

type athleteRequest struct {
	Name         string   `json:"name"`
	Login        string   `json:"login"`
	Gender       string   `json:"gender"`
	Experience   string   `json:"experience"`
	BodyweightKg *float64 `json:"bodyweight_kg"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.coach.Parse(r.Context(), req.Text)
	if err != nil {
		s.log.Error("parse error", "error", err, "request_id", requestIDFromContext(r))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid athlete id"})
		return
	}
	var req workoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.writeStrategy(w, r, id, req.Text)
}

func (s *Server) handleMyStrategy(w http.ResponseWriter, r *http.Request) {
	info := userInfoFromContext(r)
	a, err := s.athletes.GetAthleteByLogin(r.Context(), info.Login)
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no athlete linked to " + info.Login})
		return
	}
	if err != nil {
		s.log.Error("athlete lookup error", "login", info.Login, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	var req workoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.writeStrategy(w, r, a.ID, req.Text)
}

func (s *Server) writeStrategy(w http.ResponseWriter, r *http.Request, id uuid.UUID, text string) {
	rep, err := s.coach.Strategy(r.Context(), id, text)
	switch {
	case errors.Is(err, coach.ErrAthleteNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, strategy.ErrInvalidWorkout):
		writeJSON(w, http.StatusUnprocessableEntity, rep)
	case err != nil:
		s.log.Error("strategy error", "athlete_id", id, "error", err, "request_id", requestIDFromContext(r))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}

func (s *Server) handleMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := s.coach.Movements(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, movements)
}

func (s *Server) handlePercentile(w http.ResponseWriter, r *http.Request) {
	var req percentileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BenchmarkCode == "" || req.Value == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "benchmark_code and value are required"})
		return
	}

	res, err := s.coach.Percentile(r.Context(), req.BenchmarkCode, *req.Value, req.Gender, req.Experience)
	switch {
	case errors.Is(err, coach.ErrUnknownBenchmark), errors.Is(err, coach.ErrNoPercentileTable):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleListAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := s.athletes.ListAthletes(r.Context())
	if err != nil {
		s.log.Error("list athletes error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if athletes == nil {
		athletes = []models.AthleteProfile{}
	}
	writeJSON(w, http.StatusOK, athletes)
}

func (s *Server) handlePutAthlete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid athlete id"})
		return
	}
	var req athleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a := models.AthleteProfile{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Login:        strings.TrimSpace(req.Login),
		BodyweightKg: req.BodyweightKg,
	}
	if a.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Gender != "" {
		g, ok := models.NormalizeGender(req.Gender)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown gender: " + req.Gender})
			return
		}
		a.Gender = g
	}
	if req.Experience != "" {
		e, ok := models.NormalizeExperience(req.Experience)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown experience: " + req.Experience})
			return
		}
		a.Experience = e
	}
	if a.BodyweightKg != nil && *a.BodyweightKg <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bodyweight_kg must be positive"})
		return
	}

	if err := s.athletes.UpsertAthlete(r.Context(), a); err != nil {
		s.log.Error("upsert athlete error", "athlete_id", id, "error", err, "request_id", requestIDFromContext(r))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("athlete saved", "athlete_id", id)
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleRecordBenchmark(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid athlete id"})
		return
	}
	var req benchmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BenchmarkCode == "" || req.Value == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "benchmark_code and value are required"})
		return
	}
	if *req.Value < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value must not be negative"})
		return
	}

	rec := models.AthleteBenchmark{
		AthleteID:     id,
		BenchmarkCode: strings.ToLower(strings.TrimSpace(req.BenchmarkCode)),
		Value:         *req.Value,
		RecordedAt:    time.Now().UTC(),
	}
	if req.RecordedAt != nil {
		rec.RecordedAt = req.RecordedAt.UTC()
	}

	err = s.athletes.RecordBenchmark(r.Context(), rec)
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		s.log.Error("record benchmark error", "athlete_id", id, "error", err, "request_id", requestIDFromContext(r))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		s.log.Info("benchmark recorded", "athlete_id", id, "benchmark", rec.BenchmarkCode, "value", rec.Value)
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.athletes.GetDataStats(r.Context())
	if err != nil {
		s.log.Error("stats error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
