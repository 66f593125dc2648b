package main

import (
	"encoding/json"
	"errors"
	"eventhub/stats"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type server struct {
	store *HitStore
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Logger)

	r.Post("/hit", s.RecordHit)
	r.Get("/stats", s.GetStats)
	return r
}

func (s *server) RecordHit(w http.ResponseWriter, r *http.Request) {
	var hit stats.EndpointHit
	if err := json.NewDecoder(r.Body).Decode(&hit); err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}
	if hit.App == "" || hit.URI == "" || hit.IP == "" {
		s.sendError(w, http.StatusBadRequest, errors.New("app, uri and ip are required"))
		return
	}
	if _, err := time.Parse(stats.TimeLayout, hit.Timestamp); err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.Record(hit); err != nil {
		s.sendError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *server) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, end := q.Get("start"), q.Get("end")
	for _, ts := range []string{start, end} {
		if _, err := time.Parse(stats.TimeLayout, ts); err != nil {
			s.sendError(w, http.StatusBadRequest, err)
			return
		}
	}

	unique := false
	if raw := q.Get("unique"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			s.sendError(w, http.StatusBadRequest, err)
			return
		}
		unique = parsed
	}

	result, err := s.store.Stats(start, end, q["uris"], unique)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *server) sendError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
}
