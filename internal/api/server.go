package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/companion"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/prompt"
	"github.com/pbaille/journal/internal/store"
	"github.com/pbaille/journal/internal/summary"
)

// recentWindowDays is the trailing window feeding prompt suggestions
const recentWindowDays = 7

// Replier is the per-entry reaction slice of the companion gateway
type Replier interface {
	Reply(ctx context.Context, entryText string) companion.Result
}

// Server handles HTTP requests for the journal API
type Server struct {
	store     *store.Store
	prompts   *prompt.Generator
	summaries *summary.Generator
	replier   Replier
	addr      string
	log       *zap.Logger
}

// New creates a new API server. replier may be nil when no companion
// is configured.
func New(s *store.Store, prompts *prompt.Generator, summaries *summary.Generator, replier Replier, addr string, log *zap.Logger) *Server {
	return &Server{
		store:     s,
		prompts:   prompts,
		summaries: summaries,
		replier:   replier,
		addr:      addr,
		log:       log,
	}
}

// Handler builds the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("POST /entries", s.addEntry)
	mux.HandleFunc("GET /prompt", s.getPrompt)
	mux.HandleFunc("GET /summary", s.getSummary)
	mux.HandleFunc("GET /trends", s.getTrends)
	mux.HandleFunc("GET /health", s.health)

	return s.withRequestID(withCORS(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info("starting server", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

// withRequestID tags every request with a correlation id
func (s *Server) withRequestID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		s.log.Debug("request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AddEntryRequest is the request body for adding an entry
type AddEntryRequest struct {
	Text string `json:"text"`
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	ctx := r.Context()

	// The prompt the user saw when composing is stored alongside the entry.
	recent, err := s.store.Load(ctx, recentWindowDays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	suggested := s.prompts.Generate(ctx, recent)

	var aiReply string
	if s.replier != nil {
		if res := s.replier.Reply(ctx, req.Text); res.Ok() {
			aiReply = res.Text
		}
	}

	entry, err := s.store.Save(ctx, req.Text, suggested, aiReply)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	days, ok := parseDays(w, r, 0)
	if !ok {
		return
	}

	entries, err := s.store.Load(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"days":    days,
	})
}

func (s *Server) getPrompt(w http.ResponseWriter, r *http.Request) {
	recent, err := s.store.Load(r.Context(), recentWindowDays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"prompt": s.prompts.Generate(r.Context(), recent),
	})
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	days, ok := parseDays(w, r, recentWindowDays)
	if !ok {
		return
	}

	entries, err := s.store.Load(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary": s.summaries.Generate(r.Context(), entries),
		"days":    days,
	})
}

func (s *Server) getTrends(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Load(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	daily, themeCounts := summary.Trends(entries)
	if daily == nil {
		daily = []summary.DayPoint{}
	}
	if themeCounts == nil {
		themeCounts = []summary.ThemeCount{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"daily":  daily,
		"themes": themeCounts,
	})
}

func parseDays(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "days must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
