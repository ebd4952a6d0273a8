package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cooldogedev/prism/session"
	"github.com/cooldogedev/prism/violation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultViolationLimit is the number of violations listed when the request does not set a limit.
const defaultViolationLimit = 50

// ViolationSource lists recorded violations, newest first.
type ViolationSource interface {
	Recent(ctx context.Context, player string, limit int) ([]violation.Violation, error)
}

// SessionInfo is the JSON representation of a live session.
type SessionInfo struct {
	Name        string  `json:"name"`
	Addr        string  `json:"addr"`
	Version     string  `json:"version"`
	SubProtocol int     `json:"sub_protocol"`
	GameMode    int32   `json:"game_mode"`
	HeldSlot    int     `json:"held_slot"`
	Windows     []int32 `json:"windows"`
}

type httpHandler struct {
	sessions   *session.Registry
	violations ViolationSource
	logger     *slog.Logger
}

// NewHTTPHandler returns the routes of the HTTP admin API. /healthz and /metrics are public, every other
// route requires the token as a bearer token. violations may be nil, in which case /violations is not
// served.
func NewHTTPHandler(sessions *session.Registry, violations ViolationSource, gatherer prometheus.Gatherer, auth Authentication, logger *slog.Logger) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := &httpHandler{sessions: sessions, violations: violations, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		r.Use(bearer(auth))
		r.Get("/sessions", h.listSessions)
		r.Delete("/sessions/{name}", h.kick)
		if violations != nil {
			r.Get("/violations", h.listViolations)
		}
	})
	return r
}

func bearer(auth Authentication) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if auth != nil && (!ok || !auth.Authenticate(token)) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *httpHandler) listSessions(w http.ResponseWriter, _ *http.Request) {
	sessions := h.sessions.GetSessions()
	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, SessionInfo{
			Name:        s.Name(),
			Addr:        s.Conn().RemoteAddr().String(),
			Version:     s.Version().String(),
			SubProtocol: s.Conn().SubProtocol(),
			GameMode:    s.GameMode(),
			HeldSlot:    s.HeldSlot(),
			Windows:     s.Tracker().Windows(),
		})
	}
	h.writeJSON(w, infos)
}

func (h *httpHandler) kick(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.GetSession(chi.URLParam(r, "name"))
	if s == nil {
		http.Error(w, "unknown player", http.StatusNotFound)
		return
	}
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "Kicked by an operator"
	}
	s.Disconnect(reason)
	w.WriteHeader(http.StatusNoContent)
}

func (h *httpHandler) listViolations(w http.ResponseWriter, r *http.Request) {
	limit := defaultViolationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	violations, err := h.violations.Recent(r.Context(), r.URL.Query().Get("player"), limit)
	if err != nil {
		h.logger.Error("failed to list violations", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if violations == nil {
		violations = []violation.Violation{}
	}
	h.writeJSON(w, violations)
}

func (h *httpHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "err", err)
	}
}
