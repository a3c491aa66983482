package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/tg-relay-bot/internal/bot"
	"github.com/maxaizer/tg-relay-bot/internal/config"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/logger"
	"github.com/maxaizer/tg-relay-bot/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const (
	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
	// Telegram updates are a few kilobytes, anything near this is not one.
	maxWebhookBody = 1 << 20
)

type updateHandler interface {
	HandleUpdate(update botApi.Update)
}

type snapshotSource interface {
	Snapshot(now time.Time) models.LedgerSnapshot
}

type Server struct {
	cfg        config.ServerConfig
	ledger     snapshotSource
	updates    updateHandler
	httpServer *http.Server
}

// NewServer serves health, metrics and admin routes. The webhook route is only
// mounted when updates is not nil.
func NewServer(cfg config.ServerConfig, ledger snapshotSource, updates updateHandler) *Server {
	s := &Server{cfg: cfg, ledger: ledger, updates: updates}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/admin/stats", s.handleStats)

	if s.updates != nil {
		r.Post(bot.WebhookPath, s.handleWebhook)
	}
	return r
}

func (s *Server) Start() {
	go func() {
		log.Infof("http server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).Fatalf("http server failed: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AdminToken == "" {
		s.errorResponse(w, http.StatusNotFound, "not found")
		return
	}

	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || !equal(token, s.cfg.AdminToken) {
		log.Warnf("admin stats from %s: %v", r.RemoteAddr, models.ErrAuthorizationDenied)
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	s.jsonResponse(w, http.StatusOK, s.ledger.Snapshot(time.Now()))
}

// handleWebhook acknowledges at once; the turn runs after the response is written.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.WebhookSecret != "" && !equal(r.Header.Get(secretTokenHeader), s.cfg.WebhookSecret) {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)

	var update botApi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).Warnf("invalid webhook update: %v", err)
		s.errorResponse(w, http.StatusBadRequest, "invalid update")
		return
	}

	s.updates.HandleUpdate(update)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).Errorf("failed to write response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
