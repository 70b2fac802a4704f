package livestream

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"mux-livestream/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodyBytes caps webhook bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

const (
	textContentType = "text/plain; charset=utf-8"
	htmlContentType = "text/html; charset=utf-8"
)

// Handler exposes the webhook and rendering endpoints using go-chi.
type Handler struct {
	svc          *Service
	log          *slog.Logger
	metrics      *metrics.Metrics
	maxBodyBytes int64
}

// NewHandler returns a Handler that uses the given Service, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m, maxBodyBytes: DefaultMaxBodyBytes}
}

// WithMaxBodyBytes sets the webhook body limit. Non-positive values keep the default.
func (h *Handler) WithMaxBodyBytes(n int64) *Handler {
	if n > 0 {
		h.maxBodyBytes = n
	}
	return h
}

// Routes mounts the handler under r: POST /webhooks/mux,
// GET /streams/{stream_id} and GET /streams/{stream_id}/player.
// webhookMiddleware is applied to the webhook route only.
func (h *Handler) Routes(r chi.Router, webhookMiddleware ...func(http.Handler) http.Handler) {
	r.With(webhookMiddleware...).Post("/webhooks/mux", h.Webhook)
	r.Route("/streams/{stream_id}", func(r chi.Router) {
		r.Get("/", h.GetStream)
		r.Get("/player", h.Player)
	})
}

// Webhook handles POST /webhooks/mux.
//
// 401 when the signature does not authenticate the body; 200 "ok" for every
// authenticated delivery, including unrecognized and malformed events, so the
// sender does not retry them; 500 only when the store write fails.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes+1))
	if err != nil {
		h.log.Error("read webhook body failed", slog.String("error", err.Error()))
		h.writeText(w, http.StatusBadRequest, "Unreadable body")
		return
	}
	if int64(len(body)) > h.maxBodyBytes {
		h.log.Warn("webhook body too large", slog.Int64("limit", h.maxBodyBytes))
		h.writeText(w, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}

	res, err := h.svc.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader))
	h.countWebhook(res.Outcome)

	reqID := middleware.GetReqID(r.Context())
	switch {
	case errors.Is(err, ErrMisconfiguredSecret):
		h.log.Warn("webhook rejected",
			slog.String("reason", "misconfigured_secret"),
			slog.String("request_id", reqID))
		h.writeText(w, http.StatusUnauthorized, "Invalid signature")
		return
	case errors.Is(err, ErrAuthentication):
		h.log.Warn("webhook rejected",
			slog.String("reason", "invalid_signature"),
			slog.String("request_id", reqID))
		h.writeText(w, http.StatusUnauthorized, "Invalid signature")
		return
	case errors.Is(err, ErrMalformedPayload):
		h.log.Error("malformed webhook payload",
			slog.String("event_type", res.Update.EventType),
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))
	case err != nil:
		h.log.Error("apply webhook failed",
			slog.String("event_type", res.Update.EventType),
			slog.String("stream_id", res.Update.Record.StreamID),
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))
		h.writeText(w, http.StatusInternalServerError, "Internal error")
		return
	case res.Outcome == OutcomeIgnored:
		h.log.Debug("webhook event ignored",
			slog.String("event_type", res.Update.EventType),
			slog.String("request_id", reqID))
	default:
		h.log.Info("stream state updated",
			slog.String("event_type", res.Update.EventType),
			slog.String("stream_id", res.Update.Record.StreamID),
			slog.String("playback_id", res.Update.Record.PlaybackID),
			slog.Bool("is_live", res.Update.Record.IsLive),
			slog.String("request_id", reqID))
	}

	h.writeText(w, http.StatusOK, "ok")
}

// GetStream handles GET /streams/{stream_id} and returns the record as JSON.
func (h *Handler) GetStream(w http.ResponseWriter, r *http.Request) {
	streamID := chi.URLParam(r, "stream_id")
	if streamID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	rec, found, err := h.svc.Lookup(r.Context(), streamID)
	if err != nil {
		h.log.Error("lookup stream failed", slog.String("stream_id", streamID), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(rec)
}

// Player handles GET /streams/{stream_id}/player and renders the player
// widget, or the fallback message when there is nothing to play.
func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	streamID := chi.URLParam(r, "stream_id")

	rec, found, err := h.svc.Lookup(r.Context(), streamID)
	if err != nil {
		h.log.Error("lookup stream failed", slog.String("stream_id", streamID), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	p := PlayerFor(rec, found)
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(http.StatusOK)
	if err := RenderPlayer(w, p); err != nil {
		h.log.Error("render player failed", slog.String("stream_id", streamID), slog.String("error", err.Error()))
		return
	}
	// Fallback renders are not player views.
	if h.metrics != nil && p.Available() {
		h.metrics.IncPlayerViews()
	}
}

func (h *Handler) countWebhook(outcome Outcome) {
	if h.metrics != nil && outcome != "" {
		h.metrics.IncWebhook(string(outcome))
	}
}

func (h *Handler) writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", textContentType)
	w.WriteHeader(status)
	io.WriteString(w, body)
}
