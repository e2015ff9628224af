package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"livecast-orchestrator/internal/orchestrate"
	"livecast-orchestrator/internal/platform/metrics"
	"livecast-orchestrator/internal/upstream"
)

// RelayControl is the relay controller surface the handlers need.
type RelayControl interface {
	Start(ctx context.Context, rtmpURL, streamKey string) (string, error)
	Stop(ctx context.Context, converterID string) error
}

// Orchestrator runs one full provision-wait-relay sequence.
type Orchestrator interface {
	Run(ctx context.Context) (orchestrate.Result, error)
}

// Handler exposes the orchestration HTTP endpoints using go-chi.
type Handler struct {
	relay   RelayControl
	orch    Orchestrator
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewHandler returns a Handler that uses the given relay controller,
// orchestrator, logger, and optional metrics. Metrics may be nil to
// disable metric recording (e.g. in tests).
func NewHandler(relay RelayControl, orch Orchestrator, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{relay: relay, orch: orch, log: log, metrics: m, now: time.Now}
}

type startRTMPRequest struct {
	StreamKey string `json:"streamKey"`
	RTMPURL   string `json:"rtmpUrl"`
}

type startRTMPResponse struct {
	ConverterID string `json:"converterId"`
}

type stopRTMPRequest struct {
	ConverterID string `json:"converterId"`
}

type stopRTMPResponse struct {
	Success bool `json:"success"`
}

// StartRTMP handles POST /start-rtmp.
// Body: { "streamKey": "...", "rtmpUrl": "rtmp://..." }.
func (h *Handler) StartRTMP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req startRTMPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid start-rtmp body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.StreamKey == "" || req.RTMPURL == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	converterID, err := h.relay.Start(r.Context(), req.RTMPURL, req.StreamKey)
	if err != nil {
		h.writeUpstreamError(w, "start rtmp push failed", err)
		return
	}

	h.log.Info("rtmp push started", slog.String("converter_id", converterID))
	writeJSON(w, http.StatusOK, startRTMPResponse{ConverterID: converterID})
	if h.metrics != nil {
		h.metrics.RelayStarted()
	}
}

// StopRTMP handles POST /stop-rtmp.
// Body: { "converterId": "..." }.
func (h *Handler) StopRTMP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req stopRTMPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid stop-rtmp body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.ConverterID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.relay.Stop(r.Context(), req.ConverterID); err != nil {
		h.writeUpstreamError(w, "stop rtmp push failed", err)
		return
	}

	h.log.Info("rtmp push stopped", slog.String("converter_id", req.ConverterID))
	writeJSON(w, http.StatusOK, stopRTMPResponse{Success: true})
	if h.metrics != nil {
		h.metrics.RelayStopped()
	}
}

// StartYouTubeStream handles POST /orchestrate/start-youtube-stream.
// No body; the orchestrator operates on process-wide configuration.
func (h *Handler) StartYouTubeStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := h.now()
	result, err := h.orch.Run(r.Context())
	if err != nil {
		if h.metrics != nil {
			h.metrics.OrchestrationFailed()
		}
		h.writeUpstreamError(w, "orchestration failed", err)
		return
	}

	h.log.Info("youtube stream orchestrated",
		slog.String("converter_id", result.ConverterID),
		slog.String("rtmp_url", result.RTMPURL))
	writeJSON(w, http.StatusOK, result)
	if h.metrics != nil {
		h.metrics.OrchestrationDone(h.now().Sub(start).Seconds())
		h.metrics.RelayStarted()
	}
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeUpstreamError surfaces a collaborator's own status and payload
// unmodified when available, else a generic 500.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, msg string, err error) {
	var upErr *upstream.Error
	if errors.As(err, &upErr) {
		h.log.Error(msg,
			slog.String("kind", upErr.Kind.String()),
			slog.Int("upstream_status", upErr.Status),
			slog.String("error", upErr.Error()))
		if len(upErr.Payload) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(upErr.HTTPStatus())
			w.Write(upErr.Payload)
			return
		}
		writeJSON(w, upErr.HTTPStatus(), map[string]string{"error": upErr.Error()})
		return
	}

	h.log.Error(msg, slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
