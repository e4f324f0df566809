package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gonkalabs/reviewsense/internal/classify"
)

// WelcomeMessage is the body of GET /.
const WelcomeMessage = "Welcome to my Movie Sentiment Analysis API!!!"

const maxBodyBytes = 1 << 20

// Classifier labels review text. *classify.Classifier implements it.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// ModelLister reports the models of the completion service; the gateway
// is ready when the call succeeds.
type ModelLister interface {
	Models(ctx context.Context) ([]string, error)
}

// Handler implements all HTTP endpoints of the gateway.
type Handler struct {
	classifier Classifier
	upstream   ModelLister          // nil disables the upstream readiness check
	gatherer   prometheus.Gatherer // nil disables /metrics
	logger     *slog.Logger
}

// New creates a Handler.
func New(classifier Classifier, upstream ModelLister, gatherer prometheus.Gatherer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		classifier: classifier,
		upstream:   upstream,
		gatherer:   gatherer,
		logger:     logger,
	}
}

type predictRequest struct {
	Text *string `json:"text"`
}

type predictResponse struct {
	Pred string `json:"pred"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Register mounts routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("POST /predict", h.predict)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /ready", h.ready)
	if h.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
}

// Routes returns the mux wrapped with request-id and access-log middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return RequestID(AccessLog(h.logger)(mux))
}

// ---------- endpoints ----------

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, WelcomeMessage)
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if req.Text == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "field required: text")
		return
	}

	label, err := h.classifier.Classify(r.Context(), *req.Text)
	if err != nil {
		status, detail := StatusFor(err)
		writeDetail(w, status, detail)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Pred: label})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if h.upstream == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := h.upstream.Models(ctx); err != nil {
		h.logger.Warn("readiness: upstream unavailable", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// StatusFor maps a classification error to the HTTP status and detail
// returned to the caller.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, classify.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, classify.ErrGatewayTimeout):
		return http.StatusRequestTimeout, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
