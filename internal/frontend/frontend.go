// Package frontend serves the browser form that submits reviews to the
// gateway and renders the result.
package frontend

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gonkalabs/reviewsense/internal/gatewayclient"
	"github.com/gonkalabs/reviewsense/internal/requestid"
)

//go:embed templates/index.html
var templateFS embed.FS

const maxFormBytes = 1 << 20

// Predictor submits review text to the gateway. *gatewayclient.Client
// implements it.
type Predictor interface {
	Predict(ctx context.Context, text string) (string, error)
}

type page struct {
	Text    string
	Message *gatewayclient.Message
}

// Handler renders the form and relays submissions.
type Handler struct {
	predictor Predictor
	tmpl      *template.Template
	logger    *slog.Logger
}

// New parses the page template and returns a Handler.
func New(predictor Predictor, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{predictor: predictor, tmpl: tmpl, logger: logger}, nil
}

// Register mounts routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.form)
	mux.HandleFunc("POST /{$}", h.submit)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (h *Handler) form(w http.ResponseWriter, _ *http.Request) {
	h.render(w, page{})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, page{Message: &gatewayclient.Message{Level: gatewayclient.LevelError, Text: "Could not read the form."}})
		return
	}
	text := r.PostForm.Get("text")

	id := requestid.New()
	label, err := h.predictor.Predict(requestid.With(r.Context(), id), text)
	msg := gatewayclient.Describe(label, err)
	if err != nil {
		h.logger.Info("frontend: prediction not shown", "request_id", id, "level", string(msg.Level), "err", err)
	}
	h.render(w, page{Text: text, Message: &msg})
}

func (h *Handler) render(w http.ResponseWriter, p page) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, p); err != nil {
		h.logger.Error("frontend: render", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
