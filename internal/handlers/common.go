package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/textsnap/internal/capture"
	"github.com/lehigh-university-libraries/textsnap/internal/models"
	"github.com/lehigh-university-libraries/textsnap/internal/storage"
)

// maxUploadSize limits uploaded and downloaded pictures to 10MB
const maxUploadSize = 10 * 1024 * 1024

// Workflow is the part of workflow.Controller the handlers drive
type Workflow interface {
	InitiateCapture(ctx context.Context)
	HandleCaptureResult(res capture.Result)
}

// Handler serves the web surface and doubles as the workflow's view and notifier
type Handler struct {
	stateStore *storage.StateStore
	pictures   *storage.PictureStore
	workflow   Workflow
	httpClient *http.Client
}

func New(pictures *storage.PictureStore) *Handler {
	return &Handler{
		stateStore: storage.NewStateStore(),
		pictures:   pictures,
		httpClient: &http.Client{},
	}
}

// Attach connects the workflow the capture endpoints feed
func (h *Handler) Attach(w Workflow) {
	h.workflow = w
}

// Routes registers every endpoint on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/capture", h.HandleCapture)
	mux.HandleFunc("/api/capture/device", h.HandleDeviceCapture)
	mux.HandleFunc("/api/state", h.HandleState)
	mux.HandleFunc("/api/image", h.HandleImage)
	mux.HandleFunc("/api/notices/", h.HandleNotice)
	mux.HandleFunc("/", h.HandleStatic)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// ShowImage stores a JPEG preview of img, or clears it when img is nil
func (h *Handler) ShowImage(img *models.CapturedImage) {
	if img == nil {
		h.stateStore.SetPreview(nil, 0, 0, 0)
		return
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img.Image, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		slog.Error("Unable to encode preview", "err", err)
		h.stateStore.SetPreview(nil, 0, 0, 0)
		return
	}
	h.stateStore.SetPreview(buf.Bytes(), img.Width, img.Height, img.Rotation)
}

func (h *Handler) SetBlocks(blocks []string) {
	h.stateStore.SetBlocks(blocks)
}

func (h *Handler) Notify(message string) {
	n := h.stateStore.AddNotice(message)
	slog.Info("Notice", "id", n.ID, "message", message)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
