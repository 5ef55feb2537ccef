package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/textsnap/internal/capture"
)

// HandleCapture accepts a picture taken by the client, either as a multipart
// upload or as a JSON body naming a snapshot URL, and starts a cycle with it.
// An upload without a file counts as a canceled capture.
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.workflow == nil {
		h.writeError(w, "Workflow not attached", http.StatusServiceUnavailable)
		return
	}

	// Check if this is a JSON request with image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLCapture(w, r)
		return
	}

	h.handleFileCapture(w, r)
}

// HandleDeviceCapture asks the server-side capture program for a picture
func (h *Handler) HandleDeviceCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.workflow == nil {
		h.writeError(w, "Workflow not attached", http.StatusServiceUnavailable)
		return
	}

	// the capture outlives this request
	h.workflow.InitiateCapture(context.WithoutCancel(r.Context()))
	h.writeJSON(w, http.StatusAccepted, map[string]any{
		"message": "Capture requested",
	})
}

func (h *Handler) handleURLCapture(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	imageData, err := h.downloadImageFromURL(r.Context(), request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.acceptPicture(w, bytes.NewReader(imageData), "url")
}

func (h *Handler) handleFileCapture(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024*1024)

	file, _, err := r.FormFile("file")
	if err != nil {
		file, _, err = r.FormFile("files")
	}
	if errors.Is(err, http.ErrMissingFile) {
		h.cancelCapture(w)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Validate file size
	if len(fileData) >= maxUploadSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}
	if len(fileData) == 0 {
		h.cancelCapture(w)
		return
	}

	h.acceptPicture(w, bytes.NewReader(fileData), "upload")
}

// acceptPicture overwrites the picture file and hands it to the workflow
func (h *Handler) acceptPicture(w http.ResponseWriter, picture io.Reader, source string) {
	path, size, err := h.pictures.Write(picture)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	req := capture.NewRequest(path, h.pictures.URI(path))
	slog.Info("Picture received", "request_id", req.ID, "source", source, "bytes", size)
	h.workflow.HandleCaptureResult(capture.Result{Request: req, Outcome: capture.Succeeded})

	h.writeJSON(w, http.StatusAccepted, map[string]any{
		"request_id": req.ID,
		"message":    "Picture accepted for recognition",
		"source":     source,
	})
}

func (h *Handler) cancelCapture(w http.ResponseWriter) {
	h.workflow.HandleCaptureResult(capture.Result{Outcome: capture.Canceled})
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Capture canceled",
	})
}

func (h *Handler) downloadImageFromURL(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(imageData) >= maxUploadSize {
		return nil, fmt.Errorf("image too large (max 10MB)")
	}

	return imageData, nil
}
