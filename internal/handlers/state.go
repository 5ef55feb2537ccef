package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, http.StatusOK, h.stateStore.Snapshot())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	preview, ok := h.stateStore.Preview()
	if !ok {
		http.Error(w, "No picture", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(preview)
}

// HandleNotice dismisses a notice: DELETE /api/notices/{id}
func (h *Handler) HandleNotice(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/notices/"))
	if err != nil {
		h.writeError(w, "Invalid notice id", http.StatusBadRequest)
		return
	}

	if !h.stateStore.DismissNotice(id) {
		h.writeError(w, "Notice not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
