package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"time"
)

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "atrios-ats",
		"version": a.version,
	})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		ctx, cancel := contextWithTimeout(r, 2*time.Second)
		defer cancel()
		if err := a.db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "atrios-ats",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// handleFileDownload streams a stored agreement or resume to staff. The
// storage layer refuses paths outside its root.
func (a *API) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		a.renderError(w, r, http.StatusNotFound, "File not found.")
		return
	}
	f, err := a.uploads.Open(rel)
	if err != nil {
		a.renderError(w, r, http.StatusNotFound, "File not found.")
		return
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		a.renderError(w, r, http.StatusNotFound, "File not found.")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(rel)+`"`)
	http.ServeContent(w, r, path.Base(rel), stat.ModTime(), f)
}
