// Package api contains the HTTP handlers for the server.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillworks/quill/internal/server"
	"github.com/quillworks/quill/pkg/models"
	"github.com/quillworks/quill/pkg/public"
)

// SharedResumeHandler serves the anonymous share read surface at
// "/api/v1/shared/resumes/{token}". All denial reasons read as 404.
func SharedResumeHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			w.Header().Set("Allow", "GET")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		token, err := parseResourceIDFromURL(r.URL.Path, "shared/resumes")
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		view, err := srv.Public.View(r.Context(), token, models.ResourceKindResume)
		if err != nil {
			if errors.Is(err, public.ErrNotFound) {
				http.Error(w, "Not found", http.StatusNotFound)
				return
			}
			srv.Logger.Error("error resolving shared resume",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			srv.Logger.Error("error encoding shared resume response",
				"path", r.URL.Path,
				"error", err,
			)
		}
	})
}

// HealthHandler reports process liveness.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})
}

// parseResourceIDFromURL parses a URL path with the format
// "/api/v1/{apiPath}/{resourceID}" and returns the resource ID.
func parseResourceIDFromURL(url, apiPath string) (string, error) {
	url = strings.TrimPrefix(url, fmt.Sprintf("/api/v1/%s", apiPath))

	urlPath := strings.Split(url, "/")
	var resultPath []string
	for _, v := range urlPath {
		if v != "" {
			resultPath = append(resultPath, v)
		}
	}
	if len(resultPath) != 1 {
		return "", fmt.Errorf("invalid URL path")
	}

	return resultPath[0], nil
}
