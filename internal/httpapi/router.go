// Package httpapi serves the plain HTTP surface next to the Connect services:
// the REST allocation endpoint, health and metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/jomsplit/internal/calculator"
	"github.com/mmynk/jomsplit/internal/service"
	"github.com/mmynk/jomsplit/pkg/api"
)

// maxBodyBytes bounds REST request bodies.
const maxBodyBytes = 1 << 20

// Mount is a Connect service handler and the path prefix it serves.
type Mount struct {
	Path    string
	Handler http.Handler
}

// NewRouter builds the HTTP router. Connect services are mounted under their
// own path prefixes.
func NewRouter(split *service.SplitService, gatherer prometheus.Gatherer, logger *slog.Logger, mounts ...Mount) *mux.Router {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{split: split, logger: logger}

	r := mux.NewRouter()
	r.Use(corsMiddleware, loggingMiddleware(logger))

	// OPTIONS is matched so the CORS middleware can answer preflights.
	r.HandleFunc("/allocate", h.allocate).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	for _, m := range mounts {
		r.PathPrefix(m.Path).Handler(m.Handler)
	}
	return r
}

type handlers struct {
	split  *service.SplitService
	logger *slog.Logger
}

// errorBody is the JSON body of every REST error.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func (h *handlers) allocate(w http.ResponseWriter, r *http.Request) {
	var req api.AllocateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request payload: " + err.Error(), Code: "invalid_argument"})
		return
	}

	resp, err := h.split.Allocate(r.Context(), connect.NewRequest(&req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Msg.Allocation)
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := service.StatusOf(err)
	body := errorBody{Error: err.Error(), Code: service.CodeOf(err).String()}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		body.Error = connectErr.Message()
	}
	var invalid *calculator.InvalidInputError
	if errors.As(err, &invalid) {
		body.Field = invalid.Field
	}

	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// loggingMiddleware logs all incoming requests except health checks.
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("Request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{
			"Content-Type", "Authorization", "Connect-Protocol-Version", "Connect-Timeout-Ms",
		}, ", "))
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
