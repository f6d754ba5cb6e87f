package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/bastiangx/kwserve/internal/logger"
)

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Lines []string `json:"lines"`
}

// HTTPHandler serves the JSON API.
type HTTPHandler struct {
	svc    *Service
	router *mux.Router
	log    *log.Logger
}

// NewHTTPHandler registers the API routes for svc.
func NewHTTPHandler(svc *Service) *HTTPHandler {
	h := &HTTPHandler{svc: svc, router: mux.NewRouter(), log: logger.JSON("http")}
	h.router.Use(h.logRequests)
	h.router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	h.router.HandleFunc("/functions", h.functions).Methods(http.MethodGet)
	h.router.HandleFunc("/recommend/{function}", h.recommend).Methods(http.MethodGet)
	h.router.HandleFunc("/analyze", h.analyze).Methods(http.MethodPost)
	h.router.HandleFunc("/model", h.model).Methods(http.MethodGet)
	return h
}

// ServeHTTP implements http.Handler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

func (h *HTTPHandler) health(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if h.svc.orch.Model() == nil {
		status = "untrained"
	}
	h.sendJSON(w, http.StatusOK, StatusResponse{Status: status})
}

func (h *HTTPHandler) functions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.sendError(w, err)
		return
	}
	names, err := h.svc.Complete(r.URL.Query().Get("prefix"), limit)
	if err != nil {
		h.sendError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	h.sendJSON(w, http.StatusOK, CompleteResponse{
		Functions: names,
		Count:     len(names),
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (h *HTTPHandler) recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	function := mux.Vars(r)["function"]
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.sendError(w, err)
		return
	}
	recs, err := h.svc.Recommend(function, limit)
	if err != nil {
		h.sendError(w, err)
		return
	}
	if recs == nil {
		recs = []Suggestion{}
	}
	h.sendJSON(w, http.StatusOK, RecommendResponse{
		Function:    function,
		Suggestions: recs,
		Count:       len(recs),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (h *HTTPHandler) analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: http.StatusBadRequest})
		return
	}
	report, err := h.svc.Analyze(req.Lines)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, AnalyzeResponse{Report: report, TimeTaken: time.Since(start).Microseconds()})
}

func (h *HTTPHandler) model(w http.ResponseWriter, _ *http.Request) {
	snap, stats, err := h.svc.Snapshot()
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, ModelResponse{Model: snap, Stats: stats})
}

func (h *HTTPHandler) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Encoding HTTP response: %v", err)
	}
}

func (h *HTTPHandler) sendError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	h.sendJSON(w, code, ErrorResponse{Error: err.Error(), Code: code})
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidRequest, key)
	}
	return n, nil
}

// ListenAndServe runs the HTTP API on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string, svc *Service) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHTTPHandler(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
