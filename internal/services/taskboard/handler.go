package taskboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
)

// Handler serves the task board HTTP API
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new task board HTTP handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /pos_project_integration/create_preparation_task", h.withLogging(h.CreatePreparationTask))
	mux.HandleFunc("POST /pos_project_integration/create_task", h.withLogging(h.CreateTask))
	mux.HandleFunc("GET /projects/{id}/tasks", h.withLogging(h.ListTasks))
	mux.HandleFunc("GET /health", h.withLogging(h.HealthCheck))

	return mux
}

// CreatePreparationTask handles POST /pos_project_integration/create_preparation_task
func (h *Handler) CreatePreparationTask(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r.Context())

	var req models.PreparationTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.CreatePreparationTask(ctx, &req, requestID)
	h.writeResult(w, result, err, requestID)
}

// CreateTask handles POST /pos_project_integration/create_task
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r.Context())

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.CreateOrderTask(ctx, req, requestID)
	h.writeResult(w, result, err, requestID)
}

// ListTasks handles GET /projects/{id}/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r.Context())

	projectID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || projectID <= 0 {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid project id", requestID)
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), projectID)
	if errors.Is(err, ErrNotFound) {
		h.writeErrorResponse(w, http.StatusNotFound, "Project not found", requestID)
		return
	}
	if err != nil {
		h.logger.Error("db_query_failed", "Failed to list tasks", requestID, err, map[string]any{"project_id": projectID})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, tasks, requestID)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.service.HealthCheck(ctx)

	response := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "taskboard",
		"healthy":   healthy,
	}
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}

	h.writeJSON(w, status, response, "")
}

// writeResult answers with a TaskResult. Business failures keep status 200
// so clients read the message instead of treating them as transport errors.
func (h *Handler) writeResult(w http.ResponseWriter, result *models.TaskResult, err error, requestID string) {
	if err != nil {
		h.logger.Error("task_creation_failed", "Failed to create task", requestID, err, nil)
		result = &models.TaskResult{Success: false, Message: err.Error()}
	}
	h.writeJSON(w, http.StatusOK, result, requestID)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	h.writeJSON(w, statusCode, map[string]any{
		"success":    false,
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}, requestID)
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withLogging adds request logging middleware
func (h *Handler) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
