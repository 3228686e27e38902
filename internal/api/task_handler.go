package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/relia-oss/relia-api/internal/api/middleware"
	"github.com/relia-oss/relia-api/internal/api/shared"
	"github.com/relia-oss/relia-api/internal/cache"
	"github.com/relia-oss/relia-api/internal/task"
)

// listCacheTTL is how long a task list view may be served from cache.
const listCacheTTL = 2 * time.Second

// CreateTaskRequest represents the request body for creating a new task.
type CreateTaskRequest struct {
	TaskType string `json:"task_type" validate:"required,min=1,max=64"`
}

// TaskResultResponse represents the response for a finished task's outcome.
type TaskResultResponse struct {
	TaskID string      `json:"task_id"`
	Status task.Status `json:"status"`
	Result any         `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	queue     *task.Queue
	listCache *cache.Cache[[]task.Snapshot]
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(queue *task.Queue, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		queue:     queue,
		listCache: cache.New[[]task.Snapshot]("task_list", listCacheTTL, time.Minute, logger),
		validator: validator.New(),
		logger:    logger.With("component", "task_handler"),
	}
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	snap := h.queue.Create(r.Context(), req.TaskType, userID)
	h.listCache.Clear()

	shared.RespondWithJSON(w, r, http.StatusCreated, snap)
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	snap, ok := h.queue.Get(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// ListTasks handles GET /api/tasks requests, returning the caller's
// tasks newest first. Results are briefly cached to keep dashboard
// polling off the queue lock.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	cacheKey := fmt.Sprintf("%s|%d", userID, limit)
	snaps, ok := h.listCache.Get(cacheKey)
	if !ok {
		snaps = h.queue.List(userID, limit)
		h.listCache.Set(cacheKey, snaps)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snaps)
}

// GetTaskResult handles GET /api/tasks/{id}/result requests. The raw
// result and error are only reachable here, never through snapshots.
func (h *TaskHandler) GetTaskResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	result, ok := h.queue.Result(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}
	if !result.Status.Terminal() {
		shared.RespondWithError(w, r, http.StatusConflict, "Task has not finished")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResultResponse{
		TaskID: id.String(),
		Status: result.Status,
		Result: result.Value,
		Error:  result.Error,
	})
}

// CancelTask handles POST /api/tasks/{id}/cancel requests.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if _, ok := h.queue.Get(id); !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	if !h.queue.Cancel(r.Context(), id) {
		// Lost the race: the task started (or finished) before the
		// cancel arrived.
		shared.RespondWithError(w, r, http.StatusConflict, "Task is no longer pending")
		return
	}
	h.listCache.Clear()

	snap, _ := h.queue.Get(id)
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}
