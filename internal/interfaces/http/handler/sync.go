package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/erp/stocksync/internal/application/sync"
	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

// triggerWait is how long a manual trigger waits for the run before
// answering 202. A lock conflict surfaces within this window, so callers
// still get a 409 for a store that is already syncing.
const triggerWait = 2 * time.Second

// SettingsResolver resolves the current settings snapshot for a store
type SettingsResolver func(storeID string) (appsync.StoreSettings, bool)

// SyncRunner executes one reconciliation cycle for one store
type SyncRunner interface {
	RunStore(ctx context.Context, settings appsync.StoreSettings, trigger syncdomain.Trigger) (*syncdomain.Run, error)
}

// SyncHandler handles sync run API endpoints
type SyncHandler struct {
	BaseHandler
	runner   SyncRunner
	runs     syncdomain.RunRepository
	settings SettingsResolver
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(runner SyncRunner, runs syncdomain.RunRepository, settings SettingsResolver) *SyncHandler {
	return &SyncHandler{
		runner:   runner,
		runs:     runs,
		settings: settings,
	}
}

// RunResponse represents a sync run in API responses
type RunResponse struct {
	ID          string     `json:"id"`
	StoreID     string     `json:"store_id"`
	TriggeredBy string     `json:"triggered_by"`
	Status      string     `json:"status"`
	Processed   int        `json:"processed"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Skipped     int        `json:"skipped"`
	Errors      int        `json:"errors"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toRunResponse(run *syncdomain.Run) RunResponse {
	return RunResponse{
		ID:          run.ID.String(),
		StoreID:     run.StoreID,
		TriggeredBy: string(run.TriggeredBy),
		Status:      string(run.Status),
		Processed:   run.Counts.Processed,
		Created:     run.Counts.Created,
		Updated:     run.Counts.Updated,
		Skipped:     run.Counts.Skipped,
		Errors:      run.Counts.Errors,
		Error:       run.Error,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
}

// TriggerResponse is the answer to a trigger that is still running
type TriggerResponse struct {
	StoreID string `json:"store_id"`
	Status  string `json:"status"`
}

// storeIDRequest binds the store id path parameter
type storeIDRequest struct {
	StoreID string `uri:"store_id" binding:"required"`
}

// listRunsRequest binds the run listing query parameters
type listRunsRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// runIDRequest binds the run id path parameter
type runIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stores := rg.Group("/stores")
	{
		stores.POST("/:store_id/sync", h.TriggerRun)
		stores.GET("/:store_id/runs", h.ListRuns)
	}
	rg.GET("/runs/:id", h.GetRun)
}

// TriggerRun starts a manual reconciliation cycle for a store. The run
// proceeds in the background; the handler answers 202 once it has outlived
// the conflict window.
func (h *SyncHandler) TriggerRun(c *gin.Context) {
	var req storeIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "store id is required")
		return
	}

	settings, ok := h.settings(req.StoreID)
	if !ok {
		h.NotFound(c, "store not found")
		return
	}

	type outcome struct {
		run *syncdomain.Run
		err error
	}
	done := make(chan outcome, 1)

	// The run must outlive this request.
	runCtx := context.WithoutCancel(c.Request.Context())
	go func() {
		run, err := h.runner.RunStore(runCtx, settings, syncdomain.TriggerManual)
		done <- outcome{run: run, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			h.HandleError(c, out.err)
			return
		}
		h.Success(c, toRunResponse(out.run))
	case <-time.After(triggerWait):
		h.Accepted(c, TriggerResponse{
			StoreID: req.StoreID,
			Status:  string(syncdomain.RunStatusRunning),
		})
	}
}

// ListRuns returns recent runs for a store, newest first
func (h *SyncHandler) ListRuns(c *gin.Context) {
	var req storeIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "store id is required")
		return
	}

	query := listRunsRequest{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = 20
	}

	offset := (query.Page - 1) * query.PageSize
	runs, err := h.runs.FindRecent(c.Request.Context(), req.StoreID, query.PageSize, offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]RunResponse, len(runs))
	for i := range runs {
		responses[i] = toRunResponse(&runs[i])
	}
	h.SuccessWithMeta(c, responses, query.Page, query.PageSize)
}

// GetRun returns one run by id
func (h *SyncHandler) GetRun(c *gin.Context) {
	var req runIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "run id must be a uuid")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "run id must be a uuid")
		return
	}

	run, err := h.runs.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRunResponse(run))
}
