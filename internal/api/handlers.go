package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/filter"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/pipeline"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Service - операции ядра, которые отдает API
type Service interface {
	Sectors() []model.Sector
	ResolveSector(arg string) (model.Sector, error)
	FetchRecentNews(ctx context.Context, sectorArg string) (model.CandidateSet, error)
	FilterRelevant(ctx context.Context, set model.CandidateSet, sector model.Sector) ([]model.RelevantItem, error)
	EnrichAll(ctx context.Context, items []model.RelevantItem) []model.EnrichedDraft
	Run(ctx context.Context, sectorArg string) (pipeline.Result, error)
	RecordUsed(ctx context.Context, user model.User, title string) (int64, error)
	RecordOutcome(ctx context.Context, user model.User, title string, success bool) (int64, error)
	RecordOutcomeByID(ctx context.Context, user model.User, id int64, title string, success bool) (int64, error)
	ComputeStats(ctx context.Context, user model.User) (model.OutreachStats, error)
	History(ctx context.Context, user model.User, limit int) ([]model.OutreachRecord, error)
}

type Handlers struct {
	svc Service
	// Сколько кандидатов можно прислать в /relevant, столько же отдает сбор
	maxEntries int
}

func NewHandlers(svc Service) *Handlers {
	return &Handlers{svc: svc, maxEntries: filter.DefaultLimit}
}

func (h *Handlers) WithCandidateLimit(limit int) *Handlers {
	if limit > 0 {
		h.maxEntries = limit
	}
	return h
}

type sectorRequest struct {
	Sector string `json:"sector" binding:"required"`
}

type relevantRequest struct {
	Sector  string                  `json:"sector" binding:"required"`
	Entries []model.NormalizedEntry `json:"entries"`
}

type enrichRequest struct {
	Items []model.RelevantItem `json:"items" binding:"required"`
}

type usedRequest struct {
	Title string `json:"title" binding:"required"`
}

// Если передан id строки журнала, исход пишется в нее, иначе в самую новую с этим заголовком
type outcomeRequest struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Success *bool  `json:"success" binding:"required"`
}

type statsResponse struct {
	model.OutreachStats
	SuccessRate string `json:"success_rate"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handlers) ListSectors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sectors": h.svc.Sectors()})
}

func (h *Handlers) FetchNews(c *gin.Context) {
	var req sectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, err.Error())
		return
	}

	set, err := h.svc.FetchRecentNews(c.Request.Context(), req.Sector)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

func (h *Handlers) FilterRelevant(c *gin.Context) {
	var req relevantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, err.Error())
		return
	}

	if len(req.Entries) > h.maxEntries {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation,
			fmt.Sprintf("too many entries: %d, at most %d allowed", len(req.Entries), h.maxEntries))
		return
	}

	sector, err := h.svc.ResolveSector(req.Sector)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	items, err := h.svc.FilterRelevant(c.Request.Context(), model.CandidateSet{Sector: sector, Entries: req.Entries}, sector)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": nonNil(items)})
}

func (h *Handlers) Enrich(c *gin.Context) {
	var req enrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"drafts": nonNil(h.svc.EnrichAll(c.Request.Context(), req.Items))})
}

func (h *Handlers) Run(c *gin.Context) {
	var req sectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, err.Error())
		return
	}

	result, err := h.svc.Run(c.Request.Context(), req.Sector)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handlers) RecordUsed(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "missing user context")
		return
	}

	var req usedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, err.Error())
		return
	}

	id, err := h.svc.RecordUsed(c.Request.Context(), user, req.Title)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handlers) RecordOutcome(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "missing user context")
		return
	}

	var req outcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, err.Error())
		return
	}
	if req.ID == 0 && req.Title == "" {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, "either id or title is required")
		return
	}

	var (
		affected int64
		err      error
	)
	if req.ID != 0 {
		affected, err = h.svc.RecordOutcomeByID(c.Request.Context(), user, req.ID, req.Title, *req.Success)
	} else {
		affected, err = h.svc.RecordOutcome(c.Request.Context(), user, req.Title, *req.Success)
	}
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"affected": affected})
}

func (h *Handlers) Stats(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "missing user context")
		return
	}

	stats, err := h.svc.ComputeStats(c.Request.Context(), user)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, statsResponse{OutreachStats: stats, SuccessRate: stats.SuccessRateText()})
}

func (h *Handlers) History(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "missing user context")
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	records, err := h.svc.History(c.Request.Context(), user, limit)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": nonNil(records)})
}

// Пустой список отдаем как [], а не null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
