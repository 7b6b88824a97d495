package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-sync-service/internal/repository"
	"catalog-sync-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SyncHandler handles sync run endpoints
type SyncHandler struct {
	service *services.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(service *services.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// StartRun starts a new reconciliation run
func (h *SyncHandler) StartRun(c *gin.Context) {
	var req services.StartRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	run, err := h.service.StartRun(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		var unsupported *services.UnsupportedStrategyError
		if errors.As(err, &unsupported) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": run})
}

// ListRuns returns runs newest first, with pagination and status filtering
func (h *SyncHandler) ListRuns(c *gin.Context) {
	opts := repository.RunListOptions{
		Status: c.Query("status"),
	}

	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if opts.Limit == 0 {
		opts.Limit = 50 // default limit
	}

	if offset := c.Query("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			opts.Offset = o
		}
	}

	runs, total, err := h.service.ListRuns(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   runs,
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// GetRun returns a single run
func (h *SyncHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

// GetRunLogs returns the log entries of a run
func (h *SyncHandler) GetRunLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	opts := repository.LogListOptions{
		Level: c.Query("level"),
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	logs, err := h.service.GetRunLogs(c.Request.Context(), id, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}

// GetMappingStats returns the mapping table size and run state
func (h *SyncHandler) GetMappingStats(c *gin.Context) {
	stats, err := h.service.MappingStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// PurgeMappingCache drops cached match resolutions, optionally scoped to one
// mapping kind via ?kind=ean|oem|pcd
func (h *SyncHandler) PurgeMappingCache(c *gin.Context) {
	purged, err := h.service.PurgeMappingCache(c.Request.Context(), c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": purged})
}
