package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartReporter starts the periodic store reporter
func (h *Handlers) StartReporter(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "Failed to start reporter",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reporter started successfully",
		"status":  "running",
	})
}

// StopReporter stops the periodic store reporter
func (h *Handlers) StopReporter(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to stop reporter",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reporter stopped successfully",
		"status":  "stopped",
	})
}

// RunReporterOnce builds a store report immediately
func (h *Handlers) RunReporterOnce(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.RunOnce())
}

// GetReporterStatus returns the current reporter status
func (h *Handlers) GetReporterStatus(c *gin.Context) {
	status := "stopped"
	if h.scheduler.IsRunning() {
		status = "running"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"next_run": h.scheduler.GetNextRun(),
		"last_run": h.scheduler.GetLastRun(),
	})
}
