package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/model"
	"github.com/yourorg/options-backtester/internal/service"
)

// BacktestHandler handles backtest HTTP requests
type BacktestHandler struct {
	backtestService *service.BacktestService
	logger          *zap.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(backtestService *service.BacktestService, logger *zap.Logger) *BacktestHandler {
	return &BacktestHandler{
		backtestService: backtestService,
		logger:          logger,
	}
}

// CreateBacktest handles creating a new backtest run
func (h *BacktestHandler) CreateBacktest(c *gin.Context) {
	var cfg model.BacktestConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runID, err := h.backtestService.CreateRun(c.Request.Context(), &cfg)
	if err != nil {
		h.logger.Error("Failed to create backtest run",
			zap.Error(err),
			zap.String("symbol", cfg.Symbol))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":  runID,
		"message": "Backtest created and queued for processing",
	})
}

// GetBacktest handles retrieving a run by id
func (h *BacktestHandler) GetBacktest(c *gin.Context) {
	id := c.Param("id")

	run, err := h.backtestService.GetRun(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get backtest run",
			zap.Error(err),
			zap.String("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Backtest run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListBacktests handles listing runs
func (h *BacktestHandler) ListBacktests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	runs, err := h.backtestService.ListRuns(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to list backtest runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"page":  page,
		"limit": limit,
	})
}

// ValuationRequest is the input for the continuous valuation walk
type ValuationRequest struct {
	Symbol    string            `json:"symbol" binding:"required"`
	StartDate time.Time         `json:"start_date" binding:"required" time_format:"2006-01-02"`
	EndDate   time.Time         `json:"end_date" binding:"required" time_format:"2006-01-02"`
	Legs      []model.LegConfig `json:"legs" binding:"required,min=1,dive"`
}

// ValuateStrategy handles repricing a fixed strategy across a price series
func (h *BacktestHandler) ValuateStrategy(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, err := h.backtestService.ValuateStrategy(
		c.Request.Context(),
		req.Symbol,
		req.StartDate,
		req.EndDate,
		req.Legs,
	)
	if err != nil {
		h.logger.Error("Failed to valuate strategy",
			zap.Error(err),
			zap.String("symbol", req.Symbol))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}
