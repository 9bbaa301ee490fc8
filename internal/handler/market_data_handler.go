package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/model"
	"github.com/yourorg/options-backtester/internal/service"
)

// MarketDataHandler handles market data HTTP requests
type MarketDataHandler struct {
	historyService *service.HistoryService
	logger         *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(historyService *service.HistoryService, logger *zap.Logger) *MarketDataHandler {
	return &MarketDataHandler{
		historyService: historyService,
		logger:         logger,
	}
}

// GetBars handles retrieving daily bars for a symbol and date range
func (h *MarketDataHandler) GetBars(c *gin.Context) {
	var query model.BarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if query.StartDate == nil || query.EndDate == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required"})
		return
	}

	bars, err := h.historyService.GetBars(c.Request.Context(), query.Symbol, *query.StartDate, *query.EndDate)
	if err != nil {
		h.logger.Error("Failed to get bars",
			zap.Error(err),
			zap.String("symbol", query.Symbol))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": query.Symbol,
		"bars":   bars,
		"count":  len(bars),
	})
}
