package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/digitalbox/go-digitalbox-server/services"
	"github.com/digitalbox/go-digitalbox-server/types"
	"github.com/gin-gonic/gin"
)

// APIStatistics serves complaint analytics and chat transcript summaries
type APIStatistics struct {
	statisticsService *services.StatisticsService
	summaryService    *services.SummaryService
}

func NewAPIStatistics(statisticsService *services.StatisticsService, summaryService *services.SummaryService) *APIStatistics {
	return &APIStatistics{
		statisticsService: statisticsService,
		summaryService:    summaryService,
	}
}

// GetAnalytics
// @Summary Get complaint analytics
// @Description Returns per weekday complaint counts for the last week and category percentages
// @Tags Statistics
// @Success 200 {object} services.AnalyticsOutput
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/analytics [get]
func (a *APIStatistics) GetAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	output, aErr := a.statisticsService.Analytics(ctx)
	if aErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to compute analytics: %s", aErr.Error())
		return
	}
	c.JSON(http.StatusOK, output)
}

// Summarize
// @Summary Summarize a complaint chat
// @Description Produces (and caches) a short summary of the complaint's chat transcript
// @Tags Statistics
// @Param complaint_id path string true "Complaint ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} api.ApiError "no chat history for complaint"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/chat/{complaint_id}/summary [get]
func (a *APIStatistics) Summarize(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	complaintID := c.Param("complaint_id")
	summary, sErr := a.summaryService.Summarize(ctx, complaintID)
	if sErr != nil {
		if errors.Is(sErr, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "no chat history for complaint")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to summarize chat: %s", sErr.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint_id": complaintID, "summary": summary})
}
