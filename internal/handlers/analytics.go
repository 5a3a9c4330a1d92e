package handlers

import (
  "fmt"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/medloop/medloop-backend/internal/requestdata"
  "github.com/medloop/medloop-backend/internal/services"
)

type AnalyticsHandler struct {
  analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
  return &AnalyticsHandler{analyticsService: analyticsService}
}

func (ah *AnalyticsHandler) GetDashboard(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }
  summary, err := ah.analyticsService.GetDashboardSummary(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "dashboard_failed", err)
    return
  }
  RespondOK(c, gin.H{"dashboard": summary})
}

func (ah *AnalyticsHandler) GetBenchmark(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }
  topic := c.Query("topic")
  if topic == "" {
    RespondError(c, http.StatusBadRequest, "missing_topic", fmt.Errorf("topic query parameter is required"))
    return
  }
  benchmark, err := ah.analyticsService.GetPeerBenchmark(c.Request.Context(), rd.UserID, topic)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "benchmark_failed", err)
    return
  }
  RespondOK(c, gin.H{"benchmark": benchmark})
}
