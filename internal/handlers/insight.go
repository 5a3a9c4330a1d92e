package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/medloop/medloop-backend/internal/clients/insight"
)

type InsightHandler struct {
  insightClient insight.Client
}

func NewInsightHandler(insightClient insight.Client) *InsightHandler {
  return &InsightHandler{insightClient: insightClient}
}

// ScoreFreeText proxies a free-text answer to the insight service for
// grading. The insight client may be nil when the service is not
// configured; the route then reports unavailability.
func (ih *InsightHandler) ScoreFreeText(c *gin.Context) {
  if ih.insightClient == nil {
    RespondError(c, http.StatusServiceUnavailable, "insight_unavailable", nil)
    return
  }

  var req insight.ScoreRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  result, err := ih.insightClient.ScoreFreeText(c.Request.Context(), req)
  if err != nil {
    RespondError(c, http.StatusBadGateway, "insight_failed", err)
    return
  }
  RespondOK(c, gin.H{"result": result})
}
