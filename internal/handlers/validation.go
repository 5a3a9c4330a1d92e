package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/medloop/medloop-backend/internal/requestdata"
  "github.com/medloop/medloop-backend/internal/services"
)

type ValidationHandler struct {
  validationService services.ValidationService
  analyticsService  services.AnalyticsService
}

func NewValidationHandler(validationService services.ValidationService, analyticsService services.AnalyticsService) *ValidationHandler {
  return &ValidationHandler{validationService: validationService, analyticsService: analyticsService}
}

func (vh *ValidationHandler) SubmitValidation(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }

  var input services.SubmitValidationInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  result, err := vh.validationService.SubmitValidationResponse(c.Request.Context(), rd.UserID, input)
  if err != nil {
    if errors.Is(err, services.ErrPromptNotFound) {
      RespondError(c, http.StatusNotFound, "prompt_not_found", err)
      return
    }
    RespondError(c, http.StatusBadRequest, "submit_failed", err)
    return
  }
  vh.analyticsService.InvalidateUser(c.Request.Context(), rd.UserID)
  RespondOK(c, gin.H{"mastery": result})
}

func (vh *ValidationHandler) SubmitScenario(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }

  var input services.SubmitScenarioInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  result, err := vh.validationService.SubmitScenarioResponse(c.Request.Context(), rd.UserID, input)
  if err != nil {
    if errors.Is(err, services.ErrScenarioNotFound) {
      RespondError(c, http.StatusNotFound, "scenario_not_found", err)
      return
    }
    RespondError(c, http.StatusBadRequest, "submit_failed", err)
    return
  }
  vh.analyticsService.InvalidateUser(c.Request.Context(), rd.UserID)
  RespondOK(c, gin.H{"mastery": result})
}
