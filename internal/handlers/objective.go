package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/medloop/medloop-backend/internal/services"
)

type ObjectiveHandler struct {
  objectiveService services.ObjectiveService
}

func NewObjectiveHandler(objectiveService services.ObjectiveService) *ObjectiveHandler {
  return &ObjectiveHandler{objectiveService: objectiveService}
}

func (oh *ObjectiveHandler) List(c *gin.Context) {
  objectives, err := oh.objectiveService.List(c.Request.Context(), c.Query("topic"))
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "objectives_failed", err)
    return
  }
  RespondOK(c, gin.H{"objectives": objectives})
}

func (oh *ObjectiveHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  objective, err := oh.objectiveService.Get(c.Request.Context(), id)
  if err != nil {
    if errors.Is(err, services.ErrObjectiveNotFound) {
      RespondError(c, http.StatusNotFound, "objective_not_found", err)
      return
    }
    RespondError(c, http.StatusInternalServerError, "objective_failed", err)
    return
  }
  RespondOK(c, gin.H{"objective": objective})
}

func (oh *ObjectiveHandler) GetPrompts(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  prompts, err := oh.objectiveService.GetPrompts(c.Request.Context(), id)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "prompts_failed", err)
    return
  }
  RespondOK(c, gin.H{"prompts": prompts})
}

func (oh *ObjectiveHandler) GetScenarios(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  scenarios, err := oh.objectiveService.GetScenarios(c.Request.Context(), id)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "scenarios_failed", err)
    return
  }
  RespondOK(c, gin.H{"scenarios": scenarios})
}
