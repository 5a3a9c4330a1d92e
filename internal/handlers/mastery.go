package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/medloop/medloop-backend/internal/requestdata"
  "github.com/medloop/medloop-backend/internal/services"
)

type MasteryHandler struct {
  masteryService services.MasteryService
}

func NewMasteryHandler(masteryService services.MasteryService) *MasteryHandler {
  return &MasteryHandler{masteryService: masteryService}
}

// Evaluate recomputes mastery for the caller on one objective and
// persists the verdict.
func (mh *MasteryHandler) Evaluate(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }
  objectiveID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }

  result, err := mh.masteryService.EvaluateAndPersist(c.Request.Context(), rd.UserID, objectiveID)
  if err != nil {
    if errors.Is(err, services.ErrObjectiveNotFound) {
      RespondError(c, http.StatusNotFound, "objective_not_found", err)
      return
    }
    RespondError(c, http.StatusInternalServerError, "evaluate_failed", err)
    return
  }
  RespondOK(c, gin.H{"mastery": result})
}

// GetStatus returns the stored verdict without recomputing.
func (mh *MasteryHandler) GetStatus(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }
  objectiveID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }

  verification, err := mh.masteryService.GetVerification(c.Request.Context(), rd.UserID, objectiveID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "status_failed", err)
    return
  }
  RespondOK(c, gin.H{"verification": verification})
}
