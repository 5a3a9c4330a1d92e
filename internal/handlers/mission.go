package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/medloop/medloop-backend/internal/requestdata"
  "github.com/medloop/medloop-backend/internal/services"
)

type MissionHandler struct {
  missionService services.MissionService
}

func NewMissionHandler(missionService services.MissionService) *MissionHandler {
  return &MissionHandler{missionService: missionService}
}

func (mh *MissionHandler) GenerateDaily(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }
  missions, err := mh.missionService.GenerateDaily(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "generate_failed", err)
    return
  }
  RespondOK(c, gin.H{"missions": missions})
}

func (mh *MissionHandler) GetQueue(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }
  missions, err := mh.missionService.GetQueue(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "queue_failed", err)
    return
  }
  RespondOK(c, gin.H{"missions": missions})
}

type completeMissionRequest struct {
  Score float64 `json:"score" binding:"min=0,max=100"`
}

func (mh *MissionHandler) Complete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }
  missionID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  var req completeMissionRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }

  mission, err := mh.missionService.Complete(c.Request.Context(), rd.UserID, missionID, req.Score)
  if err != nil {
    if errors.Is(err, services.ErrMissionNotFound) {
      RespondError(c, http.StatusNotFound, "mission_not_found", err)
      return
    }
    RespondError(c, http.StatusInternalServerError, "complete_failed", err)
    return
  }
  RespondOK(c, gin.H{"mission": mission})
}
