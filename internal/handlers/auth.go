package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/medloop/medloop-backend/internal/services"
  "github.com/medloop/medloop-backend/internal/types"
)

type AuthHandler struct {
  authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

type registerRequest struct {
  Email     string `json:"email" binding:"required,email"`
  Password  string `json:"password" binding:"required,min=8"`
  FirstName string `json:"first_name" binding:"required"`
  LastName  string `json:"last_name" binding:"required"`
  StudyYear int    `json:"study_year"`
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req registerRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  user := &types.User{
    Email:     req.Email,
    Password:  req.Password,
    FirstName: req.FirstName,
    LastName:  req.LastName,
    StudyYear: req.StudyYear,
  }
  if err := ah.authService.RegisterUser(c.Request.Context(), user); err != nil {
    RespondError(c, http.StatusBadRequest, "register_failed", err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
  Email    string `json:"email" binding:"required"`
  Password string `json:"password" binding:"required"`
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req loginRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  access, refresh, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    if errors.Is(err, services.ErrInvalidCredentials) {
      RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
      return
    }
    RespondError(c, http.StatusInternalServerError, "login_failed", err)
    return
  }
  RespondOK(c, gin.H{"access_token": access, "refresh_token": refresh})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  access, refresh, err := ah.authService.RefreshUser(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusUnauthorized, "refresh_failed", err)
    return
  }
  RespondOK(c, gin.H{"access_token": access, "refresh_token": refresh})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
    RespondError(c, http.StatusInternalServerError, "logout_failed", err)
    return
  }
  RespondOK(c, gin.H{"status": "logged_out"})
}
