package middleware

import (
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/medloop/medloop-backend/internal/logger"
  "github.com/medloop/medloop-backend/internal/requestdata"
  "github.com/medloop/medloop-backend/internal/services"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLog := log.With("middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLog, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
      return
    }
    ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
    if err != nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
      return
    }
    c.Request = c.Request.WithContext(ctx)
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
      return
    }
    c.Next()
  }
}

// WithRefreshToken copies the refresh token out of the request body so
// the auth service can rotate it.
func (am *AuthMiddleware) WithRefreshToken() gin.HandlerFunc {
  return func(c *gin.Context) {
    var body struct {
      RefreshToken string `json:"refresh_token"`
    }
    if err := c.ShouldBindJSON(&body); err == nil && body.RefreshToken != "" {
      rd := requestdata.GetRequestData(c.Request.Context())
      if rd == nil {
        rd = &requestdata.RequestData{}
      }
      rd.RefreshToken = body.RefreshToken
      c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
    }
    c.Next()
  }
}

func extractToken(c *gin.Context) string {
  if qToken := c.Query("token"); qToken != "" {
    return qToken
  }
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  return ""
}
