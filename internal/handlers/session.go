package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/services"
)

type SessionHandler struct {
  log *logger.Logger
  ai  services.OpenAIClient
}

func NewSessionHandler(baseLog *logger.Logger, ai services.OpenAIClient) *SessionHandler {
  return &SessionHandler{
    log: baseLog.With("handler", "SessionHandler"),
    ai:  ai,
  }
}

// CreateSession opens a realtime voice tutor session scoped to the supplied
// module content and passes the provider's session payload straight through.
func (sh *SessionHandler) CreateSession(c *gin.Context) {
  var req struct {
    Content string `json:"content"`
    Voice   string `json:"voice"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if req.Content == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
    return
  }
  voice := req.Voice
  if voice == "" {
    voice = "alloy"
  }

  instructions := fmt.Sprintf(
    "You are a patient study tutor. Help the learner work through this module. Only discuss the module content.\n\nModule content:\n%s",
    req.Content,
  )
  session, err := sh.ai.CreateRealtimeSession(c.Request.Context(), instructions, voice)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, session)
}
