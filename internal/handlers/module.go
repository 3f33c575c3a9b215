package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/services"
)

type ModuleHandler struct {
  log           *logger.Logger
  moduleService services.ModuleService
}

func NewModuleHandler(baseLog *logger.Logger, moduleService services.ModuleService) *ModuleHandler {
  return &ModuleHandler{
    log:           baseLog.With("handler", "ModuleHandler"),
    moduleService: moduleService,
  }
}

func (mh *ModuleHandler) AddUsersToModule(c *gin.Context) {
  var req struct {
    ModuleID string   `json:"module_id"`
    UserIDs  []string `json:"user_ids"`
    AdminID  string   `json:"admin_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  moduleID, err := uuid.Parse(req.ModuleID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module_id"})
    return
  }
  adminID, err := uuid.Parse(req.AdminID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
    return
  }
  userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
  for _, s := range req.UserIDs {
    id, err := uuid.Parse(s)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id: " + s})
      return
    }
    userIDs = append(userIDs, id)
  }

  if err := mh.moduleService.AddUsersToModule(c.Request.Context(), moduleID, userIDs, adminID); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (mh *ModuleHandler) GetModule(c *gin.Context) {
  moduleID, err := uuid.Parse(c.Param("module_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module_id"})
    return
  }
  module, submodules, err := mh.moduleService.GetModule(c.Request.Context(), moduleID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"module": module, "submodules": submodules})
}
