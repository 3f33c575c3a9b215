package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/services"
)

type UserHandler struct {
  log         *logger.Logger
  userService services.UserService
}

func NewUserHandler(baseLog *logger.Logger, userService services.UserService) *UserHandler {
  return &UserHandler{
    log:         baseLog.With("handler", "UserHandler"),
    userService: userService,
  }
}

// SignupUsers registers a batch of accounts, optionally under an admin whose
// student roster picks up the new ids.
func (uh *UserHandler) SignupUsers(c *gin.Context) {
  var req struct {
    AdminID string `json:"admin_id"`
    Users   []struct {
      Email    string `json:"email"`
      Password string `json:"password"`
      Admin    bool   `json:"admin"`
    } `json:"users"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if len(req.Users) == 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "no users to create"})
    return
  }

  var adminID *uuid.UUID
  if req.AdminID != "" {
    id, err := uuid.Parse(req.AdminID)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
      return
    }
    adminID = &id
  }

  created := make([]gin.H, 0, len(req.Users))
  for _, u := range req.Users {
    user, err := uh.userService.CreateUser(c.Request.Context(), u.Email, u.Password, u.Admin, adminID)
    if err != nil {
      respondError(c, err)
      return
    }
    created = append(created, gin.H{"id": user.ID, "email": user.Email, "admin": user.Admin})
  }
  c.JSON(http.StatusOK, gin.H{"users": created})
}

func (uh *UserHandler) DeleteUser(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("user_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
    return
  }
  if err := uh.userService.DeleteUser(c.Request.Context(), userID); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (uh *UserHandler) ListStudents(c *gin.Context) {
  adminID, err := uuid.Parse(c.Param("admin_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
    return
  }
  students, err := uh.userService.ListStudentsOfAdmin(c.Request.Context(), adminID)
  if err != nil {
    respondError(c, err)
    return
  }
  out := make([]gin.H, 0, len(students))
  for _, s := range students {
    out = append(out, gin.H{"id": s.ID, "email": s.Email})
  }
  c.JSON(http.StatusOK, gin.H{"students": out})
}
