package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/studykite/studykite-backend/internal/apierr"
)

func respondError(c *gin.Context, err error) {
  c.JSON(apierr.StatusFor(err), gin.H{"error": err.Error()})
}
