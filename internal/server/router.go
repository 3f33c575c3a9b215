package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/studykite/studykite-backend/internal/handlers"
)

type RouterConfig struct {
  HealthcheckHandler *handlers.HealthcheckHandler
  PredictHandler     *handlers.PredictHandler
  UploadHandler      *handlers.UploadHandler
  UserHandler        *handlers.UserHandler
  ModuleHandler      *handlers.ModuleHandler
  SessionHandler     *handlers.SessionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5173",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)

  api := router.Group("/api")
  {
    api.POST("/predict-learning-style", cfg.PredictHandler.Predict)
    api.POST("/upload-file", cfg.UploadHandler.Upload)
    api.POST("/signup-users", cfg.UserHandler.SignupUsers)
    api.DELETE("/user/:user_id", cfg.UserHandler.DeleteUser)
    api.GET("/admin/:admin_id/students", cfg.UserHandler.ListStudents)
    api.GET("/module/:module_id", cfg.ModuleHandler.GetModule)
    api.POST("/addUsersToModule", cfg.ModuleHandler.AddUsersToModule)
    api.POST("/session", cfg.SessionHandler.CreateSession)
  }

  return router
}
