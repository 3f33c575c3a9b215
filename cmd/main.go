package main

import (
  "fmt"
  "os"

  "github.com/studykite/studykite-backend/internal/db"
  "github.com/studykite/studykite-backend/internal/handlers"
  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/mlmodel"
  "github.com/studykite/studykite-backend/internal/repos"
  "github.com/studykite/studykite-backend/internal/server"
  "github.com/studykite/studykite-backend/internal/services"
  "github.com/studykite/studykite-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  answerCount := utils.GetEnvAsInt("ANSWER_COUNT", 16, log)
  tokenizerPath := utils.GetEnv("TOKENIZER_PATH", "assets/tokenizer.json", log)
  classifierPath := utils.GetEnv("CLASSIFIER_PATH", "assets/classifier.json", log)
  costRates := services.LoadCostRates(log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  moduleRepo := repos.NewModuleRepo(thePG, log)
  submoduleRepo := repos.NewSubmoduleRepo(thePG, log)
  progressRepo := repos.NewProgressRepo(thePG, log)

  // Classifier assets
  tokenizer, err := mlmodel.LoadTokenizer(tokenizerPath)
  if err != nil {
    log.Error("Could not load tokenizer", "error", err)
    os.Exit(1)
  }
  classifier, err := mlmodel.LoadClassifier(classifierPath)
  if err != nil {
    log.Error("Could not load classifier", "error", err)
    os.Exit(1)
  }

  // Services
  log.Info("Setting up Services from main...")
  bucketService, err := services.NewBucketService(log)
  if err != nil {
    log.Warn("Could not init BucketService", "error", err)
  }
  openaiClient, err := services.NewOpenAIClient(log)
  if err != nil {
    log.Error("Could not init OpenAIClient", "error", err)
    os.Exit(1)
  }
  speechService, err := services.NewSpeechService(log)
  if err != nil {
    log.Error("Could not init SpeechService", "error", err)
    os.Exit(1)
  }
  defer speechService.Close()
  visionService, err := services.NewVisionService(log)
  if err != nil {
    log.Error("Could not init VisionService", "error", err)
    os.Exit(1)
  }
  defer visionService.Close()

  predictorService := services.NewLearningStyleService(log, tokenizer, classifier)
  generationService := services.NewContentGenerationService(log, openaiClient)
  userService := services.NewUserService(thePG, log, userRepo)
  moduleService := services.NewModuleService(thePG, log, userRepo, moduleRepo, submoduleRepo, progressRepo)
  assemblyService := services.NewModuleAssemblyService(log, generationService, openaiClient, bucketService, speechService, moduleService, costRates)

  // Handlers
  log.Info("Setting up handlers from main...")
  healthcheckHandler := handlers.NewHealthcheckHandler(thePG)
  predictHandler := handlers.NewPredictHandler(log, predictorService, answerCount)
  uploadHandler := handlers.NewUploadHandler(log, visionService, speechService, assemblyService)
  userHandler := handlers.NewUserHandler(log, userService)
  moduleHandler := handlers.NewModuleHandler(log, moduleService)
  sessionHandler := handlers.NewSessionHandler(log, openaiClient)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    HealthcheckHandler: healthcheckHandler,
    PredictHandler:     predictHandler,
    UploadHandler:      uploadHandler,
    UserHandler:        userHandler,
    ModuleHandler:      moduleHandler,
    SessionHandler:     sessionHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
