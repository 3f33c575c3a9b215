package handlers

import (
  "io"
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/services"
)

var allowedUploadTypes = map[string]bool{
  "application/pdf": true,
  "image/jpeg":      true,
  "image/png":       true,
  "audio/wav":       true,
  "audio/mpeg":      true,
  "audio/mp3":       true,
  "audio/mp4":       true,
}

type UploadHandler struct {
  log      *logger.Logger
  vision   services.VisionService
  speech   services.SpeechService
  assembly services.ModuleAssemblyService
}

func NewUploadHandler(
  baseLog *logger.Logger,
  vision services.VisionService,
  speech services.SpeechService,
  assembly services.ModuleAssemblyService,
) *UploadHandler {
  return &UploadHandler{
    log:      baseLog.With("handler", "UploadHandler"),
    vision:   vision,
    speech:   speech,
    assembly: assembly,
  }
}

// Upload ingests one study file, extracts its text, and runs the module
// assembly workflow for the uploading user. The content type is checked
// against the allow-list before anything else happens.
func (uh *UploadHandler) Upload(c *gin.Context) {
  userID, err := uuid.Parse(c.PostForm("useruid"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid useruid"})
    return
  }
  var tags []string
  for _, t := range strings.Split(c.PostForm("submodulepreference"), ",") {
    if t = strings.TrimSpace(t); t != "" {
      tags = append(tags, t)
    }
  }

  fileHeader, err := c.FormFile("file")
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
    return
  }
  mimeType := strings.ToLower(strings.TrimSpace(fileHeader.Header.Get("Content-Type")))
  if !allowedUploadTypes[mimeType] {
    c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type: " + mimeType})
    return
  }

  f, err := fileHeader.Open()
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
    return
  }
  defer f.Close()
  data, err := io.ReadAll(f)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
    return
  }

  ctx := c.Request.Context()
  var sourceText string
  switch {
  case mimeType == "application/pdf":
    sourceText, err = services.ExtractDocumentText(mimeType, data)
    if err != nil {
      respondError(c, err)
      return
    }
  case strings.HasPrefix(mimeType, "image/"):
    // OCR failures degrade to empty text rather than failing the upload here
    sourceText, err = uh.vision.ExtractImageText(ctx, data)
    if err != nil {
      uh.log.Warn("image ocr failed", "error", err)
      sourceText = ""
    }
  case strings.HasPrefix(mimeType, "audio/"):
    tr, err := uh.speech.Transcribe(ctx, data, mimeType)
    if err != nil {
      respondError(c, err)
      return
    }
    sourceText = tr.Text
  }

  module, submodules, err := uh.assembly.Assemble(ctx, userID, tags, sourceText)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"module": module, "submodules": submodules})
}
