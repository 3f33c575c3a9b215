package services

import (
  "context"
  "encoding/json"
  "fmt"

  "github.com/studykite/studykite-backend/internal/logger"
)

// ModuleContent is the always-generated backbone of a module: the overview
// lesson every learner sees regardless of styles.
type ModuleContent struct {
  Name        string `json:"name"`
  Description string `json:"description"`
  Lesson      string `json:"lesson"`
  ImagePrompt string `json:"image_prompt"`
}

type Flashcard struct {
  Question string `json:"question"`
  Answer   string `json:"answer"`
}

type FlashcardSet struct {
  Title string      `json:"title"`
  Cards []Flashcard `json:"cards"`
}

type MindMap struct {
  Title   string `json:"title"`
  Mermaid string `json:"mermaid"`
}

type PodcastSegment struct {
  Speaker string `json:"speaker"`
  Voice   string `json:"voice"`
  Text    string `json:"text"`
}

type PodcastScript struct {
  Title    string           `json:"title"`
  Segments []PodcastSegment `json:"segments"`
}

type QuizQuestion struct {
  Question    string   `json:"question"`
  Options     []string `json:"options"`
  Answer      string   `json:"answer"`
  Explanation string   `json:"explanation"`
}

type Quiz struct {
  Title     string         `json:"title"`
  Questions []QuizQuestion `json:"questions"`
}

type ContentGenerationService interface {
  ModuleContent(ctx context.Context, sourceText string) (*ModuleContent, TokenUsage, error)
  Flashcards(ctx context.Context, lesson string) (*FlashcardSet, TokenUsage, error)
  MindMap(ctx context.Context, lesson string) (*MindMap, TokenUsage, error)
  PodcastScript(ctx context.Context, lesson string) (*PodcastScript, TokenUsage, error)
  Quiz(ctx context.Context, lesson string) (*Quiz, TokenUsage, error)
}

type contentGenerationService struct {
  log *logger.Logger
  ai  OpenAIClient
}

func NewContentGenerationService(baseLog *logger.Logger, ai OpenAIClient) ContentGenerationService {
  return &contentGenerationService{
    log: baseLog.With("service", "ContentGenerationService"),
    ai:  ai,
  }
}

func (cgs *contentGenerationService) ModuleContent(ctx context.Context, sourceText string) (*ModuleContent, TokenUsage, error) {
  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "name":         map[string]any{"type": "string"},
      "description":  map[string]any{"type": "string"},
      "lesson":       map[string]any{"type": "string"},
      "image_prompt": map[string]any{"type": "string"},
    },
    "required":             []string{"name", "description", "lesson", "image_prompt"},
    "additionalProperties": false,
  }
  out := &ModuleContent{}
  usage, err := cgs.generate(ctx,
    "You turn user-provided learning material into a focused study module. The lesson is thorough markdown covering the material end to end.",
    fmt.Sprintf("Material:\n%s\n\nReturn the module name, a one-to-two sentence description, the full lesson, and a short prompt describing a cover image for the module.", sourceText),
    "module_content", schema, out,
  )
  return out, usage, err
}

func (cgs *contentGenerationService) Flashcards(ctx context.Context, lesson string) (*FlashcardSet, TokenUsage, error) {
  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "title": map[string]any{"type": "string"},
      "cards": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "question": map[string]any{"type": "string"},
            "answer":   map[string]any{"type": "string"},
          },
          "required":             []string{"question", "answer"},
          "additionalProperties": false,
        },
      },
    },
    "required":             []string{"title", "cards"},
    "additionalProperties": false,
  }
  out := &FlashcardSet{}
  usage, err := cgs.generate(ctx,
    "You write concise active-recall flashcards from a lesson.",
    fmt.Sprintf("Lesson:\n%s\n\nCreate 8-16 flashcards. Questions must be answerable from the lesson alone.", lesson),
    "flashcard_set", schema, out,
  )
  return out, usage, err
}

func (cgs *contentGenerationService) MindMap(ctx context.Context, lesson string) (*MindMap, TokenUsage, error) {
  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "title":   map[string]any{"type": "string"},
      "mermaid": map[string]any{"type": "string"},
    },
    "required":             []string{"title", "mermaid"},
    "additionalProperties": false,
  }
  out := &MindMap{}
  usage, err := cgs.generate(ctx,
    "You build hierarchical mind maps from lessons as Mermaid mindmap syntax.",
    fmt.Sprintf("Lesson:\n%s\n\nReturn a mermaid mindmap with one root and 3-6 branches, each with 2-4 leaves.", lesson),
    "mind_map", schema, out,
  )
  return out, usage, err
}

func (cgs *contentGenerationService) PodcastScript(ctx context.Context, lesson string) (*PodcastScript, TokenUsage, error) {
  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "title": map[string]any{"type": "string"},
      "segments": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "speaker": map[string]any{"type": "string"},
            "voice":   map[string]any{"type": "string", "enum": []string{"alloy", "echo"}},
            "text":    map[string]any{"type": "string"},
          },
          "required":             []string{"speaker", "voice", "text"},
          "additionalProperties": false,
        },
      },
    },
    "required":             []string{"title", "segments"},
    "additionalProperties": false,
  }
  out := &PodcastScript{}
  usage, err := cgs.generate(ctx,
    "You write a two-host study podcast script. Host Sam uses voice alloy, host Riley uses voice echo. Alternate speakers, keep each segment under 80 words.",
    fmt.Sprintf("Lesson:\n%s\n\nWrite a conversational walkthrough of the lesson, 10-20 segments.", lesson),
    "podcast_script", schema, out,
  )
  if err == nil && len(out.Segments) == 0 {
    return nil, usage, fmt.Errorf("podcast script has no segments")
  }
  return out, usage, err
}

func (cgs *contentGenerationService) Quiz(ctx context.Context, lesson string) (*Quiz, TokenUsage, error) {
  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "title": map[string]any{"type": "string"},
      "questions": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "question":    map[string]any{"type": "string"},
            "options":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
            "answer":      map[string]any{"type": "string"},
            "explanation": map[string]any{"type": "string"},
          },
          "required":             []string{"question", "options", "answer", "explanation"},
          "additionalProperties": false,
        },
      },
    },
    "required":             []string{"title", "questions"},
    "additionalProperties": false,
  }
  out := &Quiz{}
  usage, err := cgs.generate(ctx,
    "You write multiple-choice quizzes from a lesson. Every question has exactly 4 options and the answer matches one of them verbatim.",
    fmt.Sprintf("Lesson:\n%s\n\nCreate 5-10 questions covering the whole lesson.", lesson),
    "quiz", schema, out,
  )
  return out, usage, err
}

// generate runs one structured completion and decodes it into dst.
func (cgs *contentGenerationService) generate(ctx context.Context, system, user, schemaName string, schema map[string]any, dst any) (TokenUsage, error) {
  obj, usage, err := cgs.ai.GenerateJSON(ctx, system, user, schemaName, schema)
  if err != nil {
    return usage, fmt.Errorf("%s: %w", schemaName, err)
  }
  raw, err := json.Marshal(obj)
  if err != nil {
    return usage, fmt.Errorf("%s: encode: %w", schemaName, err)
  }
  if err := json.Unmarshal(raw, dst); err != nil {
    return usage, fmt.Errorf("%s: decode: %w", schemaName, err)
  }
  return usage, nil
}
