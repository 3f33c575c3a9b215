package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "strings"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"

  "github.com/studykite/studykite-backend/internal/apierr"
  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/types"
)

// ModuleAssemblyService runs the whole generation workflow for one module:
// backbone lesson first, then the style-specific branches in parallel, then a
// single atomic commit of the resulting graph. A failed branch aborts the run
// before anything touches the database.
type ModuleAssemblyService interface {
  Assemble(ctx context.Context, userID uuid.UUID, preferenceTags []string, sourceText string) (*types.Module, []*types.Submodule, error)
}

type moduleAssemblyService struct {
  log       *logger.Logger
  generator ContentGenerationService
  ai        OpenAIClient
  bucket    BucketService
  speech    SpeechService
  modules   ModuleService
  rates     CostRates
}

func NewModuleAssemblyService(
  baseLog *logger.Logger,
  generator ContentGenerationService,
  ai OpenAIClient,
  bucket BucketService,
  speech SpeechService,
  modules ModuleService,
  rates CostRates,
) ModuleAssemblyService {
  return &moduleAssemblyService{
    log:       baseLog.With("service", "ModuleAssemblyService"),
    generator: generator,
    ai:        ai,
    bucket:    bucket,
    speech:    speech,
    modules:   modules,
    rates:     rates,
  }
}

// styleForTag maps a learning-style preference tag from the client onto the
// submodule type it selects. The questionnaire emits "Kinesthetic" while the
// stored type uses the "kinaesthetic" spelling, so the two are matched here.
// Unknown tags are ignored.
func styleForTag(tag string) (string, bool) {
  switch strings.ToLower(strings.TrimSpace(tag)) {
  case "kinesthetic", "kinaesthetic":
    return types.SubmoduleTypeKinaesthetic, true
  case "visual":
    return types.SubmoduleTypeVisual, true
  case "auditory":
    return types.SubmoduleTypeAuditory, true
  }
  return "", false
}

func (mas *moduleAssemblyService) Assemble(ctx context.Context, userID uuid.UUID, preferenceTags []string, sourceText string) (*types.Module, []*types.Submodule, error) {
  if strings.TrimSpace(sourceText) == "" {
    return nil, nil, apierr.Validation("no source text to assemble from")
  }

  wants := make(map[string]bool, len(preferenceTags))
  for _, tag := range preferenceTags {
    if style, ok := styleForTag(tag); ok {
      wants[style] = true
    }
  }

  content, usage, err := mas.generator.ModuleContent(ctx, sourceText)
  if err != nil {
    return nil, nil, apierr.Collaborator("module content", err)
  }
  cost := &GenerationCost{}
  cost.AddTokens(usage)

  var (
    flashSub   *types.Submodule
    mindSub    *types.Submodule
    podcastSub *types.Submodule
    quizSub    *types.Submodule
  )

  g, gctx := errgroup.WithContext(ctx)

  if wants[types.SubmoduleTypeKinaesthetic] {
    g.Go(func() error {
      set, u, err := mas.generator.Flashcards(gctx, content.Lesson)
      cost.AddTokens(u)
      if err != nil {
        return err
      }
      sub, err := newDataSubmodule("Flash Cards", "Active-recall flashcards for this module.", types.SubmoduleTypeKinaesthetic, set)
      flashSub = sub
      return err
    })
  }
  if wants[types.SubmoduleTypeVisual] {
    g.Go(func() error {
      mm, u, err := mas.generator.MindMap(gctx, content.Lesson)
      cost.AddTokens(u)
      if err != nil {
        return err
      }
      sub, err := newDataSubmodule("Mind Map", "A visual map of the module's concepts.", types.SubmoduleTypeVisual, mm)
      mindSub = sub
      return err
    })
  }
  if wants[types.SubmoduleTypeAuditory] {
    g.Go(func() error {
      sub, err := mas.buildPodcast(gctx, content.Lesson, cost)
      if err != nil {
        return err
      }
      podcastSub = sub
      return nil
    })
  }
  // Every module gets a quiz regardless of learning style.
  g.Go(func() error {
    quiz, u, err := mas.generator.Quiz(gctx, content.Lesson)
    cost.AddTokens(u)
    if err != nil {
      return err
    }
    sub, err := newDataSubmodule("Multiple Choice Quiz", "Check your understanding of the module.", types.SubmoduleTypeQuiz, quiz)
    quizSub = sub
    return err
  })

  if err := g.Wait(); err != nil {
    return nil, nil, apierr.Collaborator("generation branch", err)
  }

  var submodules []*types.Submodule
  for _, sub := range []*types.Submodule{flashSub, mindSub, podcastSub, quizSub} {
    if sub != nil {
      submodules = append(submodules, sub)
    }
  }

  module := &types.Module{
    ID:          uuid.New(),
    Name:        content.Name,
    Description: content.Description,
    Content:     content.Lesson,
    Image:       content.ImagePrompt,
  }
  if err := mas.modules.CreateModuleGraph(ctx, userID, module, submodules); err != nil {
    return nil, nil, fmt.Errorf("persist module: %w", err)
  }

  cost.Report(mas.log, mas.rates, module.Name)
  return module, submodules, nil
}

// buildPodcast narrates a script segment by segment, joins the audio, uploads
// it, and transcribes the final cut for the on-screen transcript.
func (mas *moduleAssemblyService) buildPodcast(ctx context.Context, lesson string, cost *GenerationCost) (*types.Submodule, error) {
  script, usage, err := mas.generator.PodcastScript(ctx, lesson)
  cost.AddTokens(usage)
  if err != nil {
    return nil, fmt.Errorf("podcast script: %w", err)
  }

  clips := make([][]byte, 0, len(script.Segments))
  for i, seg := range script.Segments {
    clip, err := mas.ai.Speak(ctx, seg.Text, seg.Voice)
    if err != nil {
      return nil, fmt.Errorf("narrate segment %d: %w", i, err)
    }
    cost.AddTTSChars(len(seg.Text))
    clips = append(clips, clip)
  }

  audio, err := ConcatWAV(clips)
  if err != nil {
    return nil, fmt.Errorf("join audio: %w", err)
  }

  key := fmt.Sprintf("podcasts/%s.wav", uuid.New())
  url, err := mas.bucket.UploadPublicFile(ctx, key, bytes.NewReader(audio), "audio/wav")
  if err != nil {
    return nil, fmt.Errorf("upload podcast: %w", err)
  }

  tr, err := mas.speech.Transcribe(ctx, audio, "audio/wav")
  if err != nil {
    return nil, fmt.Errorf("transcribe podcast: %w", err)
  }
  cost.AddSTTMinutes(tr.Minutes)

  // The auditory lesson payload is the public audio URL itself; the
  // transcript rides in its own column.
  return &types.Submodule{
    ID:          uuid.New(),
    Name:        "Podcast Session",
    Description: "Listen through the module as a two-host conversation.",
    Type:        types.SubmoduleTypeAuditory,
    Style:       types.SubmoduleTypeAuditory,
    LessonData:  url,
    Transcript:  tr.Text,
  }, nil
}

func newDataSubmodule(name, description, styleType string, payload any) (*types.Submodule, error) {
  raw, err := json.Marshal(payload)
  if err != nil {
    return nil, fmt.Errorf("encode %s lesson data: %w", name, err)
  }
  return &types.Submodule{
    ID:          uuid.New(),
    Name:        name,
    Description: description,
    Type:        styleType,
    Style:       styleType,
    LessonData:  string(raw),
  }, nil
}
