package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/studykite/studykite-backend/internal/logger"
)

type TranscriptionResult struct {
	Text    string  `json:"text"`
	Minutes float64 `json:"minutes"`
}

type SpeechService interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*TranscriptionResult, error)
	Close() error
}

type speechService struct {
	log        *logger.Logger
	client     *speech.Client
	maxRetries int
}

func NewSpeechService(log *logger.Logger) (SpeechService, error) {
	serviceLog := log.With("service", "SpeechService")

	ctx := context.Background()
	var opts []option.ClientOption
	if saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"); saPath != "" {
		opts = append(opts, option.WithCredentialsFile(saPath))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &speechService{log: serviceLog, client: c, maxRetries: 3}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Transcribe recognizes audio and returns the joined transcript plus the
// billed audio length in minutes (used only for cost telemetry).
func (s *speechService) Transcribe(ctx context.Context, audio []byte, mimeType string) (*TranscriptionResult, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encodingForMime(mimeType),
			LanguageCode:               "en-US",
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	var resp *speechpb.RecognizeResponse
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		resp, err = s.client.Recognize(ctx, req)
		if err == nil {
			break
		}
		if !isRetryableGRPC(err) || attempt == s.maxRetries {
			return nil, fmt.Errorf("recognize: %w", err)
		}
		s.log.Warn("recognize failed, retrying", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}

	var sb strings.Builder
	for _, res := range resp.GetResults() {
		alts := res.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(strings.TrimSpace(alts[0].GetTranscript()))
	}

	minutes := 0.0
	if billed := resp.GetTotalBilledTime(); billed != nil {
		minutes = billed.AsDuration().Minutes()
	} else if mins, ok := wavDurationMinutes(audio); ok {
		minutes = mins
	}

	return &TranscriptionResult{Text: sb.String(), Minutes: minutes}, nil
}

func encodingForMime(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "audio/wav", "audio/x-wav":
		// WAV headers are self-describing
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	case "audio/mpeg", "audio/mp3", "audio/mp4":
		return speechpb.RecognitionConfig_MP3
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func isRetryableGRPC(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}
