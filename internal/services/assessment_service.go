package services

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/speaksharp/speaksharp/internal/assessment"
	"github.com/speaksharp/speaksharp/internal/audio"
	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/providers/assess"
	"github.com/speaksharp/speaksharp/internal/providers/stt"
	pgrepo "github.com/speaksharp/speaksharp/internal/repositories/postgres"
	"github.com/speaksharp/speaksharp/internal/storage"
	"github.com/speaksharp/speaksharp/internal/utils"
)

// AssessmentService runs the scoring pipeline for one recording: transcode,
// vendor assessment, normalization, then best-effort archive and persist.
// It always returns a ScoreResult for non-empty input; vendor trouble
// degrades the result instead of failing the request.
type AssessmentService interface {
	Score(ctx context.Context, userID, sessionID string, audioData []byte, mimeType string, item models.AssessmentItem) (*models.ScoreResult, error)
}

type assessmentService struct {
	transcoder audio.Transcoder
	provider   assess.Provider
	normalizer *assessment.Normalizer

	// Optional collaborators; nil disables the corresponding step.
	recognizer stt.Provider
	archive    storage.Uploader
	attempts   pgrepo.AttemptRepository

	log *logrus.Logger
}

func NewAssessmentService(
	transcoder audio.Transcoder,
	provider assess.Provider,
	normalizer *assessment.Normalizer,
	recognizer stt.Provider,
	archive storage.Uploader,
	attempts pgrepo.AttemptRepository,
	log *logrus.Logger,
) AssessmentService {
	return &assessmentService{
		transcoder: transcoder,
		provider:   provider,
		normalizer: normalizer,
		recognizer: recognizer,
		archive:    archive,
		attempts:   attempts,
		log:        log,
	}
}

func (s *assessmentService) Score(ctx context.Context, userID, sessionID string, audioData []byte, mimeType string, item models.AssessmentItem) (*models.ScoreResult, error) {
	const op = "AssessmentService.Score"

	if len(audioData) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio data is required", nil)
	}
	if item.Text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "item text is required", nil)
	}

	// Transcode to 16kHz mono WAV. If the transcoder cannot handle the
	// container, submit the raw bytes and let the vendor try: a rejected
	// upload degrades downstream, it does not abort the attempt.
	submitAudio, submitMime := audioData, mimeType
	wav, err := s.transcoder.Transcode(ctx, &audio.Capture{Data: audioData, MIMEType: mimeType})
	if err != nil {
		s.log.WithError(err).WithField("mime_type", mimeType).Warn("transcode failed, submitting raw capture")
	} else {
		submitAudio, submitMime = wav, "audio/wav"
	}

	var res models.ScoreResult
	raw, err := s.provider.Assess(ctx, submitAudio, submitMime, item.Text)
	if err != nil {
		s.log.WithError(err).Warn("vendor assessment failed")
		res = s.normalizer.Failure(err, item)
	} else {
		res = s.normalizer.Normalize(raw.Body, item)
	}

	if res.RecognizedText == "" && !res.Degraded && s.recognizer != nil && submitMime == "audio/wav" {
		if text, _, rerr := s.recognizer.Transcribe(ctx, submitAudio, ""); rerr == nil {
			res.RecognizedText = text
		} else {
			s.log.WithError(rerr).Debug("fallback transcription failed")
		}
	}

	objectPath := s.archiveRecording(ctx, userID, sessionID, submitAudio, submitMime)
	s.persistAttempt(ctx, userID, sessionID, &res, objectPath)

	return &res, nil
}

// archiveRecording uploads the submitted audio. Failures are logged and
// swallowed; the score already exists and must reach the user.
func (s *assessmentService) archiveRecording(ctx context.Context, userID, sessionID string, data []byte, mimeType string) string {
	if s.archive == nil || userID == "" {
		return ""
	}

	ext := ".bin"
	if mimeType == "audio/wav" {
		ext = ".wav"
	}
	object := "attempts/" + userID + "/" + sessionID + "/" + uuid.NewString() + ext

	path, err := s.archive.Upload(ctx, object, mimeType, bytes.NewReader(data))
	if err != nil {
		s.log.WithError(err).WithField("object", object).Warn("recording archive failed")
		return ""
	}
	return path
}

func (s *assessmentService) persistAttempt(ctx context.Context, userID, sessionID string, res *models.ScoreResult, objectPath string) {
	if s.attempts == nil || userID == "" {
		return
	}

	words, err := json.Marshal(res.Words)
	if err != nil {
		words = []byte("[]")
	}

	attempt := &models.Attempt{
		ID:                 uuid.NewString(),
		UserID:             userID,
		SessionID:          sessionID,
		ItemText:           res.ItemText,
		Category:           res.Category,
		Difficulty:         res.Difficulty,
		PronunciationScore: res.PronunciationScore,
		AccuracyScore:      res.AccuracyScore,
		FluencyScore:       res.FluencyScore,
		CompletenessScore:  res.CompletenessScore,
		ActualIPA:          res.ActualIPA,
		ExpectedIPA:        res.ExpectedIPA,
		RecognizedText:     res.RecognizedText,
		Words:              datatypes.JSON(words),
		AudioObjectPath:    objectPath,
		Degraded:           res.Degraded,
		FailureKind:        res.FailureKind,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.attempts.Insert(ctx, attempt); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("attempt persist failed")
	}
}
