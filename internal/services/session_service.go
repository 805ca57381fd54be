package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/speaksharp/speaksharp/internal/assessment"
	"github.com/speaksharp/speaksharp/internal/models"
	mongorepo "github.com/speaksharp/speaksharp/internal/repositories/mongo"
	pgrepo "github.com/speaksharp/speaksharp/internal/repositories/postgres"
	"github.com/speaksharp/speaksharp/internal/utils"
)

// SessionService drives the practice loop. Each session walks its items one
// at a time through idle -> recording -> processing -> reviewing; Advance
// moves to the next item or finalizes the session with a feedback summary.
type SessionService interface {
	Start(ctx context.Context, userID string, items []models.AssessmentItem) (*models.AssessmentSession, error)
	Get(ctx context.Context, userID, sessionID string) (*models.AssessmentSession, error)
	History(ctx context.Context, userID string, limit int) ([]models.AssessmentSession, error)

	BeginRecording(ctx context.Context, userID, sessionID string) (*models.AssessmentSession, error)
	CancelRecording(ctx context.Context, userID, sessionID string) error
	SubmitAttempt(ctx context.Context, userID, sessionID string, audio []byte, mimeType string) (*models.ScoreResult, error)
	Advance(ctx context.Context, userID, sessionID string) (*models.AssessmentSession, error)
	Abandon(ctx context.Context, userID, sessionID string) error
}

type sessionService struct {
	sessions   mongorepo.SessionRepository
	assessor   AssessmentService
	summarizer *assessment.Summarizer
	attempts   pgrepo.AttemptRepository // summary persistence, optional

	log *logrus.Logger
}

func NewSessionService(
	sessions mongorepo.SessionRepository,
	assessor AssessmentService,
	summarizer *assessment.Summarizer,
	attempts pgrepo.AttemptRepository,
	log *logrus.Logger,
) SessionService {
	return &sessionService{
		sessions:   sessions,
		assessor:   assessor,
		summarizer: summarizer,
		attempts:   attempts,
		log:        log,
	}
}

func (s *sessionService) Start(ctx context.Context, userID string, items []models.AssessmentItem) (*models.AssessmentSession, error) {
	const op = "SessionService.Start"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if len(items) == 0 {
		items = assessment.DemoItems()
	}

	session := &models.AssessmentSession{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Status:    models.StatusActive,
		State:     models.StateIdle,
		Items:     items,
		Cursor:    0,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID string) (*models.AssessmentSession, error) {
	const op = "SessionService.Get"
	return s.owned(ctx, op, userID, sessionID)
}

func (s *sessionService) History(ctx context.Context, userID string, limit int) ([]models.AssessmentSession, error) {
	const op = "SessionService.History"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.sessions.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return out, nil
}

func (s *sessionService) BeginRecording(ctx context.Context, userID, sessionID string) (*models.AssessmentSession, error) {
	const op = "SessionService.BeginRecording"

	session, err := s.owned(ctx, op, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, utils.E(utils.CodeConflict, op, "session is not active", nil)
	}
	if session.State != models.StateIdle {
		return nil, utils.E(utils.CodeConflict, op, "recording already in progress", nil)
	}
	if session.CurrentItem() == nil {
		return nil, utils.E(utils.CodeConflict, op, "no items left in session", nil)
	}

	if err := s.sessions.SetState(ctx, sessionID, models.StateRecording); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update state", err)
	}
	session.State = models.StateRecording
	return session, nil
}

// CancelRecording discards an in-progress recording and returns the session
// to idle so the current item can be retried. Nothing is scored or appended.
func (s *sessionService) CancelRecording(ctx context.Context, userID, sessionID string) error {
	const op = "SessionService.CancelRecording"

	session, err := s.owned(ctx, op, userID, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusActive {
		return utils.E(utils.CodeConflict, op, "session is not active", nil)
	}
	if session.State != models.StateRecording && session.State != models.StateProcessing {
		return utils.E(utils.CodeConflict, op, "no recording in progress", nil)
	}

	if err := s.sessions.SetState(ctx, sessionID, models.StateIdle); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update state", err)
	}
	return nil
}

// SubmitAttempt scores the current item. The result is appended with the
// cursor unchanged: the user reviews the score before Advance moves on.
func (s *sessionService) SubmitAttempt(ctx context.Context, userID, sessionID string, audio []byte, mimeType string) (*models.ScoreResult, error) {
	const op = "SessionService.SubmitAttempt"

	session, err := s.owned(ctx, op, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, utils.E(utils.CodeConflict, op, "session is not active", nil)
	}
	if session.State != models.StateRecording {
		return nil, utils.E(utils.CodeConflict, op, "no recording in progress", nil)
	}
	item := session.CurrentItem()
	if item == nil {
		return nil, utils.E(utils.CodeConflict, op, "no items left in session", nil)
	}

	if err := s.sessions.SetState(ctx, sessionID, models.StateProcessing); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update state", err)
	}

	res, err := s.assessor.Score(ctx, userID, sessionID, audio, mimeType, *item)
	if err != nil {
		// Invalid input (empty audio). Roll the state back so the user can
		// record the item again.
		if serr := s.sessions.SetState(ctx, sessionID, models.StateIdle); serr != nil {
			s.log.WithError(serr).Warn("state rollback failed")
		}
		return nil, err
	}

	results := append(session.Results, *res)
	average := models.Average(results)
	if err := s.sessions.AppendResult(ctx, sessionID, *res, session.Cursor, models.StateReviewing, average); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record result", err)
	}
	return res, nil
}

// Advance moves past the reviewed item. Finishing the last item finalizes
// the session: one summarizer call, then the terminal complete status.
func (s *sessionService) Advance(ctx context.Context, userID, sessionID string) (*models.AssessmentSession, error) {
	const op = "SessionService.Advance"

	session, err := s.owned(ctx, op, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, utils.E(utils.CodeConflict, op, "session is not active", nil)
	}
	if session.State != models.StateReviewing {
		return nil, utils.E(utils.CodeConflict, op, "no result to advance past", nil)
	}

	next := session.Cursor + 1
	if next < len(session.Items) {
		if err := s.sessions.AdvanceCursor(ctx, sessionID, next, models.StateIdle); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to advance", err)
		}
		session.Cursor = next
		session.State = models.StateIdle
		return session, nil
	}

	return s.finalize(ctx, op, session)
}

func (s *sessionService) Abandon(ctx context.Context, userID, sessionID string) error {
	const op = "SessionService.Abandon"

	session, err := s.owned(ctx, op, userID, sessionID)
	if err != nil {
		return err
	}
	if session.Status == models.StatusComplete {
		return utils.E(utils.CodeConflict, op, "session already complete", nil)
	}
	if err := s.sessions.SetStatus(ctx, sessionID, models.StatusAbandoned); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to abandon session", err)
	}
	return nil
}

func (s *sessionService) finalize(ctx context.Context, op string, session *models.AssessmentSession) (*models.AssessmentSession, error) {
	if err := s.sessions.SetStatus(ctx, session.SessionID, models.StatusSummarizing); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update status", err)
	}

	summary := s.summarizer.Summarize(ctx, session.Results)
	average := models.Average(session.Results)
	now := time.Now().UTC()

	if err := s.sessions.Complete(ctx, session.SessionID, average, summary, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to complete session", err)
	}

	s.persistSummary(ctx, session, average, summary, now)

	session.Status = models.StatusComplete
	session.State = models.StateIdle
	session.Cursor = len(session.Items)
	session.AverageScore = average
	session.Summary = summary
	session.CompletedAt = &now
	return session, nil
}

func (s *sessionService) persistSummary(ctx context.Context, session *models.AssessmentSession, average float64, summary *models.FeedbackSummary, at time.Time) {
	if s.attempts == nil {
		return
	}

	improvements, err := json.Marshal(summary.Improvements)
	if err != nil {
		improvements = []byte("[]")
	}

	row := &models.SessionSummary{
		ID:            uuid.NewString(),
		SessionID:     session.SessionID,
		UserID:        session.UserID,
		AverageScore:  average,
		ItemCount:     len(session.Items),
		Summary:       summary.Summary,
		Strengths:     summary.Strengths,
		Improvements:  datatypes.JSON(improvements),
		Encouragement: summary.Encouragement,
		CreatedAt:     at,
	}
	if err := s.attempts.InsertSummary(ctx, row); err != nil {
		s.log.WithError(err).WithField("session_id", session.SessionID).Warn("summary persist failed")
	}
}

func (s *sessionService) owned(ctx context.Context, op, userID, sessionID string) (*models.AssessmentSession, error) {
	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}

	session, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	if session.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "session belongs to another user", nil)
	}
	return session, nil
}
