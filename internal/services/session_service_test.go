package services

import (
	"context"
	"testing"
	"time"

	"github.com/speaksharp/speaksharp/internal/logger"
	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/utils"

	"github.com/speaksharp/speaksharp/internal/assessment"
)

// fakeSessionRepo keeps sessions in memory, mirroring the mongo repo's
// update granularity.
type fakeSessionRepo struct {
	sessions map[string]*models.AssessmentSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.AssessmentSession{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *models.AssessmentSession) error {
	cp := *s
	f.sessions[s.SessionID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetBySessionID(_ context.Context, sessionID string) (*models.AssessmentSession, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) ListRecent(_ context.Context, userID string, _ int) ([]models.AssessmentSession, error) {
	var out []models.AssessmentSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) SetState(_ context.Context, sessionID, state string) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.State = state
	return nil
}

func (f *fakeSessionRepo) SetStatus(_ context.Context, sessionID, status string) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = status
	return nil
}

func (f *fakeSessionRepo) AppendResult(_ context.Context, sessionID string, r models.ScoreResult, cursor int, state string, average float64) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Results = append(s.Results, r)
	s.Cursor = cursor
	s.State = state
	s.AverageScore = average
	return nil
}

func (f *fakeSessionRepo) AdvanceCursor(_ context.Context, sessionID string, cursor int, state string) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Cursor = cursor
	s.State = state
	return nil
}

func (f *fakeSessionRepo) Complete(_ context.Context, sessionID string, average float64, summary *models.FeedbackSummary, completedAt time.Time) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = models.StatusComplete
	s.State = models.StateIdle
	s.AverageScore = average
	s.Summary = summary
	s.CompletedAt = &completedAt
	return nil
}

// fakeAssessor returns queued scores in order.
type fakeAssessor struct {
	scores []int
	calls  int
}

func (f *fakeAssessor) Score(_ context.Context, _, _ string, audio []byte, _ string, item models.AssessmentItem) (*models.ScoreResult, error) {
	if len(audio) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, "fake", "audio data is required", nil)
	}
	score := 75
	if f.calls < len(f.scores) {
		score = f.scores[f.calls]
	}
	f.calls++
	return &models.ScoreResult{
		ItemText:           item.Text,
		Category:           item.Category,
		PronunciationScore: score,
		Feedback:           "ok",
	}, nil
}

func fiveItems() []models.AssessmentItem {
	items := make([]models.AssessmentItem, 5)
	for i := range items {
		items[i] = models.AssessmentItem{Text: "item", Type: "word"}
	}
	return items
}

func newTestSessionService(scores []int) (SessionService, *fakeSessionRepo) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, &fakeAssessor{scores: scores}, assessment.NewSummarizer(nil), nil, logger.New())
	return svc, repo
}

func runItem(t *testing.T, svc SessionService, sessionID string) *models.AssessmentSession {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.BeginRecording(ctx, "user-1", sessionID); err != nil {
		t.Fatalf("BeginRecording failed: %v", err)
	}
	if _, err := svc.SubmitAttempt(ctx, "user-1", sessionID, []byte("pcm"), "audio/wav"); err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	session, err := svc.Advance(ctx, "user-1", sessionID)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	return session
}

func TestSessionFullRunAveragesScores(t *testing.T) {
	svc, _ := newTestSessionService([]int{90, 80, 70, 60, 50})
	ctx := context.Background()

	session, err := svc.Start(ctx, "user-1", fiveItems())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var last *models.AssessmentSession
	for i := 0; i < 5; i++ {
		last = runItem(t, svc, session.SessionID)
	}

	if last.Status != models.StatusComplete {
		t.Fatalf("Status = %q, want complete", last.Status)
	}
	if last.AverageScore != 70.0 {
		t.Errorf("AverageScore = %v, want 70.0", last.AverageScore)
	}
	if last.Summary == nil {
		t.Error("Summary missing on completed session")
	}
	if last.CompletedAt == nil {
		t.Error("CompletedAt missing on completed session")
	}
}

func TestSessionStartDefaultsToDemoItems(t *testing.T) {
	svc, _ := newTestSessionService(nil)

	session, err := svc.Start(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(session.Items) != 10 {
		t.Errorf("len(Items) = %d, want the 10 demo items", len(session.Items))
	}
	if session.State != models.StateIdle || session.Status != models.StatusActive {
		t.Errorf("state/status = %q/%q", session.State, session.Status)
	}
}

func TestSessionStateGates(t *testing.T) {
	svc, _ := newTestSessionService(nil)
	ctx := context.Background()

	session, _ := svc.Start(ctx, "user-1", fiveItems())
	id := session.SessionID

	// Submitting without a recording in progress is rejected.
	if _, err := svc.SubmitAttempt(ctx, "user-1", id, []byte("x"), "audio/wav"); !utils.IsCode(err, utils.CodeConflict) {
		t.Errorf("submit while idle: err = %v, want conflict", err)
	}
	// Advancing with nothing to review is rejected.
	if _, err := svc.Advance(ctx, "user-1", id); !utils.IsCode(err, utils.CodeConflict) {
		t.Errorf("advance while idle: err = %v, want conflict", err)
	}

	if _, err := svc.BeginRecording(ctx, "user-1", id); err != nil {
		t.Fatalf("BeginRecording failed: %v", err)
	}
	// Double start is rejected.
	if _, err := svc.BeginRecording(ctx, "user-1", id); !utils.IsCode(err, utils.CodeConflict) {
		t.Errorf("double BeginRecording: err = %v, want conflict", err)
	}
}

func TestCancelRecordingReturnsToIdle(t *testing.T) {
	svc, repo := newTestSessionService(nil)
	ctx := context.Background()

	session, _ := svc.Start(ctx, "user-1", fiveItems())
	id := session.SessionID

	// Cancelling with no recording in progress is rejected.
	if err := svc.CancelRecording(ctx, "user-1", id); !utils.IsCode(err, utils.CodeConflict) {
		t.Errorf("cancel while idle: err = %v, want conflict", err)
	}

	if _, err := svc.BeginRecording(ctx, "user-1", id); err != nil {
		t.Fatalf("BeginRecording failed: %v", err)
	}
	if err := svc.CancelRecording(ctx, "user-1", id); err != nil {
		t.Fatalf("CancelRecording failed: %v", err)
	}

	stored := repo.sessions[id]
	if stored.State != models.StateIdle {
		t.Errorf("state after cancel = %q, want idle", stored.State)
	}
	if len(stored.Results) != 0 {
		t.Errorf("results appended on cancel: %d", len(stored.Results))
	}

	// The item is retryable after the cancel.
	if _, err := svc.BeginRecording(ctx, "user-1", id); err != nil {
		t.Errorf("BeginRecording after cancel failed: %v", err)
	}
}

func TestSubmitEmptyAudioRollsBackState(t *testing.T) {
	svc, repo := newTestSessionService(nil)
	ctx := context.Background()

	session, _ := svc.Start(ctx, "user-1", fiveItems())
	if _, err := svc.BeginRecording(ctx, "user-1", session.SessionID); err != nil {
		t.Fatalf("BeginRecording failed: %v", err)
	}

	if _, err := svc.SubmitAttempt(ctx, "user-1", session.SessionID, nil, "audio/wav"); err == nil {
		t.Fatal("empty audio accepted")
	}

	stored := repo.sessions[session.SessionID]
	if stored.State != models.StateIdle {
		t.Errorf("state after failed submit = %q, want idle for retry", stored.State)
	}
	if len(stored.Results) != 0 {
		t.Errorf("results appended on failed submit: %d", len(stored.Results))
	}
}

func TestSessionOwnership(t *testing.T) {
	svc, _ := newTestSessionService(nil)
	ctx := context.Background()

	session, _ := svc.Start(ctx, "user-1", fiveItems())

	if _, err := svc.Get(ctx, "user-2", session.SessionID); !utils.IsCode(err, utils.CodeForbidden) {
		t.Errorf("foreign Get: err = %v, want forbidden", err)
	}
	if _, err := svc.Get(ctx, "user-1", "missing"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("missing Get: err = %v, want not found", err)
	}
}

func TestAbandon(t *testing.T) {
	svc, repo := newTestSessionService(nil)
	ctx := context.Background()

	session, _ := svc.Start(ctx, "user-1", fiveItems())
	if err := svc.Abandon(ctx, "user-1", session.SessionID); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	if got := repo.sessions[session.SessionID].Status; got != models.StatusAbandoned {
		t.Errorf("Status = %q, want abandoned", got)
	}

	// Abandoned sessions refuse further recording.
	if _, err := svc.BeginRecording(ctx, "user-1", session.SessionID); !utils.IsCode(err, utils.CodeConflict) {
		t.Errorf("BeginRecording on abandoned: err = %v, want conflict", err)
	}
}
