package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/speaksharp/speaksharp/internal/models"
)

// fakeKV is an in-memory stand-in for the Redis cache.
type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeKV) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = b
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func newTestProgress(t *testing.T, day string) (*progressService, context.Context) {
	t.Helper()
	svc := NewProgressService(newFakeKV()).(*progressService)
	setDay(svc, day)
	return svc, context.Background()
}

func setDay(svc *progressService, day string) {
	at, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	svc.now = func() time.Time { return at }
}

func TestGetReturnsFreshProgress(t *testing.T) {
	svc, ctx := newTestProgress(t, "2026-03-01")

	p, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Hearts != models.MaxHearts || p.Level != 1 || p.XP != 0 || p.Streak != 0 {
		t.Errorf("fresh progress = %+v", p)
	}
}

func TestCompleteLessonAwardsXPOnce(t *testing.T) {
	svc, ctx := newTestProgress(t, "2026-03-01")

	p, err := svc.CompleteLesson(ctx, "user-1", "lesson-1-1-1", 50)
	if err != nil {
		t.Fatalf("CompleteLesson failed: %v", err)
	}
	if p.XP != 50 || !p.LessonCompleted("lesson-1-1-1") {
		t.Errorf("after first completion: %+v", p)
	}

	// Replaying the same lesson does not double-award.
	p, err = svc.CompleteLesson(ctx, "user-1", "lesson-1-1-1", 50)
	if err != nil {
		t.Fatalf("CompleteLesson failed: %v", err)
	}
	if p.XP != 50 || len(p.CompletedLessons) != 1 {
		t.Errorf("after replay: %+v", p)
	}
}

func TestLevelFromXP(t *testing.T) {
	svc, ctx := newTestProgress(t, "2026-03-01")

	for i := 0; i < 10; i++ {
		if _, err := svc.CompleteLesson(ctx, "user-1", "lesson-"+string(rune('a'+i)), 50); err != nil {
			t.Fatalf("CompleteLesson failed: %v", err)
		}
	}

	p, _ := svc.Get(ctx, "user-1")
	if p.XP != 500 {
		t.Fatalf("XP = %d, want 500", p.XP)
	}
	if p.Level != 2 {
		t.Errorf("Level = %d, want 2 at 500 XP", p.Level)
	}
}

func TestStreakRules(t *testing.T) {
	svc, ctx := newTestProgress(t, "2026-03-01")

	p, _ := svc.RecordPractice(ctx, "user-1")
	if p.Streak != 1 {
		t.Fatalf("Streak = %d, want 1 on first practice", p.Streak)
	}

	// Same day is idempotent.
	p, _ = svc.RecordPractice(ctx, "user-1")
	if p.Streak != 1 {
		t.Errorf("Streak = %d, want 1 after same-day repeat", p.Streak)
	}

	// Next day extends.
	setDay(svc, "2026-03-02")
	p, _ = svc.RecordPractice(ctx, "user-1")
	if p.Streak != 2 {
		t.Errorf("Streak = %d, want 2 on consecutive day", p.Streak)
	}

	// A gap resets to 1.
	setDay(svc, "2026-03-05")
	p, _ = svc.RecordPractice(ctx, "user-1")
	if p.Streak != 1 {
		t.Errorf("Streak = %d, want 1 after gap", p.Streak)
	}
	if p.LastPracticeDate != "2026-03-05" {
		t.Errorf("LastPracticeDate = %q", p.LastPracticeDate)
	}
}

func TestHearts(t *testing.T) {
	svc, ctx := newTestProgress(t, "2026-03-01")

	var p *models.UserProgress
	for i := 0; i < 7; i++ {
		var err error
		p, err = svc.LoseHeart(ctx, "user-1")
		if err != nil {
			t.Fatalf("LoseHeart failed: %v", err)
		}
	}
	if p.Hearts != 0 {
		t.Errorf("Hearts = %d, want floor at 0", p.Hearts)
	}

	p, err := svc.RefillHearts(ctx, "user-1")
	if err != nil {
		t.Fatalf("RefillHearts failed: %v", err)
	}
	if p.Hearts != models.MaxHearts {
		t.Errorf("Hearts = %d, want %d after refill", p.Hearts, models.MaxHearts)
	}
}

func TestCompleteSkillIdempotent(t *testing.T) {
	svc, ctx := newTestProgress(t, "2026-03-01")

	if _, err := svc.CompleteSkill(ctx, "user-1", "skill-1-1"); err != nil {
		t.Fatalf("CompleteSkill failed: %v", err)
	}
	p, err := svc.CompleteSkill(ctx, "user-1", "skill-1-1")
	if err != nil {
		t.Fatalf("CompleteSkill failed: %v", err)
	}
	if len(p.CompletedSkills) != 1 {
		t.Errorf("CompletedSkills = %v, want one entry", p.CompletedSkills)
	}
}
