package services

import (
	"context"
	"time"

	"github.com/speaksharp/speaksharp/internal/cache"
	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/utils"
)

// ProgressService owns the gamification state: XP, hearts, and the daily
// streak. State lives behind the key-value port, one record per user, no
// expiry. Streak updates are idempotent within a calendar day (UTC).
type ProgressService interface {
	Get(ctx context.Context, userID string) (*models.UserProgress, error)
	CompleteLesson(ctx context.Context, userID, lessonID string, xpReward int) (*models.UserProgress, error)
	CompleteSkill(ctx context.Context, userID, skillID string) (*models.UserProgress, error)
	RecordPractice(ctx context.Context, userID string) (*models.UserProgress, error)
	LoseHeart(ctx context.Context, userID string) (*models.UserProgress, error)
	RefillHearts(ctx context.Context, userID string) (*models.UserProgress, error)
}

type progressService struct {
	kv  cache.Cache
	now func() time.Time
}

func NewProgressService(kv cache.Cache) ProgressService {
	return &progressService{kv: kv, now: time.Now}
}

func progressKey(userID string) string { return "progress:" + userID }

func (s *progressService) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	const op = "ProgressService.Get"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	var p models.UserProgress
	hit, err := s.kv.GetJSON(ctx, progressKey(userID), &p)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load progress", err)
	}
	if !hit {
		return models.NewUserProgress(), nil
	}
	return &p, nil
}

func (s *progressService) CompleteLesson(ctx context.Context, userID, lessonID string, xpReward int) (*models.UserProgress, error) {
	const op = "ProgressService.CompleteLesson"

	if lessonID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "lesson_id is required", nil)
	}

	return s.update(ctx, op, userID, func(p *models.UserProgress) {
		if !p.LessonCompleted(lessonID) {
			p.CompletedLessons = append(p.CompletedLessons, lessonID)
			p.XP += xpReward
		}
		s.touchStreak(p)
		p.Level = p.XP/models.XPPerLevel + 1
	})
}

func (s *progressService) CompleteSkill(ctx context.Context, userID, skillID string) (*models.UserProgress, error) {
	const op = "ProgressService.CompleteSkill"

	if skillID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "skill_id is required", nil)
	}

	return s.update(ctx, op, userID, func(p *models.UserProgress) {
		for _, id := range p.CompletedSkills {
			if id == skillID {
				return
			}
		}
		p.CompletedSkills = append(p.CompletedSkills, skillID)
	})
}

// RecordPractice extends the streak for practice that is not tied to a
// lesson, such as finishing a free assessment session.
func (s *progressService) RecordPractice(ctx context.Context, userID string) (*models.UserProgress, error) {
	const op = "ProgressService.RecordPractice"

	return s.update(ctx, op, userID, func(p *models.UserProgress) {
		s.touchStreak(p)
	})
}

func (s *progressService) LoseHeart(ctx context.Context, userID string) (*models.UserProgress, error) {
	const op = "ProgressService.LoseHeart"

	return s.update(ctx, op, userID, func(p *models.UserProgress) {
		if p.Hearts > 0 {
			p.Hearts--
		}
	})
}

func (s *progressService) RefillHearts(ctx context.Context, userID string) (*models.UserProgress, error) {
	const op = "ProgressService.RefillHearts"

	return s.update(ctx, op, userID, func(p *models.UserProgress) {
		p.Hearts = models.MaxHearts
	})
}

// touchStreak applies the daily streak rule: same day keeps the count,
// consecutive days extend it, a gap resets it to 1.
func (s *progressService) touchStreak(p *models.UserProgress) {
	now := s.now().UTC()
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	switch p.LastPracticeDate {
	case today:
		// already counted
	case yesterday:
		p.Streak++
	default:
		p.Streak = 1
	}
	p.LastPracticeDate = today
}

func (s *progressService) update(ctx context.Context, op, userID string, mutate func(*models.UserProgress)) (*models.UserProgress, error) {
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	var p models.UserProgress
	hit, err := s.kv.GetJSON(ctx, progressKey(userID), &p)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load progress", err)
	}
	if !hit {
		p = *models.NewUserProgress()
	}

	mutate(&p)

	if err := s.kv.SetJSON(ctx, progressKey(userID), &p, 0); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save progress", err)
	}
	return &p, nil
}
