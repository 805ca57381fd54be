package services

import (
	"context"
	"errors"
	"time"

	"github.com/speaksharp/speaksharp/internal/models"
	pgrepo "github.com/speaksharp/speaksharp/internal/repositories/postgres"
	"github.com/speaksharp/speaksharp/internal/utils"
)

// ContentService serves the learning path and gates access to it: skills
// unlock linearly, premium lessons require an entitled subscription, and
// starting a lesson costs nothing but requires at least one heart.
type ContentService interface {
	LearningPath(ctx context.Context) ([]models.Unit, error)
	Entitled(ctx context.Context, userID string) (bool, error)
	SkillUnlocked(ctx context.Context, userID, skillID string) (bool, error)
	Skill(ctx context.Context, skillID string) (*models.Skill, error)

	// Lesson returns one lesson after the same access checks that gate
	// starting it: unlock order and premium entitlement.
	Lesson(ctx context.Context, userID, lessonID string) (*models.Lesson, error)

	// LessonItems resolves a lesson into the item sequence for a practice
	// session, enforcing unlock order, premium gating, and hearts.
	LessonItems(ctx context.Context, userID, lessonID string) ([]models.AssessmentItem, error)
}

type contentService struct {
	content       pgrepo.ContentRepository
	subscriptions pgrepo.SubscriptionRepository
	progress      ProgressService
}

func NewContentService(content pgrepo.ContentRepository, subscriptions pgrepo.SubscriptionRepository, progress ProgressService) ContentService {
	return &contentService{content: content, subscriptions: subscriptions, progress: progress}
}

func (s *contentService) LearningPath(ctx context.Context) ([]models.Unit, error) {
	const op = "ContentService.LearningPath"

	units, err := s.content.ListUnits(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load learning path", err)
	}
	return units, nil
}

// Entitled reports whether the user's subscription grants premium access.
// A missing subscription row means the free tier, not an error.
func (s *contentService) Entitled(ctx context.Context, userID string) (bool, error) {
	const op = "ContentService.Entitled"

	if userID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	sub, err := s.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return false, nil
		}
		return false, utils.E(utils.CodeInternal, op, "failed to load subscription", err)
	}
	return sub.Entitled(time.Now().UTC()), nil
}

func (s *contentService) SkillUnlocked(ctx context.Context, userID, skillID string) (bool, error) {
	const op = "ContentService.SkillUnlocked"

	if userID == "" || skillID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "user_id and skill_id are required", nil)
	}

	units, err := s.content.ListUnits(ctx)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to load learning path", err)
	}
	progress, err := s.progress.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return skillUnlocked(units, progress, skillID), nil
}

func (s *contentService) Skill(ctx context.Context, skillID string) (*models.Skill, error) {
	const op = "ContentService.Skill"

	if skillID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "skill_id is required", nil)
	}
	skill, err := s.content.GetSkill(ctx, skillID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "skill not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load skill", err)
	}
	return skill, nil
}

func (s *contentService) Lesson(ctx context.Context, userID, lessonID string) (*models.Lesson, error) {
	const op = "ContentService.Lesson"

	if userID == "" || lessonID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and lesson_id are required", nil)
	}

	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "lesson not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load lesson", err)
	}

	if lesson.Premium {
		entitled, err := s.Entitled(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !entitled {
			return nil, utils.E(utils.CodeForbidden, op, "premium lesson requires an active subscription", nil)
		}
	}

	unlocked, err := s.SkillUnlocked(ctx, userID, lesson.SkillID)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return nil, utils.E(utils.CodeForbidden, op, "complete the previous skill first", nil)
	}

	return lesson, nil
}

func (s *contentService) LessonItems(ctx context.Context, userID, lessonID string) ([]models.AssessmentItem, error) {
	const op = "ContentService.LessonItems"

	lesson, err := s.Lesson(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	progress, err := s.progress.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if progress.Hearts == 0 {
		return nil, utils.E(utils.CodeForbidden, op, "out of hearts", nil)
	}

	items := make([]models.AssessmentItem, 0, len(lesson.Exercises))
	for _, e := range lesson.Exercises {
		items = append(items, models.AssessmentItem{
			Text:        e.Word,
			ExpectedIPA: e.IPA,
			Type:        itemType(e.Type),
			Category:    lesson.Title,
			Difficulty:  e.Difficulty,
		})
	}
	if len(items) == 0 {
		return nil, utils.E(utils.CodeConflict, op, "lesson has no exercises", nil)
	}
	return items, nil
}

func itemType(exerciseType string) string {
	if exerciseType == "sentence" {
		return "sentence"
	}
	return "word"
}

// skillUnlocked applies the linear unlock rule over the ordered path: the
// first skill is always open; each later skill opens once every lesson of
// the preceding skill is completed.
func skillUnlocked(units []models.Unit, progress *models.UserProgress, skillID string) bool {
	var ordered []models.Skill
	for _, u := range units {
		ordered = append(ordered, u.Skills...)
	}

	for i, skill := range ordered {
		if skill.ID != skillID {
			continue
		}
		if i == 0 {
			return true
		}
		for _, lesson := range ordered[i-1].Lessons {
			if !progress.LessonCompleted(lesson.ID) {
				return false
			}
		}
		return true
	}
	return false
}
