package models

const (
	MaxHearts  = 5
	XPPerLevel = 500
)

// UserProgress is the gamification state (XP, hearts, daily streak). It is
// stored through an injected key-value port, not a hidden global.
type UserProgress struct {
	XP               int      `json:"xp"`
	Hearts           int      `json:"hearts"`
	Streak           int      `json:"streak"`
	LastPracticeDate string   `json:"last_practice_date"` // YYYY-MM-DD
	CompletedLessons []string `json:"completed_lessons"`
	CompletedSkills  []string `json:"completed_skills"`
	Level            int      `json:"level"`
}

// NewUserProgress returns the starting state for a fresh user.
func NewUserProgress() *UserProgress {
	return &UserProgress{
		Hearts: MaxHearts,
		Level:  1,
	}
}

func (p *UserProgress) LessonCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}
