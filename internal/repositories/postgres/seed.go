package postgres

import (
	"context"

	"github.com/speaksharp/speaksharp/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedLearningPath inserts the built-in learning path. Existing rows are
// left alone so locally edited content survives restarts.
func SeedLearningPath(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{DoNothing: true})
		for _, u := range learningPath() {
			skills := u.Skills
			u.Skills = nil
			if err := insert.Create(&u).Error; err != nil {
				return err
			}
			for _, s := range skills {
				lessons := s.Lessons
				s.Lessons = nil
				if err := insert.Create(&s).Error; err != nil {
					return err
				}
				for _, l := range lessons {
					exercises := l.Exercises
					l.Exercises = nil
					if err := insert.Create(&l).Error; err != nil {
						return err
					}
					for _, e := range exercises {
						if err := insert.Create(&e).Error; err != nil {
							return err
						}
					}
				}
			}
		}
		return nil
	})
}

func ex(id, lessonID, typ, word, ipa, difficulty string, position int) models.Exercise {
	return models.Exercise{ID: id, LessonID: lessonID, Type: typ, Word: word, IPA: ipa, Difficulty: difficulty, Position: position}
}

// learningPath is the default content set. Units 3 and 4 are premium.
func learningPath() []models.Unit {
	return []models.Unit{
		{
			ID: "unit-1", Title: "TH Sounds", Description: "Master the voiced (ð) and voiceless (θ) TH sounds", Color: "bg-blue-500", Position: 1,
			Skills: []models.Skill{
				{
					ID: "skill-1-1", UnitID: "unit-1", Title: "Initial TH", Description: "TH at the beginning of words", Icon: "🎯", Position: 1, TotalXP: 150,
					Lessons: []models.Lesson{
						{
							ID: "lesson-1-1-1", SkillID: "skill-1-1", Title: "TH Basics", Description: "Learn θ sound at word start", Position: 1, XPReward: 50,
							Exercises: []models.Exercise{
								ex("ex-1", "lesson-1-1-1", "repeat", "think", "θ ɪ ŋ k", "easy", 1),
								ex("ex-2", "lesson-1-1-1", "repeat", "three", "θ ɹ i", "easy", 2),
								ex("ex-3", "lesson-1-1-1", "repeat", "thank", "θ æ ŋ k", "easy", 3),
								ex("ex-4", "lesson-1-1-1", "repeat", "thick", "θ ɪ k", "easy", 4),
								ex("ex-5", "lesson-1-1-1", "repeat", "thing", "θ ɪ ŋ", "easy", 5),
							},
						},
						{
							ID: "lesson-1-1-2", SkillID: "skill-1-1", Title: "TH in Action", Description: "Practice TH in sentences", Position: 2, XPReward: 50,
							Exercises: []models.Exercise{
								ex("ex-6", "lesson-1-1-2", "sentence", "I think this is good", "aɪ θɪŋk ðɪs ɪz ɡʊd", "medium", 1),
								ex("ex-7", "lesson-1-1-2", "repeat", "Thursday", "θ ɜː z d eɪ", "medium", 2),
								ex("ex-8", "lesson-1-1-2", "repeat", "theory", "θ ɪ ə ɹ i", "medium", 3),
								ex("ex-9", "lesson-1-1-2", "repeat", "thought", "θ ɔː t", "medium", 4),
								ex("ex-10", "lesson-1-1-2", "repeat", "through", "θ ɹ u", "hard", 5),
							},
						},
					},
				},
				{
					ID: "skill-1-2", UnitID: "unit-1", Title: "Medial TH", Description: "TH in the middle of words", Icon: "🎵", Position: 2, TotalXP: 150,
					Lessons: []models.Lesson{
						{
							ID: "lesson-1-2-1", SkillID: "skill-1-2", Title: "Middle TH", Description: "TH sound between syllables", Position: 1, XPReward: 50,
							Exercises: []models.Exercise{
								ex("ex-11", "lesson-1-2-1", "repeat", "brother", "b ɹ ʌ ð ə ɹ", "easy", 1),
								ex("ex-12", "lesson-1-2-1", "repeat", "mother", "m ʌ ð ə ɹ", "easy", 2),
								ex("ex-13", "lesson-1-2-1", "repeat", "father", "f ɑː ð ə ɹ", "easy", 3),
								ex("ex-14", "lesson-1-2-1", "repeat", "another", "ə n ʌ ð ə ɹ", "medium", 4),
								ex("ex-15", "lesson-1-2-1", "repeat", "weather", "w ɛ ð ə ɹ", "medium", 5),
							},
						},
					},
				},
			},
		},
		{
			ID: "unit-2", Title: "R/L Distinction", Description: "Differentiate between R and L sounds", Color: "bg-green-500", Position: 2,
			Skills: []models.Skill{
				{
					ID: "skill-2-1", UnitID: "unit-2", Title: "Initial R vs L", Description: "R and L at word start", Icon: "🔊", Position: 1, TotalXP: 150,
					Lessons: []models.Lesson{
						{
							ID: "lesson-2-1-1", SkillID: "skill-2-1", Title: "R vs L Basics", Description: "Distinguish R from L", Position: 1, XPReward: 50,
							Exercises: []models.Exercise{
								ex("ex-16", "lesson-2-1-1", "repeat", "right", "ɹ aɪ t", "easy", 1),
								ex("ex-17", "lesson-2-1-1", "repeat", "light", "l aɪ t", "easy", 2),
								ex("ex-18", "lesson-2-1-1", "repeat", "red", "ɹ ɛ d", "easy", 3),
								ex("ex-19", "lesson-2-1-1", "repeat", "read", "ɹ i d", "easy", 4),
								ex("ex-20", "lesson-2-1-1", "repeat", "lead", "l i d", "easy", 5),
								ex("ex-21", "lesson-2-1-1", "repeat", "lock", "l ɑː k", "easy", 6),
							},
						},
					},
				},
			},
		},
		{
			ID: "unit-3", Title: "V/W/B Sounds", Description: "Perfect your V, W, and B pronunciation", Color: "bg-purple-500", Position: 3,
			Skills: []models.Skill{
				{
					ID: "skill-3-1", UnitID: "unit-3", Title: "V vs W", Description: "Distinguish V from W sounds", Icon: "💪", Position: 1, TotalXP: 150,
					Lessons: []models.Lesson{
						{
							ID: "lesson-3-1-1", SkillID: "skill-3-1", Title: "V vs W Practice", Description: "Master the difference", Position: 1, XPReward: 50, Premium: true,
							Exercises: []models.Exercise{
								ex("ex-22", "lesson-3-1-1", "repeat", "very", "v ɛ ɹ i", "easy", 1),
								ex("ex-23", "lesson-3-1-1", "repeat", "west", "w ɛ s t", "easy", 2),
								ex("ex-24", "lesson-3-1-1", "repeat", "vest", "v ɛ s t", "easy", 3),
								ex("ex-25", "lesson-3-1-1", "repeat", "vine", "v aɪ n", "easy", 4),
								ex("ex-26", "lesson-3-1-1", "repeat", "vote", "v oʊ t", "medium", 5),
							},
						},
					},
				},
			},
		},
		{
			ID: "unit-4", Title: "Final Consonants", Description: "Practice ending sounds clearly", Color: "bg-red-500", Position: 4,
			Skills: []models.Skill{
				{
					ID: "skill-4-1", UnitID: "unit-4", Title: "Final Stops", Description: "Master p, t, k, b, d, g endings", Icon: "🎬", Position: 1, TotalXP: 150,
					Lessons: []models.Lesson{
						{
							ID: "lesson-4-1-1", SkillID: "skill-4-1", Title: "Stop Sounds", Description: "Clear final consonants", Position: 1, XPReward: 50, Premium: true,
							Exercises: []models.Exercise{
								ex("ex-27", "lesson-4-1-1", "repeat", "stop", "s t ɑː p", "easy", 1),
								ex("ex-28", "lesson-4-1-1", "repeat", "cat", "k æ t", "easy", 2),
								ex("ex-29", "lesson-4-1-1", "repeat", "back", "b æ k", "easy", 3),
								ex("ex-30", "lesson-4-1-1", "repeat", "bad", "b æ d", "easy", 4),
								ex("ex-31", "lesson-4-1-1", "repeat", "big", "b ɪ ɡ", "easy", 5),
							},
						},
					},
				},
			},
		},
	}
}
