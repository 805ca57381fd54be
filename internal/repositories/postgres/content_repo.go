package postgres

import (
	"context"
	"errors"

	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/utils"
	"gorm.io/gorm"
)

type ContentRepository interface {
	// ListUnits returns the full learning path, ordered by position at
	// every level.
	ListUnits(ctx context.Context) ([]models.Unit, error)
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	GetSkill(ctx context.Context, id string) (*models.Skill, error)
}

type contentRepo struct {
	db *gorm.DB
}

func NewContentRepo(db *gorm.DB) ContentRepository {
	return &contentRepo{db: db}
}

func (r *contentRepo) ListUnits(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	err := r.db.WithContext(ctx).
		Preload("Skills", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Skills.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Skills.Lessons.Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("position ASC").
		Find(&units).Error
	return units, err
}

func (r *contentRepo) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	var l models.Lesson
	err := r.db.WithContext(ctx).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &l, err
}

func (r *contentRepo) GetSkill(ctx context.Context, id string) (*models.Skill, error) {
	var s models.Skill
	err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}
