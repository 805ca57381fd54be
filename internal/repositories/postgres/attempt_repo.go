package postgres

import (
	"context"
	"errors"

	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/utils"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Insert(ctx context.Context, a *models.Attempt) error
	ListBySession(ctx context.Context, userID, sessionID string, limit int) ([]models.Attempt, error)
	LatestN(ctx context.Context, userID string, n int) ([]models.Attempt, error)

	InsertSummary(ctx context.Context, s *models.SessionSummary) error
	ListSummaries(ctx context.Context, userID string, limit int) ([]models.SessionSummary, error)
}

type attemptRepo struct {
	db *gorm.DB
}

func NewAttemptRepo(db *gorm.DB) AttemptRepository {
	return &attemptRepo{db: db}
}

func (r *attemptRepo) Insert(ctx context.Context, a *models.Attempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *attemptRepo) ListBySession(ctx context.Context, userID, sessionID string, limit int) ([]models.Attempt, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []models.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *attemptRepo) LatestN(ctx context.Context, userID string, n int) ([]models.Attempt, error) {
	if n <= 0 {
		n = 20
	}
	var rows []models.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func (r *attemptRepo) InsertSummary(ctx context.Context, s *models.SessionSummary) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *attemptRepo) ListSummaries(ctx context.Context, userID string, limit int) ([]models.SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.SessionSummary
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return rows, err
}
