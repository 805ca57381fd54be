package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.AssessmentSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.AssessmentSession, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]models.AssessmentSession, error)

	SetState(ctx context.Context, sessionID, state string) error
	SetStatus(ctx context.Context, sessionID, status string) error

	// AppendResult records one scored item and moves the cursor in a single
	// update, so a crash between score and advance cannot double-count.
	AppendResult(ctx context.Context, sessionID string, r models.ScoreResult, cursor int, state string, average float64) error
	AdvanceCursor(ctx context.Context, sessionID string, cursor int, state string) error

	Complete(ctx context.Context, sessionID string, average float64, summary *models.FeedbackSummary, completedAt time.Time) error
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.AssessmentSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.AssessmentSession, error) {
	var s models.AssessmentSession
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) ListRecent(ctx context.Context, userID string, limit int) ([]models.AssessmentSession, error) {
	if limit <= 0 {
		limit = 10
	}

	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sessions []models.AssessmentSession
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) SetState(ctx context.Context, sessionID, state string) error {
	return r.updateOne(ctx, sessionID, bson.M{"$set": bson.M{"state": state}})
}

func (r *sessionRepo) SetStatus(ctx context.Context, sessionID, status string) error {
	return r.updateOne(ctx, sessionID, bson.M{"$set": bson.M{"status": status}})
}

func (r *sessionRepo) AppendResult(ctx context.Context, sessionID string, res models.ScoreResult, cursor int, state string, average float64) error {
	return r.updateOne(ctx, sessionID, bson.M{
		"$push": bson.M{"results": res},
		"$set": bson.M{
			"cursor":        cursor,
			"state":         state,
			"average_score": average,
		},
	})
}

func (r *sessionRepo) AdvanceCursor(ctx context.Context, sessionID string, cursor int, state string) error {
	return r.updateOne(ctx, sessionID, bson.M{
		"$set": bson.M{
			"cursor": cursor,
			"state":  state,
		},
	})
}

func (r *sessionRepo) Complete(ctx context.Context, sessionID string, average float64, summary *models.FeedbackSummary, completedAt time.Time) error {
	return r.updateOne(ctx, sessionID, bson.M{
		"$set": bson.M{
			"status":        models.StatusComplete,
			"state":         models.StateIdle,
			"average_score": average,
			"summary":       summary,
			"completed_at":  completedAt.UTC(),
		},
	})
}

func (r *sessionRepo) updateOne(ctx context.Context, sessionID string, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"session_id": sessionID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
