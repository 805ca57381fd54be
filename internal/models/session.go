package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session item-level states. The pipeline runs one item at a time; the
// state gates which operation is legal next.
const (
	StateIdle       = "idle"
	StateRecording  = "recording"
	StateProcessing = "processing"
	StateReviewing  = "reviewing"
)

// Session lifecycle statuses.
const (
	StatusActive      = "active"
	StatusSummarizing = "summarizing"
	StatusComplete    = "complete"
	StatusAbandoned   = "abandoned"
)

// AssessmentItem is a piece of reference content the user is asked to speak.
type AssessmentItem struct {
	Text        string `bson:"text" json:"text"`
	ExpectedIPA string `bson:"expected_ipa" json:"expected_ipa"`
	Type        string `bson:"type" json:"type"` // word|phrase|sentence
	Category    string `bson:"category,omitempty" json:"category,omitempty"`
	Difficulty  string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Focus       string `bson:"focus,omitempty" json:"focus,omitempty"`
}

// AssessmentSession is the aggregate for one run through an item sequence.
// Results are appended strictly in attempt order; only the session service
// mutates it.
type AssessmentSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID    string             `bson:"user_id" json:"user_id"`       // uuid from Supabase Auth

	Status string `bson:"status" json:"status"`
	State  string `bson:"state" json:"state"`

	Items  []AssessmentItem `bson:"items" json:"items"`
	Cursor int              `bson:"cursor" json:"cursor"`

	Results      []ScoreResult `bson:"results" json:"results"`
	AverageScore float64       `bson:"average_score" json:"average_score"`

	Summary *FeedbackSummary `bson:"summary,omitempty" json:"summary,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// CurrentItem returns the item under the cursor, or nil when the cursor has
// passed the last item.
func (s *AssessmentSession) CurrentItem() *AssessmentItem {
	if s.Cursor < 0 || s.Cursor >= len(s.Items) {
		return nil
	}
	return &s.Items[s.Cursor]
}

// Average is the arithmetic mean of the pronunciation scores of all
// completed results. Empty sessions average to 0.
func Average(results []ScoreResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0
	for i := range results {
		sum += results[i].PronunciationScore
	}
	return float64(sum) / float64(len(results))
}
