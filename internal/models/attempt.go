package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Attempt is the durable record of one ScoreResult. Persistence is
// best-effort: a failed insert never blocks the user from seeing the result.
type Attempt struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID string `gorm:"column:session_id;type:uuid;index" json:"session_id"`

	ItemText   string `gorm:"column:item_text;type:text" json:"item_text"`
	Category   string `gorm:"column:category;type:text" json:"category"`
	Difficulty string `gorm:"column:difficulty;type:text" json:"difficulty"`

	PronunciationScore int `gorm:"column:pronunciation_score" json:"pronunciation_score"`
	AccuracyScore      int `gorm:"column:accuracy_score" json:"accuracy_score"`
	FluencyScore       int `gorm:"column:fluency_score" json:"fluency_score"`
	CompletenessScore  int `gorm:"column:completeness_score" json:"completeness_score"`

	ActualIPA      *string `gorm:"column:actual_ipa;type:text" json:"actual_ipa"`
	ExpectedIPA    string  `gorm:"column:expected_ipa;type:text" json:"expected_ipa"`
	RecognizedText string  `gorm:"column:recognized_text;type:text" json:"recognized_text"`

	// Word/phoneme detail as returned by the normalizer.
	Words datatypes.JSON `gorm:"column:words;type:jsonb" json:"words"`

	// Object key of the archived raw recording, empty when archiving was
	// skipped or failed.
	AudioObjectPath string `gorm:"column:audio_object_path;type:text" json:"audio_object_path"`

	Degraded    bool   `gorm:"column:degraded" json:"degraded"`
	FailureKind string `gorm:"column:failure_kind;type:text" json:"failure_kind"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Attempt) TableName() string { return "attempts" }

// SessionSummary is the durable record of a finalized AssessmentSession.
type SessionSummary struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;uniqueIndex" json:"session_id"`
	UserID    string `gorm:"column:user_id;type:uuid;index" json:"user_id"`

	AverageScore float64 `gorm:"column:average_score" json:"average_score"`
	ItemCount    int     `gorm:"column:item_count" json:"item_count"`

	Summary       string         `gorm:"column:summary;type:text" json:"summary"`
	Strengths     pq.StringArray `gorm:"column:strengths;type:text[]" json:"strengths"`
	Improvements  datatypes.JSON `gorm:"column:improvements;type:jsonb" json:"improvements"`
	Encouragement string         `gorm:"column:encouragement;type:text" json:"encouragement"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (SessionSummary) TableName() string { return "session_summaries" }
