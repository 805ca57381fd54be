package models

import "time"

// PhonemeScore is a single assessed phoneme. Phoneme holds the IPA symbol
// after mapping from the vendor's SAPI alphabet.
type PhonemeScore struct {
	Phoneme   string `bson:"phoneme" json:"phoneme"`
	Accuracy  int    `bson:"accuracy" json:"accuracy"`
	ErrorType string `bson:"error_type,omitempty" json:"error_type,omitempty"`
}

type WordScore struct {
	Word      string         `bson:"word" json:"word"`
	Accuracy  int            `bson:"accuracy" json:"accuracy"`
	ErrorType string         `bson:"error_type,omitempty" json:"error_type,omitempty"`
	Phonemes  []PhonemeScore `bson:"phonemes,omitempty" json:"phonemes,omitempty"`
}

// ScoreResult is the normalized outcome of one pronunciation attempt.
// Immutable after construction.
//
// ActualIPA is nil whenever the vendor produced no phoneme data. It is never
// reconstructed from the reference text: a synthesized transcription would
// claim knowledge of the speaker's actual phonemes that nobody has.
type ScoreResult struct {
	ItemText   string `bson:"item_text" json:"item_text"`
	Category   string `bson:"category,omitempty" json:"category,omitempty"`
	Difficulty string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`

	// Sub-scores, integers in [0,100].
	PronunciationScore int `bson:"pronunciation_score" json:"pronunciation_score"`
	AccuracyScore      int `bson:"accuracy_score" json:"accuracy_score"`
	FluencyScore       int `bson:"fluency_score" json:"fluency_score"`
	CompletenessScore  int `bson:"completeness_score" json:"completeness_score"`

	Feedback         string `bson:"feedback" json:"feedback"`
	SpecificFeedback string `bson:"specific_feedback" json:"specific_feedback"`

	ActualIPA      *string `bson:"actual_ipa" json:"ipa_transcription"`
	ExpectedIPA    string  `bson:"expected_ipa" json:"expected_ipa"`
	RecognizedText string  `bson:"recognized_text" json:"recognized_text"`

	Words []WordScore `bson:"words,omitempty" json:"words,omitempty"`

	// Degraded marks fallback results (vendor failure, parse failure). The
	// user-facing feedback stays neutral; FailureKind carries the true cause
	// for logs and persistence.
	Degraded    bool   `bson:"degraded" json:"-"`
	FailureKind string `bson:"failure_kind,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// FeedbackSummary is the Feedback Summarizer output for a completed session.
type FeedbackSummary struct {
	Summary       string        `bson:"summary" json:"summary"`
	Strengths     []string      `bson:"strengths" json:"strengths"`
	Improvements  []Improvement `bson:"improvements" json:"improvements"`
	Encouragement string        `bson:"encouragement" json:"encouragement"`
}

type Improvement struct {
	Sound    string `bson:"sound" json:"sound"`
	Issue    string `bson:"issue" json:"issue"`
	Practice string `bson:"practice" json:"practice"`
}
