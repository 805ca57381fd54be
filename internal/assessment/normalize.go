package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/providers/assess"
)

// FallbackScores are the documented sub-scores substituted when the vendor
// cannot be consulted. They keep the UI functional; the feedback string
// makes the substitution visible.
type FallbackScores struct {
	Pronunciation int
	Accuracy      int
	Fluency       int
	Completeness  int
}

// DefaultFallback is applied uniformly on vendor failure. (Earlier
// revisions of the product shipped several inconsistent constant sets; this
// one is canonical now.)
var DefaultFallback = FallbackScores{Pronunciation: 75, Accuracy: 75, Fluency: 70, Completeness: 100}

// noSpeechScores are used when the vendor answered but recognized no
// speech. Deliberately low: the user needs to know the take was unusable.
var noSpeechScores = FallbackScores{Pronunciation: 30, Accuracy: 30, Fluency: 30, Completeness: 50}

// Failure kinds recorded on degraded results for logs and persistence.
const (
	FailureVendorUnreachable = "vendor_unreachable"
	FailureVendorRejected    = "vendor_rejected"
	FailureMalformedResponse = "malformed_response"
	FailureNoSpeech          = "no_speech"
)

// vendorWord and vendorPhoneme cover both naming conventions the vendor
// uses: scores nested under PronunciationAssessment (REST detailed format)
// or flat on the entry itself (older proxy format).
type vendorPhoneme struct {
	Phoneme                 string `json:"Phoneme"`
	PronunciationAssessment *struct {
		AccuracyScore *float64 `json:"AccuracyScore"`
	} `json:"PronunciationAssessment"`
	AccuracyScore *float64 `json:"AccuracyScore"`
	Score         *float64 `json:"Score"`
}

func (p *vendorPhoneme) accuracy() float64 {
	if p.PronunciationAssessment != nil && p.PronunciationAssessment.AccuracyScore != nil {
		return *p.PronunciationAssessment.AccuracyScore
	}
	if p.AccuracyScore != nil {
		return *p.AccuracyScore
	}
	if p.Score != nil {
		return *p.Score
	}
	return 0
}

type vendorWord struct {
	Word                    string `json:"Word"`
	PronunciationAssessment *struct {
		AccuracyScore *float64 `json:"AccuracyScore"`
		ErrorType     string   `json:"ErrorType"`
	} `json:"PronunciationAssessment"`
	AccuracyScore *float64        `json:"AccuracyScore"`
	ErrorType     string          `json:"ErrorType"`
	Phonemes      []vendorPhoneme `json:"Phonemes"`
}

func (w *vendorWord) accuracy() float64 {
	if w.PronunciationAssessment != nil && w.PronunciationAssessment.AccuracyScore != nil {
		return *w.PronunciationAssessment.AccuracyScore
	}
	if w.AccuracyScore != nil {
		return *w.AccuracyScore
	}
	return 0
}

func (w *vendorWord) errorType() string {
	if w.PronunciationAssessment != nil && w.PronunciationAssessment.ErrorType != "" {
		return w.PronunciationAssessment.ErrorType
	}
	return w.ErrorType
}

type vendorNBest struct {
	Display                 string `json:"Display"`
	PronunciationAssessment *struct {
		PronScore         *float64 `json:"PronScore"`
		AccuracyScore     *float64 `json:"AccuracyScore"`
		FluencyScore      *float64 `json:"FluencyScore"`
		CompletenessScore *float64 `json:"CompletenessScore"`
	} `json:"PronunciationAssessment"`
	Words []vendorWord `json:"Words"`
}

// vendorResponse tolerates every response shape seen in the wild: the REST
// detailed format (NBest) and the flat format with top-level scores.
type vendorResponse struct {
	RecognitionStatus string        `json:"RecognitionStatus"`
	DisplayText       string        `json:"DisplayText"`
	RecognizedText    string        `json:"RecognizedText"`
	NBest             []vendorNBest `json:"NBest"`

	PronunciationScore *float64     `json:"PronunciationScore"`
	OverallScore       *float64     `json:"OverallScore"`
	AccuracyScore      *float64     `json:"AccuracyScore"`
	FluencyScore       *float64     `json:"FluencyScore"`
	CompletenessScore  *float64     `json:"CompletenessScore"`
	Words              []vendorWord `json:"Words"`
}

// Normalizer maps raw vendor responses (or failures) onto ScoreResults.
type Normalizer struct {
	Fallback FallbackScores
}

func NewNormalizer() *Normalizer {
	return &Normalizer{Fallback: DefaultFallback}
}

// Normalize converts one raw vendor response into exactly one ScoreResult.
// Malformed JSON degrades to the failure path instead of erroring out.
func (n *Normalizer) Normalize(body []byte, item models.AssessmentItem) models.ScoreResult {
	var resp vendorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return n.Failure(fmt.Errorf("malformed vendor response: %w", err), item)
	}

	if resp.RecognitionStatus != "" && resp.RecognitionStatus != "Success" {
		return n.noSpeech(item, resp.RecognitionStatus)
	}

	var best *vendorNBest
	if len(resp.NBest) > 0 {
		best = &resp.NBest[0]
	}

	// Extraction order per sub-score: nested assessment object, then flat
	// top-level field, then the documented fallback.
	overall := pick(
		nestedScore(best, func(s *vendorNBest) *float64 {
			if s.PronunciationAssessment == nil {
				return nil
			}
			return s.PronunciationAssessment.PronScore
		}),
		resp.PronunciationScore, resp.OverallScore,
		float64(n.Fallback.Pronunciation),
	)
	accuracy := pick(
		nestedScore(best, func(s *vendorNBest) *float64 {
			if s.PronunciationAssessment == nil {
				return nil
			}
			return s.PronunciationAssessment.AccuracyScore
		}),
		resp.AccuracyScore, nil,
		float64(n.Fallback.Accuracy),
	)
	fluency := pick(
		nestedScore(best, func(s *vendorNBest) *float64 {
			if s.PronunciationAssessment == nil {
				return nil
			}
			return s.PronunciationAssessment.FluencyScore
		}),
		resp.FluencyScore, nil,
		float64(n.Fallback.Fluency),
	)
	completeness := pick(
		nestedScore(best, func(s *vendorNBest) *float64 {
			if s.PronunciationAssessment == nil {
				return nil
			}
			return s.PronunciationAssessment.CompletenessScore
		}),
		resp.CompletenessScore, nil,
		float64(n.Fallback.Completeness),
	)

	words := resp.Words
	if best != nil && len(best.Words) > 0 {
		words = best.Words
	}

	actualIPA, wordScores := extractPhonemes(words)

	recognized := resp.DisplayText
	if recognized == "" {
		recognized = resp.RecognizedText
	}
	if recognized == "" && best != nil {
		recognized = best.Display
	}

	res := models.ScoreResult{
		ItemText:           item.Text,
		Category:           item.Category,
		Difficulty:         item.Difficulty,
		PronunciationScore: clampScore(overall),
		AccuracyScore:      clampScore(accuracy),
		FluencyScore:       clampScore(fluency),
		CompletenessScore:  clampScore(completeness),
		ActualIPA:          actualIPA,
		ExpectedIPA:        item.ExpectedIPA,
		RecognizedText:     recognized,
		Words:              wordScores,
		CreatedAt:          time.Now().UTC(),
	}
	res.Feedback = tieredFeedback(res.PronunciationScore)
	res.SpecificFeedback = specificFeedback(wordScores)
	return res
}

// Failure builds the degraded ScoreResult for vendor failures. ActualIPA is
// always nil here: reconstructing it from the reference text would fabricate
// phonetic data about speech nobody analyzed.
func (n *Normalizer) Failure(err error, item models.AssessmentItem) models.ScoreResult {
	kind := FailureMalformedResponse
	var rejected *assess.RejectedError
	switch {
	case errors.Is(err, assess.ErrUnreachable):
		kind = FailureVendorUnreachable
	case errors.As(err, &rejected):
		kind = FailureVendorRejected
	}

	return models.ScoreResult{
		ItemText:           item.Text,
		Category:           item.Category,
		Difficulty:         item.Difficulty,
		PronunciationScore: n.Fallback.Pronunciation,
		AccuracyScore:      n.Fallback.Accuracy,
		FluencyScore:       n.Fallback.Fluency,
		CompletenessScore:  n.Fallback.Completeness,
		Feedback:           "Analysis complete",
		SpecificFeedback:   fmt.Sprintf("Error: %v", err),
		ActualIPA:          nil,
		ExpectedIPA:        item.ExpectedIPA,
		RecognizedText:     "",
		Degraded:           true,
		FailureKind:        kind,
		CreatedAt:          time.Now().UTC(),
	}
}

// noSpeech covers a successful vendor call that recognized nothing usable.
func (n *Normalizer) noSpeech(item models.AssessmentItem, status string) models.ScoreResult {
	return models.ScoreResult{
		ItemText:           item.Text,
		Category:           item.Category,
		Difficulty:         item.Difficulty,
		PronunciationScore: noSpeechScores.Pronunciation,
		AccuracyScore:      noSpeechScores.Accuracy,
		FluencyScore:       noSpeechScores.Fluency,
		CompletenessScore:  noSpeechScores.Completeness,
		Feedback:           "Could not detect clear pronunciation",
		SpecificFeedback:   "Speak louder and more clearly. Make sure your microphone is working.",
		ActualIPA:          nil,
		ExpectedIPA:        item.ExpectedIPA,
		RecognizedText:     "",
		Degraded:           true,
		FailureKind:        FailureNoSpeech + ":" + status,
		CreatedAt:          time.Now().UTC(),
	}
}

// extractPhonemes builds the IPA transcription and the per-word detail.
// Returns a nil IPA pointer when the vendor supplied no phoneme data.
func extractPhonemes(words []vendorWord) (*string, []models.WordScore) {
	if len(words) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	phonemeCount := 0
	out := make([]models.WordScore, 0, len(words))

	for i := range words {
		w := &words[i]
		ws := models.WordScore{
			Word:      w.Word,
			Accuracy:  clampScore(w.accuracy()),
			ErrorType: w.errorType(),
		}
		for j := range w.Phonemes {
			ph := &w.Phonemes[j]
			sym := ToIPA(ph.Phoneme)
			acc := ph.accuracy()
			sb.WriteString(sym)
			sb.WriteString(" ")
			phonemeCount++
			ws.Phonemes = append(ws.Phonemes, models.PhonemeScore{
				Phoneme:   sym,
				Accuracy:  clampScore(acc),
				ErrorType: classifyPhonemeError(acc),
			})
		}
		out = append(out, ws)
	}

	if phonemeCount == 0 {
		return nil, out
	}
	ipa := sb.String()
	return &ipa, out
}

// classifyPhonemeError labels a phoneme by its accuracy score.
func classifyPhonemeError(score float64) string {
	switch {
	case score >= 80:
		return ""
	case score >= 60:
		return "Mispronunciation"
	default:
		return "Omission"
	}
}

// tieredFeedback keys the headline message on the rounded overall score.
func tieredFeedback(overall int) string {
	switch {
	case overall >= 80:
		return "Excellent pronunciation!"
	case overall >= 60:
		return "Good job! A few sounds need polish."
	default:
		return "Keep practicing! Listen closely and try again."
	}
}

// specificFeedback names up to the three lowest-scoring phonemes, or falls
// back to generic encouragement when no phoneme detail is available.
func specificFeedback(words []models.WordScore) string {
	type weak struct {
		sym string
		acc int
	}
	var weakest []weak
	for _, w := range words {
		for _, p := range w.Phonemes {
			if p.Accuracy < 80 {
				weakest = append(weakest, weak{sym: p.Phoneme, acc: p.Accuracy})
			}
		}
	}
	if len(weakest) == 0 {
		return "Great clarity. Keep up the consistent practice!"
	}

	sort.Slice(weakest, func(i, j int) bool { return weakest[i].acc < weakest[j].acc })
	if len(weakest) > 3 {
		weakest = weakest[:3]
	}
	syms := make([]string, len(weakest))
	for i, w := range weakest {
		syms[i] = w.sym
	}
	return "Focus on these sounds: " + strings.Join(syms, ", ")
}

// pick applies the extraction-order rule for one sub-score.
func pick(nested, flat, alt *float64, fallback float64) float64 {
	if nested != nil {
		return *nested
	}
	if flat != nil {
		return *flat
	}
	if alt != nil {
		return *alt
	}
	return fallback
}

func nestedScore(best *vendorNBest, get func(*vendorNBest) *float64) *float64 {
	if best == nil {
		return nil
	}
	return get(best)
}

// clampScore rounds to the nearest integer and clamps into [0,100].
func clampScore(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
