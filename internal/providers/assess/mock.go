package assess

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strings"
)

// Mock stands in when no Azure key is configured. Scores are derived
// deterministically from the reference text so repeated runs are stable.
// No phoneme data is fabricated: mock results carry no phonemes, so the
// normalizer reports a nil IPA transcription, same as a real low-detail
// vendor response.
type Mock struct{}

func (Mock) Configured() bool { return false }
func (Mock) Close() error     { return nil }

func (Mock) Assess(_ context.Context, _ []byte, _, referenceText string) (*RawResult, error) {
	base := 65 + float64(hashOf(referenceText)%21) // 65..85

	type wordEntry struct {
		Word                    string         `json:"Word"`
		PronunciationAssessment map[string]any `json:"PronunciationAssessment"`
	}
	var words []wordEntry
	for i, w := range strings.Fields(referenceText) {
		score := base + float64((i*7)%11) - 5
		if score > 100 {
			score = 100
		}
		if score < 0 {
			score = 0
		}
		words = append(words, wordEntry{
			Word: w,
			PronunciationAssessment: map[string]any{
				"AccuracyScore": score,
				"ErrorType":     "None",
			},
		})
	}

	body, err := json.Marshal(map[string]any{
		"RecognitionStatus": "Success",
		"DisplayText":       referenceText,
		"NBest": []map[string]any{{
			"Display": referenceText,
			"PronunciationAssessment": map[string]any{
				"PronScore":         base,
				"AccuracyScore":     base,
				"FluencyScore":      base + 2,
				"CompletenessScore": 100,
			},
			"Words": words,
		}},
	})
	if err != nil {
		return nil, err
	}
	return &RawResult{Body: body}, nil
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
