package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/providers/llm"
)

// Summarizer turns a completed session's results into one FeedbackSummary.
// It issues at most one model call per session; any failure falls back to
// the static summary so session completion never blocks on the model.
type Summarizer struct {
	provider llm.Provider
}

func NewSummarizer(provider llm.Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

// Summarize builds the coach feedback for the given results. A nil provider
// (not configured) goes straight to the static fallback.
func (s *Summarizer) Summarize(ctx context.Context, results []models.ScoreResult) *models.FeedbackSummary {
	if s == nil || s.provider == nil {
		return StaticSummary(results)
	}

	raw, err := s.provider.Generate(ctx, buildPrompt(results))
	if err != nil {
		return StaticSummary(results)
	}

	summary, err := parseSummary(raw)
	if err != nil {
		return StaticSummary(results)
	}
	return summary
}

func buildPrompt(results []models.ScoreResult) string {
	var sb strings.Builder
	sb.WriteString("You are an expert pronunciation coach analyzing a student's English pronunciation assessment. ")
	sb.WriteString("The student read complete sentences aloud, providing rich data on their pronunciation patterns, fluency, and rhythm. ")
	sb.WriteString("Provide personalized, specific feedback.\n\nAssessment Results (Full Sentences):\n")

	for i, r := range results {
		actual := "Not detected"
		if r.ActualIPA != nil {
			actual = *r.ActualIPA
		}
		recognized := r.RecognizedText
		if recognized == "" {
			recognized = "N/A"
		}
		expected := r.ExpectedIPA
		if expected == "" {
			expected = "N/A"
		}
		fmt.Fprintf(&sb, "\n%d. %q (%s - %s)\n   - Score: %d%%\n   - Expected IPA: %s\n   - Actual IPA: %s\n   - What they said: %q\n",
			i+1, r.ItemText, r.Category, r.Difficulty, r.PronunciationScore, expected, actual, recognized)
	}

	sb.WriteString("\nCategory Performance:\n")
	for _, ca := range categoryAverages(results) {
		fmt.Fprintf(&sb, "- %s: %.0f%%\n", ca.category, ca.average)
	}

	sb.WriteString(`
Provide feedback in this exact JSON format:
{
  "summary": "Brief 2-3 sentence overall assessment",
  "strengths": ["strength 1", "strength 2"],
  "improvements": [
    {
      "sound": "specific phoneme or sound pattern",
      "issue": "what they're doing wrong",
      "practice": "specific exercise or word to practice"
    }
  ],
  "encouragement": "motivational closing message"
}

Focus on:
1. Specific phoneme errors (θ/ð becoming t/d, ɹ/l confusion, v/w mixing)
2. Patterns across sentences (e.g., "drops 'th' at word boundaries", "struggles with consonant clusters")
3. Fluency issues (rhythm, linking, word stress) visible in sentence-level speech
4. Comparison between expected and recognized text to identify systematic errors
5. Actionable practice: specific sentences or exercises to improve

Give specific examples from their actual sentences, not generic advice.`)

	return sb.String()
}

// parseSummary extracts the first balanced-looking JSON object from the
// completion. Models often wrap JSON in prose or code fences.
func parseSummary(raw string) (*models.FeedbackSummary, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("assessment: no JSON object in completion")
	}

	var summary models.FeedbackSummary
	if err := json.Unmarshal([]byte(raw[start:end+1]), &summary); err != nil {
		return nil, fmt.Errorf("assessment: decode summary: %w", err)
	}
	if summary.Summary == "" {
		return nil, fmt.Errorf("assessment: completion missing summary text")
	}
	return &summary, nil
}

// StaticSummary is the deterministic fallback: weakest categories (average
// below 70) become the improvement list.
func StaticSummary(results []models.ScoreResult) *models.FeedbackSummary {
	var improvements []models.Improvement
	for _, ca := range categoryAverages(results) {
		if ca.average >= 70 {
			continue
		}
		improvements = append(improvements, models.Improvement{
			Sound:    ca.category,
			Issue:    "Lower scores in this category",
			Practice: "Review and practice " + strings.ToLower(ca.category) + " sounds",
		})
		if len(improvements) == 3 {
			break
		}
	}

	return &models.FeedbackSummary{
		Summary: "Assessment complete! Review your scores above.",
		Strengths: []string{
			fmt.Sprintf("You completed all %d items", len(results)),
			"Shows commitment to improving",
		},
		Improvements:  improvements,
		Encouragement: "Keep practicing! Consistent practice leads to improvement.",
	}
}

type categoryAverage struct {
	category string
	average  float64
	count    int
}

// categoryAverages groups scores by item category, ordered worst first.
func categoryAverages(results []models.ScoreResult) []categoryAverage {
	sums := map[string]int{}
	counts := map[string]int{}
	for _, r := range results {
		cat := r.Category
		if cat == "" {
			cat = "General"
		}
		sums[cat] += r.PronunciationScore
		counts[cat]++
	}

	out := make([]categoryAverage, 0, len(sums))
	for cat, sum := range sums {
		out = append(out, categoryAverage{
			category: cat,
			average:  float64(sum) / float64(counts[cat]),
			count:    counts[cat],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].average != out[j].average {
			return out[i].average < out[j].average
		}
		return out[i].category < out[j].category
	})
	return out
}
