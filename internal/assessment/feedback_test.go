package assessment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/speaksharp/speaksharp/internal/models"
)

type fakeLLM struct {
	completion string
	err        error
	prompts    []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func (f *fakeLLM) Close() error { return nil }

func sampleResults() []models.ScoreResult {
	ipa := "t ɪ ŋ k "
	return []models.ScoreResult{
		{ItemText: "I think the weather is getting better", Category: "TH Sounds", Difficulty: "easy", PronunciationScore: 55, ActualIPA: &ipa, ExpectedIPA: "θ ɪ ŋ k", RecognizedText: "I tink the weather is getting better"},
		{ItemText: "The red car is really large", Category: "R/L Sounds", Difficulty: "easy", PronunciationScore: 85},
	}
}

func TestSummarizeParsesModelJSON(t *testing.T) {
	provider := &fakeLLM{completion: "Here is your feedback:\n```json\n" + `{
		"summary": "Solid fluency with a recurring th substitution.",
		"strengths": ["Clear vowels", "Good pacing"],
		"improvements": [{"sound": "θ", "issue": "replaced with t", "practice": "think, three, thirty"}],
		"encouragement": "Keep going!"
	}` + "\n```"}

	s := NewSummarizer(provider)
	got := s.Summarize(context.Background(), sampleResults())

	if got.Summary != "Solid fluency with a recurring th substitution." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if len(got.Improvements) != 1 || got.Improvements[0].Sound != "θ" {
		t.Errorf("Improvements = %+v", got.Improvements)
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(provider.prompts))
	}

	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "I think the weather is getting better") {
		t.Error("prompt missing item text")
	}
	if !strings.Contains(prompt, "TH Sounds") {
		t.Error("prompt missing category performance")
	}
	if !strings.Contains(prompt, "Not detected") {
		t.Error("prompt should mark missing IPA as Not detected")
	}
}

func TestSummarizeFallsBackOnModelError(t *testing.T) {
	s := NewSummarizer(&fakeLLM{err: errors.New("quota exceeded")})
	got := s.Summarize(context.Background(), sampleResults())

	if got == nil || got.Summary == "" {
		t.Fatal("fallback summary missing")
	}
	if got.Encouragement == "" {
		t.Error("fallback encouragement missing")
	}
}

func TestSummarizeFallsBackOnGarbage(t *testing.T) {
	s := NewSummarizer(&fakeLLM{completion: "I cannot help with that."})
	got := s.Summarize(context.Background(), sampleResults())
	if got.Summary != "Assessment complete! Review your scores above." {
		t.Errorf("Summary = %q, want static fallback", got.Summary)
	}
}

func TestStaticSummaryNamesWeakCategories(t *testing.T) {
	got := StaticSummary(sampleResults())

	if len(got.Improvements) != 1 {
		t.Fatalf("Improvements = %+v, want exactly the category under 70", got.Improvements)
	}
	if got.Improvements[0].Sound != "TH Sounds" {
		t.Errorf("Sound = %q, want TH Sounds", got.Improvements[0].Sound)
	}
	if !strings.Contains(got.Strengths[0], "2 items") {
		t.Errorf("Strengths[0] = %q, want item count", got.Strengths[0])
	}
}

func TestNilProviderUsesStaticSummary(t *testing.T) {
	s := NewSummarizer(nil)
	got := s.Summarize(context.Background(), sampleResults())
	if got.Summary != "Assessment complete! Review your scores above." {
		t.Errorf("Summary = %q, want static fallback", got.Summary)
	}
}
