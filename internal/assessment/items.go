package assessment

import "github.com/speaksharp/speaksharp/internal/models"

// DemoItems is the built-in practice set served to unauthenticated users.
// Expected IPA strings use space-separated symbols to line up with the
// transcription produced from vendor phoneme data.
func DemoItems() []models.AssessmentItem {
	return []models.AssessmentItem{
		{
			Text:        "I think the weather is getting better",
			ExpectedIPA: "aɪ θ ɪ ŋ k ð ə w ɛ ð ə ɹ ɪ z ɡ ɛ t ɪ ŋ b ɛ t ə ɹ",
			Type:        "sentence",
			Category:    "TH Sounds",
			Difficulty:  "easy",
			Focus:       "θ and ð sounds",
		},
		{
			Text:        "My brother and father are together",
			ExpectedIPA: "m aɪ b ɹ ʌ ð ə ɹ æ n d f ɑ ð ə ɹ ɑ ɹ t ə ɡ ɛ ð ə ɹ",
			Type:        "sentence",
			Category:    "TH Sounds",
			Difficulty:  "easy",
			Focus:       "voiced th (ð)",
		},
		{
			Text:        "The red car is really large",
			ExpectedIPA: "ð ə ɹ ɛ d k ɑ ɹ ɪ z ɹ i l i l ɑ ɹ dʒ",
			Type:        "sentence",
			Category:    "R/L Sounds",
			Difficulty:  "easy",
			Focus:       "R and L distinction",
		},
		{
			Text:        "I would like a glass of water",
			ExpectedIPA: "aɪ w ʊ d l aɪ k ə ɡ l æ s ə v w ɔ t ə ɹ",
			Type:        "sentence",
			Category:    "R/L Sounds",
			Difficulty:  "medium",
			Focus:       "L sounds and linking",
		},
		{
			Text:        "We have very good weather today",
			ExpectedIPA: "w i h æ v v ɛ ɹ i ɡ ʊ d w ɛ ð ə ɹ t ə d eɪ",
			Type:        "sentence",
			Category:    "V/W Sounds",
			Difficulty:  "easy",
			Focus:       "V and W distinction",
		},
		{
			Text:        "The ship will leave at three",
			ExpectedIPA: "ð ə ʃ ɪ p w ɪ l l i v æ t θ ɹ i",
			Type:        "sentence",
			Category:    "Vowel Sounds",
			Difficulty:  "medium",
			Focus:       "ship/sheep distinction",
		},
		{
			Text:        "She sells seashells by the seashore",
			ExpectedIPA: "ʃ i s ɛ l z s i ʃ ɛ l z b aɪ ð ə s i ʃ ɔ ɹ",
			Type:        "sentence",
			Category:    "Consonant Clusters",
			Difficulty:  "hard",
			Focus:       "S, SH, and clusters",
		},
		{
			Text:        "The strong student studied straight through",
			ExpectedIPA: "ð ə s t ɹ ɔ ŋ s t u d ə n t s t ʌ d i d s t ɹ eɪ t θ ɹ u",
			Type:        "sentence",
			Category:    "Consonant Clusters",
			Difficulty:  "hard",
			Focus:       "STR clusters",
		},
		{
			Text:        "Can you tell me where the library is",
			ExpectedIPA: "k æ n j u t ɛ l m i w ɛ ɹ ð ə l aɪ b ɹ ɛ ɹ i ɪ z",
			Type:        "sentence",
			Category:    "Connected Speech",
			Difficulty:  "medium",
			Focus:       "natural rhythm",
		},
		{
			Text:        "I need to schedule a meeting for three thirty",
			ExpectedIPA: "aɪ n i d t ə s k ɛ dʒ u l ə m i t ɪ ŋ f ɔ ɹ θ ɹ i θ ə ɹ t i",
			Type:        "sentence",
			Category:    "Complex Fluency",
			Difficulty:  "hard",
			Focus:       "full sentence fluency",
		},
	}
}
