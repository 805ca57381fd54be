// Package assessment turns raw vendor responses into stable ScoreResults
// and builds the end-of-session feedback summary.
package assessment

import "strings"

// sapiToIPA maps the vendor's SAPI/ARPABET-style phoneme symbols to IPA.
// Symbols already in IPA (or unknown) pass through unchanged.
var sapiToIPA = map[string]string{
	// Consonants
	"b": "b", "d": "d", "f": "f", "g": "ɡ", "h": "h", "k": "k",
	"l": "l", "m": "m", "n": "n", "p": "p", "r": "ɹ", "s": "s",
	"t": "t", "v": "v", "w": "w", "y": "j", "z": "z",

	// Digraphs
	"ch": "tʃ", "dh": "ð", "jh": "dʒ", "ng": "ŋ",
	"sh": "ʃ", "th": "θ", "zh": "ʒ",

	// Vowels
	"aa": "ɑ", "ae": "æ", "ah": "ʌ", "ao": "ɔ", "aw": "aʊ",
	"ax": "ə", "ay": "aɪ", "eh": "ɛ", "er": "ɜ", "ey": "eɪ",
	"ih": "ɪ", "iy": "i", "ow": "oʊ", "oy": "ɔɪ", "uh": "ʊ",
	"uw": "u",

	// R-colored vowels
	"axr": "ɚ", "ehr": "ɛr", "ier": "ɪr", "ohr": "ɔr", "uhr": "ʊr",
}

// ToIPA converts one vendor phoneme symbol to IPA. Stress digits are
// stripped before lookup; unmapped symbols are returned as-is so IPA input
// survives a round trip.
func ToIPA(phoneme string) string {
	p := strings.ToLower(strings.TrimSpace(phoneme))
	p = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, p)
	if ipa, ok := sapiToIPA[p]; ok {
		return ipa
	}
	return phoneme
}
