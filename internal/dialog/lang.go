// SPDX-License-Identifier: MIT

package dialog

import (
	"strings"
	"unicode"
)

// Vernacular reply languages. English stays the default; once a user is
// speaking one of these the conversation sticks to it.
var vernacularLangs = map[string]bool{
	"pcm": true,
	"ig":  true,
	"yo":  true,
	"ha":  true,
}

// Bank names and abbreviations that users type as bare tokens. A message
// that is just a bank name carries no language signal, so it must never
// flip a vernacular conversation back to English.
var wellKnownBankTokens = map[string]bool{
	"gtb": true, "gtbank": true, "gt bank": true,
	"uba": true, "zenith": true, "access": true,
	"firstbank": true, "first bank": true, "fidelity": true,
	"union": true, "sterling": true, "wema": true, "fcmb": true,
	"stanbic": true, "keystone": true, "polaris": true,
	"kuda": true, "opay": true, "moniepoint": true, "palmpay": true,
	"providus": true, "ecobank": true, "heritage": true,
	"jaiz": true, "globus": true, "titan": true, "unity": true,
}

const defaultLangConfidence = 0.80

// LangResolver decides the reply language for a turn from the prior
// sticky language and the NLU's detection.
type LangResolver struct {
	// Default is the language used when nothing else applies.
	Default string
	// Threshold is the minimum detection confidence needed to switch a
	// vernacular conversation to another language.
	Threshold float64
	// KnownBankName optionally consults the live bank directory for
	// names the static token set misses. May be nil.
	KnownBankName func(string) bool
}

// NewLangResolver returns a resolver with the standard defaults.
func NewLangResolver(defaultLang string, knownBankName func(string) bool) *LangResolver {
	if defaultLang == "" {
		defaultLang = "en"
	}
	return &LangResolver{
		Default:       defaultLang,
		Threshold:     defaultLangConfidence,
		KnownBankName: knownBankName,
	}
}

// Resolve picks the language for this turn. A vernacular conversation
// stays vernacular unless the user clearly switched: low-confidence
// detections, detections of the default language, and language-neutral
// messages (digits, PINs, bank names) all keep the prior language.
func (r *LangResolver) Resolve(prior, detected string, confidence float64, rawText string) string {
	prior = strings.ToLower(strings.TrimSpace(prior))
	detected = strings.ToLower(strings.TrimSpace(detected))

	if vernacularLangs[prior] {
		switch {
		case detected == "" || detected == prior:
			return prior
		case detected == r.Default:
			return prior
		case confidence < r.Threshold:
			return prior
		case r.IsNeutral(rawText):
			return prior
		}
		return detected
	}

	if detected != "" {
		return detected
	}
	if prior != "" {
		return prior
	}
	return r.Default
}

// IsNeutral reports whether the message carries no language signal:
// empty, letterless (digits, punctuation, amounts), or a bare bank name.
func (r *LangResolver) IsNeutral(rawText string) bool {
	t := strings.TrimSpace(rawText)
	if t == "" {
		return true
	}

	hasLetter := false
	for _, ch := range t {
		if unicode.IsLetter(ch) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return true
	}

	token := strings.ToLower(strings.Join(strings.Fields(t), " "))
	if wellKnownBankTokens[token] {
		return true
	}
	if r.KnownBankName != nil && r.KnownBankName(t) {
		return true
	}
	return false
}
