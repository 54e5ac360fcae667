// SPDX-License-Identifier: MIT

package llm

// ParseRequest carries one user utterance plus the dialogue state the
// model needs for incremental slot filling.
type ParseRequest struct {
	Text          string
	PrevIntent    string
	PrevSlots     map[string]any
	PreferredLang string
}

// LangGuess is the model's language detection for the utterance.
type LangGuess struct {
	Detected   string  `json:"detected"`
	Confidence float64 `json:"confidence"`
}

// ParseResult is the strict-JSON NLU output.
type ParseResult struct {
	Intent       string         `json:"intent"`
	Lang         LangGuess      `json:"lang"`
	Slots        map[string]any `json:"slots"`
	Action       string         `json:"action"`
	AskSlot      string         `json:"ask_slot"`
	MissingSlots []string       `json:"missing_slots"`
	Reply        string         `json:"reply"`
	CanonicalEN  string         `json:"canonical_en"`
}
