// SPDX-License-Identifier: MIT

// Package dialog implements the conversational state machine: per-user
// sessions, language resolution, slot filling and the turn controller.
package dialog

// State is the dialogue lifecycle state of a session.
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
)

// Intent is the user's requested action category.
type Intent string

const (
	IntentUnknown      Intent = "unknown"
	IntentCheckBalance Intent = "check_balance"
	IntentTransfer     Intent = "transfer"
	IntentReset        Intent = "reset"
)

// ParseIntent maps free text to a known intent, defaulting to unknown.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentCheckBalance, IntentTransfer, IntentReset:
		return Intent(s)
	default:
		return IntentUnknown
	}
}

// Directive is the action the NLU asks the controller to take.
type Directive string

const (
	DirectiveAsk     Directive = "ask"
	DirectiveFulfill Directive = "fulfill"
	DirectiveReset   Directive = "reset"
)

// ParseDirective maps free text to a directive, defaulting to ask.
func ParseDirective(s string) Directive {
	switch Directive(s) {
	case DirectiveFulfill, DirectiveReset:
		return Directive(s)
	default:
		return DirectiveAsk
	}
}

// Session is the per-user dialogue state. It is serialized as JSON into
// the session store and expires both logically (idle reset) and at the
// storage layer (TTL).
type Session struct {
	UserKey      string   `json:"user_key"`
	State        State    `json:"state"`
	Intent       Intent   `json:"intent"`
	Lang         string   `json:"lang"`
	Slots        Slots    `json:"slots"`
	MissingSlots []string `json:"missing_slots"`
	UpdatedAt    int64    `json:"updated_at"` // epoch seconds of last save
}

// NewIdleSession returns a fresh idle shell for the user, keeping only
// the conversation language.
func NewIdleSession(userKey, lang string) Session {
	return Session{
		UserKey:      userKey,
		State:        StateIdle,
		Intent:       IntentUnknown,
		Lang:         lang,
		Slots:        Slots{},
		MissingSlots: []string{},
	}
}

// ApplyDefaults fills any zero-valued fields a stored or brand-new
// session may be missing.
func (s *Session) ApplyDefaults(userKey, defaultLang string) {
	if s.UserKey == "" {
		s.UserKey = userKey
	}
	if s.State == "" {
		s.State = StateIdle
	}
	if s.Intent == "" {
		s.Intent = IntentUnknown
	}
	if s.Lang == "" {
		s.Lang = defaultLang
	}
	if s.Slots == nil {
		s.Slots = Slots{}
	}
	if s.MissingSlots == nil {
		s.MissingSlots = []string{}
	}
}

// Fresh reports whether no dialogue has been committed yet: unknown
// intent and no collected slots. The first turn of a fresh dialogue
// lets the NLU auto-detect the language.
func (s *Session) Fresh() bool {
	return s.Intent == IntentUnknown && len(s.Slots) == 0
}
