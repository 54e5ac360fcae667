// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldTurnID    = "turn_id"
	FieldUserKey   = "user_key"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Dialogue fields
	FieldIntent    = "intent"
	FieldLang      = "lang"
	FieldDirective = "directive"
	FieldAskSlot   = "ask_slot"
	FieldState     = "state"

	// Banking fields
	FieldTransferKind = "transfer_kind"
	FieldReference    = "reference"
	FieldBankCode     = "bank_code"
)
