// SPDX-License-Identifier: MIT

package dialog

// Canonical slot names with the alias spellings the NLU is allowed to
// emit for them. Requirement checks accept any alias; the adapter reads
// through the same table.
var slotAliases = map[string][]string{
	"source_account_number":      {"source_account_number", "source_account", "debit_account_number"},
	"transaction_pin":            {"transaction_pin", "pin"},
	"recipient_name":             {"recipient_name", "credit_account_name"},
	"destination_account_number": {"destination_account_number", "destination_account"},
	"destination_bank":           {"destination_bank", "credit_bank_name"},
	"source_account_name":        {"source_account_name", "debit_account_name"},
	"amount":                     {"amount"},
	"narration":                  {"narration"},
}

// Required slot order per intent. The order is the asking order: the
// first unfilled entry is the next question, regardless of what the NLU
// suggests.
var requiredSlots = map[Intent][]string{
	IntentCheckBalance: {
		"source_account_number",
		"transaction_pin",
	},
	IntentTransfer: {
		"amount",
		"recipient_name",
		"destination_account_number",
		"destination_bank",
		"source_account_number",
		"source_account_name",
		"transaction_pin",
	},
}

// AliasesFor returns the accepted spellings for a canonical slot name,
// or the name itself when it has no alias entry.
func AliasesFor(canonical string) []string {
	if a, ok := slotAliases[canonical]; ok {
		return a
	}
	return []string{canonical}
}

// HasSlot reports whether slots contain a usable value for the
// canonical slot under any alias. An amount of zero counts as missing.
func HasSlot(slots Slots, canonical string) bool {
	if canonical == "amount" {
		n, ok := slots.AmountValue()
		return ok && n > 0
	}
	_, ok := slots.First(AliasesFor(canonical)...)
	return ok
}

// MissingSlots returns the still-unfilled required slots for the intent
// in asking order. Intents without a requirement list return nil.
func MissingSlots(intent Intent, slots Slots) []string {
	required, ok := requiredSlots[intent]
	if !ok {
		return nil
	}
	var missing []string
	for _, name := range required {
		if !HasSlot(slots, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// NextMissing returns the single next slot to ask for, or "" when the
// intent's requirements are complete or it has none.
func NextMissing(intent Intent, slots Slots) string {
	missing := MissingSlots(intent, slots)
	if len(missing) == 0 {
		return ""
	}
	return missing[0]
}
