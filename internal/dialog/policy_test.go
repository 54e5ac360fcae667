// SPDX-License-Identifier: MIT

package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextMissingTransferOrder(t *testing.T) {
	slots := Slots{"amount": map[string]any{"value": float64(5000)}}
	assert.Equal(t, "recipient_name", NextMissing(IntentTransfer, slots))

	slots["recipient_name"] = "John Okafor"
	assert.Equal(t, "destination_account_number", NextMissing(IntentTransfer, slots))

	slots["destination_account_number"] = "0123456789"
	slots["destination_bank"] = "GTB"
	slots["source_account_number"] = "231987654"
	slots["source_account_name"] = "Ada Obi"
	assert.Equal(t, "transaction_pin", NextMissing(IntentTransfer, slots))

	slots["transaction_pin"] = "1234"
	assert.Equal(t, "", NextMissing(IntentTransfer, slots))
}

func TestNextMissingCheckBalance(t *testing.T) {
	assert.Equal(t, "source_account_number", NextMissing(IntentCheckBalance, Slots{}))
	assert.Equal(t, "transaction_pin", NextMissing(IntentCheckBalance, Slots{"source_account_number": "231987654"}))
}

func TestAliasesSatisfyRequirements(t *testing.T) {
	slots := Slots{
		"debit_account_number": "231987654",
		"pin":                  "1234",
	}
	assert.Empty(t, MissingSlots(IntentCheckBalance, slots))

	transfer := Slots{
		"amount":              float64(5000),
		"credit_account_name": "John Okafor",
		"destination_account": "0123456789",
		"credit_bank_name":    "GTB",
		"source_account":      "231987654",
		"debit_account_name":  "Ada Obi",
		"pin":                 "1234",
	}
	assert.Empty(t, MissingSlots(IntentTransfer, transfer))
}

func TestZeroAmountCountsAsMissing(t *testing.T) {
	slots := Slots{"amount": map[string]any{"value": float64(0)}}
	assert.Equal(t, "amount", NextMissing(IntentTransfer, slots))
}

func TestUnknownIntentHasNoRequirements(t *testing.T) {
	assert.Nil(t, MissingSlots(IntentUnknown, Slots{}))
	assert.Equal(t, "", NextMissing(IntentUnknown, Slots{}))
}
