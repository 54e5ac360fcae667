// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
// HTTP spans are produced by the otelhttp handler wrap and need no keys
// here.
const (
	// Dialogue attributes
	TurnIDKey        = "dialog.turn_id"
	TurnIntentKey    = "dialog.intent"
	TurnLangKey      = "dialog.lang"
	TurnDirectiveKey = "dialog.directive"

	// Banking attributes
	BankOperationKey = "bank.operation"
	BankCodeKey      = "bank.code"
	TransferKindKey  = "bank.transfer_kind"

	// Model attributes
	LLMKindKey  = "llm.kind"
	LLMModelKey = "llm.model"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// TurnAttributes creates dialogue turn span attributes.
func TurnAttributes(turnID, intent, lang, directive string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if turnID != "" {
		attrs = append(attrs, attribute.String(TurnIDKey, turnID))
	}
	if intent != "" {
		attrs = append(attrs, attribute.String(TurnIntentKey, intent))
	}
	if lang != "" {
		attrs = append(attrs, attribute.String(TurnLangKey, lang))
	}
	if directive != "" {
		attrs = append(attrs, attribute.String(TurnDirectiveKey, directive))
	}
	return attrs
}

// BankAttributes creates banking span attributes.
func BankAttributes(operation, transferKind, bankCode string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if operation != "" {
		attrs = append(attrs, attribute.String(BankOperationKey, operation))
	}
	if transferKind != "" {
		attrs = append(attrs, attribute.String(TransferKindKey, transferKind))
	}
	if bankCode != "" {
		attrs = append(attrs, attribute.String(BankCodeKey, bankCode))
	}
	return attrs
}

// LLMAttributes creates model call span attributes.
func LLMAttributes(kind, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(LLMKindKey, kind),
		attribute.String(LLMModelKey, model),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
