// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus metrics for the wa2bank service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dialogue metrics
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wa2bank_turns_total",
		Help: "Dialogue turns processed by outcome",
	}, []string{"outcome"}) // outcome=ask|fulfill|reset|idle_reset|parse_error

	fulfillmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wa2bank_fulfillments_total",
		Help: "Fulfillment attempts by intent and result",
	}, []string{"intent", "result"}) // result=success|failure

	turnDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wa2bank_turn_duration_seconds",
		Help:    "End-to-end duration of a dialogue turn",
		Buckets: prometheus.DefBuckets,
	})

	activeLanguage = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wa2bank_resolved_language_total",
		Help: "Resolved conversation language per turn",
	}, []string{"lang"})

	// Collaborator metrics
	llmRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wa2bank_llm_requests_total",
		Help: "LLM requests by kind and status",
	}, []string{"kind", "status"}) // kind=parse|one_liner status=success|error

	llmRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wa2bank_llm_request_duration_seconds",
		Help:    "LLM request latency by kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	bankRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wa2bank_bank_requests_total",
		Help: "Banking API requests by operation and status",
	}, []string{"operation", "status"}) // status=success|business_error|transport_error

	bankDirectoryRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wa2bank_bank_directory_refresh_total",
		Help: "Bank directory cache refreshes by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	outboundSendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wa2bank_outbound_send_errors_total",
		Help: "Failed outbound WhatsApp deliveries",
	})

	sessionResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wa2bank_session_resets_total",
		Help: "Session resets by cause",
	}, []string{"cause"}) // cause=idle|explicit|fulfillment
)

func IncTurn(outcome string)            { turnsTotal.WithLabelValues(outcome).Inc() }
func ObserveTurn(d time.Duration)       { turnDurationSeconds.Observe(d.Seconds()) }
func IncResolvedLanguage(lang string)   { activeLanguage.WithLabelValues(lang).Inc() }
func IncSessionReset(cause string)      { sessionResets.WithLabelValues(cause).Inc() }
func IncOutboundSendError()             { outboundSendErrors.Inc() }
func IncBankDirectoryRefresh(ok bool)   { bankDirectoryRefreshes.WithLabelValues(boolOutcome(ok)).Inc() }

func IncFulfillment(intent string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	fulfillmentsTotal.WithLabelValues(intent, result).Inc()
}

func IncLLMRequest(kind, status string) {
	llmRequestsTotal.WithLabelValues(kind, status).Inc()
}

func ObserveLLMRequest(kind string, d time.Duration) {
	llmRequestDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func IncBankRequest(operation, status string) {
	bankRequestsTotal.WithLabelValues(operation, status).Inc()
}

func boolOutcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
