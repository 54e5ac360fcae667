// SPDX-License-Identifier: MIT

package banking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/flkbot/wa2bank/internal/bankdir"
	"github.com/flkbot/wa2bank/internal/dialog"
	"github.com/flkbot/wa2bank/internal/finlake"
	"github.com/flkbot/wa2bank/internal/telemetry"
)

type fakeBank struct {
	balance    string
	balanceErr error

	internalRes finlake.TransferResponse
	internalErr error
	outwardRes  finlake.TransferResponse
	outwardErr  error

	balanceCalls  int
	internalReqs  []finlake.TransferRequest
	outwardReqs   []finlake.TransferRequest
	balanceAcct   string
	balancePinArg string
}

func (b *fakeBank) GetBalance(_ context.Context, accountNumber, transactionPIN string) (string, error) {
	b.balanceCalls++
	b.balanceAcct = accountNumber
	b.balancePinArg = transactionPIN
	return b.balance, b.balanceErr
}

func (b *fakeBank) FundTransferInternal(_ context.Context, req finlake.TransferRequest) (finlake.TransferResponse, error) {
	b.internalReqs = append(b.internalReqs, req)
	return b.internalRes, b.internalErr
}

func (b *fakeBank) FundTransferOutward(_ context.Context, req finlake.TransferRequest) (finlake.TransferResponse, error) {
	b.outwardReqs = append(b.outwardReqs, req)
	return b.outwardRes, b.outwardErr
}

type staticDir struct {
	match bankdir.Match
	ok    bool
	query string
}

func (d *staticDir) Resolve(_ context.Context, text, _ string) (bankdir.Match, bool) {
	d.query = text
	return d.match, d.ok
}

func transferSlots() dialog.Slots {
	return dialog.Slots{
		"amount":                     map[string]any{"value": float64(5000)},
		"recipient_name":             "John Okafor",
		"destination_account_number": "0123456789",
		"destination_bank":           "GTB",
		"source_account_number":      "231987654",
		"source_account_name":        "Ada Obi",
		"transaction_pin":            "1234",
	}
}

func TestCheckBalance(t *testing.T) {
	bank := &fakeBank{balance: "151170.50"}
	a := New(bank, nil)

	out := a.Fulfill(context.Background(), dialog.IntentCheckBalance, dialog.Slots{
		"source_account": "231987654",
		"pin":            "1234",
	})

	require.True(t, out.OK)
	assert.Equal(t, "151170.50", out.Balance)
	assert.Equal(t, "231987654", bank.balanceAcct)
	assert.Equal(t, "1234", bank.balancePinArg)
}

func TestCheckBalanceMissingSlots(t *testing.T) {
	bank := &fakeBank{}
	a := New(bank, nil)

	out := a.Fulfill(context.Background(), dialog.IntentCheckBalance, dialog.Slots{"pin": "1234"})

	assert.False(t, out.OK)
	assert.Zero(t, bank.balanceCalls)
}

func TestTransferOutwardWhenBankResolves(t *testing.T) {
	bank := &fakeBank{outwardRes: finlake.TransferResponse{TransactionID: "TX-9"}}
	dir := &staticDir{match: bankdir.Match{Code: "058", Name: "GTBANK PLC"}, ok: true}
	a := New(bank, dir)

	out := a.Fulfill(context.Background(), dialog.IntentTransfer, transferSlots())

	require.True(t, out.OK)
	assert.Equal(t, "TX-9", out.Reference)
	assert.Equal(t, "GTB", dir.query)
	require.Len(t, bank.outwardReqs, 1)
	req := bank.outwardReqs[0]
	assert.Equal(t, int64(5000), req.Amount)
	assert.Equal(t, "058", req.CreditBankCode)
	assert.Equal(t, "GTBANK PLC", req.CreditBankName)
	assert.Equal(t, "John Okafor", req.CreditAccountName)
	assert.Empty(t, bank.internalReqs)
}

func TestTransferInternalWhenBankUnresolved(t *testing.T) {
	bank := &fakeBank{internalRes: finlake.TransferResponse{Reference: "REF-1", CbaReference: "CBA-1"}}
	dir := &staticDir{ok: false}
	a := New(bank, dir)

	out := a.Fulfill(context.Background(), dialog.IntentTransfer, transferSlots())

	require.True(t, out.OK)
	assert.Equal(t, "REF-1", out.Reference)
	require.Len(t, bank.internalReqs, 1)
	assert.Empty(t, bank.outwardReqs)
}

func TestTransferInternalWithoutDestinationBank(t *testing.T) {
	bank := &fakeBank{internalRes: finlake.TransferResponse{CbaReference: "CBA-2"}}
	dir := &staticDir{match: bankdir.Match{Code: "058"}, ok: true}
	a := New(bank, dir)

	slots := transferSlots()
	delete(slots, "destination_bank")
	out := a.Fulfill(context.Background(), dialog.IntentTransfer, slots)

	require.True(t, out.OK)
	assert.Equal(t, "CBA-2", out.Reference)
	// No bank text means no directory lookup at all.
	assert.Empty(t, dir.query)
}

func TestOutwardReferenceFallbackChain(t *testing.T) {
	bank := &fakeBank{outwardRes: finlake.TransferResponse{PaymentReference: "PAY-3"}}
	dir := &staticDir{match: bankdir.Match{Code: "058", Name: "GTB"}, ok: true}
	a := New(bank, dir)

	out := a.Fulfill(context.Background(), dialog.IntentTransfer, transferSlots())

	require.True(t, out.OK)
	assert.Equal(t, "PAY-3", out.Reference)
}

func TestTransferBusinessErrorSurfacesMessage(t *testing.T) {
	bank := &fakeBank{internalErr: &finlake.BusinessError{Code: "51", Message: "Insufficient funds"}}
	a := New(bank, &staticDir{})

	out := a.Fulfill(context.Background(), dialog.IntentTransfer, transferSlots())

	assert.False(t, out.OK)
	assert.Equal(t, "Insufficient funds", out.Err)
}

func TestTransferTransportErrorIsGeneric(t *testing.T) {
	bank := &fakeBank{internalErr: errors.New("dial tcp: connection refused")}
	a := New(bank, &staticDir{})

	out := a.Fulfill(context.Background(), dialog.IntentTransfer, transferSlots())

	assert.False(t, out.OK)
	assert.NotContains(t, out.Err, "dial tcp")
}

func TestTransferDefaultsDebitAccountName(t *testing.T) {
	bank := &fakeBank{internalRes: finlake.TransferResponse{Reference: "R"}}
	a := New(bank, &staticDir{})

	slots := transferSlots()
	delete(slots, "source_account_name")
	out := a.Fulfill(context.Background(), dialog.IntentTransfer, slots)

	require.True(t, out.OK)
	require.Len(t, bank.internalReqs, 1)
	assert.Equal(t, "You", bank.internalReqs[0].DebitAccountName)
}

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func spanAttrs(t *testing.T, sr *tracetest.SpanRecorder, name string) map[string]string {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.Name() != name {
			continue
		}
		attrs := map[string]string{}
		for _, kv := range s.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		return attrs
	}
	t.Fatalf("no %s span recorded", name)
	return nil
}

func TestTransferSpanRecordsOutwardBank(t *testing.T) {
	sr := recordSpans(t)
	bank := &fakeBank{outwardRes: finlake.TransferResponse{TransactionID: "TX-9"}}
	dir := &staticDir{match: bankdir.Match{Code: "058", Name: "GTBANK PLC"}, ok: true}
	a := New(bank, dir)

	out := a.Fulfill(context.Background(), dialog.IntentTransfer, transferSlots())
	require.True(t, out.OK)

	attrs := spanAttrs(t, sr, "bank.transfer")
	assert.Equal(t, "transfer", attrs[telemetry.BankOperationKey])
	assert.Equal(t, "outward", attrs[telemetry.TransferKindKey])
	assert.Equal(t, "058", attrs[telemetry.BankCodeKey])
}

func TestTransferSpanRecordsBusinessError(t *testing.T) {
	sr := recordSpans(t)
	bank := &fakeBank{internalErr: &finlake.BusinessError{Code: "51", Message: "Insufficient funds"}}
	a := New(bank, &staticDir{})

	out := a.Fulfill(context.Background(), dialog.IntentTransfer, transferSlots())
	require.False(t, out.OK)

	attrs := spanAttrs(t, sr, "bank.transfer")
	assert.Equal(t, "internal", attrs[telemetry.TransferKindKey])
	assert.Equal(t, "true", attrs[telemetry.ErrorKey])
	assert.Equal(t, "business", attrs[telemetry.ErrorTypeKey])
}

func TestTransferInvalidAmount(t *testing.T) {
	bank := &fakeBank{}
	a := New(bank, &staticDir{})

	slots := transferSlots()
	slots["amount"] = "five thousand"
	out := a.Fulfill(context.Background(), dialog.IntentTransfer, slots)

	assert.False(t, out.OK)
	assert.Empty(t, bank.internalReqs)
	assert.Empty(t, bank.outwardReqs)
}
