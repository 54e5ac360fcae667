// SPDX-License-Identifier: MIT

// Package banking adapts completed dialogue intents onto the banking
// API: it normalizes slot values, picks the internal or outward
// transfer path, and reduces API responses to a single outcome.
package banking

import (
	"context"
	"errors"
	"strings"

	"github.com/flkbot/wa2bank/internal/bankdir"
	"github.com/flkbot/wa2bank/internal/dialog"
	"github.com/flkbot/wa2bank/internal/finlake"
	xglog "github.com/flkbot/wa2bank/internal/log"
	"github.com/flkbot/wa2bank/internal/telemetry"
)

// Bank is the subset of the finlake client the adapter uses.
type Bank interface {
	GetBalance(ctx context.Context, accountNumber, transactionPIN string) (string, error)
	FundTransferInternal(ctx context.Context, req finlake.TransferRequest) (finlake.TransferResponse, error)
	FundTransferOutward(ctx context.Context, req finlake.TransferRequest) (finlake.TransferResponse, error)
}

// Directory resolves free-text bank references.
type Directory interface {
	Resolve(ctx context.Context, text, transactionPIN string) (bankdir.Match, bool)
}

// Adapter implements dialog.Fulfiller against the bank.
type Adapter struct {
	bank Bank
	dir  Directory
}

// New creates an adapter. dir may be nil; all transfers then take the
// internal path.
func New(bank Bank, dir Directory) *Adapter {
	return &Adapter{bank: bank, dir: dir}
}

// Fulfill executes the intent with the collected slots. It never
// returns an error; every failure is folded into the outcome so the
// dialogue can report it.
func (a *Adapter) Fulfill(ctx context.Context, intent dialog.Intent, slots dialog.Slots) dialog.Outcome {
	switch intent {
	case dialog.IntentCheckBalance:
		return a.checkBalance(ctx, slots)
	case dialog.IntentTransfer:
		return a.transfer(ctx, slots)
	default:
		return dialog.Outcome{Err: "unsupported intent"}
	}
}

func (a *Adapter) checkBalance(ctx context.Context, slots dialog.Slots) dialog.Outcome {
	ctx, span := telemetry.Tracer("wa2bank/banking").Start(ctx, "bank.check_balance")
	defer span.End()
	span.SetAttributes(telemetry.BankAttributes("check_balance", "", "")...)

	account := slots.FirstString(dialog.AliasesFor("source_account_number")...)
	pin := slots.FirstString(dialog.AliasesFor("transaction_pin")...)
	if account == "" || pin == "" {
		return dialog.Outcome{Err: "missing account number or PIN"}
	}

	balance, err := a.bank.GetBalance(ctx, account, pin)
	if err != nil {
		span.SetAttributes(telemetry.ErrorAttributes(err, errorType(err))...)
		return failure(err)
	}
	return dialog.Outcome{OK: true, Balance: balance}
}

func (a *Adapter) transfer(ctx context.Context, slots dialog.Slots) dialog.Outcome {
	ctx, span := telemetry.Tracer("wa2bank/banking").Start(ctx, "bank.transfer")
	defer span.End()

	logger := xglog.WithComponentFromContext(ctx, "banking")

	amount, ok := slots.AmountValue()
	if !ok || amount <= 0 {
		return dialog.Outcome{Err: "missing or invalid amount"}
	}

	req := finlake.TransferRequest{
		Amount:              amount,
		CreditAccountName:   slots.FirstString(dialog.AliasesFor("recipient_name")...),
		CreditAccountNumber: slots.FirstString(dialog.AliasesFor("destination_account_number")...),
		DebitAccountNumber:  slots.FirstString(dialog.AliasesFor("source_account_number")...),
		DebitAccountName:    slots.FirstString(dialog.AliasesFor("source_account_name")...),
		Narration:           slots.FirstString(dialog.AliasesFor("narration")...),
		TransactionPIN:      slots.FirstString(dialog.AliasesFor("transaction_pin")...),
	}
	if req.DebitAccountName == "" {
		req.DebitAccountName = "You"
	}
	if req.CreditAccountNumber == "" || req.DebitAccountNumber == "" || req.TransactionPIN == "" {
		return dialog.Outcome{Err: "missing transfer details"}
	}

	destBank := slots.FirstString(dialog.AliasesFor("destination_bank")...)
	var resolved bankdir.Match
	var outward bool
	if destBank != "" && a.dir != nil {
		resolved, outward = a.dir.Resolve(ctx, destBank, req.TransactionPIN)
	}

	var res finlake.TransferResponse
	var err error
	var reference string
	if outward {
		req.CreditBankCode = resolved.Code
		req.CreditBankName = resolved.Name
		span.SetAttributes(telemetry.BankAttributes("transfer", "outward", resolved.Code)...)
		logger.Info().
			Str(xglog.FieldTransferKind, "outward").
			Str(xglog.FieldBankCode, resolved.Code).
			Msg("executing outward transfer")
		res, err = a.bank.FundTransferOutward(ctx, req)
		reference = firstNonEmpty(res.TransactionID, res.PaymentReference, res.Reference)
	} else {
		span.SetAttributes(telemetry.BankAttributes("transfer", "internal", "")...)
		logger.Info().
			Str(xglog.FieldTransferKind, "internal").
			Msg("executing internal transfer")
		res, err = a.bank.FundTransferInternal(ctx, req)
		reference = firstNonEmpty(res.Reference, res.CbaReference)
	}
	if err != nil {
		span.SetAttributes(telemetry.ErrorAttributes(err, errorType(err))...)
		return failure(err)
	}
	if reference == "" {
		reference = "N/A"
	}
	return dialog.Outcome{OK: true, Reference: reference}
}

// failure maps an API error to a user-facing reason. Business errors
// carry the bank's own message; everything else degrades to a generic
// line so transport details never reach the chat.
func failure(err error) dialog.Outcome {
	var be *finlake.BusinessError
	if errors.As(err, &be) && strings.TrimSpace(be.Message) != "" {
		return dialog.Outcome{Err: strings.TrimSpace(be.Message)}
	}
	return dialog.Outcome{Err: "the banking service is unavailable right now"}
}

func errorType(err error) string {
	var be *finlake.BusinessError
	if errors.As(err, &be) {
		return "business"
	}
	return "transport"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
