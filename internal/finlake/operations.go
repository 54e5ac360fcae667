// SPDX-License-Identifier: MIT

package finlake

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Bank is one record from the counterparty bank directory.
type Bank struct {
	BankName      string `json:"bankName"`
	BankShortName string `json:"bankShortName"`
	BankCode      string `json:"bankCode"`
}

type bankListResponse struct {
	Data []Bank `json:"data"`
}

// ListBanks returns the full counterparty bank directory.
func (c *Client) ListBanks(ctx context.Context, transactionPIN string) ([]Bank, error) {
	var out bankListResponse
	if err := c.post(ctx, "list_banks", "/public/read/cts-bank", c.credentials(transactionPIN), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// NameEnquiryResult holds the resolved holder of an internal account.
type NameEnquiryResult struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
}

// InternalNameEnquiry resolves the holder name of an intra-bank account.
func (c *Client) InternalNameEnquiry(ctx context.Context, accountNumber, transactionPIN string) (NameEnquiryResult, error) {
	payload := map[string]any{
		"accountNumber": accountNumber,
		"credentials":   c.credentials(transactionPIN),
	}
	var out NameEnquiryResult
	err := c.post(ctx, "name_enquiry", "/public/read/cts-internal-name-enquiry", payload, &out)
	return out, err
}

// HistoryAccount is the account summary attached to a history page.
type HistoryAccount struct {
	AccountBalance json.Number `json:"accountBalance"`
}

// HistoryResponse is one page of account transaction history.
type HistoryResponse struct {
	Account []HistoryAccount `json:"account"`
}

// TransactionHistoryByAccount fetches a page of account history.
func (c *Client) TransactionHistoryByAccount(ctx context.Context, accountNumber, startDate, endDate string, page, pageSize int, transactionPIN string) (HistoryResponse, error) {
	payload := map[string]any{
		"accountNumber": accountNumber,
		"credentials":   c.credentials(transactionPIN),
		"startDate":     startDate,
		"endDate":       endDate,
		"page":          page,
		"pageSize":      pageSize,
	}
	var out HistoryResponse
	err := c.post(ctx, "transaction_history", "/public/read/cts-by-account-number", payload, &out)
	return out, err
}

// GetBalance returns the current account balance as a decimal string
// quantized to two places with half-up rounding. A balance that cannot
// be parsed degrades to "0.00".
func (c *Client) GetBalance(ctx context.Context, accountNumber, transactionPIN string) (string, error) {
	now := time.Now().UTC()
	endDate := now.Format("2006-01-02")
	startDate := now.AddDate(0, 0, -30).Format("2006-01-02")

	hist, err := c.TransactionHistoryByAccount(ctx, accountNumber, startDate, endDate, 1, 1, transactionPIN)
	if err != nil {
		return "", err
	}
	if len(hist.Account) == 0 {
		return "0.00", nil
	}

	d, perr := decimal.NewFromString(hist.Account[0].AccountBalance.String())
	if perr != nil {
		return "0.00", nil
	}
	return d.Round(2).StringFixed(2), nil
}

// TransferRequest carries all fields shared by internal and outward
// transfers. Bank code and name are only used on the outward path.
type TransferRequest struct {
	Amount              int64
	CreditAccountName   string
	CreditAccountNumber string
	CreditBankCode      string
	CreditBankName      string
	DebitAccountName    string
	DebitAccountNumber  string
	Narration           string
	TransactionPIN      string
}

// TransferResponse captures the reference fields the API may return.
type TransferResponse struct {
	TransactionID    string `json:"transactionId"`
	PaymentReference string `json:"paymentReference"`
	Reference        string `json:"reference"`
	CbaReference     string `json:"cbaReference"`
}

// FundTransferInternal executes an intra-bank transfer.
func (c *Client) FundTransferInternal(ctx context.Context, req TransferRequest) (TransferResponse, error) {
	payload := map[string]any{
		"amount":             decimal.NewFromInt(req.Amount).String(),
		"credentials":        c.credentials(req.TransactionPIN),
		"creditAccountName":  req.CreditAccountName,
		"creditAccountNumber": req.CreditAccountNumber,
		"debitAccountName":   req.DebitAccountName,
		"debitAccountNumber": req.DebitAccountNumber,
		"location":           "NGA",
		"narration":          req.Narration,
		"saveBeneficiary":    true,
		"transactionPin":     req.TransactionPIN,
	}
	var out TransferResponse
	err := c.post(ctx, "transfer_internal", "/public/create/cts-internal-fund-transfer", payload, &out)
	return out, err
}

// FundTransferOutward executes an inter-bank transfer via the resolved
// destination bank.
func (c *Client) FundTransferOutward(ctx context.Context, req TransferRequest) (TransferResponse, error) {
	payload := map[string]any{
		"amount":               decimal.NewFromInt(req.Amount).String(),
		"credentials":          c.credentials(req.TransactionPIN),
		"creditAccountName":    req.CreditAccountName,
		"creditAccountNumber":  req.CreditAccountNumber,
		"creditBankCode":       req.CreditBankCode,
		"creditBankName":       req.CreditBankName,
		"debitAccountName":     req.DebitAccountName,
		"debitAccountNumber":   req.DebitAccountNumber,
		"location":             "NGA",
		"nameEnquiryReference": "",
		"narration":            req.Narration,
		"saveBeneficiary":      true,
		"transactionPin":       req.TransactionPIN,
	}
	var out TransferResponse
	err := c.post(ctx, "transfer_outward", "/public/create/cts-outward-fund-transfer", payload, &out)
	return out, err
}

// UserInfo returns the bot-bound user profile.
func (c *Client) UserInfo(ctx context.Context, transactionPIN string) (map[string]any, error) {
	var out map[string]any
	err := c.post(ctx, "user_info", "/public/read/cts-user-info", c.credentials(transactionPIN), &out)
	return out, err
}
