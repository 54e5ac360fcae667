// SPDX-License-Identifier: MIT

package finlake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(Config{
		BaseURL:          srv.URL,
		AccountID:        "acct-1",
		Stage:            "dev",
		PhoneCountryCode: "234",
		PhoneNumber:      "8012345678",
		Timeout:          2 * time.Second,
	})
	return c, srv
}

func TestListBanks(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/public/read/cts-bank", r.URL.Path)
		assert.Equal(t, "acct-1", r.Header.Get("X-Account-Id"))
		assert.Equal(t, "dev", r.Header.Get("X-Flk-Stage"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"responseCode":"00","data":[{"bankName":"GUARANTY TRUST BANK","bankShortName":"GTB","bankCode":"058"}]}`))
	})

	banks, err := c.ListBanks(context.Background(), "1234")
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "058", banks[0].BankCode)

	// Credentials payload carries the base64 "<ts>:chatbot" signature.
	sig, ok := gotBody["requestSignature"].(string)
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(decoded), ":chatbot"))
	assert.Equal(t, "1234", gotBody["transactionPin"])
}

func TestBusinessErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"responseCode":"91","responseMessage":"insufficient funds"}`))
	})

	_, err := c.ListBanks(context.Background(), "1234")
	require.Error(t, err)
	assert.True(t, IsBusiness(err))
	assert.Contains(t, err.Error(), "insufficient funds")
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransientStatusRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"responseCode":"00","data":[]}`))
	})

	banks, err := c.ListBanks(context.Background(), "1234")
	require.NoError(t, err)
	assert.Empty(t, banks)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTransientExhaustionSurfacesError(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListBanks(context.Background(), "1234")
	require.Error(t, err)
	assert.False(t, IsBusiness(err))
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestNonRetryableStatusFailsFast(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"responseCode":"","responseMessage":""}`))
	})

	_, err := c.ListBanks(context.Background(), "1234")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetBalanceQuantizes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/public/read/cts-by-account-number", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 1, body["page"])
		assert.EqualValues(t, 1, body["pageSize"])
		_, _ = w.Write([]byte(`{"responseCode":"00","account":[{"accountBalance":"151170.505"}]}`))
	})

	bal, err := c.GetBalance(context.Background(), "0123456789", "1234")
	require.NoError(t, err)
	assert.Equal(t, "151170.51", bal)
}

func TestGetBalanceUnparseable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"responseCode":"00","account":[]}`))
	})

	bal, err := c.GetBalance(context.Background(), "0123456789", "1234")
	require.NoError(t, err)
	assert.Equal(t, "0.00", bal)
}

func TestFundTransferOutwardPayload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "5000", body["amount"])
		assert.Equal(t, "058", body["creditBankCode"])
		assert.Equal(t, "NGA", body["location"])
		assert.Equal(t, true, body["saveBeneficiary"])
		_, _ = w.Write([]byte(`{"responseCode":"00","transactionId":"TX-1"}`))
	})

	res, err := c.FundTransferOutward(context.Background(), TransferRequest{
		Amount:              5000,
		CreditAccountName:   "John Doe",
		CreditAccountNumber: "0123456789",
		CreditBankCode:      "058",
		CreditBankName:      "GUARANTY TRUST BANK",
		DebitAccountName:    "You",
		DebitAccountNumber:  "9876543210",
		TransactionPIN:      "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "TX-1", res.TransactionID)
}
