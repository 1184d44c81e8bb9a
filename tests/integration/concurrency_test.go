package integration

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentWithdrawals fires 15 concurrent withdrawals of 100.00 against
// a balance of 1000.00. With units of work serialized the way SELECT FOR
// UPDATE serializes them in production, exactly 10 must succeed, the other 5
// must be rejected, and every attempt — rejected ones included — must land on
// the ledger.
func TestConcurrentWithdrawals(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	openAccount(t, app, "Alice Tran", "alice@example.com", "0901234567", "1000.00")
	token := loginToken(t, app, "alice@example.com")

	concurrency := 15
	amount := decimal.RequireFromString("100.00")

	var wg sync.WaitGroup
	var successCount, insufficientCount, otherCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/transactions/withdraw",
				bytes.NewBufferString(`{"amount":"100.00"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			r, err := http.DefaultClient.Do(req)
			if err != nil {
				otherCount.Add(1)
				return
			}
			defer r.Body.Close()
			_, _ = io.ReadAll(r.Body)

			switch r.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusPaymentRequired:
				insufficientCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}()
	}

	wg.Wait()

	t.Logf("concurrent withdrawals: %d succeeded, %d insufficient, %d other",
		successCount.Load(), insufficientCount.Load(), otherCount.Load())

	require.Equal(t, int64(0), otherCount.Load(), "no request may fail for a non-balance reason")
	assert.Equal(t, int64(10), successCount.Load())
	assert.Equal(t, int64(5), insufficientCount.Load())

	// Conservation: successes * amount + final balance == starting balance.
	final := decimal.RequireFromString(myBalance(t, app, token))
	withdrawn := amount.Mul(decimal.NewFromInt(successCount.Load()))
	assert.True(t, withdrawn.Add(final).Equal(decimal.RequireFromString("1000.00")),
		"withdrawn %s + final %s must equal 1000.00", withdrawn, final)
	assert.False(t, final.IsNegative(), "balance must never go negative")

	// Every attempt is on the ledger: 10 SUCCESS + 5 FAILED entries, and the
	// FAILED ones left the balance untouched.
	resp := doAuthed(t, http.MethodGet, app.server.URL+"/api/v1/transactions?page=1&page_size=100", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := dataOf(t, decodeBody(t, resp))
	assert.Equal(t, float64(concurrency), data["total_items"])

	var failed, succeeded int
	for _, raw := range data["items"].([]interface{}) {
		entry := raw.(map[string]interface{})
		switch entry["status"] {
		case "SUCCESS":
			succeeded++
		case "FAILED":
			failed++
			assert.Equal(t, entry["balance_before"], entry["balance_after"],
				"failed entry must not move the balance")
		}
	}
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 5, failed)
}

// TestConcurrentOpposingTransfers runs transfers in both directions between
// the same pair of accounts at once. Locking both rows in ascending
// account-number order means the run completes instead of deadlocking, and
// money is conserved across the pair.
func TestConcurrentOpposingTransfers(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceNumber := openAccount(t, app, "Alice Tran", "alice@example.com", "0901234567", "1000.00")
	bobNumber := openAccount(t, app, "Bob Le", "bob@example.com", "0907654321", "1000.00")

	aliceToken := loginToken(t, app, "alice@example.com")
	bobToken := loginToken(t, app, "bob@example.com")

	perDirection := 10

	var wg sync.WaitGroup
	var failures atomic.Int64

	transfer := func(token, receiver string) {
		defer wg.Done()
		body := fmt.Sprintf(`{"receiver_account_number":"%s","amount":"25.00"}`, receiver)
		req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/transactions/transfer",
			bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		r, err := http.DefaultClient.Do(req)
		if err != nil {
			failures.Add(1)
			return
		}
		defer r.Body.Close()
		_, _ = io.ReadAll(r.Body)
		if r.StatusCode != http.StatusCreated {
			failures.Add(1)
		}
	}

	for i := 0; i < perDirection; i++ {
		wg.Add(2)
		go transfer(aliceToken, bobNumber)
		go transfer(bobToken, aliceNumber)
	}

	wg.Wait()

	// Equal flow in both directions: both balances end where they started and
	// the pair's total is conserved.
	assert.Equal(t, int64(0), failures.Load(), "all opposing transfers should succeed")
	aliceFinal := decimal.RequireFromString(myBalance(t, app, aliceToken))
	bobFinal := decimal.RequireFromString(myBalance(t, app, bobToken))
	assert.True(t, aliceFinal.Add(bobFinal).Equal(decimal.RequireFromString("2000.00")),
		"pair total must be conserved, got %s + %s", aliceFinal, bobFinal)
	assert.True(t, aliceFinal.Equal(decimal.RequireFromString("1000.00")), "alice final: %s", aliceFinal)
	assert.True(t, bobFinal.Equal(decimal.RequireFromString("1000.00")), "bob final: %s", bobFinal)
}
