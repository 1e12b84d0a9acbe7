// Package reconcile recomputes account balances from their transactions and
// compares them with the stored balance.
//
// The computation is a reference fold over the full history. It never writes
// a balance, callers decide what to do with a drift.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/internal/validation"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// ErrStale is returned when a decision is applied to a result that no
// longer reflects the account.
var ErrStale = errors.New("the reconciliation result is outdated")

// Tolerance is the largest difference that is still treated as rounding.
// Differences strictly below it are no drift.
var Tolerance = decimal.NewFromFloat(0.01)

// Kind classifies a drift.
type Kind string

const (
	KindStoredHigher Kind = "STORED_HIGHER" // The stored balance is above the computed one
	KindStoredLower  Kind = "STORED_LOWER"
)

// Decision is the choice of the user for a drifted account.
type Decision string

const (
	AcceptComputed Decision = "ACCEPT_COMPUTED"
	KeepStored     Decision = "KEEP_STORED"
	Review         Decision = "REVIEW"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == AcceptComputed || d == KeepStored || d == Review
}

// Reported is the balance an upstream parser reported together with a
// transaction. It is informational and not part of the fold.
type Reported struct {
	TransactionID uuid.UUID       `json:"transactionId"`
	Date          types.Date      `json:"date" example:"2024-03-15"`
	Balance       decimal.Decimal `json:"balance" example:"1520.35"`
}

// Result is the outcome of reconciling one account.
type Result struct {
	AccountID    uuid.UUID       `json:"accountId"`
	OK           bool            `json:"ok" example:"false"`
	Expected     decimal.Decimal `json:"expectedBalance" example:"49.98"` // Computed from the transactions
	Actual       decimal.Decimal `json:"actualBalance" example:"50"`      // Stored on the account
	Drift        decimal.Decimal `json:"drift" example:"0.02"`            // Actual minus expected
	Magnitude    decimal.Decimal `json:"magnitude" example:"0.02"`
	Kind         Kind            `json:"kind,omitempty" example:"STORED_HIGHER"`
	Transactions int             `json:"transactions" example:"42"` // Number of transactions in the fold
	LastReported *Reported       `json:"lastReported,omitempty"`
}

// Effect returns the signed change of the balance of accountID caused by tx.
func Effect(tx models.Transaction, accountID uuid.UUID) decimal.Decimal {
	effect := decimal.Zero

	if tx.AccountID != nil && *tx.AccountID == accountID {
		switch tx.Type {
		case models.TypeIncome:
			effect = effect.Add(tx.Amount)
		case models.TypeExpense, models.TypeObligation, models.TypeTransfer:
			effect = effect.Sub(tx.Amount)
		}
	}

	if tx.Type == models.TypeTransfer && tx.TransferAccountID != nil && *tx.TransferAccountID == accountID {
		effect = effect.Add(tx.Amount)
	}

	return effect
}

// Chronological sorts transactions by date, time of day and creation time.
func Chronological(transactions []models.Transaction) {
	slices.SortStableFunc(transactions, func(a, b models.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		// An empty time sorts before any time of the same day
		if a.Time != b.Time {
			if a.Time < b.Time {
				return -1
			}
			return 1
		}

		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// Account folds the transactions of account starting at its opening
// balance and compares the result with the stored balance. Transactions not
// touching the account are ignored. The slice is sorted in place.
func Account(account models.Account, transactions []models.Transaction) Result {
	Chronological(transactions)

	result := Result{
		AccountID: account.ID,
		Actual:    account.Balance,
	}

	expected := account.OpeningBalance
	for _, tx := range transactions {
		touches := (tx.AccountID != nil && *tx.AccountID == account.ID) ||
			(tx.TransferAccountID != nil && *tx.TransferAccountID == account.ID)
		if !touches {
			continue
		}

		expected = expected.Add(Effect(tx, account.ID))
		result.Transactions++

		if tx.AccountID != nil && *tx.AccountID == account.ID {
			if b, ok := tx.AvailableBalance(); ok {
				result.LastReported = &Reported{TransactionID: tx.ID, Date: tx.Date, Balance: b}
			}
		}
	}

	result.Expected = expected
	result.Drift = account.Balance.Sub(expected)
	result.Magnitude = result.Drift.Abs()
	result.OK = result.Magnitude.LessThan(Tolerance)

	if !result.OK {
		if result.Drift.IsPositive() {
			result.Kind = KindStoredHigher
		} else {
			result.Kind = KindStoredLower
		}
	}

	return result
}

// Apply carries out a decision for a reconciled account. It returns true if
// the account was modified and must be saved.
//
// ACCEPT_COMPUTED sets the balance to the computed one. KEEP_STORED and
// REVIEW leave the account as it is.
func Apply(account *models.Account, result Result, decision Decision) (bool, error) {
	var errs validation.Errors
	if !decision.Valid() {
		errs.Add("decision", "decision must be one of ACCEPT_COMPUTED, KEEP_STORED, REVIEW")
		return false, errs
	}

	if result.AccountID != account.ID {
		errs.Add("accountId", "the reconciliation result belongs to account %s, not %s", result.AccountID, account.ID)
		return false, errs
	}

	if decision != AcceptComputed || result.OK {
		return false, nil
	}

	if !account.Balance.Equal(result.Actual) {
		return false, fmt.Errorf("%w: account %s now has a balance of %s, the reconciliation saw %s", ErrStale, account.ID, account.Balance, result.Actual)
	}

	account.Balance = result.Expected
	return true, nil
}
