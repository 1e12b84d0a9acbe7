package matching

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/lifecycle"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"golang.org/x/exp/slices"
)

// MatchCandidate is an obligation suggested for a transaction.
type MatchCandidate struct {
	Obligation models.ScheduledTransaction `json:"obligation"`
	Score
}

// ChequePairingCandidate is a transaction suggested for an obligation.
type ChequePairingCandidate struct {
	Transaction models.Transaction `json:"transaction"`
	Score
}

// Claims maps the ID of each matched transaction to the obligation that
// holds it.
type Claims map[uuid.UUID]uuid.UUID

// ClaimsOf collects the matched transactions of obligations.
func ClaimsOf(obligations []models.ScheduledTransaction) Claims {
	claims := make(Claims)
	for _, o := range obligations {
		if o.MatchedTransactionID != nil {
			claims[*o.MatchedTransactionID] = o.ID
		}
	}
	return claims
}

// IneligibleError explains why a pair cannot be matched.
type IneligibleError struct {
	Reason string
}

func (e *IneligibleError) Error() string {
	return e.Reason
}

// Eligible returns nil if the pair may be scored and an *IneligibleError
// otherwise.
func Eligible(o models.ScheduledTransaction, tx models.Transaction, claims Claims) error {
	if !o.Open() {
		return &IneligibleError{fmt.Sprintf("scheduled transaction %s is %s", o.ID, o.Status)}
	}

	if !tx.Type.Payable() {
		return &IneligibleError{fmt.Sprintf("transaction %s is of type %s, only EXPENSE and OBLIGATION can pay a scheduled transaction", tx.ID, tx.Type)}
	}

	if owner, ok := claims[tx.ID]; ok && owner != o.ID {
		return &IneligibleError{fmt.Sprintf("transaction %s is already matched to scheduled transaction %s", tx.ID, owner)}
	}

	if o.AccountID != nil && tx.AccountID != nil && *o.AccountID != *tx.AccountID {
		return &IneligibleError{fmt.Sprintf("transaction %s belongs to a different account than scheduled transaction %s", tx.ID, o.ID)}
	}

	if daysApart(o, tx) > WindowDays {
		return &IneligibleError{fmt.Sprintf("transaction %s is more than %d days away from the due date %s", tx.ID, WindowDays, o.DueDate)}
	}

	return nil
}

// ForTransaction returns the obligations that tx may settle, best first.
// Obligations scoring below the LOW band are omitted. It only suggests,
// nothing is modified.
func ForTransaction(tx models.Transaction, obligations []models.ScheduledTransaction) []MatchCandidate {
	claims := ClaimsOf(obligations)

	var candidates []MatchCandidate
	for _, o := range obligations {
		if Eligible(o, tx, claims) != nil {
			continue
		}

		score := Evaluate(o, tx, Forward)
		if score.Points < LowThreshold {
			continue
		}
		candidates = append(candidates, MatchCandidate{Obligation: o, Score: score})
	}

	slices.SortFunc(candidates, func(a, b MatchCandidate) int {
		return compare(a.Score, b.Score, a.Obligation.ID, b.Obligation.ID)
	})

	return candidates
}

// ForObligation returns the transactions that may settle o, best first.
// obligations are all known obligations, they decide which transactions are
// already claimed.
func ForObligation(o models.ScheduledTransaction, transactions []models.Transaction, obligations []models.ScheduledTransaction) []ChequePairingCandidate {
	claims := ClaimsOf(obligations)

	var candidates []ChequePairingCandidate
	for _, tx := range transactions {
		if Eligible(o, tx, claims) != nil {
			continue
		}

		score := Evaluate(o, tx, Reverse)
		if score.Points < LowThreshold {
			continue
		}
		candidates = append(candidates, ChequePairingCandidate{Transaction: tx, Score: score})
	}

	slices.SortFunc(candidates, func(a, b ChequePairingCandidate) int {
		return compare(a.Score, b.Score, a.Transaction.ID, b.Transaction.ID)
	})

	return candidates
}

// compare orders by descending score, then by closeness in time, then by ID.
func compare(a, b Score, idA, idB uuid.UUID) int {
	if a.Points != b.Points {
		return b.Points - a.Points
	}

	if a.DaysApart != b.DaysApart {
		return a.DaysApart - b.DaysApart
	}

	return bytes.Compare(idA[:], idB[:])
}

// Confirm pairs o with tx and marks o as PAID.
//
// Eligibility is checked again against the current obligations since the
// suggestion might be outdated. If the pair is no longer eligible, a
// *lifecycle.StateError with the reason is returned and o is unchanged.
func Confirm(o *models.ScheduledTransaction, tx models.Transaction, obligations []models.ScheduledTransaction, today types.Date) error {
	err := Eligible(*o, tx, ClaimsOf(obligations))
	if err != nil {
		return &lifecycle.StateError{
			ID:     o.ID,
			From:   o.Status,
			To:     models.StatusPaid,
			Reason: err.Error(),
		}
	}

	return lifecycle.MarkPaid(o, &tx.ID, today)
}
