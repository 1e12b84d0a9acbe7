package obligations

import (
	"errors"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/lifecycle"
	"github.com/obligo/backend/internal/matching"
	"github.com/obligo/backend/internal/metrics"
	"github.com/obligo/backend/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var openStatuses = []models.Status{models.StatusPending, models.StatusOverdue}

// CreateTransaction stores a transaction and returns the obligations it
// might settle. Orphaned transactions are assigned an account by the match
// rules first. Nothing is paired automatically.
func (s *Service) CreateTransaction(transaction models.Transaction) (models.Transaction, []matching.MatchCandidate, error) {
	transaction.ID = uuid.Nil

	if transaction.Orphaned() {
		var rules []models.MatchRule
		err := s.db.Order("priority ASC, match ASC").Find(&rules).Error
		if err != nil {
			return models.Transaction{}, nil, err
		}

		if accountID, ruleID, ok := models.SuggestAccount(rules, transaction.Merchant); ok {
			transaction.AccountID = &accountID
			log.Debug().Str("merchant", transaction.Merchant).Str("matchRule", ruleID.String()).Msg("assigned account by match rule")
		}
	}

	err := s.db.Create(&transaction).Error
	if err != nil {
		return models.Transaction{}, nil, err
	}

	candidates, err := s.Suggestions(transaction.ID)
	if err != nil {
		return transaction, nil, err
	}

	return transaction, candidates, nil
}

// claimedBy loads the obligations that hold any of the transactions.
func claimedBy(db *gorm.DB, transactionIDs []uuid.UUID) ([]models.ScheduledTransaction, error) {
	var claims []models.ScheduledTransaction
	if len(transactionIDs) == 0 {
		return claims, nil
	}

	err := db.Where("matched_transaction_id IN ?", transactionIDs).Find(&claims).Error
	return claims, err
}

// Suggestions returns the open obligations that a transaction may settle,
// best first.
func (s *Service) Suggestions(transactionID uuid.UUID) ([]matching.MatchCandidate, error) {
	var transaction models.Transaction
	err := s.db.First(&transaction, "id = ?", transactionID).Error
	if err != nil {
		return nil, err
	}

	var obligations []models.ScheduledTransaction
	err = s.db.
		Where("status IN ? AND due_date BETWEEN ? AND ?", openStatuses, transaction.Date.AddDays(-matching.WindowDays), transaction.Date.AddDays(matching.WindowDays)).
		Find(&obligations).Error
	if err != nil {
		return nil, err
	}

	claims, err := claimedBy(s.db, []uuid.UUID{transaction.ID})
	if err != nil {
		return nil, err
	}

	candidates := matching.ForTransaction(transaction, append(obligations, claims...))
	metrics.MatchCandidates.WithLabelValues(matching.Forward.String()).Observe(float64(len(candidates)))
	return candidates, nil
}

// Candidates returns the transactions that may settle an obligation, best
// first.
func (s *Service) Candidates(obligationID uuid.UUID) ([]matching.ChequePairingCandidate, error) {
	o, err := s.Get(obligationID)
	if err != nil {
		return nil, err
	}

	if !o.Open() {
		return []matching.ChequePairingCandidate{}, nil
	}

	var transactions []models.Transaction
	err = s.db.
		Where("type IN ? AND date BETWEEN ? AND ?", []models.TransactionType{models.TypeExpense, models.TypeObligation}, o.DueDate.AddDays(-matching.WindowDays), o.DueDate.AddDays(matching.WindowDays)).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(transactions))
	for _, t := range transactions {
		ids = append(ids, t.ID)
	}

	claims, err := claimedBy(s.db, ids)
	if err != nil {
		return nil, err
	}

	candidates := matching.ForObligation(o, transactions, claims)
	metrics.MatchCandidates.WithLabelValues(matching.Reverse.String()).Observe(float64(len(candidates)))
	return candidates, nil
}

// Confirm pairs an obligation with a transaction and marks it as PAID.
//
// Eligibility is checked again inside a database transaction and the write
// only succeeds if the obligation is still open and no other obligation
// holds the transaction. Two concurrent confirmations for the same
// transaction therefore never both succeed.
func (s *Service) Confirm(obligationID, transactionID uuid.UUID) (Transition, error) {
	s.confirmMu.Lock()
	defer s.confirmMu.Unlock()

	var t Transition
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o models.ScheduledTransaction
		if err := tx.First(&o, "id = ?", obligationID).Error; err != nil {
			return err
		}

		var transaction models.Transaction
		if err := tx.First(&transaction, "id = ?", transactionID).Error; err != nil {
			return err
		}

		claims, err := claimedBy(tx, []uuid.UUID{transactionID})
		if err != nil {
			return err
		}

		from := o.Status
		if err := matching.Confirm(&o, transaction, claims, s.today()); err != nil {
			metrics.MatchesRejected.WithLabelValues("validation").Inc()
			return err
		}

		q := tx.Model(&models.ScheduledTransaction{}).
			Where("id = ? AND status = ?", o.ID, from).
			Where("NOT EXISTS (SELECT 1 FROM scheduled_transactions AS claims WHERE claims.matched_transaction_id = ? AND claims.deleted_at IS NULL)", transactionID).
			UpdateColumns(map[string]any{
				"status":                 o.Status,
				"matched_transaction_id": o.MatchedTransactionID,
				"paid_on":                o.PaidOn,
			})
		if q.Error != nil {
			return q.Error
		}

		if q.RowsAffected == 0 {
			metrics.MatchesRejected.WithLabelValues("commit").Inc()
			return &lifecycle.StateError{
				ID:     o.ID,
				From:   from,
				To:     models.StatusPaid,
				Reason: ErrConcurrentUpdate.Error(),
			}
		}

		next, err := s.settle(tx, o)
		if err != nil {
			return err
		}

		t = Transition{Obligation: o, Next: next}
		return nil
	})
	if err != nil {
		var stateErr *lifecycle.StateError
		if errors.As(err, &stateErr) {
			log.Info().Str("obligation", obligationID.String()).Str("transaction", transactionID.String()).Msg(stateErr.Error())
		}
		return Transition{}, err
	}

	metrics.MatchesConfirmed.Inc()
	log.Info().Str("obligation", obligationID.String()).Str("transaction", transactionID.String()).Msg("confirmed pairing")
	return t, nil
}
