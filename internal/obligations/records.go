package obligations

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/validation"
	"gorm.io/gorm"
)

// validateAccount checks the fields of an account that the database does not.
func validateAccount(a models.Account) validation.Errors {
	var errs validation.Errors

	if a.Name == "" {
		errs.Add("name", "name is required")
	}

	if a.Type != "" && !a.Type.Valid() {
		errs.Add("type", "type must be one of CASH, BANK, CREDIT_CARD, LOAN, WALLET")
	}

	if a.PaymentDueDay != nil && (*a.PaymentDueDay < 1 || *a.PaymentDueDay > 31) {
		errs.Add("paymentDueDay", "paymentDueDay must be between 1 and 31")
	}

	return errs
}

// CreateAccount validates and stores an account.
func (s *Service) CreateAccount(a models.Account) (models.Account, error) {
	if err := validateAccount(a).Err(); err != nil {
		return models.Account{}, err
	}

	a.ID = uuid.Nil
	err := s.db.Create(&a).Error
	return a, err
}

// Accounts returns all accounts ordered by name.
func (s *Service) Accounts() ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.Order("name ASC").Find(&accounts).Error
	return accounts, err
}

// Account returns a single account.
func (s *Service) Account(id uuid.UUID) (models.Account, error) {
	var a models.Account
	err := s.db.First(&a, "id = ?", id).Error
	return a, err
}

// DeleteAccount deletes an account that nothing references anymore.
func (s *Service) DeleteAccount(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var a models.Account
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return err
		}

		var references int64
		for _, q := range []*gorm.DB{
			tx.Model(&models.Transaction{}).Where("account_id = ? OR transfer_account_id = ?", id, id),
			tx.Model(&models.ScheduledTransaction{}).Where("account_id = ?", id),
			tx.Model(&models.MatchRule{}).Where("account_id = ?", id),
		} {
			var n int64
			if err := q.Count(&n).Error; err != nil {
				return err
			}
			references += n
		}

		if references > 0 {
			return fmt.Errorf("%w: %d records reference it, reassign them first", models.ErrAccountInUse, references)
		}

		return tx.Delete(&a).Error
	})
}

// Reassign moves all records from one account to another.
func (s *Service) Reassign(from, to uuid.UUID) (models.ReassignResult, error) {
	return models.ReassignAccount(s.db, from, to)
}

// TransactionFilter selects transactions. Zero values do not filter.
type TransactionFilter struct {
	AccountID uuid.UUID `form:"account"`
	Orphaned  bool      `form:"orphaned"`
	Offset    uint      `form:"offset"`
	Limit     int       `form:"limit"`
}

// Transactions returns the transactions selected by f, newest first, and
// the total number of matches before offset and limit.
func (s *Service) Transactions(f TransactionFilter) ([]models.Transaction, int64, error) {
	q := s.db.Model(&models.Transaction{})

	if f.AccountID != uuid.Nil {
		q = q.Where("account_id = ? OR transfer_account_id = ?", f.AccountID, f.AccountID)
	}

	if f.Orphaned {
		q = q.Where("account_id IS NULL")
	}

	var total int64
	err := q.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit == 0 {
		limit = -1
	}

	var transactions []models.Transaction
	err = q.Order("date DESC, time DESC, created_at DESC").Offset(int(f.Offset)).Limit(limit).Find(&transactions).Error
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// Transaction returns a single transaction.
func (s *Service) Transaction(id uuid.UUID) (models.Transaction, error) {
	var t models.Transaction
	err := s.db.First(&t, "id = ?", id).Error
	return t, err
}

// DeleteTransaction deletes a transaction. A transaction that settled an
// obligation cannot be deleted.
func (s *Service) DeleteTransaction(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return err
		}

		var holder models.ScheduledTransaction
		err := tx.Where("matched_transaction_id = ?", id).Limit(1).Find(&holder).Error
		if err != nil {
			return err
		}

		if holder.ID != uuid.Nil {
			return fmt.Errorf("%w: it paid scheduled transaction %s", models.ErrTransactionMatched, holder.ID)
		}

		return tx.Delete(&t).Error
	})
}

// CreateMatchRule stores a match rule.
func (s *Service) CreateMatchRule(r models.MatchRule) (models.MatchRule, error) {
	var errs validation.Errors
	if r.Match == "" {
		errs.Add("match", "match is required")
	}
	if r.AccountID == uuid.Nil {
		errs.Add("accountId", "accountId is required")
	}
	if err := errs.Err(); err != nil {
		return models.MatchRule{}, err
	}

	r.ID = uuid.Nil
	err := s.db.Create(&r).Error
	return r, err
}

// MatchRules returns all match rules in the order they are evaluated.
func (s *Service) MatchRules() ([]models.MatchRule, error) {
	var rules []models.MatchRule
	err := s.db.Order("priority ASC, match ASC").Find(&rules).Error
	return rules, err
}

// DeleteMatchRule deletes a match rule.
func (s *Service) DeleteMatchRule(id uuid.UUID) error {
	var r models.MatchRule
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		return err
	}

	return s.db.Delete(&r).Error
}
