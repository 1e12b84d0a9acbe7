package obligations

import (
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/metrics"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/projector"
	"github.com/obligo/backend/internal/reconcile"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/internal/validation"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filter selects obligations for List. Zero values do not filter.
type Filter struct {
	Status    models.Status `form:"status"`
	AccountID uuid.UUID     `form:"account"`
	SeriesID  uuid.UUID     `form:"series"`
	FromDate  types.Date    `form:"fromDate"`
	UntilDate types.Date    `form:"untilDate"`
	Offset    uint          `form:"offset"`
	Limit     int           `form:"limit"`
}

// List returns the obligations selected by f ordered by due date and the
// total number of matches before offset and limit.
func (s *Service) List(f Filter) ([]models.ScheduledTransaction, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		var errs validation.Errors
		errs.Add("status", "status must be one of PENDING, PAID, OVERDUE, SKIPPED")
		return nil, 0, errs
	}

	q := s.db.Model(&models.ScheduledTransaction{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	if f.AccountID != uuid.Nil {
		q = q.Where("account_id = ?", f.AccountID)
	}

	if f.SeriesID != uuid.Nil {
		q = q.Where("series_id = ?", f.SeriesID)
	}

	if !f.FromDate.IsZero() {
		q = q.Where("due_date >= ?", f.FromDate)
	}

	if !f.UntilDate.IsZero() {
		q = q.Where("due_date <= ?", f.UntilDate)
	}

	var total int64
	err := q.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	// Default limit is no limit
	limit := f.Limit
	if limit == 0 {
		limit = -1
	}

	var obligations []models.ScheduledTransaction
	err = q.Order("due_date ASC, created_at ASC").Offset(int(f.Offset)).Limit(limit).Find(&obligations).Error
	if err != nil {
		return nil, 0, err
	}

	return obligations, total, nil
}

// Upcoming returns the PENDING obligations due within the next days,
// including today.
func (s *Service) Upcoming(days int) ([]models.ScheduledTransaction, error) {
	if days < 0 {
		days = s.horizon
	}

	today := s.today()
	obligations, _, err := s.List(Filter{
		Status:    models.StatusPending,
		FromDate:  today,
		UntilDate: today.AddDays(days),
	})
	return obligations, err
}

// Warnings projects all accounts over the horizon. A negative horizon uses
// the default of the service.
func (s *Service) Warnings(horizonDays int) ([]projector.InsufficientFundsWarning, error) {
	if horizonDays < 0 {
		horizonDays = s.horizon
	}

	var accounts []models.Account
	err := s.db.Order("name ASC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	today := s.today()
	var obligations []models.ScheduledTransaction
	err = s.db.
		Where("status = ? AND account_id IS NOT NULL AND due_date BETWEEN ? AND ?", models.StatusPending, today, today.AddDays(horizonDays)).
		Find(&obligations).Error
	if err != nil {
		return nil, err
	}

	warnings := projector.Project(accounts, obligations, today, horizonDays)
	metrics.InsufficientFundsWarnings.Set(float64(len(warnings)))

	if warnings == nil {
		warnings = []projector.InsufficientFundsWarning{}
	}
	return warnings, nil
}

// Reconcile recomputes the balance of an account.
func (s *Service) Reconcile(accountID uuid.UUID) (reconcile.Result, error) {
	var account models.Account
	err := s.db.First(&account, "id = ?", accountID).Error
	if err != nil {
		return reconcile.Result{}, err
	}

	transactions, err := account.Transactions(s.db)
	if err != nil {
		return reconcile.Result{}, err
	}

	result := reconcile.Account(account, transactions)
	if !result.OK {
		metrics.ReconciliationDrift.WithLabelValues(string(result.Kind)).Inc()
		log.Warn().Str("account", account.ID.String()).Str("drift", result.Drift.String()).Str("kind", string(result.Kind)).Msg("balance drift")
	}

	return result, nil
}

// ReconcileAll reconciles every account, ordered by name.
func (s *Service) ReconcileAll() ([]reconcile.Result, error) {
	var accounts []models.Account
	err := s.db.Order("name ASC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	results := make([]reconcile.Result, 0, len(accounts))
	for _, a := range accounts {
		r, err := s.Reconcile(a.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, nil
}

// Resolution is the outcome of applying a reconciliation decision. For
// REVIEW, Transactions holds the history in the order of the fold.
type Resolution struct {
	Result       reconcile.Result     `json:"result"`
	Decision     reconcile.Decision   `json:"decision"`
	Changed      bool                 `json:"changed"`
	Account      models.Account       `json:"account"`
	Transactions []models.Transaction `json:"transactions,omitempty"`
}

// ApplyReconciliation reconciles an account and applies decision to it.
//
// seen is the stored balance the caller based the decision on. If it is set
// and the balance changed since, reconcile.ErrStale is returned and nothing
// is written.
func (s *Service) ApplyReconciliation(accountID uuid.UUID, decision reconcile.Decision, seen *decimal.Decimal) (Resolution, error) {
	var resolution Resolution

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
			return err
		}

		transactions, err := account.Transactions(tx)
		if err != nil {
			return err
		}

		result := reconcile.Account(account, transactions)
		if seen != nil {
			result.Actual = *seen
		}

		changed, err := reconcile.Apply(&account, result, decision)
		if err != nil {
			return err
		}

		if changed {
			err := tx.Model(&models.Account{}).Where("id = ?", account.ID).UpdateColumn("balance", account.Balance).Error
			if err != nil {
				return err
			}

			log.Info().Str("account", account.ID.String()).Str("from", result.Actual.String()).Str("to", account.Balance.String()).Msg("accepted computed balance")
		}

		resolution = Resolution{
			Result:   result,
			Decision: decision,
			Changed:  changed,
			Account:  account,
		}

		if decision == reconcile.Review {
			resolution.Transactions = transactions
		}

		return nil
	})

	return resolution, err
}
