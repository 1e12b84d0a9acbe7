// Package projector warns about accounts that cannot cover their upcoming
// obligations.
package projector

import (
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// DefaultHorizonDays is the number of days the projection looks ahead.
const DefaultHorizonDays = 30

// InsufficientFundsWarning reports that the obligations due within the
// horizon exceed the balance of an account.
type InsufficientFundsWarning struct {
	AccountID      uuid.UUID                     `json:"accountId" example:"7a7b1d30-1b4c-4a8f-9f4e-0d5f8a0b1c2d"`
	AccountName    string                        `json:"accountName" example:"Checking"`
	Balance        decimal.Decimal               `json:"balance" example:"100"`
	Obligations    decimal.Decimal               `json:"obligations" example:"100.01"` // Sum of the affected obligations
	Shortage       decimal.Decimal               `json:"shortage" example:"0.01"`
	Affected       []models.ScheduledTransaction `json:"affected"`
	DaysUntilFirst int                           `json:"daysUntilFirst" example:"5"` // 0 if the earliest obligation is due today
}

// Upcoming reports whether o counts against the balance of its account in
// the window from today to today + horizonDays, both inclusive.
func Upcoming(o models.ScheduledTransaction, today types.Date, horizonDays int) bool {
	if o.Status != models.StatusPending || o.Type == models.TypeIncome || o.AccountID == nil {
		return false
	}

	return !o.DueDate.Before(today) && !o.DueDate.After(today.AddDays(horizonDays))
}

// Project returns one warning for every account whose balance minus its
// upcoming obligations is negative. Accounts without upcoming obligations
// never get a warning, even with a negative balance.
//
// Warnings are ordered like accounts.
func Project(accounts []models.Account, obligations []models.ScheduledTransaction, today types.Date, horizonDays int) []InsufficientFundsWarning {
	if horizonDays < 0 {
		horizonDays = DefaultHorizonDays
	}

	upcoming := make(map[uuid.UUID][]models.ScheduledTransaction)
	for _, o := range obligations {
		if Upcoming(o, today, horizonDays) {
			upcoming[*o.AccountID] = append(upcoming[*o.AccountID], o)
		}
	}

	var warnings []InsufficientFundsWarning
	for _, account := range accounts {
		affected := upcoming[account.ID]
		if len(affected) == 0 {
			continue
		}

		sum := decimal.Zero
		for _, o := range affected {
			sum = sum.Add(o.Amount)
		}

		remaining := account.Balance.Sub(sum)
		if !remaining.IsNegative() {
			continue
		}

		slices.SortStableFunc(affected, func(a, b models.ScheduledTransaction) int {
			return a.DueDate.Compare(b.DueDate)
		})

		warnings = append(warnings, InsufficientFundsWarning{
			AccountID:      account.ID,
			AccountName:    account.Name,
			Balance:        account.Balance,
			Obligations:    sum,
			Shortage:       remaining.Neg(),
			Affected:       affected,
			DaysUntilFirst: today.DaysUntil(affected[0].DueDate),
		})
	}

	return warnings
}
