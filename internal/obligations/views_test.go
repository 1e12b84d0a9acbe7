package obligations_test

import (
	"errors"
	"testing"

	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/obligations"
	"github.com/obligo/backend/internal/reconcile"
	"github.com/obligo/backend/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestList() {
	account := suite.createAccount(0)
	suite.createObligation(models.ScheduledTransaction{DueDate: today.AddDays(20)})
	first := suite.createObligation(models.ScheduledTransaction{DueDate: today.AddDays(2), AccountID: &account.ID})
	suite.createObligation(models.ScheduledTransaction{DueDate: today.AddDays(10), AccountID: &account.ID})

	tests := []struct {
		name   string
		filter obligations.Filter
		len    int
		total  int64
	}{
		{"All", obligations.Filter{}, 3, 3},
		{"Account", obligations.Filter{AccountID: account.ID}, 2, 2},
		{"Date range", obligations.Filter{FromDate: today.AddDays(5), UntilDate: today.AddDays(20)}, 2, 2},
		{"Status", obligations.Filter{Status: models.StatusPaid}, 0, 0},
		{"Limit", obligations.Filter{Limit: 1}, 1, 3},
		{"Offset", obligations.Filter{Offset: 2}, 1, 3},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			list, total, err := suite.svc.List(tt.filter)
			assert.Nil(t, err)
			assert.Len(t, list, tt.len)
			assert.Equal(t, tt.total, total)
		})
	}

	list, _, err := suite.svc.List(obligations.Filter{})
	suite.Require().Nil(err)
	suite.Assert().Equal(first.ID, list[0].ID, "obligations are ordered by due date")
}

func (suite *TestSuiteStandard) TestListInvalidStatus() {
	_, _, err := suite.svc.List(obligations.Filter{Status: "LOST"})
	suite.Assert().True(errors.Is(err, validation.ErrValidation), "error is %v", err)
}

func (suite *TestSuiteStandard) TestUpcoming() {
	suite.createObligation(models.ScheduledTransaction{DueDate: today.AddDays(-1)})
	suite.createObligation(models.ScheduledTransaction{DueDate: today})
	suite.createObligation(models.ScheduledTransaction{DueDate: today.AddDays(7)})
	suite.createObligation(models.ScheduledTransaction{DueDate: today.AddDays(8)})
	skipped := suite.createObligation(models.ScheduledTransaction{DueDate: today.AddDays(3)})
	_, err := suite.svc.Skip(skipped.ID)
	suite.Require().Nil(err)

	upcoming, err := suite.svc.Upcoming(7)
	suite.Require().Nil(err)
	suite.Assert().Len(upcoming, 2)

	upcoming, err = suite.svc.Upcoming(-1)
	suite.Require().Nil(err)
	suite.Assert().Len(upcoming, 3, "a negative number of days uses the horizon")
}

func (suite *TestSuiteStandard) TestWarnings() {
	short := suite.createAccount(100)
	rich := suite.createAccount(1000)

	suite.createObligation(models.ScheduledTransaction{Amount: decimal.NewFromInt(80), AccountID: &short.ID, DueDate: today.AddDays(5)})
	suite.createObligation(models.ScheduledTransaction{Amount: decimal.NewFromInt(70), AccountID: &short.ID, DueDate: today.AddDays(9)})
	suite.createObligation(models.ScheduledTransaction{Amount: decimal.NewFromInt(500), AccountID: &short.ID, DueDate: today.AddDays(45)})
	suite.createObligation(models.ScheduledTransaction{Amount: decimal.NewFromInt(300), AccountID: &rich.ID, DueDate: today.AddDays(1)})
	suite.createObligation(models.ScheduledTransaction{Amount: decimal.NewFromInt(300), Type: models.TypeIncome, AccountID: &short.ID, DueDate: today.AddDays(2)})

	warnings, err := suite.svc.Warnings(-1)
	suite.Require().Nil(err)
	suite.Require().Len(warnings, 1)

	w := warnings[0]
	suite.Assert().Equal(short.ID, w.AccountID)
	suite.Assert().True(w.Obligations.Equal(decimal.NewFromInt(150)), "obligations are %s", w.Obligations)
	suite.Assert().True(w.Shortage.Equal(decimal.NewFromInt(50)), "shortage is %s", w.Shortage)
	suite.Assert().Equal(5, w.DaysUntilFirst)
	suite.Assert().Len(w.Affected, 2)

	warnings, err = suite.svc.Warnings(6)
	suite.Require().Nil(err)
	suite.Assert().Empty(warnings, "80 fit into the balance of 100")
	suite.Assert().NotNil(warnings)
}

func (suite *TestSuiteStandard) TestReconcile() {
	account, err := suite.svc.CreateAccount(models.Account{
		Name:           "Checking",
		OpeningBalance: decimal.NewFromInt(100),
		Balance:        decimal.NewFromInt(70),
	})
	suite.Require().Nil(err)

	_, _, err = suite.svc.CreateTransaction(models.Transaction{Amount: decimal.NewFromInt(25), Merchant: "Grocer", Date: today, AccountID: &account.ID})
	suite.Require().Nil(err)
	_, _, err = suite.svc.CreateTransaction(models.Transaction{Amount: decimal.NewFromInt(5), Type: models.TypeIncome, Merchant: "Refund", Date: today, AccountID: &account.ID})
	suite.Require().Nil(err)

	result, err := suite.svc.Reconcile(account.ID)
	suite.Require().Nil(err)

	suite.Assert().False(result.OK)
	suite.Assert().True(result.Expected.Equal(decimal.NewFromInt(80)), "expected is %s", result.Expected)
	suite.Assert().True(result.Drift.Equal(decimal.NewFromInt(-10)), "drift is %s", result.Drift)
	suite.Assert().Equal(reconcile.KindStoredLower, result.Kind)
	suite.Assert().Equal(2, result.Transactions)

	results, err := suite.svc.ReconcileAll()
	suite.Require().Nil(err)
	suite.Assert().Len(results, 1)
}

func (suite *TestSuiteStandard) TestApplyReconciliation() {
	account, err := suite.svc.CreateAccount(models.Account{
		Name:           "Wallet",
		OpeningBalance: decimal.NewFromInt(40),
		Balance:        decimal.NewFromInt(50),
	})
	suite.Require().Nil(err)

	review, err := suite.svc.ApplyReconciliation(account.ID, reconcile.Review, nil)
	suite.Require().Nil(err)
	suite.Assert().False(review.Changed)
	suite.Assert().Equal(reconcile.Review, review.Decision)

	keep, err := suite.svc.ApplyReconciliation(account.ID, reconcile.KeepStored, nil)
	suite.Require().Nil(err)
	suite.Assert().False(keep.Changed)
	suite.Assert().Nil(keep.Transactions)

	_, err = suite.svc.ApplyReconciliation(account.ID, "IGNORE", nil)
	suite.Assert().True(errors.Is(err, validation.ErrValidation), "error is %v", err)

	seen := decimal.NewFromInt(45)
	_, err = suite.svc.ApplyReconciliation(account.ID, reconcile.AcceptComputed, &seen)
	suite.Assert().True(errors.Is(err, reconcile.ErrStale), "error is %v", err)

	stored, err := suite.svc.Account(account.ID)
	suite.Require().Nil(err)
	suite.Assert().True(stored.Balance.Equal(decimal.NewFromInt(50)), "a stale decision must not write")

	seen = decimal.NewFromInt(50)
	accepted, err := suite.svc.ApplyReconciliation(account.ID, reconcile.AcceptComputed, &seen)
	suite.Require().Nil(err)
	suite.Assert().True(accepted.Changed)

	stored, err = suite.svc.Account(account.ID)
	suite.Require().Nil(err)
	suite.Assert().True(stored.Balance.Equal(decimal.NewFromInt(40)), "balance is %s", stored.Balance)

	result, err := suite.svc.Reconcile(account.ID)
	suite.Require().Nil(err)
	suite.Assert().True(result.OK)
}
