package models_test

import (
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
)

func (suite *TestSuiteStandard) TestReassignAccount() {
	from := suite.createTestAccount(models.Account{Name: "Old card"})
	to := suite.createTestAccount(models.Account{Name: "New card"})
	other := suite.createTestAccount(models.Account{Name: "Checking"})

	_ = suite.createTestTransaction(models.Transaction{AccountID: &from.ID})
	_ = suite.createTestTransaction(models.Transaction{AccountID: &from.ID})
	_ = suite.createTestTransaction(models.Transaction{AccountID: &other.ID, TransferAccountID: &from.ID, Type: models.TypeTransfer})
	_ = suite.createTestScheduledTransaction(models.ScheduledTransaction{AccountID: &from.ID, DueDate: types.NewDate(2024, 3, 1)})
	_ = suite.createTestMatchRule(models.MatchRule{AccountID: from.ID, Match: "Shop*"})
	untouched := suite.createTestTransaction(models.Transaction{AccountID: &other.ID})

	result, err := models.ReassignAccount(models.DB, from.ID, to.ID)
	suite.Require().Nil(err)

	suite.Assert().Equal(models.ReassignResult{
		Transactions:          2,
		TransferTransactions:  1,
		ScheduledTransactions: 1,
		MatchRules:            1,
	}, result)

	transactions, err := to.Transactions(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Len(transactions, 3)

	var stored models.Transaction
	suite.Require().Nil(models.DB.First(&stored, "id = ?", untouched.ID).Error)
	suite.Assert().Equal(other.ID, *stored.AccountID)
}

func (suite *TestSuiteStandard) TestReassignAccountErrors() {
	account := suite.createTestAccount(models.Account{})

	_, err := models.ReassignAccount(models.DB, account.ID, account.ID)
	suite.Assert().ErrorIs(err, models.ErrReassignSameAccount)

	_, err = models.ReassignAccount(models.DB, account.ID, uuid.New())
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	_, err = models.ReassignAccount(models.DB, uuid.New(), account.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}
