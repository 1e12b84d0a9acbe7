package models_test

import (
	"encoding/json"

	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestAccountBeforeSave() {
	account := models.Account{Name: "  Checking ", Currency: "eur"}

	err := account.BeforeSave(models.DB)
	suite.Require().Nil(err)

	suite.Assert().Equal("Checking", account.Name)
	suite.Assert().Equal("EUR", account.Currency)
	suite.Assert().Equal(models.AccountBank, account.Type, "type must default to BANK")
}

func (suite *TestSuiteStandard) TestAccountInvalidCurrency() {
	account := models.Account{Name: "Wallet", Currency: "XYZW"}

	err := models.DB.Create(&account).Error
	suite.Assert().ErrorIs(err, models.ErrInvalidCurrency)
}

func (suite *TestSuiteStandard) TestAccountNameNotUnique() {
	_ = suite.createTestAccount(models.Account{Name: "Savings"})

	err := models.DB.Create(&models.Account{Name: "Savings"}).Error
	suite.Assert().ErrorIs(err, models.ErrAccountNameNotUnique)
}

func (suite *TestSuiteStandard) TestAccountTransactions() {
	account := suite.createTestAccount(models.Account{})
	other := suite.createTestAccount(models.Account{})

	late := suite.createTestTransaction(models.Transaction{AccountID: &account.ID, Date: types.NewDate(2024, 3, 2)})
	early := suite.createTestTransaction(models.Transaction{AccountID: &account.ID, Date: types.NewDate(2024, 3, 1), Time: "18:00"})
	morning := suite.createTestTransaction(models.Transaction{AccountID: &account.ID, Date: types.NewDate(2024, 3, 1), Time: "08:00"})
	transfer := suite.createTestTransaction(models.Transaction{AccountID: &other.ID, TransferAccountID: &account.ID, Type: models.TypeTransfer, Date: types.NewDate(2024, 3, 3)})
	_ = suite.createTestTransaction(models.Transaction{AccountID: &other.ID, Date: types.NewDate(2024, 3, 1)})

	transactions, err := account.Transactions(models.DB)
	suite.Require().Nil(err)
	suite.Require().Len(transactions, 4)

	suite.Assert().Equal(morning.ID, transactions[0].ID)
	suite.Assert().Equal(early.ID, transactions[1].ID)
	suite.Assert().Equal(late.ID, transactions[2].ID)
	suite.Assert().Equal(transfer.ID, transactions[3].ID)
}

func (suite *TestSuiteStandard) TestAccountExport() {
	for range 2 {
		_ = suite.createTestAccount(models.Account{Balance: decimal.NewFromInt(5)})
	}

	raw, err := models.Account{}.Export(models.DB)
	suite.Require().Nil(err, "account export failed")

	var accounts []models.Account
	err = json.Unmarshal(raw, &accounts)
	suite.Require().Nil(err, "JSON could not be unmarshaled")

	suite.Require().Len(accounts, 2, "number of accounts in export is wrong")
}
