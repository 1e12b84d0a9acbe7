package models_test

import (
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestScheduledTransactionDefaults() {
	o := suite.createTestScheduledTransaction(models.ScheduledTransaction{
		Merchant: " Landlord ",
		DueDate:  types.NewDate(2024, 2, 15),
	})

	var stored models.ScheduledTransaction
	suite.Require().Nil(models.DB.First(&stored, "id = ?", o.ID).Error)

	suite.Assert().Equal("Landlord", stored.Merchant)
	suite.Assert().Equal(models.StatusPending, stored.Status)
	suite.Assert().Equal(models.TypeObligation, stored.Type)
	suite.Assert().Equal(models.PatternOnce, stored.RecurrencePattern)
	suite.Assert().Equal(1, stored.RecurrenceInterval)
	suite.Assert().True(stored.RecurrenceAnchor.Equal(types.NewDate(2024, 2, 15)))
	suite.Assert().True(stored.Open())
}

func (suite *TestSuiteStandard) TestScheduledTransactionKeepsID() {
	id := uuid.New()
	o := suite.createTestScheduledTransaction(models.ScheduledTransaction{
		DefaultModel: models.DefaultModel{ID: id},
		DueDate:      types.NewDate(2024, 2, 15),
	})

	suite.Assert().Equal(id, o.ID)
}

func (suite *TestSuiteStandard) TestScheduledTransactionAmountNotPositive() {
	err := models.DB.Create(&models.ScheduledTransaction{Amount: decimal.Zero, DueDate: types.NewDate(2024, 2, 15)}).Error
	suite.Assert().ErrorIs(err, models.ErrAmountNotPositive)
}

func (suite *TestSuiteStandard) TestScheduledTransactionNonExistingAccount() {
	id := uuid.New()
	err := models.DB.Create(&models.ScheduledTransaction{Amount: decimal.NewFromInt(1), AccountID: &id}).Error
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}
