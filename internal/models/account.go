package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account holds money or debt. The balance is signed, revolving debt on
// credit cards and loans is negative.
type Account struct {
	DefaultModel
	Name             string              `json:"name" gorm:"uniqueIndex" example:"Checking"`
	Note             string              `json:"note"`
	Type             AccountType         `json:"type" example:"BANK"`
	Currency         string              `json:"currency" example:"EUR"`
	Balance          decimal.Decimal     `json:"balance" gorm:"type:DECIMAL(20,8)" example:"1520.35"`
	OpeningBalance   decimal.Decimal     `json:"openingBalance" gorm:"type:DECIMAL(20,8)" example:"1000"` // Balance before the first recorded transaction
	TotalCreditLimit decimal.NullDecimal `json:"totalCreditLimit" gorm:"type:DECIMAL(20,8)"`
	LoanPrincipal    decimal.NullDecimal `json:"loanPrincipal" gorm:"type:DECIMAL(20,8)"`
	PaymentDueDay    *int                `json:"paymentDueDay" example:"15"` // Day of month a loan or card payment is due
}

// BeforeSave trims whitespace, defaults the type and normalizes the currency code.
func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)

	if a.Type == "" {
		a.Type = AccountBank
	}

	c, err := normalizeCurrency(a.Currency)
	if err != nil {
		return err
	}
	a.Currency = c

	return nil
}

// Transactions returns all transactions that touch this account, either as
// owning account or as receiving account of a transfer.
func (a Account) Transactions(db *gorm.DB) ([]Transaction, error) {
	var transactions []Transaction

	err := db.
		Where("account_id = ? OR transfer_account_id = ?", a.ID, a.ID).
		Order("date ASC, time ASC, created_at ASC").
		Find(&transactions).Error

	return transactions, err
}

// Export returns all accounts on this instance for export.
func (Account) Export(db *gorm.DB) (json.RawMessage, error) {
	var accounts []Account
	err := db.Unscoped().Where(&Account{}).Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&accounts)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// checkAccount verifies that an account with the ID exists.
func checkAccount(tx *gorm.DB, id *uuid.UUID) error {
	if id == nil {
		return nil
	}

	return tx.First(&Account{}, "id = ?", *id).Error
}
