package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ParsedMeta is a snapshot of what an upstream parser reported for a
// transaction at the time it was created.
type ParsedMeta struct {
	AvailableBalance *decimal.Decimal `json:"availableBalance,omitempty"` // Account balance reported together with the transaction
	Source           string           `json:"source,omitempty"`           // Name of the parser
}

// Transaction is a real financial event. Once created, it is only changed by
// explicit edits.
type Transaction struct {
	DefaultModel
	Amount            decimal.Decimal                `json:"amount" gorm:"type:DECIMAL(20,8)" example:"14.03"` // Positive magnitude
	Currency          string                         `json:"currency" example:"EUR"`
	Type              TransactionType                `json:"type" example:"EXPENSE"`
	Date              types.Date                     `json:"date" gorm:"index" example:"2024-03-15"`
	Time              string                         `json:"time" example:"14:05"` // Optional time of day as HH:MM, used for ordering
	Merchant          string                         `json:"merchant" example:"City Power"`
	Category          string                         `json:"category" example:"Utilities"`
	AccountID         *uuid.UUID                     `json:"accountId" gorm:"index" example:"7a7b1d30-1b4c-4a8f-9f4e-0d5f8a0b1c2d"`  // Owning account. Nil for orphaned transactions
	TransferAccountID *uuid.UUID                     `json:"transferAccountId" example:"c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"`       // Receiving account of a TRANSFER
	RawText           string                         `json:"rawText" example:"CHQ 001004 CITY POWER"`                                // Free text or OCR provenance
	ParsedMeta        datatypes.JSONType[ParsedMeta] `json:"parsedMeta" swaggertype:"object"`
}

// BeforeSave trims whitespace, normalizes the currency and verifies the
// amount and type.
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Merchant = strings.TrimSpace(t.Merchant)
	t.Category = strings.TrimSpace(t.Category)
	t.RawText = strings.TrimSpace(t.RawText)
	t.Time = strings.TrimSpace(t.Time)
	if t.Time != "" {
		parsed, err := time.Parse("15:04", t.Time)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidTime, t.Time)
		}
		t.Time = parsed.Format("15:04")
	}

	if t.AccountID != nil && *t.AccountID == uuid.Nil {
		t.AccountID = nil
	}

	if t.TransferAccountID != nil && *t.TransferAccountID == uuid.Nil {
		t.TransferAccountID = nil
	}

	if t.Type == "" {
		t.Type = TypeExpense
	}

	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}

	if !t.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	c, err := normalizeCurrency(t.Currency)
	if err != nil {
		return err
	}
	t.Currency = c

	return nil
}

// BeforeCreate verifies that referenced accounts exist.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	_ = t.DefaultModel.BeforeCreate(tx)

	err := checkAccount(tx, t.AccountID)
	if err != nil {
		return err
	}

	return checkAccount(tx, t.TransferAccountID)
}

// AvailableBalance returns the balance an upstream parser reported together
// with the transaction, if any.
func (t Transaction) AvailableBalance() (decimal.Decimal, bool) {
	b := t.ParsedMeta.Data().AvailableBalance
	if b == nil {
		return decimal.Zero, false
	}
	return *b, true
}

// Orphaned reports whether the transaction has no owning account.
func (t Transaction) Orphaned() bool {
	return t.AccountID == nil
}

// Export returns all transactions on this instance for export.
func (Transaction) Export(db *gorm.DB) (json.RawMessage, error) {
	var transactions []Transaction
	err := db.Unscoped().Where(&Transaction{}).Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&transactions)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// normalizeCurrency upper-cases an ISO 4217 code and verifies it. An empty
// currency is allowed and stays empty.
func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return c, nil
	}

	unit, err := currency.ParseISO(c)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidCurrency, c)
	}

	return unit.String(), nil
}
