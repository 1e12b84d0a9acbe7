package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ScheduledTransaction is an obligation: a projected payment that is
// tracked until it is paid, skipped or overdue.
type ScheduledTransaction struct {
	DefaultModel
	Amount               decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"250"`
	Currency             string          `json:"currency" example:"EUR"`
	Merchant             string          `json:"merchant" example:"Landlord"`
	Category             string          `json:"category" example:"Rent"`
	Type                 TransactionType `json:"type" example:"OBLIGATION"`
	AccountID            *uuid.UUID      `json:"accountId" gorm:"index" example:"7a7b1d30-1b4c-4a8f-9f4e-0d5f8a0b1c2d"`
	DueDate              types.Date      `json:"dueDate" gorm:"index" example:"2024-02-15"`
	RecurrencePattern    Pattern         `json:"recurrencePattern" example:"MONTHLY"`
	RecurrenceInterval   int             `json:"recurrenceInterval" example:"1"`
	RecurrenceEndDate    *types.Date     `json:"recurrenceEndDate" example:"2024-12-31"`
	RecurrenceAnchor     types.Date      `json:"recurrenceAnchor" example:"2024-01-15"` // Due date of occurrence 0 of a rolling recurrence
	OccurrenceIndex      int             `json:"occurrenceIndex" example:"1"`           // Position of this instance relative to the anchor
	Status               Status          `json:"status" gorm:"index" example:"PENDING"`
	SeriesID             *uuid.UUID      `json:"seriesId" gorm:"index" example:"0b9d4f3c-50f1-4c1e-b1aa-6dca4c3e2f10"`
	IsCheque             bool            `json:"isCheque"`
	ChequeNumber         string          `json:"chequeNumber" example:"1001"`
	ChequeImage          string          `json:"chequeImage" example:"cheques/1001.jpg"`
	MatchedTransactionID *uuid.UUID      `json:"matchedTransactionId" gorm:"index"`
	PaidOn               *types.Date     `json:"paidOn" example:"2024-02-14"`
	Note                 string          `json:"note"`
}

// BeforeSave trims whitespace, sets defaults and verifies amount and
// currency.
func (s *ScheduledTransaction) BeforeSave(_ *gorm.DB) error {
	s.Merchant = strings.TrimSpace(s.Merchant)
	s.Category = strings.TrimSpace(s.Category)
	s.ChequeNumber = strings.TrimSpace(s.ChequeNumber)
	s.Note = strings.TrimSpace(s.Note)

	if s.AccountID != nil && *s.AccountID == uuid.Nil {
		s.AccountID = nil
	}

	if s.Status == "" {
		s.Status = StatusPending
	}

	if s.Type == "" {
		s.Type = TypeObligation
	}

	if s.RecurrencePattern == "" {
		s.RecurrencePattern = PatternOnce
	}

	if s.RecurrenceInterval == 0 {
		s.RecurrenceInterval = 1
	}

	if s.RecurrenceAnchor.IsZero() {
		s.RecurrenceAnchor = s.DueDate
	}

	if !s.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	c, err := normalizeCurrency(s.Currency)
	if err != nil {
		return err
	}
	s.Currency = c

	return nil
}

// BeforeCreate verifies that the referenced account exists.
func (s *ScheduledTransaction) BeforeCreate(tx *gorm.DB) error {
	_ = s.DefaultModel.BeforeCreate(tx)

	return checkAccount(tx, s.AccountID)
}

// Open reports whether the obligation still awaits payment.
func (s ScheduledTransaction) Open() bool {
	return s.Status.Open()
}

// Export returns all scheduled transactions on this instance for export.
func (ScheduledTransaction) Export(db *gorm.DB) (json.RawMessage, error) {
	var scheduled []ScheduledTransaction
	err := db.Unscoped().Where(&ScheduledTransaction{}).Find(&scheduled).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&scheduled)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
