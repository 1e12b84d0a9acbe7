package lifecycle

import (
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/internal/validation"
	"github.com/shopspring/decimal"
)

// ChequeRequest adds a cheque to an existing series.
type ChequeRequest struct {
	DueDate      types.Date       `json:"dueDate" example:"2024-07-15"`
	ChequeNumber string           `json:"chequeNumber" validate:"max=64" example:"1007"`
	ChequeImage  string           `json:"chequeImage" example:"cheques/1007.jpg"`
	Amount       *decimal.Decimal `json:"amount" example:"450"` // Defaults to the amount of the series
	Note         string           `json:"note"`
}

// AddCheque creates a new PENDING obligation in the series that series
// belongs to. Merchant, currency, account and amount are copied from the
// series unless the request overrides the amount.
//
// Duplicate due dates and duplicate cheque numbers are reported as warnings,
// the cheque is created anyway.
func AddCheque(series []models.ScheduledTransaction, req ChequeRequest) (models.ScheduledTransaction, validation.Warnings, error) {
	var warnings validation.Warnings

	errs := validation.Struct(req)
	if req.DueDate.IsZero() {
		errs.Add("dueDate", "dueDate is required")
	}

	if len(series) == 0 || series[0].SeriesID == nil {
		errs.Add("seriesId", "the series does not exist or has no members")
	}

	if req.Amount != nil && !req.Amount.IsPositive() {
		errs.Add("amount", "amount must be positive")
	}

	if err := errs.Err(); err != nil {
		return models.ScheduledTransaction{}, nil, err
	}

	template := series[len(series)-1]
	amount := template.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}

	cheque := models.ScheduledTransaction{
		Amount:             amount,
		Currency:           template.Currency,
		Merchant:           template.Merchant,
		Category:           template.Category,
		Type:               template.Type,
		AccountID:          template.AccountID,
		DueDate:            req.DueDate,
		RecurrencePattern:  models.PatternOnce,
		RecurrenceInterval: 1,
		RecurrenceAnchor:   req.DueDate,
		Status:             models.StatusPending,
		SeriesID:           template.SeriesID,
		IsCheque:           true,
		ChequeNumber:       req.ChequeNumber,
		ChequeImage:        req.ChequeImage,
		Note:               req.Note,
	}

	for _, member := range series {
		if member.DueDate.Equal(req.DueDate) {
			warnings.Add(validation.WarningDuplicateDueDate, "dueDate", "another cheque in this series is due on %s", req.DueDate)
			break
		}
	}

	if req.ChequeNumber != "" {
		for _, member := range series {
			if member.ChequeNumber == req.ChequeNumber {
				warnings.Add(validation.WarningDuplicateChequeNumber, "chequeNumber", "cheque number %s is already used in this series", req.ChequeNumber)
				break
			}
		}
	}

	if req.ChequeImage == "" {
		warnings.Add(validation.WarningMissingChequeImage, "chequeImage", "cheque %s has no image", chequeLabel(cheque))
	}

	return cheque, warnings, nil
}

func chequeLabel(o models.ScheduledTransaction) string {
	if o.ChequeNumber != "" {
		return o.ChequeNumber
	}
	return "due " + o.DueDate.String()
}
