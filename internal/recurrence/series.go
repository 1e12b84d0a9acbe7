package recurrence

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/internal/validation"
	"github.com/shopspring/decimal"
)

// SeriesParams describes a batch series, e.g. a stack of post-dated cheques.
type SeriesParams struct {
	AccountID            *uuid.UUID             `json:"accountId" example:"7a7b1d30-1b4c-4a8f-9f4e-0d5f8a0b1c2d"`
	Amount               decimal.Decimal        `json:"amount" example:"450"`
	Currency             string                 `json:"currency" validate:"omitempty,iso4217" example:"EUR"`
	Merchant             string                 `json:"merchant" validate:"required,max=255" example:"Landlord"`
	Category             string                 `json:"category" validate:"max=255" example:"Rent"`
	Type                 models.TransactionType `json:"type" example:"OBLIGATION"`
	StartDate            types.Date             `json:"startDate" example:"2024-01-15"`
	Frequency            models.Pattern         `json:"frequency" example:"MONTHLY"`
	Interval             int                    `json:"interval" example:"1"`
	NumberOfCheques      int                    `json:"numberOfCheques" validate:"min=1,max=520" example:"6"`
	StartingChequeNumber *int                   `json:"startingChequeNumber" validate:"omitempty,gte=0" example:"1001"`
	ChequeImages         []string               `json:"chequeImages"`
	IsCheque             bool                   `json:"isCheque" example:"true"`
	Note                 string                 `json:"note"`
}

// Validate returns all problems with the parameters.
func (p SeriesParams) Validate() validation.Errors {
	errs := validation.Struct(p)
	errs.Merge(validateAmount(p.Amount))

	if p.Type != "" && !p.Type.Valid() {
		errs.Add("type", "type must be one of EXPENSE, INCOME, TRANSFER, OBLIGATION")
	}

	// An individual member is always ONCE, the frequency only spaces them
	schedule := ValidateSchedule(p.StartDate, p.Frequency, p.Interval, nil)
	for i := range schedule {
		switch schedule[i].Field {
		case "dueDate":
			schedule[i] = validation.FieldError{Field: "startDate", Message: "startDate is required"}
		case "recurrencePattern":
			schedule[i] = validation.FieldError{Field: "frequency", Message: "frequency must be one of ONCE, MONTHLY, WEEKLY, CUSTOM"}
		case "recurrenceInterval":
			schedule[i] = validation.FieldError{Field: "interval", Message: "interval must be at least 1"}
		}
	}
	errs.Merge(schedule)

	if p.Frequency == models.PatternOnce && p.NumberOfCheques > 1 {
		errs.Add("frequency", "frequency ONCE cannot produce more than one due date")
	}

	return errs
}

// CreateBatchSeries expands the parameters into NumberOfCheques individual
// ONCE obligations that share one generated SeriesID. Nothing is persisted.
//
// Cheque numbers are StartingChequeNumber + position. Images are assigned by
// position, obligations without a matching image have none.
func CreateBatchSeries(p SeriesParams) ([]models.ScheduledTransaction, error) {
	if err := p.Validate().Err(); err != nil {
		return nil, err
	}

	seriesID := uuid.New()
	obligationType := p.Type
	if obligationType == "" {
		obligationType = models.TypeObligation
	}

	obligations := make([]models.ScheduledTransaction, 0, p.NumberOfCheques)
	for i := range p.NumberOfCheques {
		due := NextDueDate(p.StartDate, p.Frequency, p.Interval, i)

		o := models.ScheduledTransaction{
			Amount:             p.Amount,
			Currency:           p.Currency,
			Merchant:           p.Merchant,
			Category:           p.Category,
			Type:               obligationType,
			AccountID:          p.AccountID,
			DueDate:            due,
			RecurrencePattern:  models.PatternOnce,
			RecurrenceInterval: 1,
			RecurrenceAnchor:   due,
			Status:             models.StatusPending,
			SeriesID:           &seriesID,
			IsCheque:           p.IsCheque || p.StartingChequeNumber != nil,
			Note:               p.Note,
		}

		if p.StartingChequeNumber != nil {
			o.ChequeNumber = strconv.Itoa(*p.StartingChequeNumber + i)
		}

		if i < len(p.ChequeImages) {
			o.ChequeImage = p.ChequeImages[i]
		}

		obligations = append(obligations, o)
	}

	return obligations, nil
}

// ConvertParams describes how an existing transaction is turned into future
// obligations.
type ConvertParams struct {
	Pattern  models.Pattern `json:"recurrencePattern" example:"MONTHLY"`
	Interval int            `json:"recurrenceInterval" example:"1"`
	Count    int            `json:"count" validate:"min=1,max=520" example:"12"`
	EndDate  *types.Date    `json:"recurrenceEndDate" example:"2024-12-31"`
}

// ConvertTransaction creates future obligations from a transaction that
// happened, e.g. the first rent payment. The transaction itself is the
// occurrence at index 0, the obligations are indices 1 to Count. Due dates
// after EndDate are not generated.
func ConvertTransaction(tx models.Transaction, p ConvertParams) ([]models.ScheduledTransaction, error) {
	errs := validation.Struct(p)
	errs.Merge(ValidateSchedule(tx.Date, p.Pattern, p.Interval, p.EndDate))

	if p.Pattern == models.PatternOnce {
		errs.Add("recurrencePattern", "a transaction can only be converted into a recurring schedule")
	}

	if tx.Type == models.TypeTransfer || tx.Type == models.TypeIncome {
		errs.Add("type", "only EXPENSE and OBLIGATION transactions can be converted")
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	seriesID := uuid.New()
	obligations := make([]models.ScheduledTransaction, 0, p.Count)
	for i := 1; i <= p.Count; i++ {
		due := NextDueDate(tx.Date, p.Pattern, p.Interval, i)
		if p.EndDate != nil && !p.EndDate.IsZero() && due.After(*p.EndDate) {
			break
		}

		obligations = append(obligations, models.ScheduledTransaction{
			Amount:             tx.Amount,
			Currency:           tx.Currency,
			Merchant:           tx.Merchant,
			Category:           tx.Category,
			Type:               models.TypeObligation,
			AccountID:          tx.AccountID,
			DueDate:            due,
			RecurrencePattern:  models.PatternOnce,
			RecurrenceInterval: 1,
			RecurrenceAnchor:   due,
			Status:             models.StatusPending,
			SeriesID:           &seriesID,
		})
	}

	return obligations, nil
}

func validateAmount(amount decimal.Decimal) validation.Errors {
	var errs validation.Errors
	if !amount.IsPositive() {
		errs.Add("amount", "amount must be positive")
	}
	return errs
}
