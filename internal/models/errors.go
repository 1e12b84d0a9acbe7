package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	ErrAmountNotPositive      = errors.New("amounts must be larger than zero")
	ErrInvalidCurrency        = errors.New("the currency must be a valid ISO 4217 code")
	ErrAccountNameNotUnique   = errors.New("the account name must be unique")
	ErrReassignSameAccount    = errors.New("the account to reassign to must be different from the source account")
	ErrInvalidTime            = errors.New("the time must be formatted as HH:MM")
	ErrInvalidTransactionType = errors.New("the transaction type must be one of EXPENSE, INCOME, TRANSFER, OBLIGATION")
	ErrAccountInUse           = errors.New("the account is still in use")
	ErrTransactionMatched     = errors.New("the transaction is matched to a scheduled transaction")
)
