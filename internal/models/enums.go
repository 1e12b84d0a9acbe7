package models

// TransactionType is the kind of a transaction or scheduled transaction.
type TransactionType string

const (
	TypeExpense    TransactionType = "EXPENSE"
	TypeIncome     TransactionType = "INCOME"
	TypeTransfer   TransactionType = "TRANSFER"
	TypeObligation TransactionType = "OBLIGATION"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeExpense, TypeIncome, TypeTransfer, TypeObligation:
		return true
	}
	return false
}

// Payable reports whether a transaction of this type can settle an obligation.
func (t TransactionType) Payable() bool {
	return t == TypeExpense || t == TypeObligation
}

// Status is the lifecycle state of a scheduled transaction.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusOverdue Status = "OVERDUE"
	StatusSkipped Status = "SKIPPED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusSkipped:
		return true
	}
	return false
}

// Open reports whether an obligation in this state still awaits payment.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusOverdue
}

// Pattern is the recurrence pattern of a scheduled transaction.
type Pattern string

const (
	PatternOnce    Pattern = "ONCE"
	PatternMonthly Pattern = "MONTHLY"
	PatternWeekly  Pattern = "WEEKLY"
	PatternCustom  Pattern = "CUSTOM"
)

// Valid reports whether p is a known recurrence pattern.
func (p Pattern) Valid() bool {
	switch p {
	case PatternOnce, PatternMonthly, PatternWeekly, PatternCustom:
		return true
	}
	return false
}

// AccountType is the kind of an account.
type AccountType string

const (
	AccountCash       AccountType = "CASH"
	AccountBank       AccountType = "BANK"
	AccountCreditCard AccountType = "CREDIT_CARD"
	AccountLoan       AccountType = "LOAN"
	AccountWallet     AccountType = "WALLET"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountBank, AccountCreditCard, AccountLoan, AccountWallet:
		return true
	}
	return false
}
