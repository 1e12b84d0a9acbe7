package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReassignResult counts the records moved by ReassignAccount.
type ReassignResult struct {
	Transactions          int64 `json:"transactions"`
	TransferTransactions  int64 `json:"transferTransactions"`
	ScheduledTransactions int64 `json:"scheduledTransactions"`
	MatchRules            int64 `json:"matchRules"`
}

// ReassignAccount moves every record referencing the account "from" to the
// account "to". It is a bulk administrative command, used when an account is
// replaced, e.g. by a new card with a new number.
//
// All updates run in a single database transaction. Balances are not
// touched; reconcile both accounts afterwards.
func ReassignAccount(db *gorm.DB, from, to uuid.UUID) (ReassignResult, error) {
	var result ReassignResult

	if from == to {
		return result, ErrReassignSameAccount
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&Account{}, "id = ?", from).Error
		if err != nil {
			return err
		}

		err = tx.First(&Account{}, "id = ?", to).Error
		if err != nil {
			return err
		}

		q := tx.Model(&Transaction{}).Where("account_id = ?", from).UpdateColumn("account_id", to)
		if q.Error != nil {
			return q.Error
		}
		result.Transactions = q.RowsAffected

		q = tx.Model(&Transaction{}).Where("transfer_account_id = ?", from).UpdateColumn("transfer_account_id", to)
		if q.Error != nil {
			return q.Error
		}
		result.TransferTransactions = q.RowsAffected

		q = tx.Model(&ScheduledTransaction{}).Where("account_id = ?", from).UpdateColumn("account_id", to)
		if q.Error != nil {
			return q.Error
		}
		result.ScheduledTransactions = q.RowsAffected

		q = tx.Model(&MatchRule{}).Where("account_id = ?", from).UpdateColumn("account_id", to)
		if q.Error != nil {
			return q.Error
		}
		result.MatchRules = q.RowsAffected

		return nil
	})

	return result, err
}
