// Package lifecycle implements the state machine of scheduled transactions.
//
// PENDING is the initial state. PENDING moves to OVERDUE when its due date
// has passed. PENDING and OVERDUE move to PAID or SKIPPED, both of which are
// terminal. Undoing a skip creates a new PENDING obligation, the skipped one
// is never resurrected.
package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/recurrence"
	"github.com/obligo/backend/internal/types"
)

// StateError is returned when an operation is not allowed for the current
// status of an obligation. Nothing has been changed when it is returned.
type StateError struct {
	ID     uuid.UUID
	From   models.Status
	To     models.Status
	Reason string
}

func (e *StateError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("scheduled transaction %s cannot change from %s to %s", e.ID, e.From, e.To)
}

var transitions = map[models.Status][]models.Status{
	models.StatusPending: {models.StatusPaid, models.StatusOverdue, models.StatusSkipped},
	models.StatusOverdue: {models.StatusPaid, models.StatusSkipped},
}

// CanTransition reports whether an obligation may move from one status to
// another.
func CanTransition(from, to models.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func transition(o *models.ScheduledTransaction, to models.Status) error {
	if !CanTransition(o.Status, to) {
		return &StateError{ID: o.ID, From: o.Status, To: to}
	}

	o.Status = to
	return nil
}

// OverduePass moves every PENDING obligation due strictly before today to
// OVERDUE. The slice is modified in place and the changed obligations are
// returned. Running it again with the same day changes nothing.
func OverduePass(obligations []models.ScheduledTransaction, today types.Date) []models.ScheduledTransaction {
	var changed []models.ScheduledTransaction

	for i := range obligations {
		o := &obligations[i]
		if o.Status != models.StatusPending || !o.DueDate.Before(today) {
			continue
		}

		o.Status = models.StatusOverdue
		changed = append(changed, *o)
	}

	return changed
}

// MarkPaid sets the obligation to PAID. transactionID is the transaction
// that settled it and may be nil for payments recorded without one.
func MarkPaid(o *models.ScheduledTransaction, transactionID *uuid.UUID, today types.Date) error {
	if err := transition(o, models.StatusPaid); err != nil {
		return err
	}

	o.MatchedTransactionID = transactionID
	o.PaidOn = &today
	return nil
}

// Skip sets the obligation to SKIPPED.
func Skip(o *models.ScheduledTransaction) error {
	return transition(o, models.StatusSkipped)
}

// UndoSkip returns a new PENDING obligation with the data of a skipped one.
// The skipped obligation itself is not modified.
func UndoSkip(o models.ScheduledTransaction) (models.ScheduledTransaction, error) {
	if o.Status != models.StatusSkipped {
		return models.ScheduledTransaction{}, &StateError{
			ID:     o.ID,
			From:   o.Status,
			To:     models.StatusPending,
			Reason: fmt.Sprintf("scheduled transaction %s is %s, only SKIPPED can be restored", o.ID, o.Status),
		}
	}

	restored := o
	restored.DefaultModel = models.DefaultModel{}
	restored.Status = models.StatusPending
	restored.MatchedTransactionID = nil
	restored.PaidOn = nil
	return restored, nil
}

// NextOccurrence returns the next PENDING instance of a rolling recurrence
// once the current one is settled. Series members, ONCE obligations, open
// obligations and recurrences past their end date have no next occurrence.
func NextOccurrence(o models.ScheduledTransaction) (models.ScheduledTransaction, bool) {
	if o.RecurrencePattern == models.PatternOnce || o.RecurrencePattern == "" || o.SeriesID != nil || o.Open() {
		return models.ScheduledTransaction{}, false
	}

	anchor := o.RecurrenceAnchor
	if anchor.IsZero() {
		anchor = o.DueDate
	}

	index := o.OccurrenceIndex + 1
	due := recurrence.NextDueDate(anchor, o.RecurrencePattern, o.RecurrenceInterval, index)

	if o.RecurrenceEndDate != nil && !o.RecurrenceEndDate.IsZero() && due.After(*o.RecurrenceEndDate) {
		return models.ScheduledTransaction{}, false
	}

	next := o
	next.DefaultModel = models.DefaultModel{}
	next.DueDate = due
	next.RecurrenceAnchor = anchor
	next.OccurrenceIndex = index
	next.Status = models.StatusPending
	next.MatchedTransactionID = nil
	next.PaidOn = nil
	next.ChequeNumber = ""
	next.ChequeImage = ""
	return next, true
}
