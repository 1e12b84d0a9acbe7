// Package obligations composes the recurrence, lifecycle, matching,
// projector and reconcile packages with the database.
//
// Every mutation writes single records. Status changes are conditional
// updates on the expected current status, so a record that changed in the
// meantime is never overwritten with a transition that is no longer valid.
package obligations

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/obligo/backend/internal/lifecycle"
	"github.com/obligo/backend/internal/metrics"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/projector"
	"github.com/obligo/backend/internal/recurrence"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/internal/validation"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrConcurrentUpdate is returned when a record changed between reading and
// writing it.
var ErrConcurrentUpdate = errors.New("the scheduled transaction was changed by another request, please reload it")

// Service implements the operations on obligations.
type Service struct {
	db      *gorm.DB
	today   func() types.Date
	horizon int

	// Serializes pairing confirmations in this process
	confirmMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the time zone that determines the current calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.today = func() types.Date { return types.Today(loc) }
	}
}

// WithClock sets the function returning the current calendar day.
func WithClock(today func() types.Date) Option {
	return func(s *Service) {
		s.today = today
	}
}

// WithHorizon sets the default horizon of insufficient funds warnings.
func WithHorizon(days int) Option {
	return func(s *Service) {
		s.horizon = days
	}
}

// New returns a Service using db.
func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:      db,
		today:   func() types.Date { return types.Today(time.Local) },
		horizon: projector.DefaultHorizonDays,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

// Today returns the current calendar day.
func (s *Service) Today() types.Date {
	return s.today()
}

// Horizon returns the default horizon of insufficient funds warnings in days.
func (s *Service) Horizon() int {
	return s.horizon
}

// DB returns the database of the service.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// Get returns a single obligation.
func (s *Service) Get(id uuid.UUID) (models.ScheduledTransaction, error) {
	var o models.ScheduledTransaction
	err := s.db.First(&o, "id = ?", id).Error
	return o, err
}

// Create validates and stores a single obligation.
func (s *Service) Create(o models.ScheduledTransaction) (models.ScheduledTransaction, error) {
	if err := recurrence.ValidateObligation(o).Err(); err != nil {
		return models.ScheduledTransaction{}, err
	}

	o.ID = uuid.Nil
	o.Status = models.StatusPending
	o.MatchedTransactionID = nil
	o.PaidOn = nil
	o.OccurrenceIndex = 0
	o.RecurrenceAnchor = o.DueDate

	err := s.db.Create(&o).Error
	if err != nil {
		return models.ScheduledTransaction{}, err
	}

	log.Debug().Str("id", o.ID.String()).Str("dueDate", o.DueDate.String()).Str("pattern", string(o.RecurrencePattern)).Msg("created scheduled transaction")
	return o, nil
}

// CreateSeries expands a batch series and stores all of its members.
func (s *Service) CreateSeries(p recurrence.SeriesParams) ([]models.ScheduledTransaction, error) {
	obligations, err := recurrence.CreateBatchSeries(p)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range obligations {
			if err := tx.Create(&obligations[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("seriesId", obligations[0].SeriesID.String()).Int("count", len(obligations)).Msg("created series")
	return obligations, nil
}

// Series returns the members of a series ordered by due date.
func (s *Service) Series(id uuid.UUID) ([]models.ScheduledTransaction, error) {
	var series []models.ScheduledTransaction
	err := s.db.Where("series_id = ?", id).Order("due_date ASC, cheque_number ASC").Find(&series).Error
	if err != nil {
		return nil, err
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w series matching your query", models.ErrResourceNotFound)
	}

	return series, nil
}

// AddCheque adds a cheque to an existing series.
func (s *Service) AddCheque(seriesID uuid.UUID, req lifecycle.ChequeRequest) (models.ScheduledTransaction, validation.Warnings, error) {
	series, err := s.Series(seriesID)
	if err != nil {
		return models.ScheduledTransaction{}, nil, err
	}

	cheque, warnings, err := lifecycle.AddCheque(series, req)
	if err != nil {
		return models.ScheduledTransaction{}, nil, err
	}

	err = s.db.Create(&cheque).Error
	if err != nil {
		return models.ScheduledTransaction{}, nil, err
	}

	for _, w := range warnings {
		log.Info().Str("seriesId", seriesID.String()).Str("code", w.Code).Msg(w.Message)
	}

	return cheque, warnings, nil
}

// ConvertTransaction creates future obligations from an existing
// transaction.
func (s *Service) ConvertTransaction(transactionID uuid.UUID, p recurrence.ConvertParams) ([]models.ScheduledTransaction, error) {
	var transaction models.Transaction
	err := s.db.First(&transaction, "id = ?", transactionID).Error
	if err != nil {
		return nil, err
	}

	obligations, err := recurrence.ConvertTransaction(transaction, p)
	if err != nil {
		return nil, err
	}

	if len(obligations) == 0 {
		return obligations, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range obligations {
			if err := tx.Create(&obligations[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return obligations, nil
}

// StatusPass moves every PENDING obligation due before today to OVERDUE and
// returns how many were moved. Running it concurrently or repeatedly is safe.
func (s *Service) StatusPass() (int, error) {
	today := s.today()

	var pending []models.ScheduledTransaction
	err := s.db.Where("status = ? AND due_date < ?", models.StatusPending, today).Find(&pending).Error
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, o := range lifecycle.OverduePass(pending, today) {
		q := s.db.Model(&models.ScheduledTransaction{}).
			Where("id = ? AND status = ?", o.ID, models.StatusPending).
			UpdateColumn("status", models.StatusOverdue)
		if q.Error != nil {
			return moved, q.Error
		}

		// Zero rows means another pass or a payment got there first
		moved += int(q.RowsAffected)
	}

	metrics.OverdueTransitions.Add(float64(moved))
	log.Info().Int("moved", moved).Str("today", today.String()).Msg("status pass")
	return moved, nil
}

// setStatus writes a status change of o if the stored status is still from.
func (s *Service) setStatus(db *gorm.DB, o models.ScheduledTransaction, from models.Status) error {
	q := db.Model(&models.ScheduledTransaction{}).
		Where("id = ? AND status = ?", o.ID, from).
		UpdateColumns(map[string]any{
			"status":                 o.Status,
			"matched_transaction_id": o.MatchedTransactionID,
			"paid_on":                o.PaidOn,
			"updated_at":             time.Now().In(time.UTC),
		})
	if q.Error != nil {
		return q.Error
	}

	if q.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// settle creates the next occurrence of a rolling recurrence, if any.
func (s *Service) settle(db *gorm.DB, o models.ScheduledTransaction) (*models.ScheduledTransaction, error) {
	next, ok := lifecycle.NextOccurrence(o)
	if !ok {
		return nil, nil
	}

	err := db.Create(&next).Error
	if err != nil {
		return nil, err
	}

	log.Debug().Str("id", next.ID.String()).Str("previous", o.ID.String()).Str("dueDate", next.DueDate.String()).Msg("created next occurrence")
	return &next, nil
}

// Transition is the result of a status change. Next is the next occurrence
// of a rolling recurrence, if one was created.
type Transition struct {
	Obligation models.ScheduledTransaction  `json:"obligation"`
	Next       *models.ScheduledTransaction `json:"next"`
}

// Skip skips an obligation.
func (s *Service) Skip(id uuid.UUID) (Transition, error) {
	var t Transition

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o models.ScheduledTransaction
		if err := tx.First(&o, "id = ?", id).Error; err != nil {
			return err
		}

		from := o.Status
		if err := lifecycle.Skip(&o); err != nil {
			return err
		}

		if err := s.setStatus(tx, o, from); err != nil {
			return err
		}

		next, err := s.settle(tx, o)
		if err != nil {
			return err
		}

		t = Transition{Obligation: o, Next: next}
		return nil
	})

	return t, err
}

// UndoSkip creates a new PENDING obligation from a skipped one.
func (s *Service) UndoSkip(id uuid.UUID) (models.ScheduledTransaction, error) {
	o, err := s.Get(id)
	if err != nil {
		return models.ScheduledTransaction{}, err
	}

	restored, err := lifecycle.UndoSkip(o)
	if err != nil {
		return models.ScheduledTransaction{}, err
	}

	err = s.db.Create(&restored).Error
	if err != nil {
		return models.ScheduledTransaction{}, err
	}

	log.Info().Str("skipped", o.ID.String()).Str("restored", restored.ID.String()).Msg("undid skip")
	return restored, nil
}

// MarkPaid marks an obligation as paid without a transaction, e.g. for a
// cash payment that is not tracked. Use Confirm to pair it with a
// transaction.
func (s *Service) MarkPaid(id uuid.UUID) (Transition, error) {
	var t Transition

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o models.ScheduledTransaction
		if err := tx.First(&o, "id = ?", id).Error; err != nil {
			return err
		}

		from := o.Status
		if err := lifecycle.MarkPaid(&o, nil, s.today()); err != nil {
			return err
		}

		if err := s.setStatus(tx, o, from); err != nil {
			return err
		}

		next, err := s.settle(tx, o)
		if err != nil {
			return err
		}

		t = Transition{Obligation: o, Next: next}
		return nil
	})

	return t, err
}
