package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/matching"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/obligations"
	"github.com/obligo/backend/internal/types"
	"github.com/shopspring/decimal"
)

type ScheduledTransactionEditable struct {
	Amount             decimal.Decimal        `json:"amount" example:"250"`
	Currency           string                 `json:"currency" example:"EUR"`
	Merchant           string                 `json:"merchant" example:"Landlord"`
	Category           string                 `json:"category" example:"Rent"`
	Type               models.TransactionType `json:"type" example:"OBLIGATION"`
	AccountID          *uuid.UUID             `json:"accountId" example:"7a7b1d30-1b4c-4a8f-9f4e-0d5f8a0b1c2d"`
	DueDate            types.Date             `json:"dueDate" example:"2024-02-15"`
	RecurrencePattern  models.Pattern         `json:"recurrencePattern" example:"MONTHLY"`
	RecurrenceInterval int                    `json:"recurrenceInterval" example:"1"`
	RecurrenceEndDate  *types.Date            `json:"recurrenceEndDate" example:"2024-12-31"`
	IsCheque           bool                   `json:"isCheque"`
	ChequeNumber       string                 `json:"chequeNumber" example:"1001"`
	ChequeImage        string                 `json:"chequeImage" example:"cheques/1001.jpg"`
	Note               string                 `json:"note"`
}

func (editable ScheduledTransactionEditable) model() models.ScheduledTransaction {
	return models.ScheduledTransaction{
		Amount:             editable.Amount,
		Currency:           editable.Currency,
		Merchant:           editable.Merchant,
		Category:           editable.Category,
		Type:               editable.Type,
		AccountID:          editable.AccountID,
		DueDate:            editable.DueDate,
		RecurrencePattern:  editable.RecurrencePattern,
		RecurrenceInterval: editable.RecurrenceInterval,
		RecurrenceEndDate:  editable.RecurrenceEndDate,
		IsCheque:           editable.IsCheque,
		ChequeNumber:       editable.ChequeNumber,
		ChequeImage:        editable.ChequeImage,
		Note:               editable.Note,
	}
}

type ScheduledTransactionLinks struct {
	Self       string `json:"self" example:"https://example.com/api/v1/scheduled-transactions/0b9d4f3c-50f1-4c1e-b1aa-6dca4c3e2f10"`
	Candidates string `json:"candidates" example:"https://example.com/api/v1/scheduled-transactions/0b9d4f3c-50f1-4c1e-b1aa-6dca4c3e2f10/candidates"`
	Series     string `json:"series,omitempty" example:"https://example.com/api/v1/series/5d8f2a1e-3c4b-4d6e-8f7a-9b0c1d2e3f4a"`
}

// ScheduledTransaction is the API representation of a ScheduledTransaction.
type ScheduledTransaction struct {
	models.ScheduledTransaction
	Links ScheduledTransactionLinks `json:"links"`
}

func newScheduledTransaction(c *gin.Context, model models.ScheduledTransaction) ScheduledTransaction {
	s := self(c, "scheduled-transactions", model.ID)
	o := ScheduledTransaction{
		ScheduledTransaction: model,
		Links: ScheduledTransactionLinks{
			Self:       s,
			Candidates: s + "/candidates",
		},
	}

	if model.SeriesID != nil {
		o.Links.Series = self(c, "series", *model.SeriesID)
	}

	return o
}

func newScheduledTransactions(c *gin.Context, list []models.ScheduledTransaction) []ScheduledTransaction {
	data := make([]ScheduledTransaction, 0, len(list))
	for _, o := range list {
		data = append(data, newScheduledTransaction(c, o))
	}
	return data
}

type ScheduledTransactionResponse struct {
	Data  *ScheduledTransaction `json:"data"`
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"`
}

type ScheduledTransactionListResponse struct {
	Data       []ScheduledTransaction `json:"data"`
	Error      *string                `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination            `json:"pagination"`
}

// TransitionData is the result of a status change. Next is the following
// occurrence of a recurring scheduled transaction, if one was created.
type TransitionData struct {
	Obligation ScheduledTransaction  `json:"obligation"`
	Next       *ScheduledTransaction `json:"next"`
}

type TransitionResponse struct {
	Data  *TransitionData `json:"data"`
	Error *string         `json:"error" example:"scheduled transaction 0b9d4f3c-50f1-4c1e-b1aa-6dca4c3e2f10 cannot change from PAID to SKIPPED"`
}

func newTransition(c *gin.Context, t obligations.Transition) *TransitionData {
	data := &TransitionData{Obligation: newScheduledTransaction(c, t.Obligation)}
	if t.Next != nil {
		next := newScheduledTransaction(c, *t.Next)
		data.Next = &next
	}
	return data
}

type CandidateListResponse struct {
	Data  []matching.ChequePairingCandidate `json:"data"`
	Error *string                           `json:"error" example:"there is no scheduled transaction matching your query"`
}

// MatchRequest is the body for confirming a match.
type MatchRequest struct {
	TransactionID uuid.UUID `json:"transactionId" example:"d430d7c3-d14c-4712-9336-ee56965a6673"` // The transaction that pays the scheduled transaction
}

type ScheduledTransactionQueryFilter struct {
	Status    models.Status `form:"status"`    // PENDING, PAID, OVERDUE or SKIPPED
	Account   string        `form:"account"`   // ID of an account
	Series    string        `form:"series"`    // ID of a series
	FromDate  types.Date    `form:"fromDate"`  // Due on or after this date
	UntilDate types.Date    `form:"untilDate"` // Due on or before this date
	Upcoming  string        `form:"upcoming"`  // Number of days. Only PENDING scheduled transactions due between today and today plus this many days. Other filters are ignored.
	Offset    uint          `form:"offset"`
	Limit     int           `form:"limit,default=50"`
}

func (f ScheduledTransactionQueryFilter) parse() (obligations.Filter, error) {
	accountID, err := httputil.UUIDFromString(f.Account)
	if err != nil {
		return obligations.Filter{}, err
	}

	seriesID, err := httputil.UUIDFromString(f.Series)
	if err != nil {
		return obligations.Filter{}, err
	}

	return obligations.Filter{
		Status:    f.Status,
		AccountID: accountID,
		SeriesID:  seriesID,
		FromDate:  f.FromDate,
		UntilDate: f.UntilDate,
		Offset:    f.Offset,
		Limit:     f.Limit,
	}, nil
}

// RegisterScheduledTransactionRoutes registers the routes for scheduled
// transactions with the RouterGroup that is passed.
func (co Controller) RegisterScheduledTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsScheduledTransactionList)
		r.GET("", co.GetScheduledTransactions)
		r.POST("", co.CreateScheduledTransaction)
	}

	// Scheduled transaction with ID
	{
		r.OPTIONS("/:id", OptionsScheduledTransactionDetail)
		r.GET("/:id", co.GetScheduledTransaction)
		r.OPTIONS("/:id/candidates", OptionsScheduledTransactionCandidates)
		r.GET("/:id/candidates", co.GetScheduledTransactionCandidates)
		r.OPTIONS("/:id/skip", OptionsScheduledTransactionAction)
		r.POST("/:id/skip", co.SkipScheduledTransaction)
		r.OPTIONS("/:id/undo-skip", OptionsScheduledTransactionAction)
		r.POST("/:id/undo-skip", co.UndoSkipScheduledTransaction)
		r.OPTIONS("/:id/pay", OptionsScheduledTransactionAction)
		r.POST("/:id/pay", co.PayScheduledTransaction)
		r.OPTIONS("/:id/match", OptionsScheduledTransactionAction)
		r.POST("/:id/match", co.MatchScheduledTransaction)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Scheduled Transactions
// @Success		204
// @Router			/v1/scheduled-transactions [options]
func OptionsScheduledTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Scheduled Transactions
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/scheduled-transactions/{id} [options]
func OptionsScheduledTransactionDetail(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Scheduled Transactions
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/scheduled-transactions/{id}/candidates [options]
func OptionsScheduledTransactionCandidates(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Scheduled Transactions
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/scheduled-transactions/{id}/skip [options]
// @Router			/v1/scheduled-transactions/{id}/undo-skip [options]
// @Router			/v1/scheduled-transactions/{id}/pay [options]
// @Router			/v1/scheduled-transactions/{id}/match [options]
func OptionsScheduledTransactionAction(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create scheduled transaction
// @Description	Creates a new scheduled transaction. It starts as PENDING. Recurring scheduled transactions create their next occurrence when they are paid or skipped.
// @Tags			Scheduled Transactions
// @Accept			json
// @Produce		json
// @Success		201						{object}	ScheduledTransactionResponse
// @Failure		400						{object}	httpError
// @Failure		404						{object}	httpError
// @Failure		500						{object}	httpError
// @Param			scheduledTransaction	body		ScheduledTransactionEditable	true	"Scheduled transaction"
// @Router			/v1/scheduled-transactions [post]
func (co Controller) CreateScheduledTransaction(c *gin.Context) {
	var editable ScheduledTransactionEditable
	if err := httputil.BindData(c, &editable); err != nil {
		fail(c, err)
		return
	}

	o, err := co.Service.Create(editable.model())
	if err != nil {
		fail(c, err)
		return
	}

	data := newScheduledTransaction(c, o)
	c.JSON(http.StatusCreated, ScheduledTransactionResponse{Data: &data})
}

// @Summary		Get scheduled transactions
// @Description	Returns scheduled transactions ordered by due date
// @Tags			Scheduled Transactions
// @Produce		json
// @Success		200	{object}	ScheduledTransactionListResponse
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			status		query	string	false	"Filter by status"
// @Param			account		query	string	false	"Filter by account ID"
// @Param			series		query	string	false	"Filter by series ID"
// @Param			fromDate	query	string	false	"Due on or after this date"
// @Param			untilDate	query	string	false	"Due on or before this date"
// @Param			upcoming	query	int		false	"Only PENDING scheduled transactions due within this many days"
// @Param			offset		query	uint	false	"The offset of the first scheduled transaction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of scheduled transactions to return. Defaults to 50."
// @Router			/v1/scheduled-transactions [get]
func (co Controller) GetScheduledTransactions(c *gin.Context) {
	var query ScheduledTransactionQueryFilter
	if err := c.BindQuery(&query); err != nil {
		fail(c, httputil.ErrInvalidQueryString)
		return
	}

	if query.Upcoming != "" {
		days, err := strconv.Atoi(query.Upcoming)
		if err != nil || days < 0 {
			fail(c, errHorizonInvalid)
			return
		}

		upcoming, err := co.Service.Upcoming(days)
		if err != nil {
			fail(c, err)
			return
		}

		data := newScheduledTransactions(c, upcoming)
		c.JSON(http.StatusOK, ScheduledTransactionListResponse{
			Data:       data,
			Pagination: &Pagination{Count: len(data), Total: int64(len(data)), Limit: -1},
		})
		return
	}

	filter, err := query.parse()
	if err != nil {
		fail(c, err)
		return
	}

	list, total, err := co.Service.List(filter)
	if err != nil {
		fail(c, err)
		return
	}

	data := newScheduledTransactions(c, list)
	c.JSON(http.StatusOK, ScheduledTransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  total,
			Offset: query.Offset,
			Limit:  query.Limit,
		},
	})
}

// @Summary		Get scheduled transaction
// @Description	Returns a specific scheduled transaction
// @Tags			Scheduled Transactions
// @Produce		json
// @Success		200	{object}	ScheduledTransactionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/scheduled-transactions/{id} [get]
func (co Controller) GetScheduledTransaction(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	o, err := co.Service.Get(id)
	if err != nil {
		fail(c, err)
		return
	}

	data := newScheduledTransaction(c, o)
	c.JSON(http.StatusOK, ScheduledTransactionResponse{Data: &data})
}

// @Summary		Get cheque pairing candidates
// @Description	Returns the transactions that might pay this scheduled transaction, best first. The list is empty if the scheduled transaction is not open.
// @Tags			Scheduled Transactions
// @Produce		json
// @Success		200	{object}	CandidateListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/scheduled-transactions/{id}/candidates [get]
func (co Controller) GetScheduledTransactionCandidates(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	candidates, err := co.Service.Candidates(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, CandidateListResponse{Data: candidates})
}

// @Summary		Skip scheduled transaction
// @Description	Skips an open scheduled transaction. For recurring scheduled transactions, the next occurrence is created.
// @Tags			Scheduled Transactions
// @Produce		json
// @Success		200	{object}	TransitionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		409	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/scheduled-transactions/{id}/skip [post]
func (co Controller) SkipScheduledTransaction(c *gin.Context) {
	co.transition(c, co.Service.Skip)
}

// @Summary		Pay scheduled transaction
// @Description	Marks an open scheduled transaction as paid without a transaction. For recurring scheduled transactions, the next occurrence is created.
// @Tags			Scheduled Transactions
// @Produce		json
// @Success		200	{object}	TransitionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		409	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/scheduled-transactions/{id}/pay [post]
func (co Controller) PayScheduledTransaction(c *gin.Context) {
	co.transition(c, co.Service.MarkPaid)
}

// @Summary		Match scheduled transaction
// @Description	Pairs a scheduled transaction with the transaction that paid it and marks it as paid. Fails with 409 if the pair is no longer eligible.
// @Tags			Scheduled Transactions
// @Accept			json
// @Produce		json
// @Success		200		{object}	TransitionResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		409		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			match	body		MatchRequest	true	"Transaction"
// @Router			/v1/scheduled-transactions/{id}/match [post]
func (co Controller) MatchScheduledTransaction(c *gin.Context) {
	var match MatchRequest
	if err := httputil.BindData(c, &match); err != nil {
		fail(c, err)
		return
	}

	co.transition(c, func(id uuid.UUID) (obligations.Transition, error) {
		return co.Service.Confirm(id, match.TransactionID)
	})
}

func (co Controller) transition(c *gin.Context, change func(uuid.UUID) (obligations.Transition, error)) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	t, err := change(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, TransitionResponse{Data: newTransition(c, t)})
}

// @Summary		Undo skip
// @Description	Creates a new PENDING scheduled transaction from a skipped one. The skipped scheduled transaction stays as it is.
// @Tags			Scheduled Transactions
// @Produce		json
// @Success		201	{object}	ScheduledTransactionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		409	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/scheduled-transactions/{id}/undo-skip [post]
func (co Controller) UndoSkipScheduledTransaction(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	restored, err := co.Service.UndoSkip(id)
	if err != nil {
		fail(c, err)
		return
	}

	data := newScheduledTransaction(c, restored)
	c.JSON(http.StatusCreated, ScheduledTransactionResponse{Data: &data})
}
