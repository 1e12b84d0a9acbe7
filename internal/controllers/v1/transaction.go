package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/matching"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/obligations"
	"github.com/obligo/backend/internal/recurrence"
	"github.com/obligo/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionEditable struct {
	Amount            decimal.Decimal        `json:"amount" example:"14.03"`
	Currency          string                 `json:"currency" example:"EUR"`
	Type              models.TransactionType `json:"type" example:"EXPENSE"`
	Date              types.Date             `json:"date" example:"2024-03-15"`
	Time              string                 `json:"time" example:"14:05"`
	Merchant          string                 `json:"merchant" example:"City Power"`
	Category          string                 `json:"category" example:"Utilities"`
	AccountID         *uuid.UUID             `json:"accountId" example:"7a7b1d30-1b4c-4a8f-9f4e-0d5f8a0b1c2d"` // Leave empty for orphaned transactions, match rules may assign an account
	TransferAccountID *uuid.UUID             `json:"transferAccountId"`
	RawText           string                 `json:"rawText" example:"CHQ 001004 CITY POWER"`
	ParsedMeta        models.ParsedMeta      `json:"parsedMeta"`
}

func (editable TransactionEditable) model() models.Transaction {
	return models.Transaction{
		Amount:            editable.Amount,
		Currency:          editable.Currency,
		Type:              editable.Type,
		Date:              editable.Date,
		Time:              editable.Time,
		Merchant:          editable.Merchant,
		Category:          editable.Category,
		AccountID:         editable.AccountID,
		TransferAccountID: editable.TransferAccountID,
		RawText:           editable.RawText,
		ParsedMeta:        datatypes.NewJSONType(editable.ParsedMeta),
	}
}

type TransactionLinks struct {
	Self       string `json:"self" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"`
	Candidates string `json:"candidates" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673/candidates"`
}

// Transaction is the API representation of a Transaction.
type Transaction struct {
	models.Transaction
	Links TransactionLinks `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	s := self(c, "transactions", model.ID)
	return Transaction{
		Transaction: model,
		Links: TransactionLinks{
			Self:       s,
			Candidates: s + "/candidates",
		},
	}
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// TransactionCreateResponse contains the new transaction and the scheduled
// transactions it might pay.
type TransactionCreateResponse struct {
	Data        *Transaction              `json:"data"`
	Suggestions []matching.MatchCandidate `json:"suggestions"` // Open scheduled transactions this transaction might pay, best first
	Error       *string                   `json:"error" example:"amount must be positive"`
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination   `json:"pagination"`
}

type SuggestionListResponse struct {
	Data  []matching.MatchCandidate `json:"data"`
	Error *string                   `json:"error" example:"there is no transaction matching your query"`
}

type TransactionQueryFilter struct {
	Account  string `form:"account"`  // ID of an account. Matches the owning and the receiving account
	Orphaned bool   `form:"orphaned"` // Only transactions without an account
	Offset   uint   `form:"offset"`
	Limit    int    `form:"limit,default=50"`
}

func (f TransactionQueryFilter) parse() (obligations.TransactionFilter, error) {
	accountID, err := httputil.UUIDFromString(f.Account)
	if err != nil {
		return obligations.TransactionFilter{}, err
	}

	return obligations.TransactionFilter{
		AccountID: accountID,
		Orphaned:  f.Orphaned,
		Offset:    f.Offset,
		Limit:     f.Limit,
	}, nil
}

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTransactionList)
		r.GET("", co.GetTransactions)
		r.POST("", co.CreateTransaction)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", OptionsTransactionDetail)
		r.GET("/:id", co.GetTransaction)
		r.DELETE("/:id", co.DeleteTransaction)
		r.OPTIONS("/:id/candidates", OptionsTransactionCandidates)
		r.GET("/:id/candidates", co.GetTransactionCandidates)
		r.OPTIONS("/:id/convert", OptionsTransactionConvert)
		r.POST("/:id/convert", co.ConvertTransaction)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/transactions/{id}/candidates [options]
func OptionsTransactionCandidates(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/transactions/{id}/convert [options]
func OptionsTransactionConvert(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create transaction
// @Description	Creates a new transaction and returns the open scheduled transactions it might pay.
// @Description	Transactions without an account get the account of the first matching match rule.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransactionCreateResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		500			{object}	httpError
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions [post]
func (co Controller) CreateTransaction(c *gin.Context) {
	var editable TransactionEditable
	if err := httputil.BindData(c, &editable); err != nil {
		fail(c, err)
		return
	}

	transaction, suggestions, err := co.Service.CreateTransaction(editable.model())
	if err != nil {
		fail(c, err)
		return
	}

	data := newTransaction(c, transaction)
	c.JSON(http.StatusCreated, TransactionCreateResponse{Data: &data, Suggestions: suggestions})
}

// @Summary		Get transactions
// @Description	Returns transactions, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			account		query	string	false	"ID of an account"
// @Param			orphaned	query	bool	false	"Only transactions without an account"
// @Param			offset		query	uint	false	"The offset of the first transaction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of transactions to return. Defaults to 50."
// @Router			/v1/transactions [get]
func (co Controller) GetTransactions(c *gin.Context) {
	var query TransactionQueryFilter
	if err := c.BindQuery(&query); err != nil {
		fail(c, httputil.ErrInvalidQueryString)
		return
	}

	filter, err := query.parse()
	if err != nil {
		fail(c, err)
		return
	}

	transactions, total, err := co.Service.Transactions(filter)
	if err != nil {
		fail(c, err)
		return
	}

	data := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		data = append(data, newTransaction(c, t))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  total,
			Offset: query.Offset,
			Limit:  query.Limit,
		},
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [get]
func (co Controller) GetTransaction(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	transaction, err := co.Service.Transaction(id)
	if err != nil {
		fail(c, err)
		return
	}

	data := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction. Transactions that pay a scheduled transaction cannot be deleted.
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		409	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [delete]
func (co Controller) DeleteTransaction(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	err = co.Service.DeleteTransaction(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Get match suggestions
// @Description	Returns the open scheduled transactions this transaction might pay, best first
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	SuggestionListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id}/candidates [get]
func (co Controller) GetTransactionCandidates(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	suggestions, err := co.Service.Suggestions(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, SuggestionListResponse{Data: suggestions})
}

// @Summary		Convert transaction
// @Description	Creates a recurring scheduled transaction from an existing transaction. The first occurrence is due on the transaction's date.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201			{object}	ScheduledTransactionListResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		500			{object}	httpError
// @Param			id			path		string						true	"ID formatted as string"
// @Param			recurrence	body		recurrence.ConvertParams	true	"Recurrence"
// @Router			/v1/transactions/{id}/convert [post]
func (co Controller) ConvertTransaction(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var params recurrence.ConvertParams
	if err := httputil.BindData(c, &params); err != nil {
		fail(c, err)
		return
	}

	created, err := co.Service.ConvertTransaction(id, params)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, ScheduledTransactionListResponse{Data: newScheduledTransactions(c, created)})
}
