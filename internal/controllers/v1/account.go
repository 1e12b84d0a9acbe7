package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/obligations"
	"github.com/obligo/backend/internal/reconcile"
	"github.com/shopspring/decimal"
)

type AccountEditable struct {
	Name             string              `json:"name" example:"Checking"`
	Note             string              `json:"note" example:"Salary goes here"`
	Type             models.AccountType  `json:"type" example:"BANK"`
	Currency         string              `json:"currency" example:"EUR"`
	Balance          decimal.Decimal     `json:"balance" example:"1520.35"`
	OpeningBalance   decimal.Decimal     `json:"openingBalance" example:"1000"`
	TotalCreditLimit decimal.NullDecimal `json:"totalCreditLimit" swaggertype:"string" example:"5000"`
	LoanPrincipal    decimal.NullDecimal `json:"loanPrincipal" swaggertype:"string"`
	PaymentDueDay    *int                `json:"paymentDueDay" example:"15"` // Day of month a loan or card payment is due, 1 to 31
}

func (editable AccountEditable) model() models.Account {
	return models.Account{
		Name:             editable.Name,
		Note:             editable.Note,
		Type:             editable.Type,
		Currency:         editable.Currency,
		Balance:          editable.Balance,
		OpeningBalance:   editable.OpeningBalance,
		TotalCreditLimit: editable.TotalCreditLimit,
		LoanPrincipal:    editable.LoanPrincipal,
		PaymentDueDay:    editable.PaymentDueDay,
	}
}

type AccountLinks struct {
	Self           string `json:"self" example:"https://example.com/api/v1/accounts/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`
	Reconciliation string `json:"reconciliation" example:"https://example.com/api/v1/accounts/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2/reconciliation"`
	Transactions   string `json:"transactions" example:"https://example.com/api/v1/transactions?account=af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`
}

// Account is the API representation of an Account.
type Account struct {
	models.Account
	Links AccountLinks `json:"links"`
}

func newAccount(c *gin.Context, model models.Account) Account {
	s := self(c, "accounts", model.ID)
	return Account{
		Account: model,
		Links: AccountLinks{
			Self:           s,
			Reconciliation: s + "/reconciliation",
			Transactions:   c.GetString(string(models.DBContextURL)) + "/v1/transactions?account=" + model.ID.String(),
		},
	}
}

type AccountResponse struct {
	Data  *Account `json:"data"`
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"`
}

type AccountListResponse struct {
	Data  []Account `json:"data"`
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// ReconciliationDecision is the body for applying a reconciliation.
type ReconciliationDecision struct {
	Decision reconcile.Decision `json:"decision" example:"ACCEPT_COMPUTED"`       // ACCEPT_COMPUTED, KEEP_STORED or REVIEW
	Seen     *decimal.Decimal   `json:"actualBalance" swaggertype:"string" example:"50"` // The stored balance the decision is based on. If it changed since, the request fails with 409
}

type ReconciliationResponse struct {
	Data  *reconcile.Result `json:"data"`
	Error *string           `json:"error" example:"there is no account matching your query"`
}

type ResolutionResponse struct {
	Data  *obligations.Resolution `json:"data"`
	Error *string                 `json:"error" example:"the reconciliation result is outdated"`
}

type ReassignRequest struct {
	AccountID uuid.UUID `json:"accountId" example:"f9e873c2-fb96-4367-bfb6-7ecd9bf4a6b5"` // The account that receives all records
}

type ReassignResponse struct {
	Data  *models.ReassignResult `json:"data"`
	Error *string                `json:"error" example:"the account to reassign to must be different from the source account"`
}

// RegisterAccountRoutes registers the routes for accounts with
// the RouterGroup that is passed.
func (co Controller) RegisterAccountRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsAccountList)
		r.GET("", co.GetAccounts)
		r.POST("", co.CreateAccount)
	}

	// Account with ID
	{
		r.OPTIONS("/:id", OptionsAccountDetail)
		r.GET("/:id", co.GetAccount)
		r.DELETE("/:id", co.DeleteAccount)
		r.OPTIONS("/:id/reconciliation", OptionsAccountReconciliation)
		r.GET("/:id/reconciliation", co.GetReconciliation)
		r.POST("/:id/reconciliation", co.ApplyReconciliation)
		r.OPTIONS("/:id/reassign", OptionsAccountReassign)
		r.POST("/:id/reassign", co.ReassignAccount)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Router			/v1/accounts [options]
func OptionsAccountList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/accounts/{id} [options]
func OptionsAccountDetail(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/accounts/{id}/reconciliation [options]
func OptionsAccountReconciliation(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/accounts/{id}/reassign [options]
func OptionsAccountReassign(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create account
// @Description	Creates a new account
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		201		{object}	AccountResponse
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			account	body		AccountEditable	true	"Account"
// @Router			/v1/accounts [post]
func (co Controller) CreateAccount(c *gin.Context) {
	var editable AccountEditable
	if err := httputil.BindData(c, &editable); err != nil {
		fail(c, err)
		return
	}

	account, err := co.Service.CreateAccount(editable.model())
	if err != nil {
		fail(c, err)
		return
	}

	data := newAccount(c, account)
	c.JSON(http.StatusCreated, AccountResponse{Data: &data})
}

// @Summary		Get accounts
// @Description	Returns all accounts ordered by name
// @Tags			Accounts
// @Produce		json
// @Success		200	{object}	AccountListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/accounts [get]
func (co Controller) GetAccounts(c *gin.Context) {
	accounts, err := co.Service.Accounts()
	if err != nil {
		fail(c, err)
		return
	}

	data := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		data = append(data, newAccount(c, a))
	}

	c.JSON(http.StatusOK, AccountListResponse{Data: data})
}

// @Summary		Get account
// @Description	Returns a specific account
// @Tags			Accounts
// @Produce		json
// @Success		200	{object}	AccountResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/accounts/{id} [get]
func (co Controller) GetAccount(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	account, err := co.Service.Account(id)
	if err != nil {
		fail(c, err)
		return
	}

	data := newAccount(c, account)
	c.JSON(http.StatusOK, AccountResponse{Data: &data})
}

// @Summary		Delete account
// @Description	Deletes an account. Accounts that are still referenced by transactions, scheduled transactions or match rules cannot be deleted, reassign them first.
// @Tags			Accounts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		409	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/accounts/{id} [delete]
func (co Controller) DeleteAccount(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	err = co.Service.DeleteAccount(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Reconcile account
// @Description	Recomputes the balance of the account from its opening balance and all of its transactions and compares it with the stored balance. Nothing is modified.
// @Tags			Accounts
// @Produce		json
// @Success		200	{object}	ReconciliationResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/accounts/{id}/reconciliation [get]
func (co Controller) GetReconciliation(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := co.Service.Reconcile(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ReconciliationResponse{Data: &result})
}

// @Summary		Apply reconciliation
// @Description	Applies a decision to a drifted account. ACCEPT_COMPUTED replaces the stored balance with the computed one, KEEP_STORED does nothing, REVIEW returns the transactions in the order they were folded.
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		200			{object}	ResolutionResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		409			{object}	httpError
// @Failure		500			{object}	httpError
// @Param			id			path		string					true	"ID formatted as string"
// @Param			decision	body		ReconciliationDecision	true	"Decision"
// @Router			/v1/accounts/{id}/reconciliation [post]
func (co Controller) ApplyReconciliation(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var decision ReconciliationDecision
	if err := httputil.BindData(c, &decision); err != nil {
		fail(c, err)
		return
	}

	resolution, err := co.Service.ApplyReconciliation(id, decision.Decision, decision.Seen)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ResolutionResponse{Data: &resolution})
}

// @Summary		Reassign account
// @Description	Moves all transactions, scheduled transactions and match rules of this account to another account. Balances are not modified, reconcile both accounts afterwards.
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		200		{object}	ReassignResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			target	body		ReassignRequest	true	"Target account"
// @Router			/v1/accounts/{id}/reassign [post]
func (co Controller) ReassignAccount(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var target ReassignRequest
	if err := httputil.BindData(c, &target); err != nil {
		fail(c, err)
		return
	}

	result, err := co.Service.Reassign(id, target.AccountID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ReassignResponse{Data: &result})
}
