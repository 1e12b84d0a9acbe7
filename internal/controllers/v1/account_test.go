package v1_test

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	v1 "github.com/obligo/backend/internal/controllers/v1"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/obligations"
	"github.com/obligo/backend/internal/reconcile"
	"github.com/obligo/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestAccountCreateGet() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking", Type: models.AccountBank, Balance: decimal.NewFromInt(100)})
	suite.Require().NotNil(a.Data)

	suite.Assert().Equal("http://example.com/v1/accounts/"+a.Data.ID.String(), a.Data.Links.Self)
	suite.Assert().Equal(a.Data.Links.Self+"/reconciliation", a.Data.Links.Reconciliation)

	r := test.Request(suite.T(), http.MethodGet, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var res v1.AccountResponse
	test.DecodeResponse(suite.T(), &r, &res)
	suite.Assert().Equal("Checking", res.Data.Name)
	suite.Assert().True(res.Data.Balance.Equal(decimal.NewFromInt(100)))

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/accounts", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.AccountListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data, 1)
}

func (suite *TestSuiteStandard) TestAccountErrors() {
	tests := []struct {
		name   string
		method string
		url    string
		body   any
		status int
		error  string
	}{
		{"Invalid ID", http.MethodGet, "http://example.com/v1/accounts/NotAUUID", "", http.StatusBadRequest, "not a valid UUID"},
		{"Unknown ID", http.MethodGet, "http://example.com/v1/accounts/" + uuid.NewString(), "", http.StatusNotFound, "there is no account matching your query"},
		{"Unknown for deletion", http.MethodDelete, "http://example.com/v1/accounts/" + uuid.NewString(), "", http.StatusNotFound, "there is no account"},
		{"Broken body", http.MethodPost, "http://example.com/v1/accounts", `{"name": "Broken`, http.StatusBadRequest, "invalid or un-parseable"},
		{"Empty body", http.MethodPost, "http://example.com/v1/accounts", "", http.StatusBadRequest, "must not be empty"},
		{"No name", http.MethodPost, "http://example.com/v1/accounts", v1.AccountEditable{Note: "Nameless"}, http.StatusBadRequest, "name is required"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := test.Request(suite.T(), tt.method, tt.url, tt.body)
			test.AssertHTTPStatus(suite.T(), &r, tt.status)
			suite.Assert().Contains(test.DecodeError(suite.T(), r.Body.Bytes()), tt.error)
		})
	}
}

func (suite *TestSuiteStandard) TestAccountDuplicateName() {
	createTestAccount(suite.T(), v1.AccountEditable{Name: "Savings"})
	createTestAccount(suite.T(), v1.AccountEditable{Name: "Savings"}, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestAccountDeleteInUse() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	target := createTestAccount(suite.T(), v1.AccountEditable{Name: "New Checking"})
	createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{AccountID: &a.Data.ID})

	r := test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
	suite.Assert().Contains(test.DecodeError(suite.T(), r.Body.Bytes()), "reassign them first")

	r = test.Request(suite.T(), http.MethodPost, a.Data.Links.Self+"/reassign", v1.ReassignRequest{AccountID: target.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var reassigned v1.ReassignResponse
	test.DecodeResponse(suite.T(), &r, &reassigned)
	suite.Assert().Equal(int64(1), reassigned.Data.ScheduledTransactions)

	r = test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
}

func (suite *TestSuiteStandard) TestAccountReassignToItself() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	r := test.Request(suite.T(), http.MethodPost, a.Data.Links.Self+"/reassign", v1.ReassignRequest{AccountID: a.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestAccountReconciliation() {
	a := createTestAccount(suite.T(), v1.AccountEditable{
		Name:           "Wallet",
		OpeningBalance: decimal.NewFromInt(40),
		Balance:        decimal.NewFromInt(50),
	})

	r := test.Request(suite.T(), http.MethodGet, a.Data.Links.Reconciliation, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var result v1.ReconciliationResponse
	test.DecodeResponse(suite.T(), &r, &result)
	suite.Assert().False(result.Data.OK)
	suite.Assert().Equal(reconcile.KindStoredHigher, result.Data.Kind)
	suite.Assert().True(result.Data.Drift.Equal(decimal.NewFromInt(10)), "drift is %s", result.Data.Drift)

	stale := decimal.NewFromInt(45)
	r = test.Request(suite.T(), http.MethodPost, a.Data.Links.Reconciliation, v1.ReconciliationDecision{Decision: reconcile.AcceptComputed, Seen: &stale})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)

	r = test.Request(suite.T(), http.MethodPost, a.Data.Links.Reconciliation, v1.ReconciliationDecision{Decision: "IGNORE"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	seen := decimal.NewFromInt(50)
	r = test.Request(suite.T(), http.MethodPost, a.Data.Links.Reconciliation, v1.ReconciliationDecision{Decision: reconcile.AcceptComputed, Seen: &seen})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var resolution struct {
		Data obligations.Resolution `json:"data"`
	}
	test.DecodeResponse(suite.T(), &r, &resolution)
	suite.Assert().True(resolution.Data.Changed)
	suite.Assert().True(resolution.Data.Account.Balance.Equal(decimal.NewFromInt(40)), "balance is %s", resolution.Data.Account.Balance)
}

func (suite *TestSuiteStandard) TestOptions() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	o := createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{})

	tests := []struct {
		url   string
		allow string
	}{
		{"http://example.com/v1/accounts", "OPTIONS, GET, POST"},
		{a.Data.Links.Self, "OPTIONS, GET, DELETE"},
		{a.Data.Links.Self + "/reconciliation", "OPTIONS, GET, POST"},
		{a.Data.Links.Self + "/reassign", "OPTIONS, POST"},
		{"http://example.com/v1/transactions", "OPTIONS, GET, POST"},
		{"http://example.com/v1/scheduled-transactions", "OPTIONS, GET, POST"},
		{o.Data.Links.Self + "/skip", "OPTIONS, POST"},
		{o.Data.Links.Self + "/match", "OPTIONS, POST"},
		{"http://example.com/v1/series", "OPTIONS, POST"},
		{"http://example.com/v1/recurrence/preview", "OPTIONS, GET"},
		{"http://example.com/v1/warnings/insufficient-funds", "OPTIONS, GET"},
		{"http://example.com/v1/status-pass", "OPTIONS, POST"},
		{"http://example.com/v1/jobs", "OPTIONS, GET"},
		{"http://example.com/v1/match-rules", "OPTIONS, GET, POST"},
	}

	for _, tt := range tests {
		suite.Run(strings.TrimPrefix(tt.url, "http://example.com"), func() {
			r := test.Request(suite.T(), http.MethodOptions, tt.url, "")
			test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
			suite.Assert().Equal(tt.allow, r.Header().Get("allow"))
		})
	}
}
