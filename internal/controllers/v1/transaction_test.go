package v1_test

import (
	"net/http"

	"github.com/google/uuid"
	v1 "github.com/obligo/backend/internal/controllers/v1"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/recurrence"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransactionCreate() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	balance := decimal.NewFromInt(1234)

	tx := createTestTransaction(suite.T(), v1.TransactionEditable{
		Merchant:   "City Power",
		Time:       "9:05",
		AccountID:  &a.Data.ID,
		RawText:    "  CHQ 001004 CITY POWER  ",
		ParsedMeta: models.ParsedMeta{AvailableBalance: &balance, Source: "sms"},
	})

	suite.Assert().Equal(models.TypeExpense, tx.Data.Type)
	suite.Assert().Equal("09:05", tx.Data.Time)
	suite.Assert().Equal("CHQ 001004 CITY POWER", tx.Data.RawText)
	suite.Assert().Equal("sms", tx.Data.ParsedMeta.Data().Source)
	suite.Assert().Empty(tx.Suggestions)

	r := test.Request(suite.T(), http.MethodGet, tx.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestTransactionCreateInvalid() {
	tests := []struct {
		name   string
		tx     v1.TransactionEditable
		status int
	}{
		{"Negative amount", v1.TransactionEditable{Amount: decimal.NewFromInt(-1)}, http.StatusBadRequest},
		{"Bad currency", v1.TransactionEditable{Currency: "EURO"}, http.StatusBadRequest},
		{"Bad type", v1.TransactionEditable{Type: "GIFT"}, http.StatusBadRequest},
		{"Bad time", v1.TransactionEditable{Time: "25:00"}, http.StatusBadRequest},
		{"Unknown account", v1.TransactionEditable{AccountID: func() *uuid.UUID { id := uuid.New(); return &id }()}, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			createTestTransaction(suite.T(), tt.tx, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionMatchRule() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/match-rules", v1.MatchRuleEditable{Match: "Bakery*", AccountID: a.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	tx := createTestTransaction(suite.T(), v1.TransactionEditable{Amount: decimal.NewFromInt(4), Merchant: "Bakery Miller"})
	suite.Require().NotNil(tx.Data.AccountID)
	suite.Assert().Equal(a.Data.ID, *tx.Data.AccountID)

	createTestTransaction(suite.T(), v1.TransactionEditable{Amount: decimal.NewFromInt(4), Merchant: "Kiosk"})

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?orphaned=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)
	suite.Assert().Equal("Kiosk", list.Data[0].Merchant)
	suite.Assert().Equal(int64(1), list.Pagination.Total)
	suite.Assert().Equal(50, list.Pagination.Limit)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?account="+a.Data.ID.String(), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data, 1)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?account=bakery", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTransactionDelete() {
	tx := createTestTransaction(suite.T(), v1.TransactionEditable{Merchant: "Kiosk"})

	r := test.Request(suite.T(), http.MethodDelete, tx.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, tx.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTransactionConvert() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	tx := createTestTransaction(suite.T(), v1.TransactionEditable{
		Amount:    decimal.NewFromInt(800),
		Merchant:  "Landlord",
		Date:      types.NewDate(2024, 1, 31),
		AccountID: &a.Data.ID,
	})

	r := test.Request(suite.T(), http.MethodPost, tx.Data.Links.Self+"/convert", recurrence.ConvertParams{
		Pattern:  models.PatternMonthly,
		Interval: 1,
		Count:    3,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var res v1.ScheduledTransactionListResponse
	test.DecodeResponse(suite.T(), &r, &res)
	suite.Require().Len(res.Data, 3)
	suite.Assert().Equal("2024-02-29", res.Data[0].DueDate.String())
	suite.Assert().Equal("2024-04-30", res.Data[2].DueDate.String())
	suite.Assert().NotEmpty(res.Data[0].Links.Series)

	r = test.Request(suite.T(), http.MethodPost, tx.Data.Links.Self+"/convert", recurrence.ConvertParams{Pattern: models.PatternOnce, Count: 1})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestMatchRules() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/match-rules", v1.MatchRuleEditable{AccountID: a.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/match-rules", v1.MatchRuleEditable{Match: "Bakery*", AccountID: uuid.New()})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/match-rules", v1.MatchRuleEditable{Match: "Bakery*", AccountID: a.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var rule v1.MatchRuleResponse
	test.DecodeResponse(suite.T(), &r, &rule)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/match-rules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.MatchRuleListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data, 1)

	r = test.Request(suite.T(), http.MethodDelete, rule.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodDelete, rule.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
