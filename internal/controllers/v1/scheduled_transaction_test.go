package v1_test

import (
	"net/http"

	"github.com/google/uuid"
	v1 "github.com/obligo/backend/internal/controllers/v1"
	"github.com/obligo/backend/internal/matching"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestScheduledTransactionCreate() {
	o := createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{
		DueDate:            types.NewDate(2024, 1, 31),
		RecurrencePattern:  models.PatternMonthly,
		RecurrenceInterval: 1,
		Currency:           "eur",
	})

	suite.Assert().Equal(models.StatusPending, o.Data.Status)
	suite.Assert().Equal("EUR", o.Data.Currency)
	suite.Assert().Equal(o.Data.Links.Self+"/candidates", o.Data.Links.Candidates)
	suite.Assert().Empty(o.Data.Links.Series)

	r := test.Request(suite.T(), http.MethodGet, o.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestScheduledTransactionCreateInvalid() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/scheduled-transactions", v1.ScheduledTransactionEditable{
		Amount:            decimal.NewFromInt(-3),
		Merchant:          "Gym",
		DueDate:           test.Today,
		RecurrencePattern: "YEARLY",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var res struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	test.DecodeResponse(suite.T(), &r, &res)

	fields := make([]string, 0, len(res.Fields))
	for _, f := range res.Fields {
		fields = append(fields, f.Field)
	}
	suite.Assert().ElementsMatch([]string{"amount", "recurrencePattern", "recurrenceInterval"}, fields)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/scheduled-transactions", `{"amount": 10, "merchant": "Gym", "dueDate": "2024-02-30"}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	unknown := uuid.New()
	createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{AccountID: &unknown}, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestScheduledTransactionList() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{DueDate: test.Today.AddDays(3), AccountID: &a.Data.ID})
	createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{DueDate: test.Today.AddDays(12)})
	createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{DueDate: test.Today.AddDays(-4)})

	tests := []struct {
		name   string
		query  string
		status int
		len    int
	}{
		{"All", "", http.StatusOK, 3},
		{"Account", "?account=" + a.Data.ID.String(), http.StatusOK, 1},
		{"Invalid account", "?account=checking", http.StatusBadRequest, 0},
		{"Status", "?status=PENDING", http.StatusOK, 3},
		{"Invalid status", "?status=LATE", http.StatusBadRequest, 0},
		{"Date range", "?fromDate=2024-03-01&untilDate=2024-03-10", http.StatusOK, 1},
		{"Invalid date", "?fromDate=yesterday", http.StatusBadRequest, 0},
		{"Upcoming", "?upcoming=7", http.StatusOK, 1},
		{"Upcoming horizon", "?upcoming=30", http.StatusOK, 2},
		{"Invalid upcoming", "?upcoming=-2", http.StatusBadRequest, 0},
		{"Limit", "?limit=2", http.StatusOK, 2},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/scheduled-transactions"+tt.query, "")
			test.AssertHTTPStatus(suite.T(), &r, tt.status)

			if tt.status != http.StatusOK {
				return
			}

			var res v1.ScheduledTransactionListResponse
			test.DecodeResponse(suite.T(), &r, &res)
			suite.Assert().Len(res.Data, tt.len)
			suite.Require().NotNil(res.Pagination)
			suite.Assert().Equal(tt.len, res.Pagination.Count)
		})
	}
}

func (suite *TestSuiteStandard) TestScheduledTransactionSkip() {
	o := createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{
		RecurrencePattern:  models.PatternWeekly,
		RecurrenceInterval: 1,
	})

	r := test.Request(suite.T(), http.MethodPost, o.Data.Links.Self+"/skip", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var transition v1.TransitionResponse
	test.DecodeResponse(suite.T(), &r, &transition)
	suite.Assert().Equal(models.StatusSkipped, transition.Data.Obligation.Status)
	suite.Require().NotNil(transition.Data.Next)
	suite.Assert().Equal("2024-03-08", transition.Data.Next.DueDate.String())

	r = test.Request(suite.T(), http.MethodPost, o.Data.Links.Self+"/skip", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
	suite.Assert().Contains(test.DecodeError(suite.T(), r.Body.Bytes()), "cannot change from SKIPPED to SKIPPED")

	r = test.Request(suite.T(), http.MethodPost, o.Data.Links.Self+"/pay", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)

	r = test.Request(suite.T(), http.MethodPost, o.Data.Links.Self+"/undo-skip", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var restored v1.ScheduledTransactionResponse
	test.DecodeResponse(suite.T(), &r, &restored)
	suite.Assert().Equal(models.StatusPending, restored.Data.Status)
	suite.Assert().NotEqual(o.Data.ID, restored.Data.ID)

	r = test.Request(suite.T(), http.MethodPost, restored.Data.Links.Self+"/undo-skip", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestScheduledTransactionPay() {
	o := createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{})

	r := test.Request(suite.T(), http.MethodPost, o.Data.Links.Self+"/pay", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var transition v1.TransitionResponse
	test.DecodeResponse(suite.T(), &r, &transition)
	suite.Assert().Equal(models.StatusPaid, transition.Data.Obligation.Status)
	suite.Assert().Nil(transition.Data.Next, "ONCE has no next occurrence")
	suite.Require().NotNil(transition.Data.Obligation.PaidOn)
	suite.Assert().Equal(test.Today.String(), transition.Data.Obligation.PaidOn.String())

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/scheduled-transactions/"+uuid.NewString()+"/pay", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestScheduledTransactionMatch() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	rent := createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{
		Amount:    decimal.NewFromInt(800),
		Merchant:  "Landlord",
		AccountID: &a.Data.ID,
		DueDate:   test.Today.AddDays(-1),
	})
	other := createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{
		Amount:    decimal.NewFromInt(800),
		Merchant:  "Landlord",
		AccountID: &a.Data.ID,
		DueDate:   test.Today.AddDays(20),
	})

	tx := createTestTransaction(suite.T(), v1.TransactionEditable{
		Amount:    decimal.NewFromInt(800),
		Merchant:  "Landlord",
		AccountID: &a.Data.ID,
	})
	suite.Require().Len(tx.Suggestions, 2)
	suite.Assert().Equal(rent.Data.ID, tx.Suggestions[0].Obligation.ID, "the closer due date ranks first")
	suite.Assert().Equal(matching.BandHigh, tx.Suggestions[0].Band)

	r := test.Request(suite.T(), http.MethodGet, rent.Data.Links.Candidates, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var candidates v1.CandidateListResponse
	test.DecodeResponse(suite.T(), &r, &candidates)
	suite.Require().Len(candidates.Data, 1)
	suite.Assert().Equal(tx.Data.ID, candidates.Data[0].Transaction.ID)

	r = test.Request(suite.T(), http.MethodPost, rent.Data.Links.Self+"/match", v1.MatchRequest{TransactionID: tx.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var transition v1.TransitionResponse
	test.DecodeResponse(suite.T(), &r, &transition)
	suite.Assert().Equal(models.StatusPaid, transition.Data.Obligation.Status)
	suite.Require().NotNil(transition.Data.Obligation.MatchedTransactionID)
	suite.Assert().Equal(tx.Data.ID, *transition.Data.Obligation.MatchedTransactionID)

	// The transaction is claimed now
	r = test.Request(suite.T(), http.MethodPost, other.Data.Links.Self+"/match", v1.MatchRequest{TransactionID: tx.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
	suite.Assert().Contains(test.DecodeError(suite.T(), r.Body.Bytes()), "already matched")

	r = test.Request(suite.T(), http.MethodGet, tx.Data.Links.Candidates, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var suggestions v1.SuggestionListResponse
	test.DecodeResponse(suite.T(), &r, &suggestions)
	suite.Assert().Empty(suggestions.Data)

	r = test.Request(suite.T(), http.MethodDelete, tx.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestScheduledTransactionMatchUnknownTransaction() {
	o := createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{})

	r := test.Request(suite.T(), http.MethodPost, o.Data.Links.Self+"/match", v1.MatchRequest{TransactionID: uuid.New()})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodPost, o.Data.Links.Self+"/match", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
