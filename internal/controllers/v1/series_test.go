package v1_test

import (
	"net/http"

	"github.com/google/uuid"
	v1 "github.com/obligo/backend/internal/controllers/v1"
	"github.com/obligo/backend/internal/lifecycle"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/recurrence"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/internal/validation"
	"github.com/obligo/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestSeries() {
	start := 1001
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/series", recurrence.SeriesParams{
		Amount:               decimal.NewFromInt(450),
		Merchant:             "Landlord",
		StartDate:            types.NewDate(2024, 1, 15),
		Frequency:            models.PatternMonthly,
		Interval:             1,
		NumberOfCheques:      6,
		StartingChequeNumber: &start,
		ChequeImages:         []string{"cheques/1001.jpg", "cheques/1002.jpg"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var created v1.ScheduledTransactionListResponse
	test.DecodeResponse(suite.T(), &r, &created)
	suite.Require().Len(created.Data, 6)
	suite.Assert().Equal("1006", created.Data[5].ChequeNumber)
	suite.Assert().Equal("2024-06-15", created.Data[5].DueDate.String())
	suite.Assert().True(created.Data[0].IsCheque)

	seriesURL := created.Data[0].Links.Series
	suite.Require().NotEmpty(seriesURL)

	r = test.Request(suite.T(), http.MethodGet, seriesURL, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var series v1.ScheduledTransactionListResponse
	test.DecodeResponse(suite.T(), &r, &series)
	suite.Assert().Len(series.Data, 6)

	r = test.Request(suite.T(), http.MethodPost, seriesURL+"/cheques", lifecycle.ChequeRequest{
		DueDate:      types.NewDate(2024, 7, 15),
		ChequeNumber: "1007",
		ChequeImage:  "cheques/1007.jpg",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var cheque v1.ChequeResponse
	test.DecodeResponse(suite.T(), &r, &cheque)
	suite.Assert().Equal("1007", cheque.Data.ChequeNumber)
	suite.Assert().NotNil(cheque.Warnings)
	suite.Assert().Empty(cheque.Warnings)

	r = test.Request(suite.T(), http.MethodPost, seriesURL+"/cheques", lifecycle.ChequeRequest{
		DueDate:      types.NewDate(2024, 7, 15),
		ChequeNumber: "1007",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
	test.DecodeResponse(suite.T(), &r, &cheque)

	codes := make([]string, 0, len(cheque.Warnings))
	for _, w := range cheque.Warnings {
		codes = append(codes, w.Code)
	}
	suite.Assert().ElementsMatch([]string{
		validation.WarningDuplicateDueDate,
		validation.WarningDuplicateChequeNumber,
		validation.WarningMissingChequeImage,
	}, codes)
}

func (suite *TestSuiteStandard) TestSeriesErrors() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/series", recurrence.SeriesParams{
		Amount:          decimal.NewFromInt(450),
		StartDate:       test.Today,
		Frequency:       models.PatternWeekly,
		Interval:        1,
		NumberOfCheques: 0,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/series/"+uuid.NewString(), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/series/"+uuid.NewString()+"/cheques", lifecycle.ChequeRequest{DueDate: test.Today})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestRecurrencePreview() {
	tests := []struct {
		name   string
		query  string
		status int
		dates  []string
	}{
		{"Month end", "?dueDate=2024-01-31&recurrencePattern=MONTHLY&recurrenceInterval=1&count=4", http.StatusOK, []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}},
		{"Every other week", "?dueDate=2024-03-01&recurrencePattern=WEEKLY&recurrenceInterval=2&count=3", http.StatusOK, []string{"2024-03-01", "2024-03-15", "2024-03-29"}},
		{"Once", "?dueDate=2024-03-01&recurrencePattern=ONCE", http.StatusOK, []string{"2024-03-01"}},
		{"End date", "?dueDate=2024-03-01&recurrencePattern=CUSTOM&recurrenceInterval=10&recurrenceEndDate=2024-03-25", http.StatusOK, []string{"2024-03-01", "2024-03-11", "2024-03-21"}},
		{"Count too high", "?dueDate=2024-03-01&recurrencePattern=WEEKLY&recurrenceInterval=1&count=521", http.StatusBadRequest, nil},
		{"Count zero", "?dueDate=2024-03-01&recurrencePattern=WEEKLY&recurrenceInterval=1&count=0", http.StatusBadRequest, nil},
		{"No interval", "?dueDate=2024-03-01&recurrencePattern=WEEKLY", http.StatusBadRequest, nil},
		{"No due date", "?recurrencePattern=WEEKLY&recurrenceInterval=1", http.StatusBadRequest, nil},
		{"Broken date", "?dueDate=March&recurrencePattern=WEEKLY&recurrenceInterval=1", http.StatusBadRequest, nil},
		{"End before start", "?dueDate=2024-03-01&recurrencePattern=WEEKLY&recurrenceInterval=1&recurrenceEndDate=2024-02-01", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/recurrence/preview"+tt.query, "")
			test.AssertHTTPStatus(suite.T(), &r, tt.status)

			if tt.status != http.StatusOK {
				return
			}

			var res v1.PreviewResponse
			test.DecodeResponse(suite.T(), &r, &res)

			dates := make([]string, 0, len(res.Data))
			for _, d := range res.Data {
				dates = append(dates, d.String())
			}
			suite.Assert().Equal(tt.dates, dates)
		})
	}

	var count int64
	models.DB.Model(&models.ScheduledTransaction{}).Count(&count)
	suite.Assert().Equal(int64(0), count, "previews never create anything")
}

func (suite *TestSuiteStandard) TestInsufficientFunds() {
	a := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking", Balance: decimal.NewFromInt(100)})
	createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{Amount: decimal.NewFromInt(120), AccountID: &a.Data.ID, DueDate: test.Today.AddDays(10)})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/warnings/insufficient-funds", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var res v1.WarningListResponse
	test.DecodeResponse(suite.T(), &r, &res)
	suite.Assert().Equal(30, res.HorizonDays)
	suite.Require().Len(res.Data, 1)
	suite.Assert().Equal("Checking", res.Data[0].AccountName)
	suite.Assert().True(res.Data[0].Shortage.Equal(decimal.NewFromInt(20)), "shortage is %s", res.Data[0].Shortage)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/warnings/insufficient-funds?horizon=7", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &res)
	suite.Assert().Equal(7, res.HorizonDays)
	suite.Assert().Empty(res.Data)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/warnings/insufficient-funds?horizon=soon", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestJobs() {
	createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{DueDate: test.Today.AddDays(-3)})
	createTestScheduledTransaction(suite.T(), v1.ScheduledTransactionEditable{DueDate: test.Today})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/status-pass", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var run v1.JobRunResponse
	test.DecodeResponse(suite.T(), &r, &run)
	suite.Assert().Equal("1 scheduled transactions are now overdue", run.Data.Summary)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/jobs/status-pass", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &run)
	suite.Assert().Equal("0 scheduled transactions are now overdue", run.Data.Summary)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/scheduled-transactions?status=OVERDUE", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var overdue v1.ScheduledTransactionListResponse
	test.DecodeResponse(suite.T(), &r, &overdue)
	suite.Assert().Len(overdue.Data, 1)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/jobs", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var jobs v1.JobListResponse
	test.DecodeResponse(suite.T(), &r, &jobs)
	suite.Assert().Equal([]string{"status-pass", "backup"}, jobs.Data)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/jobs/backup", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/jobs/defragment", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
