package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/lifecycle"
	"github.com/obligo/backend/internal/recurrence"
	"github.com/obligo/backend/internal/validation"
)

// ChequeResponse contains the new cheque and any data integrity warnings.
// Warnings never prevent the cheque from being created.
type ChequeResponse struct {
	Data     *ScheduledTransaction `json:"data"`
	Warnings validation.Warnings   `json:"warnings"`
	Error    *string               `json:"error" example:"there is no series matching your query"`
}

// RegisterSeriesRoutes registers the routes for series with
// the RouterGroup that is passed.
func (co Controller) RegisterSeriesRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsSeriesList)
		r.POST("", co.CreateSeries)
	}

	// Series with ID
	{
		r.OPTIONS("/:id", OptionsSeriesDetail)
		r.GET("/:id", co.GetSeries)
		r.OPTIONS("/:id/cheques", OptionsSeriesCheques)
		r.POST("/:id/cheques", co.AddCheque)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Series
// @Success		204
// @Router			/v1/series [options]
func OptionsSeriesList(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Series
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/series/{id} [options]
func OptionsSeriesDetail(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Series
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/series/{id}/cheques [options]
func OptionsSeriesCheques(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create series
// @Description	Creates all members of a batch series at once, e.g. a book of post-dated cheques.
// @Description	Cheque numbers count up from startingChequeNumber, images are assigned by position.
// @Tags			Series
// @Accept			json
// @Produce		json
// @Success		201		{object}	ScheduledTransactionListResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			series	body		recurrence.SeriesParams	true	"Series"
// @Router			/v1/series [post]
func (co Controller) CreateSeries(c *gin.Context) {
	var params recurrence.SeriesParams
	if err := httputil.BindData(c, &params); err != nil {
		fail(c, err)
		return
	}

	created, err := co.Service.CreateSeries(params)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, ScheduledTransactionListResponse{Data: newScheduledTransactions(c, created)})
}

// @Summary		Get series
// @Description	Returns all members of a series ordered by due date
// @Tags			Series
// @Produce		json
// @Success		200	{object}	ScheduledTransactionListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/series/{id} [get]
func (co Controller) GetSeries(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	series, err := co.Service.Series(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ScheduledTransactionListResponse{Data: newScheduledTransactions(c, series)})
}

// @Summary		Add cheque
// @Description	Adds a single cheque to an existing series. Duplicate due dates or cheque numbers and missing images are reported as warnings.
// @Tags			Series
// @Accept			json
// @Produce		json
// @Success		201		{object}	ChequeResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			id		path		string					true	"ID formatted as string"
// @Param			cheque	body		lifecycle.ChequeRequest	true	"Cheque"
// @Router			/v1/series/{id}/cheques [post]
func (co Controller) AddCheque(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req lifecycle.ChequeRequest
	if err := httputil.BindData(c, &req); err != nil {
		fail(c, err)
		return
	}

	cheque, warnings, err := co.Service.AddCheque(id, req)
	if err != nil {
		fail(c, err)
		return
	}

	if warnings == nil {
		warnings = validation.Warnings{}
	}

	data := newScheduledTransaction(c, cheque)
	c.JSON(http.StatusCreated, ChequeResponse{Data: &data, Warnings: warnings})
}
