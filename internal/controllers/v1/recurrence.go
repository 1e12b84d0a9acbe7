package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/recurrence"
	"github.com/obligo/backend/internal/types"
)

type PreviewQuery struct {
	DueDate            types.Date     `form:"dueDate"`            // Due date of the first occurrence
	RecurrencePattern  models.Pattern `form:"recurrencePattern"`  // ONCE, MONTHLY, WEEKLY or CUSTOM
	RecurrenceInterval int            `form:"recurrenceInterval"` // Months, weeks or days between occurrences
	RecurrenceEndDate  types.Date     `form:"recurrenceEndDate"`  // Last possible due date
	Count              int            `form:"count,default=12"`
}

type PreviewResponse struct {
	Data  []types.Date `json:"data" swaggertype:"array,string" example:"2024-01-31,2024-02-29,2024-03-31"`
	Error *string      `json:"error" example:"recurrenceInterval must be at least 1"`
}

// RegisterRecurrenceRoutes registers the routes for recurrence previews with
// the RouterGroup that is passed.
func (co Controller) RegisterRecurrenceRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/preview", OptionsRecurrencePreview)
	r.GET("/preview", co.GetRecurrencePreview)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Recurrence
// @Success		204
// @Router			/v1/recurrence/preview [options]
func OptionsRecurrencePreview(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Preview due dates
// @Description	Returns the due dates a schedule produces without creating anything
// @Tags			Recurrence
// @Produce		json
// @Success		200	{object}	PreviewResponse
// @Failure		400	{object}	httpError
// @Param			dueDate				query	string	true	"Due date of the first occurrence"
// @Param			recurrencePattern	query	string	true	"ONCE, MONTHLY, WEEKLY or CUSTOM"
// @Param			recurrenceInterval	query	int		false	"Months, weeks or days between occurrences"
// @Param			recurrenceEndDate	query	string	false	"Last possible due date"
// @Param			count				query	int		false	"Number of due dates, 1 to 520. Defaults to 12."
// @Router			/v1/recurrence/preview [get]
func (co Controller) GetRecurrencePreview(c *gin.Context) {
	var query PreviewQuery
	if err := c.BindQuery(&query); err != nil {
		fail(c, httputil.ErrInvalidQueryString)
		return
	}

	if query.Count < 1 || query.Count > recurrence.MaxOccurrences {
		fail(c, errCountInvalid)
		return
	}

	var end *types.Date
	if !query.RecurrenceEndDate.IsZero() {
		end = &query.RecurrenceEndDate
	}

	if err := recurrence.ValidateSchedule(query.DueDate, query.RecurrencePattern, query.RecurrenceInterval, end).Err(); err != nil {
		fail(c, err)
		return
	}

	var dates []types.Date
	if end != nil {
		dates = recurrence.PreviewUntil(query.DueDate, query.RecurrencePattern, query.RecurrenceInterval, *end, query.Count)
	} else {
		dates = recurrence.PreviewDueDates(query.DueDate, query.RecurrencePattern, query.RecurrenceInterval, query.Count)
	}

	if dates == nil {
		dates = []types.Date{}
	}

	c.JSON(http.StatusOK, PreviewResponse{Data: dates})
}
