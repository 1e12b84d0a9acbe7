package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/projector"
)

type WarningListResponse struct {
	Data        []projector.InsufficientFundsWarning `json:"data"`
	HorizonDays int                                  `json:"horizonDays" example:"30"`
	Error       *string                              `json:"error" example:"the horizon query parameter must be a non-negative number of days"`
}

// RegisterWarningRoutes registers the routes for warnings with
// the RouterGroup that is passed.
func (co Controller) RegisterWarningRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/insufficient-funds", OptionsInsufficientFunds)
	r.GET("/insufficient-funds", co.GetInsufficientFunds)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Warnings
// @Success		204
// @Router			/v1/warnings/insufficient-funds [options]
func OptionsInsufficientFunds(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get insufficient funds warnings
// @Description	Returns one warning for every account whose balance does not cover the PENDING scheduled transactions due within the horizon
// @Tags			Warnings
// @Produce		json
// @Success		200		{object}	WarningListResponse
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			horizon	query		int	false	"Number of days to look ahead. Defaults to the configured horizon."
// @Router			/v1/warnings/insufficient-funds [get]
func (co Controller) GetInsufficientFunds(c *gin.Context) {
	horizon := -1
	if h, ok := c.GetQuery("horizon"); ok {
		days, err := strconv.Atoi(h)
		if err != nil || days < 0 {
			fail(c, errHorizonInvalid)
			return
		}
		horizon = days
	}

	warnings, err := co.Service.Warnings(horizon)
	if err != nil {
		fail(c, err)
		return
	}

	if horizon < 0 {
		horizon = co.Service.Horizon()
	}

	c.JSON(http.StatusOK, WarningListResponse{Data: warnings, HorizonDays: horizon})
}
