package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/scheduler"
)

type JobListResponse struct {
	Data  []string `json:"data" example:"status-pass,backup"`
	Error *string  `json:"error"`
}

type JobRunResponse struct {
	Data  *scheduler.Run `json:"data"`
	Error *string        `json:"error" example:"there is no job with this name: defragment"`
}

// RegisterJobRoutes registers the routes for jobs with
// the RouterGroup that is passed.
func (co Controller) RegisterJobRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/status-pass", OptionsStatusPass)
	r.POST("/status-pass", co.StatusPass)

	r.OPTIONS("/jobs", OptionsJobList)
	r.GET("/jobs", co.GetJobs)
	r.OPTIONS("/jobs/:name", OptionsJobDetail)
	r.POST("/jobs/:name", co.TriggerJob)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Jobs
// @Success		204
// @Router			/v1/status-pass [options]
func OptionsStatusPass(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Jobs
// @Success		204
// @Router			/v1/jobs [options]
func OptionsJobList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Jobs
// @Success		204
// @Param			name	path	string	true	"Name of the job"
// @Router			/v1/jobs/{name} [options]
func OptionsJobDetail(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Run status pass
// @Description	Moves every PENDING scheduled transaction that is due before today to OVERDUE. This also happens once a day and on startup.
// @Tags			Jobs
// @Produce		json
// @Success		200	{object}	JobRunResponse
// @Failure		500	{object}	httpError
// @Router			/v1/status-pass [post]
func (co Controller) StatusPass(c *gin.Context) {
	co.trigger(c, scheduler.JobStatusPass)
}

// @Summary		Get jobs
// @Description	Returns the names of all periodic jobs
// @Tags			Jobs
// @Produce		json
// @Success		200	{object}	JobListResponse
// @Router			/v1/jobs [get]
func (co Controller) GetJobs(c *gin.Context) {
	c.JSON(http.StatusOK, JobListResponse{Data: co.Scheduler.Jobs()})
}

// @Summary		Trigger job
// @Description	Runs a periodic job now. If the job is already running, the request waits for that run and returns its result.
// @Tags			Jobs
// @Produce		json
// @Success		200		{object}	JobRunResponse
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			name	path		string	true	"Name of the job"
// @Router			/v1/jobs/{name} [post]
func (co Controller) TriggerJob(c *gin.Context) {
	co.trigger(c, c.Param("name"))
}

func (co Controller) trigger(c *gin.Context, name string) {
	run, err := co.Scheduler.Trigger(c.Request.Context(), name)
	if errors.Is(err, scheduler.ErrUnknownJob) {
		fail(c, err)
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, httpError{Data: run, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, JobRunResponse{Data: &run})
}
