// Package v1 implements the v1 HTTP API.
package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/obligations"
	"github.com/obligo/backend/internal/scheduler"
)

// Controller holds what the handlers need to serve requests.
type Controller struct {
	Service   *obligations.Service
	Scheduler *scheduler.Scheduler
}

// RegisterRoutes registers all v1 routes with the group.
func (co Controller) RegisterRoutes(v1 *gin.RouterGroup) {
	co.RegisterAccountRoutes(v1.Group("/accounts"))
	co.RegisterTransactionRoutes(v1.Group("/transactions"))
	co.RegisterScheduledTransactionRoutes(v1.Group("/scheduled-transactions"))
	co.RegisterSeriesRoutes(v1.Group("/series"))
	co.RegisterRecurrenceRoutes(v1.Group("/recurrence"))
	co.RegisterWarningRoutes(v1.Group("/warnings"))
	co.RegisterJobRoutes(v1)
	co.RegisterMatchRuleRoutes(v1.Group("/match-rules"))
}

// Pagination contains information about the pagination for collection endpoint responses.
type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

// parseID parses the "id" path parameter.
func parseID(c *gin.Context) (uuid.UUID, error) {
	return httputil.UUIDFromString(c.Param("id"))
}

// self returns the URL of a resource.
func self(c *gin.Context, collection string, id uuid.UUID) string {
	return fmt.Sprintf("%s/v1/%s/%s", c.GetString(string(models.DBContextURL)), collection, id)
}
