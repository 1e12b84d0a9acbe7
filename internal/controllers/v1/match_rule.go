package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obligo/backend/internal/httputil"
	"github.com/obligo/backend/internal/models"
)

type MatchRuleEditable struct {
	AccountID uuid.UUID `json:"accountId" example:"f9e873c2-fb96-4367-bfb6-7ecd9bf4a6b5"` // The account to assign to matching transactions
	Priority  uint      `json:"priority" example:"3"`                                     // Rules with lower numbers are evaluated first
	Match     string    `json:"match" example:"Bank*"`                                    // Glob pattern applied to the merchant. Globbing is case sensitive.
}

type MatchRuleLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/match-rules/95685c82-53c6-455d-b235-f49960b73b21"`
}

// MatchRule is the API representation of a MatchRule.
type MatchRule struct {
	models.MatchRule
	Links MatchRuleLinks `json:"links"`
}

type MatchRuleResponse struct {
	Data  *MatchRule `json:"data"`
	Error *string    `json:"error" example:"match is required"`
}

type MatchRuleListResponse struct {
	Data  []MatchRule `json:"data"`
	Error *string     `json:"error"`
}

// RegisterMatchRuleRoutes registers the routes for match rules with
// the RouterGroup that is passed.
func (co Controller) RegisterMatchRuleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsMatchRuleList)
		r.GET("", co.GetMatchRules)
		r.POST("", co.CreateMatchRule)
	}

	// Match rule with ID
	{
		r.OPTIONS("/:id", OptionsMatchRuleDetail)
		r.DELETE("/:id", co.DeleteMatchRule)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Match Rules
// @Success		204
// @Router			/v1/match-rules [options]
func OptionsMatchRuleList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Match Rules
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/match-rules/{id} [options]
func OptionsMatchRuleDetail(c *gin.Context) {
	c.Header("allow", "OPTIONS, DELETE")
	c.Status(http.StatusNoContent)
}

// @Summary		Create match rule
// @Description	Creates a match rule. Transactions created without an account get the account of the first rule whose pattern matches their merchant.
// @Tags			Match Rules
// @Accept			json
// @Produce		json
// @Success		201			{object}	MatchRuleResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		500			{object}	httpError
// @Param			matchRule	body		MatchRuleEditable	true	"Match rule"
// @Router			/v1/match-rules [post]
func (co Controller) CreateMatchRule(c *gin.Context) {
	var editable MatchRuleEditable
	if err := httputil.BindData(c, &editable); err != nil {
		fail(c, err)
		return
	}

	rule, err := co.Service.CreateMatchRule(models.MatchRule{
		AccountID: editable.AccountID,
		Priority:  editable.Priority,
		Match:     editable.Match,
	})
	if err != nil {
		fail(c, err)
		return
	}

	data := MatchRule{MatchRule: rule, Links: MatchRuleLinks{Self: self(c, "match-rules", rule.ID)}}
	c.JSON(http.StatusCreated, MatchRuleResponse{Data: &data})
}

// @Summary		Get match rules
// @Description	Returns all match rules in the order they are evaluated
// @Tags			Match Rules
// @Produce		json
// @Success		200	{object}	MatchRuleListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/match-rules [get]
func (co Controller) GetMatchRules(c *gin.Context) {
	rules, err := co.Service.MatchRules()
	if err != nil {
		fail(c, err)
		return
	}

	data := make([]MatchRule, 0, len(rules))
	for _, r := range rules {
		data = append(data, MatchRule{MatchRule: r, Links: MatchRuleLinks{Self: self(c, "match-rules", r.ID)}})
	}

	c.JSON(http.StatusOK, MatchRuleListResponse{Data: data})
}

// @Summary		Delete match rule
// @Description	Deletes a match rule
// @Tags			Match Rules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/match-rules/{id} [delete]
func (co Controller) DeleteMatchRule(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	err = co.Service.DeleteMatchRule(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
