package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// MatchRule maps merchants of orphaned transactions to an account.
type MatchRule struct {
	DefaultModel
	AccountID uuid.UUID `json:"accountId" example:"f9e873c2-fb96-4367-bfb6-7ecd9bf4a6b5"` // The account to suggest for matching transactions
	Priority  uint      `json:"priority" example:"3"`                                     // Rules with lower numbers are evaluated first
	Match     string    `json:"match" example:"Bank*"`                                    // Glob pattern applied to the merchant. Globbing is case sensitive.
}

func (r *MatchRule) BeforeSave(_ *gorm.DB) error {
	r.Match = strings.TrimSpace(r.Match)
	return nil
}

func (r *MatchRule) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	return checkAccount(tx, &r.AccountID)
}

// Matches reports whether the rule matches the merchant.
func (r MatchRule) Matches(merchant string) bool {
	return r.Match != "" && glob.Glob(r.Match, merchant)
}

// SuggestAccount returns the account of the first rule matching the
// merchant. Rules must be sorted by priority.
func SuggestAccount(rules []MatchRule, merchant string) (accountID, ruleID uuid.UUID, ok bool) {
	for _, rule := range rules {
		if rule.Matches(merchant) {
			return rule.AccountID, rule.ID, true
		}
	}
	return uuid.Nil, uuid.Nil, false
}

// Export returns all match rules on this instance for export.
func (MatchRule) Export(db *gorm.DB) (json.RawMessage, error) {
	var matchRules []MatchRule
	err := db.Unscoped().Where(&MatchRule{}).Find(&matchRules).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&matchRules)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
