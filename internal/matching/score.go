// Package matching pairs real transactions with the obligations they settle.
//
// Both directions, transaction to obligations and obligation to
// transactions, share one scorer and one weight table. A Direction only
// selects the values in which the two directions differ.
package matching

import (
	"strings"
	"unicode"

	"github.com/obligo/backend/internal/models"
	"github.com/shopspring/decimal"
)

// Direction is the side a search starts from.
type Direction int

const (
	// Forward finds obligations for a transaction.
	Forward Direction = iota

	// Reverse finds transactions for an obligation, e.g. to pair a cheque
	// with the bank debit that cashed it.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Points of each signal.
const (
	AmountExact    = 100
	AmountWithin5  = 50
	AmountWithin10 = 25

	MerchantExact         = 100
	MerchantExactReverse  = 75
	MerchantContains      = 50
	MerchantFuzzy         = 25
	MerchantFuzzyDistance = 3
	MerchantFuzzyLenGap   = 5

	DateSameDay  = 50
	DateWithin7  = 25
	DateWithin14 = 15
	DateWithin30 = 10

	AccountMatch = 50
	ChequeNumber = 75
	CategoryHit  = 10

	// WindowDays is the maximum distance between due date and transaction
	// date for a pair to be considered at all.
	WindowDays = 30
)

// Reason tokens explain which signals contributed to a score.
const (
	ReasonAmountExact      = "amount_exact"
	ReasonAmountWithin5    = "amount_within_5_percent"
	ReasonAmountWithin10   = "amount_within_10_percent"
	ReasonMerchantExact    = "merchant_exact"
	ReasonMerchantContains = "merchant_contains"
	ReasonMerchantFuzzy    = "merchant_similar"
	ReasonSameDay          = "same_day"
	ReasonWithin7Days      = "within_7_days"
	ReasonWithin14Days     = "within_14_days"
	ReasonWithin30Days     = "within_30_days"
	ReasonSameAccount      = "same_account"
	ReasonChequeNumber     = "cheque_number"
	ReasonSameCategory     = "same_category"
)

var (
	fivePercent = decimal.NewFromFloat(0.05)
	tenPercent  = decimal.NewFromFloat(0.10)
)

// Score is the result of scoring one obligation against one transaction.
type Score struct {
	Points    int      `json:"score" example:"175"`
	Band      Band     `json:"confidence" example:"HIGH"`
	Reasons   []string `json:"reasons" example:"amount_exact,same_day"`
	DaysApart int      `json:"daysApart" example:"2"`
}

// Evaluate scores a pair. It does not check eligibility.
func Evaluate(o models.ScheduledTransaction, tx models.Transaction, d Direction) Score {
	var s Score

	add := func(points int, reason string) {
		s.Points += points
		s.Reasons = append(s.Reasons, reason)
	}

	// Percentages are relative to the side the search starts from
	reference := tx.Amount
	if d == Reverse {
		reference = o.Amount
	}

	switch amountSignal(reference, o.Amount.Sub(tx.Amount).Abs()) {
	case AmountExact:
		add(AmountExact, ReasonAmountExact)
	case AmountWithin5:
		add(AmountWithin5, ReasonAmountWithin5)
	case AmountWithin10:
		add(AmountWithin10, ReasonAmountWithin10)
	}

	switch merchantSignal(o.Merchant, tx.Merchant) {
	case MerchantExact:
		if d == Reverse {
			add(MerchantExactReverse, ReasonMerchantExact)
		} else {
			add(MerchantExact, ReasonMerchantExact)
		}
	case MerchantContains:
		add(MerchantContains, ReasonMerchantContains)
	case MerchantFuzzy:
		add(MerchantFuzzy, ReasonMerchantFuzzy)
	}

	s.DaysApart = daysApart(o, tx)
	switch {
	case s.DaysApart == 0:
		add(DateSameDay, ReasonSameDay)
	case s.DaysApart <= 7:
		add(DateWithin7, ReasonWithin7Days)
	case s.DaysApart <= 14:
		add(DateWithin14, ReasonWithin14Days)
	case s.DaysApart <= WindowDays:
		add(DateWithin30, ReasonWithin30Days)
	}

	// In the forward direction the account is part of the eligibility
	// filter and does not score
	if d == Reverse && o.AccountID != nil && tx.AccountID != nil && *o.AccountID == *tx.AccountID {
		add(AccountMatch, ReasonSameAccount)
	}

	if o.ChequeNumber != "" && (containsChequeNumber(tx.Merchant, o.ChequeNumber) || containsChequeNumber(tx.RawText, o.ChequeNumber)) {
		add(ChequeNumber, ReasonChequeNumber)
	}

	if o.Category != "" && strings.EqualFold(strings.TrimSpace(o.Category), strings.TrimSpace(tx.Category)) {
		add(CategoryHit, ReasonSameCategory)
	}

	s.Band = BandOf(s.Points)
	return s
}

// amountSignal classifies the difference of two amounts relative to
// reference.
func amountSignal(reference, delta decimal.Decimal) int {
	switch {
	case delta.IsZero():
		return AmountExact
	case !reference.IsPositive():
		return 0
	case delta.LessThanOrEqual(reference.Mul(fivePercent)):
		return AmountWithin5
	case delta.LessThanOrEqual(reference.Mul(tenPercent)):
		return AmountWithin10
	}
	return 0
}

func normalizeMerchant(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// merchantSignal compares merchant names case-insensitively. It returns the
// forward points of the strongest signal.
func merchantSignal(a, b string) int {
	a, b = normalizeMerchant(a), normalizeMerchant(b)
	if a == "" || b == "" {
		return 0
	}

	if a == b {
		return MerchantExact
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return MerchantContains
	}

	ra, rb := []rune(a), []rune(b)
	gap := len(ra) - len(rb)
	if gap < 0 {
		gap = -gap
	}

	// The distance is at least the length gap, skip the computation
	if gap > MerchantFuzzyLenGap {
		return 0
	}

	if levenshtein(ra, rb) <= MerchantFuzzyDistance {
		return MerchantFuzzy
	}
	return 0
}

// levenshtein returns the edit distance between a and b.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// containsChequeNumber reports whether text contains the cheque number as a
// separate number. Leading zeros are ignored, so "CHQ 001004" contains 1004
// but "10045" does not.
func containsChequeNumber(text, number string) bool {
	number = strings.TrimSpace(number)
	if text == "" || number == "" {
		return false
	}

	want := strings.TrimLeft(number, "0")
	if want == "" || strings.IndexFunc(want, func(r rune) bool { return !unicode.IsDigit(r) }) != -1 {
		return strings.Contains(strings.ToLower(text), strings.ToLower(number))
	}

	for _, run := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsDigit(r) }) {
		if strings.TrimLeft(run, "0") == want {
			return true
		}
	}
	return false
}

func daysApart(o models.ScheduledTransaction, tx models.Transaction) int {
	d := o.DueDate.DaysUntil(tx.Date)
	if d < 0 {
		return -d
	}
	return d
}
