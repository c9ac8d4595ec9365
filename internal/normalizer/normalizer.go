// Package normalizer turns a raw statement row into a models.Record or
// rejects it with a typed reason.
package normalizer

import (
	"fmt"
	"strings"

	"fjacquet/stmt-csv/internal/dateutils"
	"fjacquet/stmt-csv/internal/models"
	"fjacquet/stmt-csv/internal/parsererror"

	"github.com/shopspring/decimal"
)

// Positional layout of a statement row:
// item#, card#, transaction date, posting date, amount, description.
const (
	ColItem            = 0
	ColCard            = 1
	ColTransactionDate = 2
	ColPostingDate     = 3
	ColAmount          = 4
	ColDescription     = 5

	MinFields = 6
)

// Classifier assigns a category to a description.
type Classifier interface {
	Classify(description string) string
}

// Normalizer converts raw rows. It holds no per-row state.
type Normalizer struct {
	classifier  Classifier
	expenseSign string
	headerToken string
}

// New creates a Normalizer. expenseSign is models.ExpenseSignNegative (source
// files write expenses as negative amounts) or models.ExpenseSignPositive;
// anything else is treated as negative.
func New(classifier Classifier, expenseSign string) *Normalizer {
	if expenseSign != models.ExpenseSignPositive {
		expenseSign = models.ExpenseSignNegative
	}
	return &Normalizer{
		classifier:  classifier,
		expenseSign: expenseSign,
		headerToken: models.HeaderToken,
	}
}

// Normalize converts one row. A rejected row returns a
// *parsererror.RowRejectedError whose reason is one of the parsererror.Err*
// sentinels.
func (n *Normalizer) Normalize(fields []string) (models.Record, error) {
	if len(fields) < MinFields || n.isHeader(fields) {
		return models.Record{}, parsererror.Reject(parsererror.ErrMalformedOrHeader,
			fmt.Errorf("%d fields", len(fields)))
	}

	rawAmount := strings.TrimSpace(fields[ColAmount])
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return models.Record{}, parsererror.Reject(parsererror.ErrInvalidAmount, &parsererror.ParseError{
			Parser: "normalizer",
			Field:  "amount",
			Value:  fields[ColAmount],
			Err:    err,
		})
	}

	date, err := dateutils.ParseCompactDate(fields[ColTransactionDate])
	if err != nil {
		return models.Record{}, parsererror.Reject(parsererror.ErrInvalidDate, &parsererror.ParseError{
			Parser: "normalizer",
			Field:  "transaction_date",
			Value:  fields[ColTransactionDate],
			Err:    err,
		})
	}

	expense, ok := n.expenseAmount(amount)
	if !ok {
		return models.Record{}, parsererror.Reject(parsererror.ErrCreditNotExpense,
			fmt.Errorf("amount %s", amount.String()))
	}

	description := fields[ColDescription]
	rec := models.Record{
		Description: description,
		Date:        date,
		Category:    n.classifier.Classify(description),
		Amount:      expense,
	}
	if err := rec.Validate(); err != nil {
		return models.Record{}, parsererror.Reject(parsererror.ErrMalformedOrHeader, err)
	}
	return rec, nil
}

// expenseAmount returns the positive expense magnitude of a source amount, or
// false if the amount is a payment or refund. Zero is never an expense.
func (n *Normalizer) expenseAmount(amount decimal.Decimal) (decimal.Decimal, bool) {
	if n.expenseSign == models.ExpenseSignPositive {
		return amount, amount.IsPositive()
	}
	return amount.Neg(), amount.IsNegative()
}

func (n *Normalizer) isHeader(fields []string) bool {
	for _, f := range fields {
		if strings.EqualFold(strings.TrimSpace(f), n.headerToken) {
			return true
		}
	}
	return false
}
