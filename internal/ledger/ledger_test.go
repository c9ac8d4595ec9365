package ledger

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC)
}

func rec(desc string, d int, amount string) models.Record {
	return models.Record{
		Description: desc,
		Date:        day(d),
		Category:    "Dining",
		Amount:      decimal.RequireFromString(amount),
	}
}

func descriptions(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Description)
	}
	return out
}

func TestLedger_OrdersByDate(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Insert(rec("c", 9, "1")))
	require.NoError(t, l.Insert(rec("a", 1, "1")))
	require.NoError(t, l.Insert(rec("b", 5, "1")))
	require.NoError(t, l.Insert(rec("d", 31, "1")))

	out, err := l.Drain()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, descriptions(out))
}

func TestLedger_EqualDatesKeepArrivalOrder(t *testing.T) {
	l := New(nil)
	for _, r := range []models.Record{
		rec("late-1", 7, "1"),
		rec("same-1", 3, "9"),
		rec("early", 1, "1"),
		rec("same-2", 3, "1"),
		rec("late-2", 7, "1"),
		rec("same-3", 3, "5"),
	} {
		require.NoError(t, l.Insert(r))
	}

	out, err := l.Drain()
	require.NoError(t, err)
	// amounts and descriptions never act as tiebreakers
	assert.Equal(t, []string{"early", "same-1", "same-2", "same-3", "late-1", "late-2"}, descriptions(out))
}

func TestLedger_ArbitraryInsertionOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		l := New(nil)
		n := 200 + rng.Intn(100)
		for seq := 0; seq < n; seq++ {
			r := rec(strconv.Itoa(seq), 1+rng.Intn(10), "1")
			require.NoError(t, l.Insert(r))
		}

		out, err := l.Drain()
		require.NoError(t, err)
		require.Len(t, out, n)

		for i := 1; i < len(out); i++ {
			prev, cur := out[i-1], out[i]
			require.False(t, cur.Date.Before(prev.Date), "round %d: dates decrease at %d", round, i)
			if cur.Date.Equal(prev.Date) {
				p, _ := strconv.Atoi(prev.Description)
				c, _ := strconv.Atoi(cur.Description)
				require.Less(t, p, c, "round %d: arrival order lost at %d", round, i)
			}
		}
	}
}

func TestLedger_DuplicatesKeptAndLogged(t *testing.T) {
	logger := logging.NewMockLogger()
	l := New(logger)

	require.NoError(t, l.Insert(rec("Coffee Shop", 5, "4.50")))
	require.NoError(t, l.Insert(rec("coffee shop ", 5, "4.5")))
	require.NoError(t, l.Insert(rec("Coffee Shop", 6, "4.50")))

	out, err := l.Drain()
	require.NoError(t, err)
	assert.Len(t, out, 3)

	warnings := logger.GetEntriesByLevel("WARN")
	require.Len(t, warnings, 2)
	assert.Equal(t, "Potential duplicate transaction", warnings[0].Message)
}

func TestLedger_DrainOnce(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Insert(rec("a", 1, "1")))

	out, err := l.Drain()
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = l.Drain()
	assert.ErrorIs(t, err, ErrDrained)
	assert.ErrorIs(t, l.Insert(rec("b", 2, "1")), ErrDrained)
}

func TestLedger_RejectsInvalidRecord(t *testing.T) {
	l := New(nil)
	bad := rec("refund", 3, "-4.00")
	assert.Error(t, l.Insert(bad))

	bad = rec("no category", 3, "4.00")
	bad.Category = ""
	assert.Error(t, l.Insert(bad))
	assert.Equal(t, 0, l.Len())
}

func TestLedger_Empty(t *testing.T) {
	l := New(nil)
	out, err := l.Drain()
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "", l.DateRange().String())
}

func TestLedger_LenAndDateRange(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Insert(rec("b", 14, "1")))
	require.NoError(t, l.Insert(rec("a", 2, "1")))
	require.NoError(t, l.Insert(rec("c", 9, "1")))

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, "2023-01-02_2023-01-14", l.DateRange().String())
}

func TestDateRange_Merge(t *testing.T) {
	tests := []struct {
		name  string
		a, b  DateRange
		start time.Time
		end   time.Time
	}{
		{name: "zero with value", a: DateRange{}, b: DateRange{day(3), day(4)}, start: day(3), end: day(4)},
		{name: "value with zero", a: DateRange{day(3), day(4)}, b: DateRange{}, start: day(3), end: day(4)},
		{name: "widen both", a: DateRange{day(3), day(4)}, b: DateRange{day(1), day(9)}, start: day(1), end: day(9)},
		{name: "contained", a: DateRange{day(1), day(9)}, b: DateRange{day(3), day(4)}, start: day(1), end: day(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Merge(tt.b)
			assert.True(t, tt.start.Equal(got.Start))
			assert.True(t, tt.end.Equal(got.End))
		})
	}
}

func TestSortByDate_MatchesInsertionScan(t *testing.T) {
	// Reference: place each record after every earlier record with a date <= its own.
	rng := rand.New(rand.NewSource(7))
	var input []models.Record
	for i := 0; i < 100; i++ {
		input = append(input, rec(fmt.Sprintf("r%03d", i), 1+rng.Intn(5), "1"))
	}

	var reference []models.Record
	for _, r := range input {
		pos := len(reference)
		for i, existing := range reference {
			if existing.Date.After(r.Date) {
				pos = i
				break
			}
		}
		reference = append(reference[:pos], append([]models.Record{r}, reference[pos:]...)...)
	}

	sorted := append([]models.Record(nil), input...)
	SortByDate(sorted)
	assert.Equal(t, strings.Join(descriptions(reference), ","), strings.Join(descriptions(sorted), ","))
}
