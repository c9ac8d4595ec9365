package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompactDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "valid", input: "20230114", want: time.Date(2023, 1, 14, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", input: " 20231231 ", want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "leap day", input: "20240229", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "not a leap year", input: "20230229", wantErr: true},
		{name: "month 13", input: "20231301", wantErr: true},
		{name: "iso form", input: "2023-01-14", wantErr: true},
		{name: "too short", input: "2023011", wantErr: true},
		{name: "letters", input: "2023O114", wantErr: true},
		{name: "signed", input: "+2023011", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "zero time", input: "00010101", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCompactDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestCompactToISO_RoundTrip(t *testing.T) {
	iso, err := CompactToISO("20230114")
	require.NoError(t, err)
	assert.Equal(t, "2023-01-14", iso)

	parsed, err := time.Parse(DateLayoutISO, iso)
	require.NoError(t, err)
	assert.Equal(t, "20230114", parsed.Format(DateLayoutCompact))
}

func TestToISODate(t *testing.T) {
	assert.Equal(t, "2023-03-05", ToISODate(time.Date(2023, 3, 5, 22, 10, 0, 0, time.UTC)))
}

func TestCleanDateString(t *testing.T) {
	assert.Equal(t, "2023 01 14", CleanDateString("  2023   01\t14 "))
	assert.Equal(t, "", CleanDateString("   "))
}

func TestDefaultOutputName(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "statement-2026-10-17", DefaultOutputName("statement", now))
	assert.Equal(t, "statement-2026-10-17", DefaultOutputName("", now))
	assert.Equal(t, "visa-2026-10-17", DefaultOutputName("visa", now))
}
