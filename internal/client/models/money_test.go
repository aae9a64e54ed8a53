package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "200", want: "200"},
		{in: " 75.50 ", want: "75.5"},
		{in: "12,34", want: "12.34"},
		{in: "0", want: "0"},
		{in: "0.1", want: "0.1"},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestDecimalArithmetic_NoFloatDrift(t *testing.T) {
	a, err := ParseAmount("0.1")
	require.NoError(t, err)
	b, err := ParseAmount("0.2")
	require.NoError(t, err)
	c, err := ParseAmount("0.3")
	require.NoError(t, err)

	assert.Equal(t, 0, a.Add(b).Cmp(c))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "125.50", FormatAmount(decimal.RequireFromString("125.5")))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "74.50", FormatAmount(decimal.RequireFromString("200").Sub(decimal.RequireFromString("125.50"))))
}

func TestTotal(t *testing.T) {
	expenses := []Expense{
		{Price: decimal.RequireFromString("50")},
		{Price: decimal.RequireFromString("75.50")},
	}
	assert.Equal(t, "125.50", FormatAmount(Total(expenses)))
	assert.True(t, Total(nil).IsZero())
}
