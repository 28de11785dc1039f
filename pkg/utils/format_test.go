package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCTR(t *testing.T) {
	tests := []struct {
		name        string
		clicks      int64
		impressions int64
		want        string
	}{
		{"sem impressões", 0, 0, "0%"},
		{"sem impressões com cliques", 10, 0, "0%"},
		{"CTR inteiro", 150, 3000, "5.00%"},
		{"CTR fracionário", 1, 3, "33.33%"},
		{"CTR acima de cem", 20, 10, "200.00%"},
		{"sem cliques", 0, 1000, "0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCTR(tt.clicks, tt.impressions))
		})
	}
}

func TestFormatCostPerConversion(t *testing.T) {
	tests := []struct {
		name        string
		cost        float64
		conversions float64
		want        string
	}{
		{"sem conversões", 100.0, 0, "$0.00"},
		{"divisão exata", 5.0, 5, "$1.00"},
		{"arredondamento", 10.0, 3, "$3.33"},
		{"conversões fracionárias", 10.0, 2.5, "$4.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCostPerConversion(tt.cost, tt.conversions))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$5.00", FormatCurrency(5))
	assert.Equal(t, "$12.35", FormatCurrency(12.345))
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"12.34", 12.34},
		{"$12.34", 12.34},
		{" $12.34 ", 12.34},
		{"-5.00", -5.0},
		{"", 0},
	}

	for _, tt := range tests {
		got, err := ParseMoney(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "6839616266", DigitsOnly("683-961-6266"))
	assert.Equal(t, "1234567890", DigitsOnly("1234567890"))
	assert.Equal(t, "", DigitsOnly("abc"))
}

func TestValidateDateRange(t *testing.T) {
	assert.NoError(t, ValidateDateRange("2025-01-01", "2025-01-31"))
	assert.NoError(t, ValidateDateRange("2025-01-01", "2025-01-01"))
	assert.Error(t, ValidateDateRange("2025-02-01", "2025-01-01"))
	assert.Error(t, ValidateDateRange("", "2025-01-01"))
	assert.Error(t, ValidateDateRange("2025-01-01", ""))
	assert.Error(t, ValidateDateRange("01/01/2025", "2025-01-31"))
}
