package utils

import (
	"fmt"
	"strings"
)

// FormatCTR calcula e formata a taxa de cliques. Quando não houve
// impressões o resultado é exatamente "0%", sem casas decimais.
func FormatCTR(clicks, impressions int64) string {
	if impressions == 0 {
		return "0%"
	}

	ctr := float64(clicks) / float64(impressions) * 100
	return fmt.Sprintf("%.2f%%", RoundWithTwoDecimalPlace(ctr))
}

// FormatCurrency formata um valor monetário com duas casas decimais
func FormatCurrency(value float64) string {
	return fmt.Sprintf("$%.2f", RoundWithTwoDecimalPlace(value))
}

// FormatCostPerConversion divide custo por conversões. Quando não houve
// conversões o resultado é o literal "$0.00".
func FormatCostPerConversion(cost, conversions float64) string {
	if conversions == 0 {
		return "$0.00"
	}
	return FormatCurrency(cost / conversions)
}

// ParseMoney converte um valor monetário vindo de CSV ("$12.34",
// "R$ 12,34" não é suportado) para float, ignorando símbolos de moeda
func ParseMoney(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimFunc(cleaned, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != '-'
	})

	if cleaned == "" {
		return 0, nil
	}

	var parsed float64
	if _, err := fmt.Sscanf(cleaned, "%f", &parsed); err != nil {
		return 0, fmt.Errorf("valor monetário inválido %q: %w", value, err)
	}

	return parsed, nil
}

// DigitsOnly remove todos os caracteres não numéricos de uma string
func DigitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
