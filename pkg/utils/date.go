package utils

import (
	"fmt"
	"time"
)

// ParseDate interpreta uma data no formato YYYY-MM-DD
func ParseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("data não informada")
	}

	return time.Parse(time.DateOnly, dateStr)
}

// ValidateDateRange valida o período obrigatório de uma análise:
// ambas as datas presentes, bem formadas e em ordem
func ValidateDateRange(startDate, endDate string) error {
	start, err := ParseDate(startDate)
	if err != nil {
		return fmt.Errorf("data de início inválida: %w", err)
	}

	end, err := ParseDate(endDate)
	if err != nil {
		return fmt.Errorf("data de fim inválida: %w", err)
	}

	if start.After(end) {
		return fmt.Errorf("a data de início não pode ser posterior à data de fim")
	}

	return nil
}
